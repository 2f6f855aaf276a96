package helpers

import (
	"classlint/internal/core/config"
	"classlint/internal/engine/architecture"
	"classlint/internal/engine/checks"
	"fmt"
	"path/filepath"
	"sort"
)

func UniqueScanRoots(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	roots := make([]string, 0, len(paths))
	for _, p := range paths {
		normalized := filepath.Clean(p)
		if abs, err := filepath.Abs(normalized); err == nil {
			normalized = filepath.Clean(abs)
		}
		if seen[normalized] {
			continue
		}
		seen[normalized] = true
		roots = append(roots, normalized)
	}
	sort.Strings(roots)
	return roots
}

// ArchitectureModelFromConfig converts the [architecture] section. A keyword
// list left empty in the config keeps the built-in list for that layer.
func ArchitectureModelFromConfig(arch config.Architecture) (architecture.Model, error) {
	model := architecture.Model{
		Mappings: make([]architecture.Mapping, 0, len(arch.Layers)),
		Rules:    make([]architecture.Rule, 0, len(arch.Rules)),
	}

	if len(arch.Keywords) > 0 {
		defaults := architecture.DefaultKeywords()
		model.Keywords = make(map[architecture.Layer]architecture.Keywords, len(arch.Keywords))
		for name, kw := range arch.Keywords {
			layer, err := architecture.ParseLayer(name)
			if err != nil {
				return architecture.Model{}, fmt.Errorf("architecture.keywords: %w", err)
			}
			merged := defaults[layer]
			if len(kw.Packages) > 0 {
				merged.Packages = append([]string(nil), kw.Packages...)
			}
			if len(kw.Classes) > 0 {
				merged.Classes = append([]string(nil), kw.Classes...)
			}
			model.Keywords[layer] = merged
		}
	}

	for _, layer := range arch.Layers {
		l, err := architecture.ParseLayer(layer.Name)
		if err != nil {
			return architecture.Model{}, fmt.Errorf("architecture.layers: %w", err)
		}
		model.Mappings = append(model.Mappings, architecture.Mapping{
			Layer:    l,
			Patterns: append([]string(nil), layer.Paths...),
		})
	}

	for _, rule := range arch.Rules {
		from, err := architecture.ParseLayer(rule.From)
		if err != nil {
			return architecture.Model{}, fmt.Errorf("architecture rule %q: %w", rule.Name, err)
		}
		r := architecture.Rule{Name: rule.Name, From: from}
		for _, raw := range rule.Allow {
			to, err := architecture.ParseLayer(raw)
			if err != nil {
				return architecture.Model{}, fmt.Errorf("architecture rule %q: %w", rule.Name, err)
			}
			r.Allow = append(r.Allow, to)
		}
		model.Rules = append(model.Rules, r)
	}
	return model, nil
}

// CheckOptionsFromConfig maps [checks] and [architecture] onto the check
// options. Empty keyword lists keep the defaults.
func CheckOptionsFromConfig(cfg *config.Config) (checks.Options, error) {
	opts := checks.DefaultOptions()

	dup := cfg.Checks.Duplication
	if dup.Threshold > 0 {
		opts.Duplication.Threshold = dup.Threshold
	}
	if dup.MinInstructions > 0 {
		opts.Duplication.MinInstructions = dup.MinInstructions
	}

	strategy := cfg.Checks.Strategy
	if strategy.MinBranches > 0 {
		opts.Strategy.MinBranches = strategy.MinBranches
	}
	if len(strategy.Keywords) > 0 {
		opts.Strategy.Keywords = append([]string(nil), strategy.Keywords...)
	}

	hw := cfg.Checks.Hollywood
	overrideList(&opts.Hollywood.LowLevel, hw.LowLevel)
	overrideList(&opts.Hollywood.Framework, hw.Framework)
	overrideList(&opts.Hollywood.HighLevel, hw.HighLevel)
	overrideList(&opts.Hollywood.Template, hw.Template)

	model, err := ArchitectureModelFromConfig(cfg.Architecture)
	if err != nil {
		return checks.Options{}, err
	}
	opts.Architecture = model
	return opts, nil
}

func overrideList(target *[]string, values []string) {
	if len(values) > 0 {
		*target = append([]string(nil), values...)
	}
}
