package config

import (
	"classlint/internal/shared/util"
	"fmt"
	"strings"
)

var (
	knownLayers   = map[string]bool{"presentation": true, "domain": true, "data": true, "unknown": true}
	outputFormats = []string{"text", "markdown", "json", "tsv", "sarif"}
)

func validateVersion(cfg *Config) error {
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported config version %d; supported version is 1", cfg.Version)
	}
	return nil
}

func validateAnalysis(cfg *Config) error {
	if cfg.Analysis.Workers < 0 {
		return fmt.Errorf("analysis.workers must be >= 0, got %d", cfg.Analysis.Workers)
	}
	if _, err := util.CompilePatterns(cfg.Analysis.Include); err != nil {
		return fmt.Errorf("analysis.include: %w", err)
	}
	if _, err := util.CompilePatterns(cfg.Analysis.Exclude); err != nil {
		return fmt.Errorf("analysis.exclude: %w", err)
	}
	return nil
}

func validateExclude(cfg *Config) error {
	for _, raw := range cfg.Exclude.Classes {
		if _, err := util.CompilePattern(util.ClassPattern(raw)); err != nil {
			return fmt.Errorf("exclude.classes: %w", err)
		}
	}
	if _, err := util.CompilePatterns(cfg.Exclude.Files); err != nil {
		return fmt.Errorf("exclude.files: %w", err)
	}
	return nil
}

func validateChecks(cfg *Config) error {
	dup := cfg.Checks.Duplication
	if dup.Threshold <= 0 || dup.Threshold > 1 {
		return fmt.Errorf("checks.duplication.threshold must be in (0, 1], got %v", dup.Threshold)
	}
	if dup.MinInstructions < 1 {
		return fmt.Errorf("checks.duplication.min_instructions must be >= 1, got %d", dup.MinInstructions)
	}
	if cfg.Checks.Strategy.MinBranches < 1 {
		return fmt.Errorf("checks.strategy.min_branches must be >= 1, got %d", cfg.Checks.Strategy.MinBranches)
	}
	for _, kw := range cfg.Checks.Strategy.Keywords {
		if strings.TrimSpace(kw) == "" {
			return fmt.Errorf("checks.strategy.keywords must not include empty values")
		}
	}
	return nil
}

func validateArchitecture(cfg *Config) error {
	arch := cfg.Architecture
	for name := range arch.Keywords {
		if !knownLayers[name] || name == "unknown" {
			return fmt.Errorf("architecture.keywords references unknown layer %q", name)
		}
	}

	layerNames := make(map[string]bool, len(arch.Layers))
	patternOwner := make(map[string]string)
	for i, layer := range arch.Layers {
		layerRef := fmt.Sprintf("architecture.layers[%d]", i)
		if layer.Name == "" {
			return fmt.Errorf("%s.name must not be empty", layerRef)
		}
		if !knownLayers[layer.Name] {
			return fmt.Errorf("%s.name must be one of presentation, domain, data, unknown; got %q", layerRef, layer.Name)
		}
		if layerNames[layer.Name] {
			return fmt.Errorf("duplicate architecture layer name: %q", layer.Name)
		}
		layerNames[layer.Name] = true

		if len(layer.Paths) == 0 {
			return fmt.Errorf("%s (%s) must define at least one path pattern", layerRef, layer.Name)
		}
		for _, raw := range layer.Paths {
			pattern := util.ClassPattern(raw)
			if _, err := util.CompilePattern(pattern); err != nil {
				return fmt.Errorf("layer %q: %w", layer.Name, err)
			}
			if owner, ok := patternOwner[pattern]; ok && owner != layer.Name {
				return fmt.Errorf("layer path pattern %q is declared in both %q and %q", raw, owner, layer.Name)
			}
			patternOwner[pattern] = layer.Name
		}
	}

	ruleNames := make(map[string]bool, len(arch.Rules))
	ruleByFrom := make(map[string]string, len(arch.Rules))
	for i, rule := range arch.Rules {
		ruleRef := fmt.Sprintf("architecture.rules[%d]", i)
		if rule.Name == "" {
			return fmt.Errorf("%s.name must not be empty", ruleRef)
		}
		if ruleNames[rule.Name] {
			return fmt.Errorf("duplicate architecture rule name: %q", rule.Name)
		}
		ruleNames[rule.Name] = true

		if !knownLayers[rule.From] {
			return fmt.Errorf("architecture rule %q references unknown from layer %q", rule.Name, rule.From)
		}
		if previous, exists := ruleByFrom[rule.From]; exists {
			return fmt.Errorf("architecture layer %q has multiple rules (%q, %q); define exactly one", rule.From, previous, rule.Name)
		}
		ruleByFrom[rule.From] = rule.Name

		allowedSet := make(map[string]bool, len(rule.Allow))
		for _, to := range rule.Allow {
			if !knownLayers[to] {
				return fmt.Errorf("architecture rule %q references unknown allowed layer %q", rule.Name, to)
			}
			if allowedSet[to] {
				return fmt.Errorf("architecture rule %q repeats allowed layer %q", rule.Name, to)
			}
			allowedSet[to] = true
		}
	}
	return nil
}

func validateOutput(cfg *Config) error {
	for _, f := range outputFormats {
		if cfg.Output.Format == f {
			return nil
		}
	}
	return fmt.Errorf("output.format must be one of: %s; got %q", strings.Join(outputFormats, ", "), cfg.Output.Format)
}

func validateDatabase(cfg *Config) error {
	if cfg.DB.Enabled && strings.TrimSpace(cfg.DB.Path) == "" {
		return fmt.Errorf("db.path must not be empty")
	}
	if cfg.DB.Retention < 0 {
		return fmt.Errorf("db.retention must be >= 0, got %d", cfg.DB.Retention)
	}
	return nil
}

func validateWatch(cfg *Config) error {
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	if cfg.Watch.MaxRate < 0 {
		return fmt.Errorf("watch.max_rate must not be negative")
	}
	return nil
}
