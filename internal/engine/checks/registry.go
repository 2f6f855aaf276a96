package checks

import (
	"classlint/internal/engine/architecture"
	"classlint/internal/shared/util"
	"fmt"
	"strings"
)

// Entry is the enumerable description of one registered check.
type Entry struct {
	Name        string   `json:"name"`
	Category    Category `json:"category"`
	Description string   `json:"description"`
}

// Options tunes the configurable checks.
type Options struct {
	Duplication  DuplicationOptions
	Strategy     StrategyOptions
	Hollywood    HollywoodOptions
	Architecture architecture.Model
}

func DefaultOptions() Options {
	return Options{
		Duplication: DuplicationOptions{Threshold: 0.8, MinInstructions: 5},
		Strategy:    StrategyOptions{MinBranches: 3, Keywords: DefaultStrategyKeywords()},
		Hollywood:   DefaultHollywoodOptions(),
	}
}

// Registry is a fixed, ordered set of checks. Order is registration order
// and is the order findings are aggregated in.
type Registry struct {
	checks []Check
	byName map[string]Check
}

// NewRegistry registers checks in the given order. Names are unique without
// regard to case.
func NewRegistry(checks ...Check) (*Registry, error) {
	r := &Registry{byName: make(map[string]Check, len(checks))}
	for _, c := range checks {
		key := strings.ToLower(c.Name())
		if _, dup := r.byName[key]; dup {
			return nil, fmt.Errorf("check %q registered twice", c.Name())
		}
		r.byName[key] = c
		r.checks = append(r.checks, c)
	}
	return r, nil
}

// DefaultRegistry registers every built-in check.
func DefaultRegistry(opts Options) (*Registry, error) {
	threeLayer, err := NewThreeLayerArchitecture(opts.Architecture)
	if err != nil {
		return nil, fmt.Errorf("three-layer architecture: %w", err)
	}
	return NewRegistry(
		NewDuplication(opts.Duplication),
		NewRedundantInterface(),
		NewAbstractImplementation(),
		NewDecoratorQuality(),
		NewStrategyPattern(opts.Strategy),
		threeLayer,
		NewUnusedParameter(),
		NewUnusedField(),
		NewHollywood(opts.Hollywood),
		NewHashCodeEquals(),
		NewSwallowedException(),
		NewEncapsulation(),
		NewDataTypeCompatibility(),
	)
}

func (r *Registry) Entries() []Entry {
	out := make([]Entry, 0, len(r.checks))
	for _, c := range r.checks {
		out = append(out, Entry{Name: c.Name(), Category: c.Category(), Description: c.Description()})
	}
	return out
}

func (r *Registry) Checks() []Check {
	return append([]Check(nil), r.checks...)
}

func (r *Registry) Lookup(name string) (Check, bool) {
	c, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}

// Select returns the checks whose names match an include pattern (all when
// include is empty) and no exclude pattern, in registry order. Plain names
// are looked up directly; anything else is a case-insensitive glob. An
// include that matches nothing is an error so typos do not silently disable
// analysis.
func (r *Registry) Select(include, exclude []string) ([]Check, error) {
	named := make(map[string]bool)
	var globs []string
	for _, s := range include {
		s = strings.TrimSpace(s)
		switch {
		case s == "":
		case isGlob(s):
			globs = append(globs, s)
		default:
			c, ok := r.Lookup(s)
			if !ok {
				return nil, fmt.Errorf("unknown check %q", s)
			}
			named[strings.ToLower(c.Name())] = true
		}
	}
	inc, err := compileNamePatterns(globs)
	if err != nil {
		return nil, err
	}
	exc, err := compileNamePatterns(exclude)
	if err != nil {
		return nil, err
	}
	matched := make([]bool, len(inc))
	var out []Check
	for _, c := range r.checks {
		name := strings.ToLower(c.Name())
		included := (len(inc) == 0 && len(named) == 0) || named[name]
		for i, p := range inc {
			if p.Match(name) {
				included = true
				matched[i] = true
			}
		}
		if !included || util.MatchAny(exc, name) {
			continue
		}
		out = append(out, c)
	}
	for i, ok := range matched {
		if !ok {
			return nil, fmt.Errorf("no check matches %q", inc[i].String())
		}
	}
	return out, nil
}

func isGlob(s string) bool {
	return strings.ContainsAny(s, "*?[]{}!")
}

func compileNamePatterns(raw []string) ([]util.Pattern, error) {
	lowered := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			lowered = append(lowered, s)
		}
	}
	return util.CompilePatterns(lowered)
}
