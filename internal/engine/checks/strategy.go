package checks

import (
	"classlint/internal/engine/bytecode"
	"classlint/internal/engine/model"
	"fmt"
	"strings"
)

type StrategyOptions struct {
	// MinBranches is the number of conditional units that flags a method.
	MinBranches int
	// Keywords mark a class as already using the pattern.
	Keywords []string
}

func DefaultStrategyKeywords() []string {
	return []string{"Strategy", "Behavior", "Policy", "Algorithm"}
}

// StrategyPattern flags methods whose branching suggests behaviour that
// could be swapped in through a strategy object.
type StrategyPattern struct {
	opts StrategyOptions
}

func NewStrategyPattern(opts StrategyOptions) *StrategyPattern {
	if opts.MinBranches <= 0 {
		opts.MinBranches = 3
	}
	if len(opts.Keywords) == 0 {
		opts.Keywords = DefaultStrategyKeywords()
	}
	return &StrategyPattern{opts: opts}
}

func (s *StrategyPattern) Name() string       { return "StrategyPattern" }
func (s *StrategyPattern) Category() Category { return Pattern }
func (s *StrategyPattern) Description() string {
	return "Methods with enough conditional branches to warrant a strategy object."
}

func (s *StrategyPattern) Run(class *model.Class, _ *Context) []Finding {
	if s.usesPattern(class) {
		return nil
	}
	var findings []Finding
	for _, m := range class.Methods {
		if m.IsConstructor() || m.IsInitializer() || !m.HasBody() {
			continue
		}
		units := BranchUnits(m)
		if units < s.opts.MinBranches {
			continue
		}
		findings = append(findings, newFinding(s, methodLocation(class, m, m.FirstLine()),
			fmt.Sprintf("Method '%s' in class '%s' has multiple conditional branches (%d). Consider using Strategy Pattern to encapsulate varying behaviors.",
				m.Name, class.SimpleName(), units)))
	}
	return findings
}

func (s *StrategyPattern) usesPattern(class *model.Class) bool {
	for _, f := range class.Fields {
		t, err := f.Type()
		if err != nil {
			continue
		}
		if s.hasKeyword(t.Referenced()) {
			return true
		}
	}
	for _, iface := range class.Interfaces {
		if s.hasKeyword(iface) {
			return true
		}
	}
	return false
}

func (s *StrategyPattern) hasKeyword(name string) bool {
	if name == "" {
		return false
	}
	for _, kw := range s.opts.Keywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

// BranchUnits counts one unit per switch case label and one per conditional
// jump.
func BranchUnits(m *model.Method) int {
	units := 0
	for _, in := range m.Instructions {
		switch in.Category() {
		case bytecode.CategorySwitch:
			units += in.Cases()
		case bytecode.CategoryConditionalBranch:
			units++
		}
	}
	return units
}
