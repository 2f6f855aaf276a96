package checks

import (
	"classlint/internal/engine/bytecode"
	"classlint/internal/engine/model"
	"fmt"
	"log/slog"
)

// UnusedParameter reports parameters whose slot is never loaded or
// incremented.
type UnusedParameter struct{}

func NewUnusedParameter() *UnusedParameter { return &UnusedParameter{} }

func (u *UnusedParameter) Name() string       { return "UnusedParameter" }
func (u *UnusedParameter) Category() Category { return Style }
func (u *UnusedParameter) Description() string {
	return "Method parameters that the method body never reads."
}

func (u *UnusedParameter) Run(class *model.Class, _ *Context) []Finding {
	var findings []Finding
	for _, m := range class.Methods {
		if m.IsAbstract() || m.IsNative() || m.IsInitializer() {
			continue
		}
		mt, err := m.Type()
		if err != nil {
			slog.Debug("skipping method with malformed descriptor",
				"check", u.Name(), "class", class.Name, "method", m.Name, "error", err)
			continue
		}
		if len(mt.Params) == 0 {
			continue
		}
		read := readSlots(m)
		for i, slot := range mt.ParamSlots(m.IsStatic()) {
			if read[slot] {
				continue
			}
			findings = append(findings, newFinding(u, methodLocation(class, m, m.FirstLine()),
				fmt.Sprintf("Unused parameter '%s' in method '%s'", paramName(m, slot, i), m.Name)))
		}
	}
	return findings
}

func readSlots(m *model.Method) map[int]bool {
	read := make(map[int]bool)
	for _, in := range m.Instructions {
		switch in.Category() {
		case bytecode.CategoryLoad, bytecode.CategoryIncrement:
			read[in.Var] = true
		}
	}
	return read
}

// paramName prefers the debug name and falls back to a positional one.
func paramName(m *model.Method, slot, ordinal int) string {
	if name, ok := m.LocalName(slot); ok && name != "this" {
		return name
	}
	return fmt.Sprintf("param%d", ordinal)
}

// UnusedField reports fields that no instruction of the declaring class
// reads or writes.
type UnusedField struct{}

func NewUnusedField() *UnusedField { return &UnusedField{} }

func (u *UnusedField) Name() string       { return "UnusedField" }
func (u *UnusedField) Category() Category { return Style }
func (u *UnusedField) Description() string {
	return "Fields that no method of the declaring class reads or writes."
}

func (u *UnusedField) Run(class *model.Class, _ *Context) []Finding {
	if len(class.Fields) == 0 {
		return nil
	}
	used := make(map[string]bool)
	for _, m := range class.Methods {
		for _, in := range m.Instructions {
			if in.Category() == bytecode.CategoryFieldAccess && in.Owner == class.Name {
				used[in.Name] = true
			}
		}
	}
	var findings []Finding
	for _, f := range class.Fields {
		if used[f.Name] {
			continue
		}
		findings = append(findings, newFinding(u, classLocation(class)+"."+f.Name,
			fmt.Sprintf("Field '%s' is declared but never used.", f.Name)))
	}
	return findings
}
