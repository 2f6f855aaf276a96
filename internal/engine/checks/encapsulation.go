package checks

import (
	"classlint/internal/engine/model"
	"fmt"
)

// Encapsulation reports instance fields visible outside their class.
type Encapsulation struct{}

func NewEncapsulation() *Encapsulation { return &Encapsulation{} }

func (e *Encapsulation) Name() string       { return "Encapsulation" }
func (e *Encapsulation) Category() Category { return Principle }
func (e *Encapsulation) Description() string {
	return "Instance fields that are not private."
}

func (e *Encapsulation) Run(class *model.Class, _ *Context) []Finding {
	if class.IsInterface() {
		return nil
	}
	var findings []Finding
	for _, f := range class.Fields {
		if f.Access.IsPrivate() || f.Access.IsStatic() || f.Access.IsSynthetic() {
			continue
		}
		findings = append(findings, newFinding(e, classLocation(class)+"."+f.Name,
			fmt.Sprintf("Field '%s' in class %s should be private or static.", f.Name, class.SimpleName())))
	}
	return findings
}
