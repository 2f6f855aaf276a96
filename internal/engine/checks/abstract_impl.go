package checks

import (
	"classlint/internal/engine/model"
	"fmt"
)

// AbstractImplementation reports abstract methods from the ancestor chain of
// a concrete class that nothing in the chain implements. Compilers reject
// such classes, so hits usually point at stale or mixed builds.
type AbstractImplementation struct{}

func NewAbstractImplementation() *AbstractImplementation { return &AbstractImplementation{} }

func (a *AbstractImplementation) Name() string       { return "AbstractImplementation" }
func (a *AbstractImplementation) Category() Category { return Style }
func (a *AbstractImplementation) Description() string {
	return "Concrete classes missing implementations of abstract methods inherited from abstract superclasses."
}

type abstractMethod struct {
	name, desc string
	declaredBy string
}

func (a *AbstractImplementation) Run(class *model.Class, cx *Context) []Finding {
	if !class.IsConcrete() || !class.HasSuper() {
		return nil
	}
	chain := superChain(class, cx)
	if len(chain) == 0 || chain[0].Name != class.Super || !chain[0].IsAbstract() {
		return nil
	}

	var required []abstractMethod
	declared := make(map[string]bool)
	for _, ancestor := range chain {
		for _, m := range ancestor.Methods {
			if !m.IsAbstract() || declared[m.Signature()] {
				continue
			}
			declared[m.Signature()] = true
			required = append(required, abstractMethod{name: m.Name, desc: m.Desc, declaredBy: ancestor.Name})
		}
	}
	if len(required) == 0 {
		return nil
	}

	implemented := make(map[string]bool)
	for _, m := range class.Methods {
		if !m.IsAbstract() {
			implemented[m.Signature()] = true
		}
	}
	// A concrete method above a nearer abstract redeclaration is hidden by it.
	reabstracted := make(map[string]bool)
	for _, ancestor := range chain {
		for _, m := range ancestor.Methods {
			switch {
			case m.IsAbstract():
				reabstracted[m.Signature()] = true
			case !m.IsPrivate() && !reabstracted[m.Signature()]:
				implemented[m.Signature()] = true
			}
		}
	}

	var findings []Finding
	for _, req := range required {
		if implemented[req.name+req.desc] {
			continue
		}
		findings = append(findings, newFinding(a, classLocation(class),
			fmt.Sprintf("Class %s does not implement abstract method '%s%s' from %s",
				class.SimpleName(), req.name, req.desc, simpleName(req.declaredBy))))
	}
	return findings
}
