package checks

import (
	"classlint/internal/engine/model"
	"fmt"
)

// RedundantInterface reports directly declared interfaces that are already
// implied by another declared interface or by the superclass chain.
type RedundantInterface struct{}

func NewRedundantInterface() *RedundantInterface { return &RedundantInterface{} }

func (r *RedundantInterface) Name() string       { return "RedundantInterface" }
func (r *RedundantInterface) Category() Category { return Pattern }
func (r *RedundantInterface) Description() string {
	return "Interfaces declared explicitly although another interface or the superclass already provides them."
}

func (r *RedundantInterface) Run(class *model.Class, cx *Context) []Finding {
	direct := class.Interfaces
	if len(direct) == 0 {
		return nil
	}
	ic := newInterfaceClosure(cx)
	redundant := make(map[string]bool)

	seen := make(map[string]bool, len(direct))
	for _, iface := range direct {
		if seen[iface] {
			redundant[iface] = true
		}
		seen[iface] = true
	}

	for _, a := range direct {
		for _, b := range direct {
			if a != b && ic.extends(b, a) {
				redundant[a] = true
			}
		}
	}

	if class.HasSuper() {
		inherited := ic.ofType(class.Super)
		for _, iface := range direct {
			if inherited[iface] {
				redundant[iface] = true
			}
		}
	}

	var findings []Finding
	reported := make(map[string]bool)
	for _, iface := range direct {
		if !redundant[iface] {
			continue
		}
		msg := fmt.Sprintf("Redundant interface: '%s' is explicitly implemented by '%s' even though it is already implied (via another interface or superclass).",
			simpleName(iface), class.SimpleName())
		if reported[msg] {
			continue
		}
		reported[msg] = true
		findings = append(findings, newFinding(r, classLocation(class), msg))
	}
	return findings
}
