package checks

import "classlint/internal/engine/model"

// superChain returns the ancestors of class that resolve, nearest first. The
// walk stops at the root class, at the first ancestor that cannot be
// resolved, or on a cycle.
func superChain(class *model.Class, cx *Context) []*model.Class {
	var chain []*model.Class
	seen := map[string]bool{class.Name: true}
	for name := class.Super; name != "" && name != model.ObjectClass && !seen[name]; {
		seen[name] = true
		next, ok := cx.resolve(name)
		if !ok {
			break
		}
		chain = append(chain, next)
		name = next.Super
	}
	return chain
}

// interfaceClosure computes transitive super-interface sets with a memo
// shared across calls for one class. Unresolvable interfaces are leaves.
type interfaceClosure struct {
	cx   *Context
	memo map[string]map[string]bool
}

func newInterfaceClosure(cx *Context) *interfaceClosure {
	return &interfaceClosure{cx: cx, memo: make(map[string]map[string]bool)}
}

// supers returns every interface name extends, directly or transitively.
func (ic *interfaceClosure) supers(name string) map[string]bool {
	if set, ok := ic.memo[name]; ok {
		return set
	}
	set := make(map[string]bool)
	// Publish before recursing so a cyclic hierarchy terminates.
	ic.memo[name] = set
	iface, ok := ic.cx.resolve(name)
	if !ok {
		return set
	}
	for _, parent := range iface.Interfaces {
		if set[parent] {
			continue
		}
		set[parent] = true
		for p := range ic.supers(parent) {
			set[p] = true
		}
	}
	return set
}

// extends reports whether child transitively extends ancestor.
func (ic *interfaceClosure) extends(child, ancestor string) bool {
	return ic.supers(child)[ancestor]
}

// ofType returns every interface a class type implements through itself and
// its superclass chain, including super-interfaces.
func (ic *interfaceClosure) ofType(name string) map[string]bool {
	out := make(map[string]bool)
	seen := make(map[string]bool)
	for name != "" && name != model.ObjectClass && !seen[name] {
		seen[name] = true
		class, ok := ic.cx.resolve(name)
		if !ok {
			break
		}
		for _, iface := range class.Interfaces {
			out[iface] = true
			for p := range ic.supers(iface) {
				out[p] = true
			}
		}
		name = class.Super
	}
	return out
}
