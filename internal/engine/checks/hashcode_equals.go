package checks

import "classlint/internal/engine/model"

const (
	equalsDesc   = "(Ljava/lang/Object;)Z"
	hashCodeDesc = "()I"
)

// HashCodeEquals flags classes that override exactly one of equals(Object)
// and hashCode(). Overloads with other descriptors do not count.
type HashCodeEquals struct{}

func NewHashCodeEquals() *HashCodeEquals { return &HashCodeEquals{} }

func (h *HashCodeEquals) Name() string       { return "HashCodeEquals" }
func (h *HashCodeEquals) Category() Category { return Principle }
func (h *HashCodeEquals) Description() string {
	return "Classes that override equals(Object) without hashCode() or the reverse."
}

func (h *HashCodeEquals) Run(class *model.Class, _ *Context) []Finding {
	if class.IsInterface() {
		return nil
	}
	equals := class.Method("equals", equalsDesc) != nil
	hashCode := class.Method("hashCode", hashCodeDesc) != nil
	switch {
	case equals && !hashCode:
		return []Finding{newFinding(h, classLocation(class),
			"Class overrides equals() but not hashCode(). Both methods must be overridden together so equal objects share a hash code.")}
	case hashCode && !equals:
		return []Finding{newFinding(h, classLocation(class),
			"Class overrides hashCode() but not equals(). Both methods must be overridden together so equal objects share a hash code.")}
	}
	return nil
}
