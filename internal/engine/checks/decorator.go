package checks

import (
	"classlint/internal/engine/bytecode"
	"classlint/internal/engine/model"
	"fmt"
	"log/slog"
)

// DecoratorQuality looks at classes shaped like decorators, meaning they
// wrap a component of their own supertype, and reports components that are
// never stored, never used, or never delegated to.
type DecoratorQuality struct{}

func NewDecoratorQuality() *DecoratorQuality { return &DecoratorQuality{} }

func (d *DecoratorQuality) Name() string       { return "DecoratorQuality" }
func (d *DecoratorQuality) Category() Category { return Pattern }
func (d *DecoratorQuality) Description() string {
	return "Decorator-like classes whose wrapped component is not stored, not used or not delegated to."
}

func (d *DecoratorQuality) Run(class *model.Class, _ *Context) []Finding {
	if !class.IsConcrete() {
		return nil
	}
	components := componentTypes(class)
	if len(components) == 0 {
		return nil
	}
	fields := componentFields(class, components)
	ctors := componentConstructors(class, components)
	if len(fields) == 0 && len(ctors) == 0 {
		return nil
	}

	var findings []Finding
	for _, ctor := range ctors {
		if !writesAnyField(ctor) {
			findings = append(findings, newFinding(d, methodLocation(class, ctor, ctor.FirstLine()),
				fmt.Sprintf("Constructor in decorator class %s takes component parameter but doesn't store it", class.SimpleName())))
		}
	}
	for _, f := range fields {
		switch {
		case !fieldReferenced(class, f.Name):
			findings = append(findings, newFinding(d, classLocation(class),
				fmt.Sprintf("Decorator field '%s' in class %s is never used", f.Name, class.SimpleName())))
		case !delegatesTo(class, f.Name):
			findings = append(findings, newFinding(d, classLocation(class),
				fmt.Sprintf("Decorator field '%s' in class %s is not properly delegated to", f.Name, class.SimpleName())))
		}
	}
	return findings
}

// componentTypes are the supertypes a decorator could wrap: its interfaces
// and a non-root superclass.
func componentTypes(class *model.Class) map[string]bool {
	out := make(map[string]bool)
	for _, iface := range class.Interfaces {
		out[iface] = true
	}
	if class.HasSuper() {
		out[class.Super] = true
	}
	return out
}

func componentFields(class *model.Class, components map[string]bool) []*model.Field {
	var out []*model.Field
	for _, f := range class.Fields {
		if f.Access.IsStatic() {
			continue
		}
		t, err := f.Type()
		if err != nil {
			slog.Debug("skipping field with malformed descriptor",
				"class", class.Name, "field", f.Name, "error", err)
			continue
		}
		if t.Sort == bytecode.SortObject && components[t.ClassName] {
			out = append(out, f)
		}
	}
	return out
}

func componentConstructors(class *model.Class, components map[string]bool) []*model.Method {
	var out []*model.Method
	for _, ctor := range class.Constructors() {
		mt, err := ctor.Type()
		if err != nil {
			slog.Debug("skipping constructor with malformed descriptor",
				"class", class.Name, "desc", ctor.Desc, "error", err)
			continue
		}
		for _, p := range mt.Params {
			if p.Sort == bytecode.SortObject && components[p.ClassName] {
				out = append(out, ctor)
				break
			}
		}
	}
	return out
}

func writesAnyField(m *model.Method) bool {
	for _, in := range m.Instructions {
		if !in.IsPseudo() && bytecode.IsFieldWrite(in.Op) {
			return true
		}
	}
	return false
}

func fieldReferenced(class *model.Class, name string) bool {
	for _, m := range class.Methods {
		for _, in := range m.Instructions {
			if (in.Op == bytecode.OpGetfield || in.Op == bytecode.OpPutfield) && !in.IsPseudo() &&
				in.Owner == class.Name && in.Name == name {
				return true
			}
		}
	}
	return false
}

// delegatesTo looks for a read of the field followed by a call before the
// value could have been stashed away. A store or a different field read
// drops the pending read; argument pushes in between are allowed.
func delegatesTo(class *model.Class, name string) bool {
	for _, m := range class.Methods {
		pending := false
		for _, in := range m.Instructions {
			if in.IsPseudo() {
				continue
			}
			switch in.Category() {
			case bytecode.CategoryMethodCall:
				if pending {
					return true
				}
			case bytecode.CategoryStore:
				pending = false
			case bytecode.CategoryFieldAccess:
				if bytecode.IsFieldRead(in.Op) {
					pending = in.Op == bytecode.OpGetfield && in.Owner == class.Name && in.Name == name
				}
			}
		}
	}
	return false
}
