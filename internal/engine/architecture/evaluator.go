package architecture

import (
	"classlint/internal/engine/bytecode"
	"classlint/internal/engine/model"
	"fmt"
	"strings"
)

type RefKind string

const (
	RefField RefKind = "field"
	RefCall  RefKind = "call"
)

// Edge is one reference from a class to another class of the analyzed set.
type Edge struct {
	From      string
	To        string
	FromLayer Layer
	ToLayer   Layer
	Kind      RefKind
	// Via is the field name, or the callee name for calls made from Method.
	Via    string
	Method string
}

// Source renders where the reference originates, e.g. "field: repo" or
// "method save calls: insert".
func (e Edge) Source() string {
	if e.Kind == RefField {
		return "field: " + e.Via
	}
	return fmt.Sprintf("method %s calls: %s", e.Method, e.Via)
}

// Link runs phase two for one class: reference edges derived from field types
// and method-call owners that land on other classified classes. Identical
// edges are reported once, in declaration order.
func Link(class *model.Class, layers Layers) []Edge {
	if class == nil {
		return nil
	}
	from := layers[class.Name]
	var edges []Edge
	seen := make(map[Edge]bool)
	add := func(e Edge) {
		if seen[e] {
			return
		}
		seen[e] = true
		edges = append(edges, e)
	}

	for _, f := range class.Fields {
		t, err := f.Type()
		if err != nil {
			continue
		}
		target := t.Referenced()
		to, ok := layers[target]
		if !ok || target == class.Name {
			continue
		}
		add(Edge{From: class.Name, To: target, FromLayer: from, ToLayer: to, Kind: RefField, Via: f.Name})
	}

	for _, m := range class.Methods {
		for _, in := range m.Instructions {
			if in.Category() != bytecode.CategoryMethodCall || in.Owner == "" {
				continue
			}
			target := bytecode.ParseOwner(in.Owner).Referenced()
			to, ok := layers[target]
			if !ok || target == class.Name {
				continue
			}
			add(Edge{From: class.Name, To: target, FromLayer: from, ToLayer: to, Kind: RefCall, Via: in.Name, Method: m.Name})
		}
	}
	return edges
}

// Policy decides which layer-to-layer references are allowed.
type Policy struct {
	forbidden map[Layer]map[Layer]bool
	// custom holds allow-lists; layers without a rule are unrestricted.
	custom map[Layer]Rule
}

// DefaultPolicy forbids presentation reaching data or unknown classes, data
// reaching presentation or domain, and domain reaching presentation.
func DefaultPolicy() Policy {
	return Policy{forbidden: map[Layer]map[Layer]bool{
		Presentation: {Data: true, Unknown: true},
		Data:         {Presentation: true, Domain: true},
		Domain:       {Presentation: true},
	}}
}

// NewPolicy builds an allow-list policy; with no rules it is DefaultPolicy.
func NewPolicy(rules []Rule) Policy {
	if len(rules) == 0 {
		return DefaultPolicy()
	}
	p := Policy{custom: make(map[Layer]Rule, len(rules))}
	for _, r := range rules {
		p.custom[r.From] = r
	}
	return p
}

// Allowed reports whether from may reference to, and the name of the rule
// that decided when it may not.
func (p Policy) Allowed(from, to Layer) (bool, string) {
	if from == to {
		return true, ""
	}
	if p.custom != nil {
		rule, ok := p.custom[from]
		if !ok {
			return true, ""
		}
		for _, allowed := range rule.Allow {
			if allowed == to {
				return true, ""
			}
		}
		return false, rule.Name
	}
	if p.forbidden[from][to] {
		return false, "three-layer"
	}
	return true, ""
}

// Violations filters edges down to the ones the policy forbids.
func (p Policy) Violations(edges []Edge) []Edge {
	var out []Edge
	for _, e := range edges {
		if ok, _ := p.Allowed(e.FromLayer, e.ToLayer); !ok {
			out = append(out, e)
		}
	}
	return out
}

// Describe renders the violation message for a forbidden edge.
func Describe(e Edge) string {
	target := strings.ReplaceAll(e.To, "/", ".")
	switch {
	case e.FromLayer == Presentation && e.ToLayer == Data:
		return "Presentation layer class references Data layer class directly: " + target
	case e.ToLayer == Unknown:
		return fmt.Sprintf("%s layer class references unknown layer class: %s", title(e.FromLayer), target)
	default:
		return fmt.Sprintf("%s layer class references %s layer class: %s", title(e.FromLayer), title(e.ToLayer), target)
	}
}

func title(l Layer) string {
	if l == "" {
		return ""
	}
	return string(l[0]-'a'+'A') + string(l[1:])
}
