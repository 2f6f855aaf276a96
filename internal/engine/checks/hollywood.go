package checks

import (
	"classlint/internal/engine/bytecode"
	"classlint/internal/engine/model"
	"fmt"
	"strings"
)

// HollywoodOptions holds the naming keywords that place classes on either
// side of a "don't call us, we'll call you" boundary.
type HollywoodOptions struct {
	// LowLevel substrings mark implementation classes.
	LowLevel []string
	// Framework substrings mark framework classes.
	Framework []string
	// HighLevel suffixes mark orchestrating classes.
	HighLevel []string
	// Template substrings and prefixes mark template-method base classes.
	Template []string
}

func DefaultHollywoodOptions() HollywoodOptions {
	return HollywoodOptions{
		LowLevel:  []string{"Impl", "Concrete", "Default", "Simple", "Basic"},
		Framework: []string{"Abstract", "Base", "Framework", "Manager", "Controller", "Handler", "Template"},
		HighLevel: []string{"Manager", "Controller", "Service", "Facade", "Coordinator"},
		Template:  []string{"Template", "Abstract", "Base"},
	}
}

var platformPrefixes = []string{"java/", "javax/", "sun/", "com/sun/"}

// Hollywood flags implementation classes that call up into framework or
// orchestrating classes, and subclasses that invoke template-method steps of
// their base class directly.
type Hollywood struct {
	opts HollywoodOptions
}

func NewHollywood(opts HollywoodOptions) *Hollywood {
	def := DefaultHollywoodOptions()
	if len(opts.LowLevel) == 0 {
		opts.LowLevel = def.LowLevel
	}
	if len(opts.Framework) == 0 {
		opts.Framework = def.Framework
	}
	if len(opts.HighLevel) == 0 {
		opts.HighLevel = def.HighLevel
	}
	if len(opts.Template) == 0 {
		opts.Template = def.Template
	}
	return &Hollywood{opts: opts}
}

func (h *Hollywood) Name() string       { return "HollywoodPrinciple" }
func (h *Hollywood) Category() Category { return Principle }
func (h *Hollywood) Description() string {
	return "Low-level classes calling up into framework or high-level classes instead of being called by them."
}

func (h *Hollywood) Run(class *model.Class, _ *Context) []Finding {
	if class.IsInterface() || class.IsAbstract() {
		return nil
	}
	lowLevel := containsAnyOf(class.SimpleName(), h.opts.LowLevel)
	template := class.HasSuper() && h.isTemplate(class.Super)
	if !lowLevel && !template {
		return nil
	}

	var findings []Finding
	reported := make(map[string]bool)
	for _, m := range class.Methods {
		if m.IsConstructor() || m.IsInitializer() {
			continue
		}
		for i, in := range m.Instructions {
			if in.Category() != bytecode.CategoryMethodCall || in.Owner == "" ||
				in.Name == model.ConstructorName || in.Owner == class.Name || isPlatform(in.Owner) {
				continue
			}
			key := m.Name + "\x00" + in.Owner + "\x00" + in.Name
			if reported[key] {
				continue
			}
			callee := simpleName(in.Owner)
			var msg string
			switch {
			case lowLevel && (containsAnyOf(callee, h.opts.Framework) || hasAnySuffix(callee, h.opts.HighLevel)):
				msg = fmt.Sprintf("Low-level class '%s' calls high-level component '%s.%s' from method '%s'. Let the framework call into the implementation instead.",
					class.SimpleName(), callee, in.Name, m.Name)
			case template && in.Op == bytecode.OpInvokespecial && in.Owner == class.Super:
				msg = fmt.Sprintf("Method '%s' in class '%s' calls template method '%s' of base class '%s' directly.",
					m.Name, class.SimpleName(), in.Name, callee)
			default:
				continue
			}
			reported[key] = true
			findings = append(findings, newFinding(h, methodLocation(class, m, m.LineAt(i)), msg))
		}
	}
	return findings
}

func (h *Hollywood) isTemplate(name string) bool {
	simple := simpleName(name)
	for _, kw := range h.opts.Template {
		if kw == "Template" && strings.Contains(simple, kw) {
			return true
		}
		if strings.HasPrefix(simple, kw) {
			return true
		}
	}
	return false
}

func isPlatform(owner string) bool {
	for _, p := range platformPrefixes {
		if strings.HasPrefix(owner, p) {
			return true
		}
	}
	return false
}

func containsAnyOf(s string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func hasAnySuffix(s string, suffixes []string) bool {
	for _, suf := range suffixes {
		if suf != "" && strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}
