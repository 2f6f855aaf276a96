package checks

import (
	"classlint/internal/engine/architecture"
	"classlint/internal/engine/bytecode"
	"classlint/internal/engine/model"
	"fmt"
)

// ThreeLayerArchitecture enforces the presentation, domain and data layering.
// Drivers classify the whole analyzed set first through Classify and pass
// the result in Context.Layers; without it the check classifies the subject
// and whatever it references that the resolver can produce.
type ThreeLayerArchitecture struct {
	classifier *architecture.Classifier
	policy     architecture.Policy
}

func NewThreeLayerArchitecture(m architecture.Model) (*ThreeLayerArchitecture, error) {
	classifier, err := architecture.NewClassifier(m)
	if err != nil {
		return nil, err
	}
	return &ThreeLayerArchitecture{classifier: classifier, policy: architecture.NewPolicy(m.Rules)}, nil
}

func (t *ThreeLayerArchitecture) Name() string       { return "ThreeLayerArchitecture" }
func (t *ThreeLayerArchitecture) Category() Category { return Pattern }
func (t *ThreeLayerArchitecture) Description() string {
	return "References between presentation, domain and data classes that cross the layering in a forbidden direction."
}

func (t *ThreeLayerArchitecture) Classify(classes []*model.Class) architecture.Layers {
	return architecture.ClassifyAll(t.classifier, classes)
}

func (t *ThreeLayerArchitecture) Run(class *model.Class, cx *Context) []Finding {
	layers := cx.Layers
	if layers == nil {
		layers = t.classifyNeighbourhood(class, cx)
	}
	if _, ok := layers[class.Name]; !ok {
		return nil
	}
	var findings []Finding
	for _, e := range t.policy.Violations(architecture.Link(class, layers)) {
		findings = append(findings, newFinding(t,
			fmt.Sprintf("%s (%s)", class.DisplayName(), e.Source()),
			architecture.Describe(e)))
	}
	return findings
}

func (t *ThreeLayerArchitecture) classifyNeighbourhood(class *model.Class, cx *Context) architecture.Layers {
	set := []*model.Class{class}
	seen := map[string]bool{class.Name: true}
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		if c, ok := cx.resolve(name); ok {
			set = append(set, c)
		}
	}
	for _, f := range class.Fields {
		if ft, err := f.Type(); err == nil {
			add(ft.Referenced())
		}
	}
	for _, m := range class.Methods {
		for _, in := range m.Instructions {
			if in.Category() == bytecode.CategoryMethodCall && in.Owner != "" {
				add(bytecode.ParseOwner(in.Owner).Referenced())
			}
		}
	}
	return t.Classify(set)
}
