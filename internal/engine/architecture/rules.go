// Package architecture assigns classes to presentation, domain and data
// layers and validates the references between them.
package architecture

import (
	"classlint/internal/engine/model"
	"classlint/internal/shared/util"
	"fmt"
	"sort"
	"strings"
)

type Layer string

const (
	Presentation Layer = "presentation"
	Domain       Layer = "domain"
	Data         Layer = "data"
	Unknown      Layer = "unknown"
)

// Known lists the classifiable layers in keyword precedence order.
var Known = []Layer{Presentation, Data, Domain}

func ParseLayer(s string) (Layer, error) {
	switch l := Layer(strings.ToLower(strings.TrimSpace(s))); l {
	case Presentation, Domain, Data, Unknown:
		return l, nil
	}
	return "", fmt.Errorf("unknown layer %q", s)
}

// Keywords are the case-insensitive substrings that place a class in a layer.
// Package keywords match the package path, class keywords the simple name.
type Keywords struct {
	Packages []string
	Classes  []string
}

func DefaultKeywords() map[Layer]Keywords {
	return map[Layer]Keywords{
		Presentation: {
			Packages: []string{"presentation", "controller", "view", "ui"},
			Classes:  []string{"controller", "view", "frame", "panel"},
		},
		Data: {
			Packages: []string{"persistence", "repository", "dao", "data"},
			Classes:  []string{"repository", "dao", "mapper", "query"},
		},
		Domain: {
			Packages: []string{"service", "business", "logic", "domain"},
			Classes:  []string{"service", "manager", "processor", "handler"},
		},
	}
}

// Model is the configurable part of layer classification and validation.
type Model struct {
	// Mappings pin class-name globs to layers ahead of keyword matching.
	Mappings []Mapping
	// Keywords replaces the defaults per layer when set.
	Keywords map[Layer]Keywords
	// Rules replaces the default forbidden-reference table when non-empty.
	Rules []Rule
}

type Mapping struct {
	Layer    Layer
	Patterns []string
}

// Rule lists the layers From may reference besides itself.
type Rule struct {
	Name  string
	From  Layer
	Allow []Layer
}

type layerMatcher struct {
	layer    Layer
	patterns []util.Pattern
}

// Classifier places classes into layers: explicit mappings first, the most
// specific pattern winning, then keywords in Known order.
type Classifier struct {
	mappings []layerMatcher
	keywords map[Layer]Keywords
}

func NewClassifier(m Model) (*Classifier, error) {
	c := &Classifier{keywords: DefaultKeywords()}
	for layer, kw := range m.Keywords {
		c.keywords[layer] = Keywords{
			Packages: lowerAll(kw.Packages),
			Classes:  lowerAll(kw.Classes),
		}
	}
	for _, mapping := range m.Mappings {
		matcher := layerMatcher{layer: mapping.Layer}
		for _, raw := range mapping.Patterns {
			p, err := util.CompilePattern(util.ClassPattern(raw))
			if err != nil {
				return nil, fmt.Errorf("layer %s: %w", mapping.Layer, err)
			}
			matcher.patterns = append(matcher.patterns, p)
		}
		c.mappings = append(c.mappings, matcher)
	}
	return c, nil
}

// Classify returns the layer of an internal class name.
func (c *Classifier) Classify(name string) Layer {
	if layer, ok := c.mapped(name); ok {
		return layer
	}
	pkg := strings.ToLower(model.PackageOf(name))
	simple := strings.ToLower(model.SimpleNameOf(name))
	for _, layer := range Known {
		kw := c.keywords[layer]
		if containsAny(pkg, kw.Packages) || containsAny(simple, kw.Classes) {
			return layer
		}
	}
	return Unknown
}

func (c *Classifier) mapped(name string) (Layer, bool) {
	type candidate struct {
		layer Layer
		score int
	}
	var candidates []candidate
	for _, m := range c.mappings {
		best := 0
		for _, p := range m.patterns {
			if p.Match(name) && p.Specificity() > best {
				best = p.Specificity()
			}
		}
		if best > 0 {
			candidates = append(candidates, candidate{layer: m.layer, score: best})
		}
	}
	if len(candidates) == 0 {
		return "", false
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score == candidates[j].score {
			return candidates[i].layer < candidates[j].layer
		}
		return candidates[i].score > candidates[j].score
	})
	return candidates[0].layer, true
}

// Layers is the phase-one result: every analyzed class mapped to its layer.
type Layers map[string]Layer

// ClassifyAll runs phase one over the whole analyzed set.
func ClassifyAll(c *Classifier, classes []*model.Class) Layers {
	out := make(Layers, len(classes))
	for _, class := range classes {
		if class == nil {
			continue
		}
		out[class.Name] = c.Classify(class.Name)
	}
	return out
}

func containsAny(s string, keywords []string) bool {
	if s == "" {
		return false
	}
	for _, kw := range keywords {
		if kw != "" && strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
