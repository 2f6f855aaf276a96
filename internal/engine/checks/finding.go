package checks

import (
	"classlint/internal/engine/model"
	"fmt"
	"strings"
)

type Category string

const (
	Pattern   Category = "Pattern"
	Principle Category = "Principle"
	Style     Category = "Style"
)

func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pattern":
		return Pattern, nil
	case "principle":
		return Principle, nil
	case "style":
		return Style, nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Finding is one reported violation. It holds plain strings only and keeps
// no reference to the model it was produced from.
type Finding struct {
	CheckName string   `json:"checkName"`
	Category  Category `json:"category"`
	Location  string   `json:"location"`
	Message   string   `json:"message"`
}

func (f Finding) String() string {
	return fmt.Sprintf("[%s] %s at %s: %s", strings.ToUpper(string(f.Category)), f.CheckName, f.Location, f.Message)
}

func newFinding(c Check, location, message string) Finding {
	return Finding{CheckName: c.Name(), Category: c.Category(), Location: location, Message: message}
}

// classLocation renders "com.acme.Order".
func classLocation(c *model.Class) string {
	return c.DisplayName()
}

// methodLocation renders "com.acme.Order.total" with ":line" appended when
// the line is known.
func methodLocation(c *model.Class, m *model.Method, line int) string {
	loc := c.DisplayName() + "." + m.Name
	if line > 0 {
		loc = fmt.Sprintf("%s:%d", loc, line)
	}
	return loc
}

func simpleName(internal string) string {
	return model.SimpleNameOf(internal)
}

func dotted(internal string) string {
	return strings.ReplaceAll(internal, "/", ".")
}
