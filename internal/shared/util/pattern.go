package util

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// Pattern matches slash-separated names. Patterns with glob metacharacters are
// compiled with '/' as separator, so '*' stays inside one segment and '**'
// crosses segments. Plain patterns match the name itself or anything below it.
type Pattern struct {
	raw  string
	glob glob.Glob
}

func CompilePattern(raw string) (Pattern, error) {
	norm := NormalizePatternPath(raw)
	if norm == "" {
		return Pattern{}, fmt.Errorf("empty pattern %q", raw)
	}
	p := Pattern{raw: norm}
	if strings.ContainsAny(norm, "*?[]{}") {
		g, err := glob.Compile(norm, '/')
		if err != nil {
			return Pattern{}, fmt.Errorf("invalid pattern %q: %w", raw, err)
		}
		p.glob = g
	}
	return p, nil
}

// CompilePatterns compiles every pattern, stopping at the first invalid one.
func CompilePatterns(raw []string) ([]Pattern, error) {
	out := make([]Pattern, 0, len(raw))
	for _, r := range raw {
		p, err := CompilePattern(r)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (p Pattern) String() string { return p.raw }

func (p Pattern) Match(name string) bool {
	name = NormalizePatternPath(name)
	if p.glob != nil {
		return p.glob.Match(name)
	}
	return HasPathPrefix(name, p.raw)
}

// Specificity ranks competing matches; longer patterns are more specific.
func (p Pattern) Specificity() int {
	return len(p.raw)
}

// MatchAny reports whether any pattern matches name.
func MatchAny(patterns []Pattern, name string) bool {
	for _, p := range patterns {
		if p.Match(name) {
			return true
		}
	}
	return false
}

// ClassPattern converts a dotted class pattern such as "com.acme.web.**" to
// the internal slash form. Patterns already using slashes pass through.
func ClassPattern(raw string) string {
	if strings.Contains(raw, "/") {
		return raw
	}
	return strings.ReplaceAll(raw, ".", "/")
}
