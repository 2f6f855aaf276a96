package checks

import (
	"classlint/internal/engine/model"
	"sync"
	"testing"
)

// mapResolver serves classes from a map and counts lookups per name.
type mapResolver struct {
	mu      sync.Mutex
	classes map[string]*model.Class
	calls   map[string]int
}

func newMapResolver(classes ...*model.Class) *mapResolver {
	r := &mapResolver{classes: make(map[string]*model.Class), calls: make(map[string]int)}
	for _, c := range classes {
		r.classes[c.Name] = c
	}
	return r
}

func (r *mapResolver) Resolve(name string) (*model.Class, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[name]++
	c, ok := r.classes[name]
	return c, ok
}

func messages(findings []Finding) []string {
	out := make([]string, 0, len(findings))
	for _, f := range findings {
		out = append(out, f.Message)
	}
	return out
}

func requireCount(t *testing.T, findings []Finding, want int) {
	t.Helper()
	if len(findings) != want {
		t.Fatalf("expected %d findings, got %d: %v", want, len(findings), messages(findings))
	}
}
