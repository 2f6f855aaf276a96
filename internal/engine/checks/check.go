// Package checks holds the detection algorithms and the registry drivers use
// to select and run them.
package checks

import (
	"classlint/internal/engine/architecture"
	"classlint/internal/engine/model"
	"classlint/internal/shared/observability"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"
)

// Check inspects one class. Implementations must not mutate the class and
// must treat classes the resolver cannot produce as absent.
type Check interface {
	Name() string
	Category() Category
	Description() string
	Run(class *model.Class, cx *Context) []Finding
}

// SetCheck is a check that needs the whole analyzed set classified before
// any single class can be judged. Drivers call Classify once over the full
// set and hand the result to every Run through Context.Layers.
type SetCheck interface {
	Check
	Classify(classes []*model.Class) architecture.Layers
}

// Resolver looks classes up by internal name.
type Resolver interface {
	Resolve(name string) (*model.Class, bool)
}

type Context struct {
	Resolver Resolver
	// Layers is the classify-all result, nil when the driver ran no
	// classification pass.
	Layers architecture.Layers
}

func (cx *Context) resolve(name string) (*model.Class, bool) {
	if cx == nil || cx.Resolver == nil || name == "" {
		return nil, false
	}
	return cx.Resolver.Resolve(name)
}

// Run executes one check against one class.
func Run(check Check, class *model.Class, resolver Resolver) []Finding {
	return RunWithContext(check, class, &Context{Resolver: resolver})
}

// RunWithContext is Run with a prepared context. A panicking check yields no
// findings for this class; the panic is logged and counted.
func RunWithContext(check Check, class *model.Class, cx *Context) (findings []Finding) {
	if check == nil || class == nil {
		return nil
	}
	if cx == nil {
		cx = &Context{}
	}
	name := check.Name()
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			observability.CheckPanicsTotal.WithLabelValues(name).Inc()
			slog.Warn("check panicked",
				"check", name,
				"class", class.Name,
				"error", fmt.Sprint(r),
				"stack", string(debug.Stack()))
			findings = nil
			return
		}
		observability.CheckDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
		if len(findings) > 0 {
			observability.FindingsTotal.WithLabelValues(name, string(check.Category())).Add(float64(len(findings)))
		}
	}()
	return check.Run(class, cx)
}
