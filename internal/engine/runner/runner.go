// Package runner drives the registered checks over an analyzed class set.
package runner

import (
	"classlint/internal/engine/architecture"
	"classlint/internal/engine/checks"
	"classlint/internal/engine/model"
	"classlint/internal/shared/observability"
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	// Workers bounds the classes analyzed concurrently. Zero means GOMAXPROCS.
	Workers int
}

type Runner struct {
	workers int
}

func New(opts Options) *Runner {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Runner{workers: workers}
}

// Result is the aggregated outcome of one analysis. Findings are ordered by
// class input order, then by check order.
type Result struct {
	Findings []checks.Finding
	Classes  int
	// Checks names the checks that ran, in dispatch order.
	Checks   []string
	Duration time.Duration
}

// CountByCheck tallies findings per check name.
func (r Result) CountByCheck() map[string]int {
	out := make(map[string]int)
	for _, f := range r.Findings {
		out[f.CheckName]++
	}
	return out
}

// Analyze runs every selected check against every class. Checks that need
// the whole set classified get that pass completed before any class is
// dispatched. Only cancellation is returned as an error; a failing check
// affects nothing but its own (check, class) pair.
func (r *Runner) Analyze(ctx context.Context, classes []*model.Class, resolver checks.Resolver, selected []checks.Check) (Result, error) {
	ctx, span := observability.Tracer.Start(ctx, "runner.Analyze", trace.WithAttributes(
		attribute.Int("classes", len(classes)),
		attribute.Int("checks", len(selected)),
	))
	defer span.End()

	start := time.Now()
	layers := classifyAll(classes, selected)

	perClass := make([][]checks.Finding, len(classes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, class := range classes {
		if class == nil {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			cx := &checks.Context{Resolver: resolver, Layers: layers}
			var found []checks.Finding
			for _, check := range selected {
				found = append(found, checks.RunWithContext(check, class, cx)...)
			}
			perClass[i] = found
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return Result{}, fmt.Errorf("analyze: %w", err)
	}

	result := Result{Classes: len(classes), Duration: time.Since(start)}
	for _, check := range selected {
		result.Checks = append(result.Checks, check.Name())
	}
	for _, found := range perClass {
		result.Findings = append(result.Findings, found...)
	}
	observability.AnalysisDuration.WithLabelValues("analyze").Observe(result.Duration.Seconds())
	observability.AnalyzedClasses.Set(float64(len(classes)))
	span.SetAttributes(attribute.Int("findings", len(result.Findings)))
	slog.Debug("analysis finished",
		"classes", result.Classes,
		"checks", len(result.Checks),
		"findings", len(result.Findings),
		"duration", result.Duration)
	return result, nil
}

// classifyAll is the barrier: every set-level check classifies the complete
// input before linking starts. Classifications of several such checks merge.
func classifyAll(classes []*model.Class, selected []checks.Check) architecture.Layers {
	var layers architecture.Layers
	for _, check := range selected {
		sc, ok := check.(checks.SetCheck)
		if !ok {
			continue
		}
		start := time.Now()
		classified := sc.Classify(classes)
		observability.AnalysisDuration.WithLabelValues("classify").Observe(time.Since(start).Seconds())
		if layers == nil {
			layers = classified
			continue
		}
		for name, layer := range classified {
			layers[name] = layer
		}
	}
	return layers
}
