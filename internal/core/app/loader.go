package app

import (
	"classlint/internal/core/errors"
	"classlint/internal/core/ports"
	"classlint/internal/engine/classfile"
	"classlint/internal/engine/model"
	"classlint/internal/shared/observability"
	"classlint/internal/shared/util"
	"context"
	"log/slog"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

type LoaderOptions struct {
	// ExcludeClasses are dotted or slashed class-name globs dropped after
	// parsing.
	ExcludeClasses []string
	Workers        int
}

// Loader parses inputs concurrently and returns classes in input order.
type Loader struct {
	exclude []util.Pattern
	workers int
}

var _ ports.ClassLoader = (*Loader)(nil)

func NewLoader(opts LoaderOptions) (*Loader, error) {
	raw := make([]string, 0, len(opts.ExcludeClasses))
	for _, p := range opts.ExcludeClasses {
		raw = append(raw, util.ClassPattern(p))
	}
	exclude, err := util.CompilePatterns(raw)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeValidationError, "exclude.classes")
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Loader{exclude: exclude, workers: workers}, nil
}

type loaded struct {
	classes  []*model.Class
	failures []ports.LoadFailure
}

// Load never fails on a bad input; the input is recorded as a failure and
// the rest are loaded. When two inputs define the same class the first one
// wins. Only cancellation is returned as an error.
func (l *Loader) Load(ctx context.Context, inputs []ports.Input) (ports.LoadResult, error) {
	ctx, span := observability.Tracer.Start(ctx, "loader.Load", trace.WithAttributes(
		attribute.Int("inputs", len(inputs)),
	))
	defer span.End()

	perInput := make([]loaded, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)
	for i, in := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			switch in.Kind {
			case ports.InputJar:
				perInput[i] = l.loadJar(gctx, in.Path)
			default:
				perInput[i] = l.loadClass(in.Path)
			}
			observability.LoadDuration.WithLabelValues(string(in.Kind)).Observe(time.Since(start).Seconds())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return ports.LoadResult{}, err
	}

	var result ports.LoadResult
	seen := make(map[string]string)
	for _, r := range perInput {
		for _, c := range r.classes {
			if first, dup := seen[c.Name]; dup {
				slog.Debug("duplicate class ignored", "class", c.Name, "path", c.Origin, "first", first)
				continue
			}
			seen[c.Name] = c.Origin
			result.Classes = append(result.Classes, c)
		}
		result.Failures = append(result.Failures, r.failures...)
	}

	observability.ClassesLoaded.Add(float64(len(result.Classes)))
	observability.LoadFailuresTotal.Add(float64(len(result.Failures)))
	span.SetAttributes(
		attribute.Int("classes", len(result.Classes)),
		attribute.Int("failures", len(result.Failures)),
	)
	return result, nil
}

func (l *Loader) loadClass(path string) loaded {
	c, err := classfile.ParseFile(path)
	if err != nil {
		slog.Warn("class file rejected", "path", path, "error", err)
		return loaded{failures: []ports.LoadFailure{{Path: path, Error: err.Error()}}}
	}
	if l.excluded(c) {
		return loaded{}
	}
	return loaded{classes: []*model.Class{c}}
}

func (l *Loader) loadJar(ctx context.Context, path string) loaded {
	jar, err := classfile.OpenJar(path)
	if err != nil {
		slog.Warn("jar rejected", "path", path, "error", err)
		return loaded{failures: []ports.LoadFailure{{Path: path, Error: err.Error()}}}
	}
	defer jar.Close()

	var out loaded
	for _, name := range jar.Names() {
		if ctx.Err() != nil {
			break
		}
		if util.MatchAny(l.exclude, name) {
			continue
		}
		c, err := jar.Load(name)
		if err != nil {
			entry := path + "!" + name + ".class"
			slog.Warn("jar entry rejected", "path", entry, "error", err)
			out.failures = append(out.failures, ports.LoadFailure{Path: entry, Error: err.Error()})
			continue
		}
		out.classes = append(out.classes, c)
	}
	return out
}

func (l *Loader) excluded(c *model.Class) bool {
	return len(l.exclude) > 0 && util.MatchAny(l.exclude, c.Name)
}
