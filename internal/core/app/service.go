package app

import (
	"classlint/internal/core/config"
	"classlint/internal/core/errors"
	"classlint/internal/core/ports"
	"classlint/internal/data/history"
	"classlint/internal/engine/checks"
	"classlint/internal/engine/resolver"
	"classlint/internal/engine/runner"
	"classlint/internal/shared/observability"
	"context"
	stderrors "errors"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel/attribute"
)

type analysisService struct {
	app *App
}

var _ ports.AnalysisService = (*analysisService)(nil)

func NewAnalysisService(app *App) ports.AnalysisService {
	return &analysisService{app: app}
}

// Run discovers and loads the inputs, analyzes them with the selected checks
// and, when history is enabled or requested, saves the run.
func (s *analysisService) Run(ctx context.Context, req ports.RunRequest) (ports.RunResult, error) {
	ctx, span := observability.Tracer.Start(ctx, "analysisService.Run")
	defer span.End()

	if err := ctx.Err(); err != nil {
		return ports.RunResult{}, err
	}
	if s.app == nil {
		return ports.RunResult{}, errors.New(errors.CodeInternal, "app is required")
	}
	start := time.Now()
	snap := s.app.snapshot()
	cfg := snap.cfg

	paths := req.Paths
	if len(paths) == 0 {
		paths = cfg.Inputs
	}
	if len(paths) == 0 {
		return ports.RunResult{}, errors.New(errors.CodeValidationError, "no inputs: pass paths or set inputs in the config")
	}

	include, exclude := req.Include, req.Exclude
	if len(include) == 0 {
		include = cfg.Analysis.Include
	}
	if len(exclude) == 0 {
		exclude = cfg.Analysis.Exclude
	}
	selected, err := snap.registry.Select(include, exclude)
	if err != nil {
		return ports.RunResult{}, errors.Wrap(err, errors.CodeValidationError, "select checks")
	}

	inputs, failures := Discover(paths, snap.excludeFiles)
	loaded, err := snap.loader.Load(ctx, inputs)
	if err != nil {
		return ports.RunResult{}, errors.AddContext(err, errors.CtxOperation, "load")
	}
	failures = append(failures, loaded.Failures...)

	classpath := req.Classpath
	if len(classpath) == 0 {
		classpath = cfg.Classpath
	}
	source, closeSource := buildSource(loaded, classpath)
	defer closeSource()
	res := resolver.New(source)

	workers := req.Workers
	if workers <= 0 {
		workers = cfg.Analysis.Workers
	}
	result, err := runner.New(runner.Options{Workers: workers}).Analyze(ctx, loaded.Classes, res, selected)
	if err != nil {
		return ports.RunResult{}, errors.AddContext(err, errors.CtxOperation, "analyze")
	}

	stats := res.Stats()
	out := ports.RunResult{
		Findings:     result.Findings,
		Classes:      result.Classes,
		Checks:       result.Checks,
		LoadFailures: failures,
		Resolver:     ports.ResolverStats{Hits: stats.Hits, Loads: stats.Loads, Absent: stats.Absent},
	}

	if req.Save || cfg.DB.Enabled {
		store, err := s.app.historyStoreFor(snap)
		if err != nil {
			return ports.RunResult{}, err
		}
		key := config.ProjectKey(snap.cfg, snap.paths)
		run, err := store.Record(key, result, len(failures))
		if err != nil {
			return ports.RunResult{}, errors.AddContext(errors.Wrap(err, errors.CodeInternal, "save run"), errors.CtxOperation, "history")
		}
		out.RunID = run.ID
		if keep := cfg.DB.Retention; keep > 0 {
			if pruned, err := store.Prune(key, keep); err != nil {
				slog.Warn("failed to prune history", "project", key, "error", err)
			} else if pruned > 0 {
				slog.Debug("pruned history", "project", key, "runs", pruned)
			}
		}
	}

	out.Duration = time.Since(start)
	span.SetAttributes(
		attribute.Int("classes", out.Classes),
		attribute.Int("findings", len(out.Findings)),
		attribute.Int("load_failures", len(out.LoadFailures)),
	)
	slog.Info("analysis complete",
		"classes", out.Classes,
		"checks", len(out.Checks),
		"findings", len(out.Findings),
		"load_failures", len(out.LoadFailures),
		"resolver_loads", stats.Loads,
		"resolver_absent", stats.Absent,
		"duration", out.Duration)
	return out, nil
}

// buildSource resolves the analyzed set first, then the classpath. Classpath
// entries that do not exist are skipped with a warning.
func buildSource(loaded ports.LoadResult, classpath []string) (resolver.Source, func()) {
	chain := resolver.ChainSource{resolver.NewMemorySource(loaded.Classes...)}
	existing := make([]string, 0, len(classpath))
	for _, entry := range classpath {
		if _, err := os.Stat(entry); err != nil {
			slog.Warn("classpath entry skipped", "path", entry, "error", err)
			continue
		}
		existing = append(existing, entry)
	}
	if len(existing) == 0 {
		return chain, func() {}
	}
	cp, err := resolver.NewClasspathSource(existing)
	if err != nil {
		slog.Warn("classpath unavailable; resolving against analyzed classes only", "error", err)
		return chain, func() {}
	}
	return append(chain, cp), func() {
		if err := cp.Close(); err != nil {
			slog.Debug("close classpath", "error", err)
		}
	}
}

func (s *analysisService) Checks() []checks.Entry {
	return s.app.Registry().Entries()
}

// History lists the newest runs of the current project. With a run ID it
// returns that run and its per-check counts; otherwise the counts are for
// the newest run and the trend covers every listed run.
func (s *analysisService) History(ctx context.Context, req ports.HistoryRequest) (ports.HistoryResult, error) {
	if err := ctx.Err(); err != nil {
		return ports.HistoryResult{}, err
	}
	snap := s.app.snapshot()
	store, err := s.app.historyStoreFor(snap)
	if err != nil {
		return ports.HistoryResult{}, err
	}

	if req.RunID != "" {
		run, err := store.LoadRun(req.RunID)
		if err != nil {
			if stderrors.Is(err, history.ErrRunNotFound) {
				return ports.HistoryResult{}, errors.AddContext(errors.Wrap(err, errors.CodeNotFound, "run not found"), "run_id", req.RunID)
			}
			return ports.HistoryResult{}, err
		}
		counts, err := store.CountsByCheck(run.ID)
		if err != nil {
			return ports.HistoryResult{}, err
		}
		return ports.HistoryResult{Runs: []history.Run{run}, Counts: counts}, nil
	}

	key := config.ProjectKey(snap.cfg, snap.paths)
	runs, err := store.ListRuns(key, req.Limit)
	if err != nil {
		return ports.HistoryResult{}, err
	}
	out := ports.HistoryResult{Runs: runs}
	if len(runs) == 0 {
		return out, nil
	}
	if out.Counts, err = store.CountsByCheck(runs[0].ID); err != nil {
		return ports.HistoryResult{}, err
	}
	trend, err := history.BuildTrendReport(key, runs)
	if err != nil {
		return ports.HistoryResult{}, err
	}
	out.Trend = &trend
	return out, nil
}

func (s *analysisService) WatchService() ports.WatchService {
	s.app.watchOnce.Do(func() {
		s.app.watch = newWatchService(s.app, s)
	})
	return s.app.watch
}
