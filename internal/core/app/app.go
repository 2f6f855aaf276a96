// Package app wires discovery, loading, analysis, history and reporting into
// the use cases the driving adapters call.
package app

import (
	"classlint/internal/core/app/helpers"
	"classlint/internal/core/config"
	"classlint/internal/core/errors"
	"classlint/internal/core/ports"
	"classlint/internal/data/history"
	"classlint/internal/engine/checks"
	"classlint/internal/shared/util"
	"fmt"
	"log/slog"
	"os"
	"sync"
)

// Dependencies overrides the adapters New would build. Nil fields fall back
// to the defaults.
type Dependencies struct {
	Loader  ports.ClassLoader
	History ports.HistoryStore
}

type App struct {
	// ConfigPath is the file watch mode reloads; empty disables reloading.
	ConfigPath string

	mu           sync.RWMutex
	cfg          *config.Config
	paths        config.ResolvedPaths
	registry     *checks.Registry
	excludeFiles []util.Pattern
	loader       ports.ClassLoader
	customLoader bool

	historyMu    sync.Mutex
	history      ports.HistoryStore
	historyStore *history.Store

	watchOnce sync.Once
	watch     *watchService
}

func New(cfg *config.Config) (*App, error) {
	return NewWithDependencies(cfg, Dependencies{})
}

func NewWithDependencies(cfg *config.Config, deps Dependencies) (*App, error) {
	if cfg == nil {
		return nil, errors.New(errors.CodeValidationError, "config is required")
	}
	a := &App{history: deps.History}
	if deps.Loader != nil {
		a.loader = deps.Loader
		a.customLoader = true
	}
	if err := a.Reconfigure(cfg); err != nil {
		return nil, err
	}
	return a, nil
}

// Reconfigure swaps in a new configuration. Runs already in flight keep the
// settings they started with.
func (a *App) Reconfigure(cfg *config.Config) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}
	paths, err := config.ResolvePaths(cfg, cwd)
	if err != nil {
		return err
	}
	opts, err := helpers.CheckOptionsFromConfig(cfg)
	if err != nil {
		return errors.Wrap(err, errors.CodeValidationError, "check options")
	}
	registry, err := checks.DefaultRegistry(opts)
	if err != nil {
		return errors.Wrap(err, errors.CodeValidationError, "check registry")
	}
	excludeFiles, err := util.CompilePatterns(cfg.Exclude.Files)
	if err != nil {
		return errors.Wrap(err, errors.CodeValidationError, "exclude.files")
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.customLoader {
		loader, err := NewLoader(LoaderOptions{
			ExcludeClasses: cfg.Exclude.Classes,
			Workers:        cfg.Analysis.Workers,
		})
		if err != nil {
			return err
		}
		a.loader = loader
	}
	a.cfg = cfg
	a.paths = paths
	a.registry = registry
	a.excludeFiles = excludeFiles
	return nil
}

// Config returns the active configuration. Callers must not modify it.
func (a *App) Config() *config.Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cfg
}

func (a *App) Paths() config.ResolvedPaths {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.paths
}

func (a *App) ProjectKey() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return config.ProjectKey(a.cfg, a.paths)
}

func (a *App) Registry() *checks.Registry {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.registry
}

type snapshot struct {
	cfg          *config.Config
	paths        config.ResolvedPaths
	registry     *checks.Registry
	excludeFiles []util.Pattern
	loader       ports.ClassLoader
}

func (a *App) snapshot() snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return snapshot{
		cfg:          a.cfg,
		paths:        a.paths,
		registry:     a.registry,
		excludeFiles: a.excludeFiles,
		loader:       a.loader,
	}
}

// historyStoreFor returns the run history, opening the SQLite store on first
// use.
func (a *App) historyStoreFor(snap snapshot) (ports.HistoryStore, error) {
	a.historyMu.Lock()
	defer a.historyMu.Unlock()
	if a.history != nil {
		return a.history, nil
	}
	store, err := history.OpenWithBusyTimeout(snap.paths.DBPath, snap.cfg.DB.BusyTimeout)
	if err != nil {
		if history.IsCorruptError(err) {
			return nil, errors.AddContext(errors.Wrap(err, errors.CodeInternal, "history database is corrupt"), errors.CtxPath, snap.paths.DBPath)
		}
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeInternal, "open history"), errors.CtxPath, snap.paths.DBPath)
	}
	slog.Debug("history store opened", "path", store.Path())
	a.historyStore = store
	a.history = history.NewAdapter(store)
	return a.history, nil
}

func (a *App) historyOpen() bool {
	a.historyMu.Lock()
	defer a.historyMu.Unlock()
	return a.history != nil
}

func (a *App) AnalysisService() ports.AnalysisService {
	return &analysisService{app: a}
}

// Close stops watch mode and releases the history store.
func (a *App) Close() error {
	var first error
	if a.watch != nil {
		first = a.watch.Stop()
	}
	a.historyMu.Lock()
	defer a.historyMu.Unlock()
	if a.historyStore != nil {
		if err := a.historyStore.Close(); err != nil && first == nil {
			first = err
		}
		a.historyStore = nil
		a.history = nil
	}
	return first
}
