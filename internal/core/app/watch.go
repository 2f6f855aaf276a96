package app

import (
	"classlint/internal/core/app/helpers"
	"classlint/internal/core/config"
	"classlint/internal/core/errors"
	"classlint/internal/core/ports"
	"classlint/internal/core/watcher"
	"context"
	"log/slog"
	"slices"
	"sync"
)

// watchService re-runs the analysis whenever build outputs change and, when
// the app has a config path, whenever the config file changes.
type watchService struct {
	app     *App
	service *analysisService

	mu         sync.Mutex
	handlers   []func(ports.WatchUpdate)
	fsWatcher  *watcher.Watcher
	cfgWatcher *config.Watcher
	ctx        context.Context
	req        ports.RunRequest
	running    bool

	// runMu serializes re-analysis so updates arrive in order.
	runMu sync.Mutex
}

var _ ports.WatchService = (*watchService)(nil)

func newWatchService(app *App, service *analysisService) *watchService {
	return &watchService{app: app, service: service}
}

func (s *watchService) Subscribe(handler func(ports.WatchUpdate)) {
	if handler == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers, handler)
}

// Start runs one analysis, emits it, then watches the inputs until Stop or
// until ctx is done.
func (s *watchService) Start(ctx context.Context, req ports.RunRequest) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New(errors.CodeValidationError, "watch already running")
	}
	s.running = true
	s.ctx = ctx
	s.req = req
	s.mu.Unlock()

	cfg := s.app.Config()
	roots := req.Paths
	if len(roots) == 0 {
		roots = cfg.Inputs
	}
	if len(roots) == 0 {
		s.setStopped()
		return errors.New(errors.CodeValidationError, "no inputs to watch")
	}
	roots = helpers.UniqueScanRoots(roots)

	s.analyze(nil)

	w, err := watcher.NewWatcher(watcher.Options{
		Debounce:     cfg.Watch.Debounce,
		ExcludeFiles: cfg.Exclude.Files,
		MaxRate:      cfg.Watch.MaxRate,
		Burst:        cfg.Watch.Burst,
	}, s.analyze)
	if err != nil {
		s.setStopped()
		return err
	}
	if err := w.Watch(roots); err != nil {
		_ = w.Close()
		s.setStopped()
		return err
	}

	var cw *config.Watcher
	if s.app.ConfigPath != "" {
		cw = config.NewWatcher(s.app.ConfigPath, s.reload)
		if err := cw.Start(ctx); err != nil {
			slog.Warn("config reload disabled", "path", s.app.ConfigPath, "error", err)
			cw = nil
		}
	}

	s.mu.Lock()
	s.fsWatcher = w
	s.cfgWatcher = cw
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		_ = s.Stop()
	}()
	slog.Info("watching for changes", "roots", roots)
	return nil
}

func (s *watchService) reload(cfg *config.Config) {
	if err := s.app.Reconfigure(cfg); err != nil {
		slog.Warn("config reload rejected", "error", err)
		return
	}
	s.mu.Lock()
	if s.fsWatcher != nil {
		s.fsWatcher.SetDebounce(cfg.Watch.Debounce)
	}
	s.mu.Unlock()
	slog.Info("config reloaded")
	s.analyze([]string{s.app.ConfigPath})
}

func (s *watchService) analyze(changed []string) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	s.mu.Lock()
	ctx, req := s.ctx, s.req
	handlers := slices.Clone(s.handlers)
	s.mu.Unlock()
	if ctx == nil || ctx.Err() != nil {
		return
	}

	if len(changed) > 0 {
		slog.Info("change detected, re-analyzing", "files", len(changed))
	}
	result, err := s.service.Run(ctx, req)
	if err != nil {
		slog.Warn("re-analysis failed", "error", err)
	}
	update := ports.WatchUpdate{Result: result, Changed: changed, Err: err}
	for _, h := range handlers {
		h(update)
	}
}

func (s *watchService) setStopped() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

func (s *watchService) Stop() error {
	s.mu.Lock()
	w, cw := s.fsWatcher, s.cfgWatcher
	s.fsWatcher, s.cfgWatcher = nil, nil
	s.running = false
	s.mu.Unlock()

	if cw != nil {
		cw.Stop()
	}
	if w != nil {
		return w.Close()
	}
	return nil
}
