// Package resolver provides the run-scoped class lookup used by
// hierarchy-aware checks.
package resolver

import (
	"classlint/internal/core/errors"
	"classlint/internal/engine/model"
	"classlint/internal/shared/observability"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// Resolver memoizes name lookups against a Source. Every outcome is cached
// for the life of the resolver, including failures, so a class that cannot
// be loaded is attempted once. Concurrent lookups of the same name share a
// single load.
type Resolver struct {
	source Source

	mu    sync.RWMutex
	cache map[string]*model.Class // nil marks an absent class

	group singleflight.Group

	hits   atomic.Int64
	loads  atomic.Int64
	absent atomic.Int64
}

type Stats struct {
	Hits   int64
	Loads  int64
	Absent int64
	Cached int
}

func New(source Source) *Resolver {
	return &Resolver{source: source, cache: make(map[string]*model.Class)}
}

// Resolve returns the class and true, or nil and false when it is
// unavailable. Unavailability is never an error for callers.
func (r *Resolver) Resolve(name string) (*model.Class, bool) {
	if name == "" {
		return nil, false
	}
	if c, ok := r.lookup(name); ok {
		r.hits.Add(1)
		observability.ResolverLookups.WithLabelValues("hit").Inc()
		return c, c != nil
	}

	v, _, _ := r.group.Do(name, func() (interface{}, error) {
		if c, ok := r.lookup(name); ok {
			return c, nil
		}
		c := r.load(name)
		r.mu.Lock()
		r.cache[name] = c
		r.mu.Unlock()
		return c, nil
	})
	c, _ := v.(*model.Class)
	return c, c != nil
}

func (r *Resolver) lookup(name string) (*model.Class, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.cache[name]
	return c, ok
}

func (r *Resolver) load(name string) *model.Class {
	if r.source == nil {
		r.markAbsent(name, errors.New(errors.CodeResolutionFailure, "no class source"))
		return nil
	}
	c, err := r.source.Load(name)
	if err != nil || c == nil {
		if err == nil {
			err = errors.New(errors.CodeResolutionFailure, "source returned no class")
		}
		r.markAbsent(name, err)
		return nil
	}
	r.loads.Add(1)
	observability.ResolverLookups.WithLabelValues("loaded").Inc()
	return c
}

func (r *Resolver) markAbsent(name string, err error) {
	r.absent.Add(1)
	observability.ResolverLookups.WithLabelValues("absent").Inc()
	if !errors.IsCode(err, errors.CodeNotFound) {
		err = errors.Wrap(err, errors.CodeResolutionFailure, "load failed")
	}
	slog.Debug("class unavailable", "class", name, "error", err)
}

func (r *Resolver) Stats() Stats {
	r.mu.RLock()
	cached := len(r.cache)
	r.mu.RUnlock()
	return Stats{
		Hits:   r.hits.Load(),
		Loads:  r.loads.Load(),
		Absent: r.absent.Load(),
		Cached: cached,
	}
}
