// Package dataset holds the preprocessed incident snapshot shared by every
// dashboard view.
package dataset

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/couchcryptid/crime-insights-service/internal/domain"
	"github.com/couchcryptid/crime-insights-service/internal/observability"
)

// Source fetches the raw rows of the incident export.
type Source interface {
	Identity() string
	Fetch(ctx context.Context) ([]domain.RawRecord, error)
}

// Store memoizes the loaded Table per source identity for a fixed TTL.
// Concurrent first loads collapse into a single fetch. Expiry only schedules
// a refresh: the last good Table keeps serving until a load succeeds.
type Store struct {
	source    Source
	snapshots *gocache.Cache
	group     singleflight.Group
	current   atomic.Pointer[domain.Table]
	metrics   *observability.Metrics
	logger    *slog.Logger

	mu           sync.Mutex
	onInvalidate []func(identity string)
}

// NewStore creates a store whose snapshots expire after ttl.
func NewStore(source Source, ttl time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Store {
	return &Store{
		source: source,
		// No janitor: a single key is checked for expiry on every Get.
		snapshots: gocache.New(ttl, 0),
		metrics:   metrics,
		logger:    logger,
	}
}

// Identity returns the identity of the underlying source.
func (s *Store) Identity() string {
	return s.source.Identity()
}

// OnInvalidate registers fn to run whenever a snapshot is dropped or replaced.
func (s *Store) OnInvalidate(fn func(identity string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onInvalidate = append(s.onInvalidate, fn)
}

// Get returns the current snapshot, loading it if absent or expired. When that
// load fails, a previously loaded snapshot is returned instead of the error.
func (s *Store) Get(ctx context.Context) (*domain.Table, error) {
	id := s.source.Identity()
	if v, ok := s.snapshots.Get(id); ok {
		return v.(*domain.Table), nil
	}

	v, err, _ := s.group.Do(id, func() (any, error) {
		if v, ok := s.snapshots.Get(id); ok {
			return v, nil
		}
		// The shared load outlives any single caller's cancellation.
		table, err := s.load(context.WithoutCancel(ctx), id)
		if err != nil {
			return nil, err
		}
		return table, nil
	})
	if err != nil {
		// Also covers joining a Reload that failed.
		if prev := s.current.Load(); prev != nil {
			return prev, nil
		}
		return nil, err
	}
	return v.(*domain.Table), nil
}

// Reload fetches a fresh snapshot and swaps it in. On failure the error is
// returned and the previous snapshot, if any, keeps serving.
func (s *Store) Reload(ctx context.Context) (*domain.Table, error) {
	id := s.source.Identity()
	v, err, _ := s.group.Do(id, func() (any, error) {
		table, err := s.load(context.WithoutCancel(ctx), id)
		if err != nil {
			return nil, err
		}
		return table, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Table), nil
}

// Invalidate marks the current snapshot stale. The next Get reloads, falling
// back to the stale snapshot if that load fails.
func (s *Store) Invalidate() {
	id := s.source.Identity()
	s.snapshots.Delete(id)
	s.notifyInvalidate(id)
}

// CheckReadiness returns nil once a snapshot has been loaded.
func (s *Store) CheckReadiness(_ context.Context) error {
	if s.current.Load() == nil {
		return errors.New("incident dataset has not been loaded yet")
	}
	return nil
}

func (s *Store) load(ctx context.Context, id string) (*domain.Table, error) {
	start := time.Now()

	records, err := s.source.Fetch(ctx)
	if err != nil {
		s.loadFailed(id, "dataset fetch failed", err)
		return nil, err
	}

	table, err := domain.Preprocess(records, domain.Now())
	if err != nil {
		s.loadFailed(id, "dataset preprocess failed", err)
		return nil, err
	}

	// Aggregates of a previous snapshot no longer apply.
	s.notifyInvalidate(id)
	s.current.Store(table)
	s.snapshots.SetDefault(id, table)

	s.metrics.DatasetRows.Set(float64(table.Len()))
	s.metrics.DatasetReady.Set(1)
	s.metrics.DatasetLoadDuration.Observe(time.Since(start).Seconds())
	s.logger.Info("dataset loaded",
		"source", id,
		"rows", table.Len(),
		"duration", time.Since(start),
	)
	return table, nil
}

// loadFailed records a failed load. A previous snapshot is put back in the
// cache for another TTL so request traffic does not retry the fetch on every
// call; Warm keeps retrying on its own backoff.
func (s *Store) loadFailed(id, msg string, err error) {
	s.metrics.DatasetLoadErrors.Inc()
	prev := s.current.Load()
	if prev == nil {
		s.logger.Error(msg, "source", id, "error", err)
		return
	}
	s.snapshots.SetDefault(id, prev)
	s.logger.Error(msg, "source", id, "error", err,
		"serving_loaded_at", prev.LoadedAt(),
	)
}

func (s *Store) notifyInvalidate(id string) {
	s.mu.Lock()
	hooks := append([]func(string){}, s.onInvalidate...)
	s.mu.Unlock()
	for _, fn := range hooks {
		fn(id)
	}
}
