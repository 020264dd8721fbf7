package cache

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/albapepper/fifa-analytics/internal/dataset"
	"github.com/albapepper/fifa-analytics/internal/metrics"
	"github.com/albapepper/fifa-analytics/internal/source"
)

// LoadFunc loads and cleans the dataset named by src.
type LoadFunc func(ctx context.Context, src string) (*dataset.Dataset, dataset.CleanReport, error)

// Snapshot is one clean dataset as loaded from a source. It is immutable.
type Snapshot struct {
	ID       string
	Source   string
	Dataset  *dataset.Dataset
	Report   dataset.CleanReport
	LoadedAt time.Time
}

// Store keeps one clean dataset per source identity. Concurrent requests for
// a source that is not loaded yet share a single load. Failed loads are not
// kept, so the next request tries again.
type Store struct {
	load    LoadFunc
	enabled bool
	logger  *slog.Logger
	metrics *metrics.Metrics

	group singleflight.Group

	mu          sync.RWMutex
	entries     map[string]*Snapshot
	generations map[string]uint64
	hits        uint64
	misses      uint64
}

// NewStore creates a store. With enabled=false every Get loads afresh. m may
// be nil.
func NewStore(load LoadFunc, enabled bool, logger *slog.Logger, m *metrics.Metrics) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		load:        load,
		enabled:     enabled,
		logger:      logger,
		metrics:     m,
		entries:     make(map[string]*Snapshot),
		generations: make(map[string]uint64),
	}
}

// Get returns the dataset for src, loading it on first use.
func (s *Store) Get(ctx context.Context, src string) (*Snapshot, error) {
	if snap, ok := s.cached(src); ok {
		return snap, nil
	}

	ch := s.group.DoChan(src, func() (interface{}, error) {
		// The load outlives any single waiting request.
		return s.fill(context.WithoutCancel(ctx), src)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Snapshot), nil
	}
}

// Refresh loads src again and swaps the new dataset in. On failure the
// current dataset stays in place.
func (s *Store) Refresh(ctx context.Context, src string) (*Snapshot, error) {
	v, err, _ := s.group.Do("refresh\x00"+src, func() (interface{}, error) {
		return s.fill(ctx, src)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

// Peek returns the dataset for src if it is already loaded.
func (s *Store) Peek(src string) (*Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.entries[src]
	return snap, ok
}

// Invalidate drops the dataset for src. A load already in flight for src
// still returns to its callers but is not stored.
func (s *Store) Invalidate(src string) {
	s.mu.Lock()
	delete(s.entries, src)
	s.generations[src]++
	s.mu.Unlock()
	s.group.Forget(src)
	s.logger.Info("Dataset invalidated", "source", source.Redact(src))
}

// Stats returns store statistics.
func (s *Store) Stats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sources := make([]map[string]interface{}, 0, len(s.entries))
	for src, snap := range s.entries {
		sources = append(sources, map[string]interface{}{
			"source":    source.Redact(src),
			"load_id":   snap.ID,
			"rows":      snap.Dataset.Len(),
			"columns":   snap.Dataset.Width(),
			"loaded_at": snap.LoadedAt.UTC().Format(time.RFC3339),
		})
	}
	return map[string]interface{}{
		"enabled":  s.enabled,
		"datasets": len(s.entries),
		"hits":     s.hits,
		"misses":   s.misses,
		"sources":  sources,
	}
}

func (s *Store) cached(src string) (*Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled {
		s.misses++
		return nil, false
	}
	snap, ok := s.entries[src]
	if ok {
		s.hits++
	} else {
		s.misses++
	}
	return snap, ok
}

func (s *Store) fill(ctx context.Context, src string) (*Snapshot, error) {
	s.mu.RLock()
	gen := s.generations[src]
	s.mu.RUnlock()

	start := time.Now()
	ds, report, err := s.load(ctx, src)
	elapsed := time.Since(start)
	if err != nil {
		s.record(loadOutcome(err), elapsed, 0)
		s.logger.Error("Dataset load failed", "error", err, "duration", elapsed.Round(time.Millisecond))
		return nil, err
	}

	snap := &Snapshot{
		ID:       uuid.NewString(),
		Source:   src,
		Dataset:  ds,
		Report:   report,
		LoadedAt: time.Now(),
	}
	s.record(metrics.OutcomeOK, elapsed, ds.Len())

	if s.enabled {
		s.mu.Lock()
		if s.generations[src] == gen {
			s.entries[src] = snap
		}
		s.mu.Unlock()
	}
	s.logger.Info("Dataset ready",
		"load_id", snap.ID,
		"rows", ds.Len(),
		"columns", ds.Width(),
		"duration", elapsed.Round(time.Millisecond))
	return snap, nil
}

func (s *Store) record(outcome string, elapsed time.Duration, rows int) {
	if s.metrics != nil {
		s.metrics.RecordLoad(outcome, elapsed, rows)
	}
}

func loadOutcome(err error) string {
	switch {
	case errors.Is(err, source.ErrSourceUnavailable):
		return metrics.OutcomeUnavailable
	case errors.Is(err, source.ErrParse):
		return metrics.OutcomeParseError
	default:
		return metrics.OutcomeError
	}
}
