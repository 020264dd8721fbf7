// Package maintenance runs periodic background tasks as Go tickers.
package maintenance

import (
	"context"
	"log/slog"
	"time"

	"github.com/albapepper/fifa-analytics/internal/cache"
	"github.com/albapepper/fifa-analytics/internal/source"
)

// Refresher reloads a dataset source in place.
type Refresher interface {
	Refresh(ctx context.Context, src string) (*cache.Snapshot, error)
}

// Config controls maintenance task intervals. Zero duration disables a task.
type Config struct {
	Source          string
	RefreshInterval time.Duration // Reload the dataset source
	RefreshTimeout  time.Duration // Bound on one reload
}

// Start launches all configured maintenance tickers. Blocks until ctx is
// cancelled. Intended to be called with `go`.
func Start(ctx context.Context, store Refresher, cfg Config, logger *slog.Logger) {
	if cfg.RefreshInterval <= 0 {
		logger.Info("Maintenance tickers disabled")
		return
	}
	logger.Info("Maintenance tickers started",
		"refresh", cfg.RefreshInterval,
		"source", source.Redact(cfg.Source))

	t := time.NewTicker(cfg.RefreshInterval)
	defer t.Stop()

	runLoop(ctx, t.C, func() { refresh(ctx, store, cfg, logger) })
	logger.Info("Maintenance tickers stopped")
}

func runLoop(ctx context.Context, ch <-chan time.Time, fn func()) {
	for {
		select {
		case <-ch:
			fn()
		case <-ctx.Done():
			return
		}
	}
}

// --------------------------------------------------------------------------
// Task implementations
// --------------------------------------------------------------------------

// refresh reloads the dataset. A failed reload keeps serving the previous
// dataset.
func refresh(ctx context.Context, store Refresher, cfg Config, logger *slog.Logger) {
	if cfg.RefreshTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.RefreshTimeout)
		defer cancel()
	}
	start := time.Now()
	snap, err := store.Refresh(ctx, cfg.Source)
	dur := time.Since(start).Round(time.Millisecond)
	if err != nil {
		logger.Warn("Refresh: dataset reload failed, keeping previous dataset",
			"duration", dur, "error", err)
		return
	}
	logger.Info("Refresh: dataset reloaded",
		"load_id", snap.ID, "rows", snap.Dataset.Len(), "duration", dur)
}
