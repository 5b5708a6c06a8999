package core

// scheduler.go runs background maintenance for the run store.
//
// The retention job deletes runs older than RetentionConfig.MaxAge. It runs
// once on start and then every CheckInterval until the context ends. A
// failed pass is logged and retried on the next tick.

import (
	"context"
	"log/slog"
	"time"
)

// RetentionConfig controls run retention. A zero MaxAge disables it.
type RetentionConfig struct {
	MaxAge        time.Duration // Runs created before now-MaxAge are deleted
	CheckInterval time.Duration // How often to run (default: 1h)
}

// RunPruner is implemented by run stores that can delete old runs.
type RunPruner interface {
	PruneRuns(ctx context.Context, before time.Time) (int64, error)
}

// StartRetentionScheduler blocks, pruning old runs until ctx is cancelled.
// It returns immediately when retention is disabled or the store cannot
// prune.
func (s *Service) StartRetentionScheduler(ctx context.Context, cfg RetentionConfig) {
	pruner, ok := s.store.(RunPruner)
	if cfg.MaxAge <= 0 || !ok {
		return
	}
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = time.Hour
	}

	slog.Info("retention scheduler started",
		"max_age", cfg.MaxAge.String(),
		"check_interval", cfg.CheckInterval.String(),
	)

	s.runRetentionJob(ctx, pruner, cfg.MaxAge)

	ticker := time.NewTicker(cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("retention scheduler stopped")
			return
		case <-ticker.C:
			s.runRetentionJob(ctx, pruner, cfg.MaxAge)
		}
	}
}

// runRetentionJob performs one prune pass and returns the number of runs
// deleted.
func (s *Service) runRetentionJob(ctx context.Context, pruner RunPruner, maxAge time.Duration) int64 {
	start := time.Now()
	cutoff := s.now().Add(-maxAge)

	pruned, err := pruner.PruneRuns(ctx, cutoff)
	if err != nil {
		slog.Error("run retention failed", "error", err)
		return 0
	}
	slog.Info("pruned old runs",
		"runs_pruned", pruned,
		"cutoff", cutoff.UTC().Format(time.RFC3339),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return pruned
}
