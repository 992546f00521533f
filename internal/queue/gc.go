package queue

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const sweepTimeout = 2 * time.Minute

// GarbageCollector keeps the auth event DLQ bounded by dropping dead letters
// older than the retention window.
type GarbageCollector struct {
	purger    DLQPurger
	interval  time.Duration
	retention time.Duration
	logger    *zap.Logger
	purged    atomic.Int64
}

// NewGarbageCollector creates a collector. A nil purger makes every sweep a no-op.
func NewGarbageCollector(purger DLQPurger, interval, retention time.Duration, logger *zap.Logger) *GarbageCollector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GarbageCollector{
		purger:    purger,
		interval:  interval,
		retention: retention,
		logger:    logger,
	}
}

// Start sweeps once immediately, then every interval until ctx is done.
// It always returns ctx.Err().
func (gc *GarbageCollector) Start(ctx context.Context) error {
	gc.logger.Info("dlq_gc_started",
		zap.Duration("interval", gc.interval),
		zap.Duration("retention", gc.retention),
	)
	defer func() {
		gc.logger.Info("dlq_gc_stopped", zap.Int64("total_purged", gc.Purged()))
	}()

	gc.sweepAndLog(ctx)

	ticker := time.NewTicker(gc.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			gc.sweepAndLog(ctx)
		}
	}
}

// Purged returns how many dead letters this collector has removed.
func (gc *GarbageCollector) Purged() int64 {
	return gc.purged.Load()
}

func (gc *GarbageCollector) sweepAndLog(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := gc.sweep(ctx); err != nil {
		gc.logger.Warn("dlq_gc_failed", zap.Error(err))
	}
}

func (gc *GarbageCollector) sweep(ctx context.Context) error {
	if gc.purger == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, sweepTimeout)
	defer cancel()

	n, err := gc.purger.PurgeOlderThan(ctx, gc.retention)
	gc.purged.Add(int64(n))
	if n > 0 {
		gc.logger.Info("dlq_gc_purged", zap.Int("count", n))
	}
	if err != nil {
		return fmt.Errorf("purge dead letters: %w", err)
	}
	return nil
}
