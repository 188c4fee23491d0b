package service

import (
	"context"
	"log/slog"
	"time"
)

// IdempotencyJanitor deletes expired records in batches on a fixed
// interval. Redis-backed stores expire natively, so each sweep there is a
// no-op.
type IdempotencyJanitor struct {
	store    IdempotencyStore
	interval time.Duration
	batch    int
	logger   *slog.Logger
}

func NewIdempotencyJanitor(store IdempotencyStore, interval time.Duration, batch int, logger *slog.Logger) *IdempotencyJanitor {
	return &IdempotencyJanitor{store: store, interval: interval, batch: batch, logger: logger}
}

// Run blocks until ctx is cancelled.
func (j *IdempotencyJanitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *IdempotencyJanitor) sweep(ctx context.Context) {
	deleted, err := j.store.CleanupExpired(ctx, time.Now().UTC(), j.batch)
	if err != nil {
		j.logger.WarnContext(ctx, "idempotency cleanup failed", "error", err)
		return
	}
	if deleted > 0 {
		j.logger.InfoContext(ctx, "idempotency cleanup", "deleted", deleted)
	}
}
