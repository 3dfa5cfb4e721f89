// Package jobs runs background maintenance loops.
package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Recomputer refreshes the derived figures of every open registration.
type Recomputer interface {
	RecomputeActive(ctx context.Context) (int, error)
}

// StartRecomputeLoop sweeps open registrations every interval until ctx is
// done, so sibling order and final amounts follow terms as they end. A zero
// interval disables the loop. The returned channel closes when it stops.
func StartRecomputeLoop(ctx context.Context, r Recomputer, interval time.Duration, log *zap.Logger) <-chan struct{} {
	done := make(chan struct{})
	if interval <= 0 {
		log.Info("recompute loop disabled")
		close(done)
		return done
	}
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				runSweep(ctx, r, log)
			}
		}
	}()
	log.Info("recompute loop started", zap.Duration("interval", interval))
	return done
}

func runSweep(ctx context.Context, r Recomputer, log *zap.Logger) {
	start := time.Now()
	n, err := r.RecomputeActive(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.Error("recompute sweep failed", zap.Int("changed", n), zap.Error(err))
		}
		return
	}
	if n > 0 {
		log.Info("recompute sweep", zap.Int("changed", n), zap.Duration("took", time.Since(start)))
	}
}
