package dataset

import (
	"context"
	"time"
)

// Warm loads the dataset in the background so the first request does not pay
// for the download. Failed loads are retried with exponential backoff; after a
// success the snapshot is refreshed every interval. Warm returns when ctx is
// cancelled.
func (s *Store) Warm(ctx context.Context, interval time.Duration) {
	s.logger.Info("dataset warmer started", "source", s.Identity(), "refresh_interval", interval)

	// Start at 200ms, double each retry, cap at 30s.
	backoff := 200 * time.Millisecond
	maxBackoff := 30 * time.Second

	load := s.Get
	for {
		if ctx.Err() != nil {
			s.logger.Info("dataset warmer stopping", "reason", ctx.Err())
			return
		}

		if _, err := load(ctx); err != nil {
			if !sleepWithContext(ctx, backoff) {
				return
			}
			backoff = nextBackoff(backoff, maxBackoff)
			continue
		}

		backoff = 200 * time.Millisecond
		load = s.Reload
		if !sleepWithContext(ctx, interval) {
			return
		}
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
