// Package store implements sliding-window request counters.
package store

import (
	"context"
	"time"

	"scrolltunes/internal/ratelimit/models"
)

// Store admits or rejects one request against a keyed sliding window.
type Store interface {
	Take(ctx context.Context, key string, limit models.Limit) (models.Result, error)
}

// retryAfter computes how long until the oldest counted request leaves
// the window.
func retryAfter(oldest time.Time, window time.Duration, now time.Time) time.Duration {
	wait := oldest.Add(window).Sub(now)
	if wait < time.Second {
		wait = time.Second
	}
	return wait
}
