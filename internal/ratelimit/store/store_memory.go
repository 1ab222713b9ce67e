package store

import (
	"context"
	"sync"
	"time"

	"scrolltunes/internal/ratelimit/models"
)

// MemoryStore keeps per-key request timestamps and prunes them lazily.
// Suitable for single-instance deployments and tests.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string][]time.Time
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{buckets: make(map[string][]time.Time), now: time.Now}
}

func (s *MemoryStore) Take(ctx context.Context, key string, limit models.Limit) (models.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	cutoff := now.Add(-limit.Window)

	stamps := s.buckets[key]
	kept := stamps[:0]
	for _, ts := range stamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= limit.Requests {
		s.buckets[key] = kept
		return models.Result{
			Limit:      limit.Requests,
			RetryAfter: retryAfter(kept[0], limit.Window, now),
		}, nil
	}

	kept = append(kept, now)
	s.buckets[key] = kept
	return models.Result{
		Allowed:   true,
		Limit:     limit.Requests,
		Remaining: limit.Requests - len(kept),
	}, nil
}

// Prune drops empty buckets; call it periodically on long-lived
// processes.
func (s *MemoryStore) Prune(window time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-window)
	for key, stamps := range s.buckets {
		live := false
		for _, ts := range stamps {
			if ts.After(cutoff) {
				live = true
				break
			}
		}
		if !live {
			delete(s.buckets, key)
		}
	}
}
