package audit

import (
	"context"
	"sync"
)

// memoryCap bounds the in-memory log so dev-mode processes don't grow
// without bound.
const memoryCap = 10_000

// MemoryStore keeps events in memory; used in tests and dev mode.
type MemoryStore struct {
	mu     sync.Mutex
	events []Event
	nextID int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

func (s *MemoryStore) Append(ctx context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	event.ID = s.nextID
	s.nextID++
	s.events = append(s.events, event)
	if len(s.events) > memoryCap {
		s.events = s.events[len(s.events)-memoryCap:]
	}
	return nil
}

func (s *MemoryStore) Tail(ctx context.Context, limit int) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 || limit > len(s.events) {
		limit = len(s.events)
	}
	out := make([]Event, 0, limit)
	for i := len(s.events) - 1; i >= len(s.events)-limit; i-- {
		out = append(out, s.events[i])
	}
	return out, nil
}
