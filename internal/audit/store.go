package audit

import "context"

// Store is the append-only audit sink.
type Store interface {
	Append(ctx context.Context, event Event) error
	// Tail returns the most recent events, newest first.
	Tail(ctx context.Context, limit int) ([]Event, error)
}
