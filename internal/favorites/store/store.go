// Package store persists per-user favorite songs.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Favorite links a user to a song.
type Favorite struct {
	UserID    uuid.UUID
	SongID    uuid.UUID
	CreatedAt time.Time
}

// Store is the favorites persistence interface. Add and Remove are
// idempotent; Add reports whether the favorite was newly created.
type Store interface {
	Add(ctx context.Context, userID, songID uuid.UUID) (bool, error)
	Remove(ctx context.Context, userID, songID uuid.UUID) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Favorite, error)
	Exists(ctx context.Context, userID, songID uuid.UUID) (bool, error)
	Count(ctx context.Context) (int, error)
}
