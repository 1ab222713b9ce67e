// Package store persists setlists and their ordered entries.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"scrolltunes/internal/setlist/models"
)

// ErrNotFound is returned when no setlist matches.
var ErrNotFound = errors.New("setlist not found")

// Store is the setlist persistence interface. ReplaceEntries swaps the
// whole entry list atomically; entries must already carry dense positions.
type Store interface {
	Create(ctx context.Context, setlist *models.Setlist) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Setlist, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Summary, error)
	Rename(ctx context.Context, id uuid.UUID, name string) error
	Delete(ctx context.Context, id uuid.UUID) error
	ReplaceEntries(ctx context.Context, id uuid.UUID, entries []models.Entry) error
	Count(ctx context.Context) (int, error)
}
