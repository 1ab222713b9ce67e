// Package store persists the song catalog.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"scrolltunes/internal/song/models"
)

// ErrNotFound is returned when no song matches.
var ErrNotFound = errors.New("song not found")

// Store is the catalog persistence interface.
type Store interface {
	Create(ctx context.Context, song *models.Song) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Song, error)
	Update(ctx context.Context, song *models.Song) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, params models.SearchParams) ([]*models.Song, error)
	ListByStatus(ctx context.Context, status models.Status, limit, offset int) ([]*models.Song, error)
	ListMissingBPM(ctx context.Context, limit int) ([]*models.Song, error)
	SetBPM(ctx context.Context, id uuid.UUID, bpm float64, source string) error
	SetStatus(ctx context.Context, id uuid.UUID, status models.Status, reason string) error
	CountByStatus(ctx context.Context) (map[models.Status]int, error)
}
