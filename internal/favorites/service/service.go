// Package service implements the favorites operations.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"scrolltunes/internal/favorites/store"
	"scrolltunes/internal/song/models"
	songstore "scrolltunes/internal/song/store"
	dErrors "scrolltunes/pkg/domain-errors"
)

// SongCatalog is the slice of the song store favorites need.
type SongCatalog interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Song, error)
}

// Service implements favorites on top of a Store and the song catalog.
type Service struct {
	favorites store.Store
	songs     SongCatalog
}

func New(favorites store.Store, songs SongCatalog) *Service {
	return &Service{favorites: favorites, songs: songs}
}

// Add marks a song as a favorite. Only approved songs can be favorited;
// repeating the call is a no-op.
func (s *Service) Add(ctx context.Context, userID, songID uuid.UUID) error {
	song, err := s.songs.GetByID(ctx, songID)
	if err != nil {
		if errors.Is(err, songstore.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "song not found")
		}
		return fmt.Errorf("get song: %w", err)
	}
	if song.Status != models.StatusApproved {
		return dErrors.New(dErrors.CodeNotFound, "song not found")
	}

	if _, err := s.favorites.Add(ctx, userID, songID); err != nil {
		return fmt.Errorf("add favorite: %w", err)
	}
	return nil
}

// Remove unmarks a favorite. Removing an absent favorite is a no-op.
func (s *Service) Remove(ctx context.Context, userID, songID uuid.UUID) error {
	if _, err := s.favorites.Remove(ctx, userID, songID); err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}
	return nil
}

// List returns the user's favorites as song summaries, newest first.
// Songs that were deleted or demoted since being favorited are skipped.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]models.Summary, error) {
	favs, err := s.favorites.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}

	out := []models.Summary{}
	for _, fav := range favs {
		song, err := s.songs.GetByID(ctx, fav.SongID)
		if err != nil {
			if errors.Is(err, songstore.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("get song: %w", err)
		}
		if song.Status != models.StatusApproved {
			continue
		}
		out = append(out, song.Summarize())
	}
	return out, nil
}
