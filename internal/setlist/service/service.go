// Package service implements setlist operations.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"scrolltunes/internal/setlist/models"
	"scrolltunes/internal/setlist/store"
	songmodels "scrolltunes/internal/song/models"
	songstore "scrolltunes/internal/song/store"
	dErrors "scrolltunes/pkg/domain-errors"
)

const (
	maxNameLength = 120
	maxEntries    = 200
)

// SongCatalog is the slice of the song store setlists need.
type SongCatalog interface {
	GetByID(ctx context.Context, id uuid.UUID) (*songmodels.Song, error)
}

// Service implements setlists on top of a Store and the song catalog.
type Service struct {
	setlists store.Store
	songs    SongCatalog
}

func New(setlists store.Store, songs SongCatalog) *Service {
	return &Service{setlists: setlists, songs: songs}
}

// Create makes an empty setlist.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, req models.CreateRequest) (*models.Setlist, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "name is required")
	}
	if len(name) > maxNameLength {
		return nil, dErrors.New(dErrors.CodeBadRequest, "name is too long")
	}

	now := time.Now()
	setlist := &models.Setlist{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.setlists.Create(ctx, setlist); err != nil {
		return nil, fmt.Errorf("create setlist: %w", err)
	}
	return setlist, nil
}

// Get returns a setlist with its entries resolved to song summaries.
// Other users' setlists read as not found.
func (s *Service) Get(ctx context.Context, userID, setlistID uuid.UUID) (*models.Setlist, []models.ResolvedEntry, error) {
	setlist, err := s.owned(ctx, userID, setlistID)
	if err != nil {
		return nil, nil, err
	}

	resolved := []models.ResolvedEntry{}
	for _, entry := range setlist.Entries {
		re := models.ResolvedEntry{Entry: entry}
		if song, err := s.songs.GetByID(ctx, entry.SongID); err == nil && song.Status == songmodels.StatusApproved {
			sum := song.Summarize()
			re.Song = &sum
		}
		resolved = append(resolved, re)
	}
	return setlist, resolved, nil
}

// List returns the user's setlists, most recently updated first.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]models.Summary, error) {
	out, err := s.setlists.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list setlists: %w", err)
	}
	if out == nil {
		out = []models.Summary{}
	}
	return out, nil
}

// Update renames a setlist and/or replaces its entire entry list. The
// replacement is atomic: entries get dense positions 0..n-1 in request
// order, and every referenced song must be an approved catalog entry.
func (s *Service) Update(ctx context.Context, userID, setlistID uuid.UUID, req models.UpdateRequest) (*models.Setlist, error) {
	if _, err := s.owned(ctx, userID, setlistID); err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, dErrors.New(dErrors.CodeBadRequest, "name is required")
		}
		if len(name) > maxNameLength {
			return nil, dErrors.New(dErrors.CodeBadRequest, "name is too long")
		}
		if err := s.setlists.Rename(ctx, setlistID, name); err != nil {
			return nil, fmt.Errorf("rename setlist: %w", err)
		}
	}

	if req.Entries != nil {
		entries, err := s.buildEntries(ctx, req.Entries)
		if err != nil {
			return nil, err
		}
		if err := s.setlists.ReplaceEntries(ctx, setlistID, entries); err != nil {
			return nil, fmt.Errorf("replace setlist entries: %w", err)
		}
	}

	setlist, err := s.setlists.GetByID(ctx, setlistID)
	if err != nil {
		return nil, fmt.Errorf("reload setlist: %w", err)
	}
	return setlist, nil
}

// ReplaceSongs swaps the entire ordered entry list in one transaction.
// Duplicates of a song are allowed; positions are assigned densely in
// request order.
func (s *Service) ReplaceSongs(ctx context.Context, userID, setlistID uuid.UUID, reqs []models.EntryRequest) (*models.Setlist, error) {
	if _, err := s.owned(ctx, userID, setlistID); err != nil {
		return nil, err
	}

	entries, err := s.buildEntries(ctx, reqs)
	if err != nil {
		return nil, err
	}
	if err := s.setlists.ReplaceEntries(ctx, setlistID, entries); err != nil {
		return nil, fmt.Errorf("replace setlist entries: %w", err)
	}

	setlist, err := s.setlists.GetByID(ctx, setlistID)
	if err != nil {
		return nil, fmt.Errorf("reload setlist: %w", err)
	}
	return setlist, nil
}

// Delete removes a setlist and its entries.
func (s *Service) Delete(ctx context.Context, userID, setlistID uuid.UUID) error {
	if _, err := s.owned(ctx, userID, setlistID); err != nil {
		return err
	}
	if err := s.setlists.Delete(ctx, setlistID); err != nil {
		return fmt.Errorf("delete setlist: %w", err)
	}
	return nil
}

func (s *Service) buildEntries(ctx context.Context, reqs []models.EntryRequest) ([]models.Entry, error) {
	if len(reqs) > maxEntries {
		return nil, dErrors.New(dErrors.CodeBadRequest, "too many entries")
	}

	entries := make([]models.Entry, 0, len(reqs))
	for i, req := range reqs {
		song, err := s.songs.GetByID(ctx, req.SongID)
		if err != nil {
			if errors.Is(err, songstore.ErrNotFound) {
				return nil, dErrors.New(dErrors.CodeBadRequest, "unknown song in entries")
			}
			return nil, fmt.Errorf("get song: %w", err)
		}
		if song.Status != songmodels.StatusApproved {
			return nil, dErrors.New(dErrors.CodeBadRequest, "unknown song in entries")
		}
		entries = append(entries, models.Entry{
			Position:    i,
			SongID:      req.SongID,
			Transpose:   req.Transpose,
			ScrollSpeed: req.ScrollSpeed,
		})
	}
	return entries, nil
}

// owned fetches a setlist and hides it from non-owners.
func (s *Service) owned(ctx context.Context, userID, setlistID uuid.UUID) (*models.Setlist, error) {
	setlist, err := s.setlists.GetByID(ctx, setlistID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "setlist not found")
		}
		return nil, fmt.Errorf("get setlist: %w", err)
	}
	if setlist.UserID != userID {
		return nil, dErrors.New(dErrors.CodeNotFound, "setlist not found")
	}
	return setlist, nil
}
