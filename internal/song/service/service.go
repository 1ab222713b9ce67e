// Package service implements catalog operations and their permission rules.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"scrolltunes/internal/platform/metrics"
	"scrolltunes/internal/song/models"
	"scrolltunes/internal/song/store"
	dErrors "scrolltunes/pkg/domain-errors"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// AdminChecker reports whether a user has the admin flag. The auth service
// implements it.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error)
}

// Service implements catalog operations.
type Service struct {
	songs   store.Store
	recents store.RecentsStore
	admins  AdminChecker
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func New(songs store.Store, recents store.RecentsStore, admins AdminChecker, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{songs: songs, recents: recents, admins: admins, metrics: m, logger: logger}
}

// Submit creates a pending catalog entry.
func (s *Service) Submit(ctx context.Context, userID uuid.UUID, req models.SubmitRequest) (*models.Song, error) {
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Artist) == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "title and artist are required")
	}
	if strings.TrimSpace(req.Lyrics) == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "lyrics are required")
	}

	now := time.Now()
	song := &models.Song{
		ID:              uuid.New(),
		Title:           strings.TrimSpace(req.Title),
		Artist:          strings.TrimSpace(req.Artist),
		Album:           strings.TrimSpace(req.Album),
		DurationSeconds: req.DurationSeconds,
		Key:             strings.TrimSpace(req.Key),
		Lyrics:          req.Lyrics,
		Status:          models.StatusPending,
		SubmittedBy:     userID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.songs.Create(ctx, song); err != nil {
		return nil, fmt.Errorf("create song: %w", err)
	}
	if s.metrics != nil {
		s.metrics.SongsSubmitted.Inc()
	}
	return song, nil
}

// Get returns a song, enforcing visibility: approved songs are visible to
// everyone, everything else only to the submitter or an admin. Approved
// views are recorded in the viewer's recents list.
func (s *Service) Get(ctx context.Context, userID, songID uuid.UUID) (*models.Song, error) {
	song, err := s.songs.GetByID(ctx, songID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "song not found")
		}
		return nil, fmt.Errorf("get song: %w", err)
	}

	if song.Status != models.StatusApproved {
		allowed, err := s.canModerate(ctx, userID, song)
		if err != nil {
			return nil, err
		}
		if !allowed {
			// Hidden, not forbidden: pending songs don't leak their existence.
			return nil, dErrors.New(dErrors.CodeNotFound, "song not found")
		}
		return song, nil
	}

	if s.recents != nil {
		if err := s.recents.Push(ctx, userID, song.ID); err != nil {
			s.logger.WarnContext(ctx, "failed to record recent view", "error", err, "song_id", song.ID)
		}
	}
	return song, nil
}

// Search pages through the approved catalog.
func (s *Service) Search(ctx context.Context, params models.SearchParams) (*models.SearchResult, error) {
	if params.Limit <= 0 {
		params.Limit = defaultPageSize
	}
	if params.Limit > maxPageSize {
		params.Limit = maxPageSize
	}
	if params.Offset < 0 {
		params.Offset = 0
	}

	songs, err := s.songs.Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("search songs: %w", err)
	}

	result := &models.SearchResult{Songs: []models.Summary{}, Limit: params.Limit, Offset: params.Offset}
	for _, song := range songs {
		result.Songs = append(result.Songs, song.Summarize())
	}
	return result, nil
}

// Update edits a song. The submitter may edit; editing an approved song
// sends it back to moderation.
func (s *Service) Update(ctx context.Context, userID, songID uuid.UUID, req models.SubmitRequest) (*models.Song, error) {
	song, err := s.songs.GetByID(ctx, songID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "song not found")
		}
		return nil, fmt.Errorf("get song: %w", err)
	}

	allowed, err := s.canModerate(ctx, userID, song)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, dErrors.New(dErrors.CodeNotFound, "song not found")
	}

	if strings.TrimSpace(req.Title) != "" {
		song.Title = strings.TrimSpace(req.Title)
	}
	if strings.TrimSpace(req.Artist) != "" {
		song.Artist = strings.TrimSpace(req.Artist)
	}
	song.Album = strings.TrimSpace(req.Album)
	if req.DurationSeconds > 0 {
		song.DurationSeconds = req.DurationSeconds
	}
	song.Key = strings.TrimSpace(req.Key)
	if strings.TrimSpace(req.Lyrics) != "" {
		song.Lyrics = req.Lyrics
	}

	// Any content edit re-enters moderation.
	song.Status = models.StatusPending
	song.RejectReason = ""

	if err := s.songs.Update(ctx, song); err != nil {
		return nil, fmt.Errorf("update song: %w", err)
	}
	return song, nil
}

// Delete removes a song; submitter or admin only.
func (s *Service) Delete(ctx context.Context, userID, songID uuid.UUID) error {
	song, err := s.songs.GetByID(ctx, songID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "song not found")
		}
		return fmt.Errorf("get song: %w", err)
	}

	allowed, err := s.canModerate(ctx, userID, song)
	if err != nil {
		return err
	}
	if !allowed {
		return dErrors.New(dErrors.CodeNotFound, "song not found")
	}

	if err := s.songs.Delete(ctx, songID); err != nil {
		return fmt.Errorf("delete song: %w", err)
	}
	return nil
}

// Recent returns the viewer's recently-opened songs, newest first.
func (s *Service) Recent(ctx context.Context, userID uuid.UUID) ([]models.Summary, error) {
	if s.recents == nil {
		return []models.Summary{}, nil
	}
	ids, err := s.recents.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list recents: %w", err)
	}

	out := []models.Summary{}
	for _, id := range ids {
		song, err := s.songs.GetByID(ctx, id)
		if err != nil {
			// Deleted or de-listed songs silently drop out of the list.
			continue
		}
		if song.Status != models.StatusApproved {
			continue
		}
		out = append(out, song.Summarize())
	}
	return out, nil
}

// Approve moves a song to the approved state.
func (s *Service) Approve(ctx context.Context, songID uuid.UUID) error {
	if err := s.setStatus(ctx, songID, models.StatusApproved, ""); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.SongsApproved.Inc()
	}
	return nil
}

// Reject moves a song to the rejected state with a reason.
func (s *Service) Reject(ctx context.Context, songID uuid.UUID, reason string) error {
	if err := s.setStatus(ctx, songID, models.StatusRejected, reason); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.SongsRejected.Inc()
	}
	return nil
}

// Moderation pages through songs in a given status for the admin queue.
func (s *Service) Moderation(ctx context.Context, status models.Status, limit, offset int) ([]*models.Song, error) {
	if !status.Valid() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "unknown status")
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	songs, err := s.songs.ListByStatus(ctx, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list moderation queue: %w", err)
	}
	return songs, nil
}

// Stats returns song counts by status.
func (s *Service) Stats(ctx context.Context) (map[models.Status]int, error) {
	counts, err := s.songs.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count songs: %w", err)
	}
	return counts, nil
}

func (s *Service) setStatus(ctx context.Context, songID uuid.UUID, status models.Status, reason string) error {
	if err := s.songs.SetStatus(ctx, songID, status, reason); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "song not found")
		}
		return fmt.Errorf("set song status: %w", err)
	}
	return nil
}

func (s *Service) canModerate(ctx context.Context, userID uuid.UUID, song *models.Song) (bool, error) {
	if song.SubmittedBy == userID {
		return true, nil
	}
	if s.admins == nil {
		return false, nil
	}
	isAdmin, err := s.admins.IsAdmin(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("check admin flag: %w", err)
	}
	return isAdmin, nil
}
