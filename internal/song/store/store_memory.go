package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"scrolltunes/internal/song/models"
)

// MemoryStore is the in-memory catalog used in tests and dev mode.
type MemoryStore struct {
	mu    sync.RWMutex
	songs map[uuid.UUID]*models.Song
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{songs: make(map[uuid.UUID]*models.Song)}
}

func (s *MemoryStore) Create(ctx context.Context, song *models.Song) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *song
	s.songs[song.ID] = &cp
	return nil
}

func (s *MemoryStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Song, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	song, ok := s.songs[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *song
	return &cp, nil
}

func (s *MemoryStore) Update(ctx context.Context, song *models.Song) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.songs[song.ID]; !ok {
		return ErrNotFound
	}
	song.UpdatedAt = time.Now()
	cp := *song
	s.songs[song.ID] = &cp
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.songs[id]; !ok {
		return ErrNotFound
	}
	delete(s.songs, id)
	return nil
}

func (s *MemoryStore) Search(ctx context.Context, params models.SearchParams) ([]*models.Song, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []*models.Song
	q := strings.ToLower(params.Query)
	artist := strings.ToLower(params.Artist)
	for _, song := range s.songs {
		if song.Status != models.StatusApproved {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(song.Title), q) &&
			!strings.Contains(strings.ToLower(song.Artist), q) {
			continue
		}
		if artist != "" && !strings.Contains(strings.ToLower(song.Artist), artist) {
			continue
		}
		cp := *song
		matches = append(matches, &cp)
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})

	return page(matches, params.Limit, params.Offset), nil
}

func (s *MemoryStore) ListByStatus(ctx context.Context, status models.Status, limit, offset int) ([]*models.Song, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []*models.Song
	for _, song := range s.songs {
		if song.Status == status {
			cp := *song
			matches = append(matches, &cp)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	return page(matches, limit, offset), nil
}

func (s *MemoryStore) ListMissingBPM(ctx context.Context, limit int) ([]*models.Song, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []*models.Song
	for _, song := range s.songs {
		if song.Status == models.StatusApproved && song.BPM == nil {
			cp := *song
			matches = append(matches, &cp)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.Before(matches[j].CreatedAt)
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (s *MemoryStore) SetBPM(ctx context.Context, id uuid.UUID, bpm float64, source string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	song, ok := s.songs[id]
	if !ok {
		return ErrNotFound
	}
	song.BPM = &bpm
	song.BPMSource = source
	song.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) SetStatus(ctx context.Context, id uuid.UUID, status models.Status, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	song, ok := s.songs[id]
	if !ok {
		return ErrNotFound
	}
	song.Status = status
	song.RejectReason = reason
	song.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) CountByStatus(ctx context.Context) (map[models.Status]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[models.Status]int)
	for _, song := range s.songs {
		counts[song.Status]++
	}
	return counts, nil
}

func page(songs []*models.Song, limit, offset int) []*models.Song {
	if offset >= len(songs) {
		return nil
	}
	songs = songs[offset:]
	if limit > 0 && len(songs) > limit {
		songs = songs[:limit]
	}
	return songs
}
