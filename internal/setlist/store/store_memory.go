package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"scrolltunes/internal/setlist/models"
)

// MemoryStore is the in-memory setlist store used in tests and dev mode.
type MemoryStore struct {
	mu       sync.RWMutex
	setlists map[uuid.UUID]*models.Setlist
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{setlists: make(map[uuid.UUID]*models.Setlist)}
}

func (s *MemoryStore) Create(ctx context.Context, setlist *models.Setlist) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setlists[setlist.ID] = copySetlist(setlist)
	return nil
}

func (s *MemoryStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Setlist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	setlist, ok := s.setlists[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copySetlist(setlist), nil
}

func (s *MemoryStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Summary
	for _, setlist := range s.setlists {
		if setlist.UserID != userID {
			continue
		}
		out = append(out, models.Summary{
			ID:        setlist.ID,
			Name:      setlist.Name,
			SongCount: len(setlist.Entries),
			UpdatedAt: setlist.UpdatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (s *MemoryStore) Rename(ctx context.Context, id uuid.UUID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	setlist, ok := s.setlists[id]
	if !ok {
		return ErrNotFound
	}
	setlist.Name = name
	setlist.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.setlists[id]; !ok {
		return ErrNotFound
	}
	delete(s.setlists, id)
	return nil
}

func (s *MemoryStore) ReplaceEntries(ctx context.Context, id uuid.UUID, entries []models.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	setlist, ok := s.setlists[id]
	if !ok {
		return ErrNotFound
	}
	setlist.Entries = append([]models.Entry(nil), entries...)
	setlist.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.setlists), nil
}

func copySetlist(setlist *models.Setlist) *models.Setlist {
	cp := *setlist
	cp.Entries = append([]models.Entry(nil), setlist.Entries...)
	return &cp
}
