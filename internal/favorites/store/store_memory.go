package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type favKey struct {
	userID uuid.UUID
	songID uuid.UUID
}

// MemoryStore is the in-memory favorites store used in tests and dev mode.
type MemoryStore struct {
	mu        sync.RWMutex
	favorites map[favKey]Favorite
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{favorites: make(map[favKey]Favorite)}
}

func (s *MemoryStore) Add(ctx context.Context, userID, songID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := favKey{userID: userID, songID: songID}
	if _, ok := s.favorites[key]; ok {
		return false, nil
	}
	s.favorites[key] = Favorite{UserID: userID, SongID: songID, CreatedAt: time.Now()}
	return true, nil
}

func (s *MemoryStore) Remove(ctx context.Context, userID, songID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := favKey{userID: userID, songID: songID}
	if _, ok := s.favorites[key]; !ok {
		return false, nil
	}
	delete(s.favorites, key)
	return true, nil
}

func (s *MemoryStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]Favorite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Favorite
	for key, fav := range s.favorites {
		if key.userID == userID {
			out = append(out, fav)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) Exists(ctx context.Context, userID, songID uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.favorites[favKey{userID: userID, songID: songID}]
	return ok, nil
}

func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.favorites), nil
}
