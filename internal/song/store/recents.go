package store

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// recentsCap bounds the per-user recently-viewed list.
const recentsCap = 20

// RecentsStore tracks the songs a user opened most recently.
type RecentsStore interface {
	Push(ctx context.Context, userID, songID uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

// RedisRecentsStore keeps recents as a capped Redis list per user.
type RedisRecentsStore struct {
	client *redis.Client
}

func NewRedisRecentsStore(client *redis.Client) *RedisRecentsStore {
	return &RedisRecentsStore{client: client}
}

func recentsKey(userID uuid.UUID) string { return "recent:" + userID.String() }

func (s *RedisRecentsStore) Push(ctx context.Context, userID, songID uuid.UUID) error {
	key := recentsKey(userID)
	pipe := s.client.TxPipeline()
	pipe.LRem(ctx, key, 0, songID.String())
	pipe.LPush(ctx, key, songID.String())
	pipe.LTrim(ctx, key, 0, recentsCap-1)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisRecentsStore) List(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	raw, err := s.client.LRange(ctx, recentsKey(userID), 0, recentsCap-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]uuid.UUID, 0, len(raw))
	for _, v := range raw {
		id, err := uuid.Parse(v)
		if err != nil {
			continue
		}
		out = append(out, id)
	}
	return out, nil
}

// MemoryRecentsStore is the in-memory fallback.
type MemoryRecentsStore struct {
	mu      sync.Mutex
	recents map[uuid.UUID][]uuid.UUID
}

func NewMemoryRecentsStore() *MemoryRecentsStore {
	return &MemoryRecentsStore{recents: make(map[uuid.UUID][]uuid.UUID)}
}

func (s *MemoryRecentsStore) Push(ctx context.Context, userID, songID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.recents[userID]
	// Move-to-front semantics: viewing again bumps the entry.
	filtered := make([]uuid.UUID, 0, len(list)+1)
	filtered = append(filtered, songID)
	for _, id := range list {
		if id != songID {
			filtered = append(filtered, id)
		}
	}
	if len(filtered) > recentsCap {
		filtered = filtered[:recentsCap]
	}
	s.recents[userID] = filtered
	return nil
}

func (s *MemoryRecentsStore) List(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.recents[userID]
	out := make([]uuid.UUID, len(list))
	copy(out, list)
	return out, nil
}
