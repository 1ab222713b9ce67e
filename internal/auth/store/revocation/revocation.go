// Package revocation tracks revoked access-token jtis until their natural
// expiry. Redis backs it in production; the memory store serves tests and
// single-node dev.
package revocation

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store records and checks revoked token IDs.
type Store interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

// MemoryStore keeps revoked jtis with expiry timestamps.
type MemoryStore struct {
	mu      sync.RWMutex
	revoked map[string]time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{revoked: make(map[string]time.Time)}
}

func (s *MemoryStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[jti] = time.Now().Add(ttl)
	return nil
}

func (s *MemoryStore) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	s.mu.RLock()
	expiry, ok := s.revoked[jti]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if time.Now().After(expiry) {
		s.mu.Lock()
		delete(s.revoked, jti)
		s.mu.Unlock()
		return false, nil
	}
	return true, nil
}

// RedisStore stores revocations as keys with TTLs so they expire with the
// tokens they block.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func revocationKey(jti string) string { return "revoked:" + jti }

func (s *RedisStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return s.client.Set(ctx, revocationKey(jti), "1", ttl).Err()
}

func (s *RedisStore) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, revocationKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
