// Package cache stores resolved tempos in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"scrolltunes/internal/bpm/models"
)

// ErrMiss is returned when the cache has no entry for the track.
var ErrMiss = errors.New("bpm cache miss")

const defaultTTL = 30 * 24 * time.Hour

// Cache wraps Redis for tempo lookups. A nil *Cache is a no-op.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *Cache {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) Get(ctx context.Context, params models.LookupParams) (*models.Result, error) {
	if c == nil {
		return nil, ErrMiss
	}
	raw, err := c.client.Get(ctx, key(params)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("bpm cache get: %w", err)
	}
	var result models.Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, ErrMiss
	}
	return &result, nil
}

func (c *Cache) Set(ctx context.Context, params models.LookupParams, result *models.Result) error {
	if c == nil {
		return nil
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("bpm cache marshal: %w", err)
	}
	return c.client.Set(ctx, key(params), raw, c.ttl).Err()
}

func key(params models.LookupParams) string {
	return "bpm:" + strings.ToLower(params.Artist) + "|" + strings.ToLower(params.Title)
}
