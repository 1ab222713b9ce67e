// Package cache stores resolved lyrics in Redis.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"scrolltunes/internal/lyrics/models"
)

// ErrMiss is returned when the cache has no entry for the track.
var ErrMiss = errors.New("lyrics cache miss")

const defaultTTL = 7 * 24 * time.Hour

// Cache wraps Redis for lyrics lookups. A nil *Cache is a no-op, which
// keeps the service code free of Redis-availability checks.
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

func (c *Cache) Get(ctx context.Context, params models.LookupParams) (*models.Lyrics, error) {
	if c == nil {
		return nil, ErrMiss
	}
	raw, err := c.client.Get(ctx, key(params)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("lyrics cache get: %w", err)
	}
	var lyrics models.Lyrics
	if err := json.Unmarshal(raw, &lyrics); err != nil {
		return nil, ErrMiss
	}
	return &lyrics, nil
}

func (c *Cache) Set(ctx context.Context, params models.LookupParams, lyrics *models.Lyrics) error {
	if c == nil {
		return nil
	}
	raw, err := json.Marshal(lyrics)
	if err != nil {
		return fmt.Errorf("lyrics cache marshal: %w", err)
	}
	return c.client.Set(ctx, key(params), raw, c.ttl).Err()
}

func key(params models.LookupParams) string {
	parts := strings.Join([]string{
		strings.ToLower(params.Artist),
		strings.ToLower(params.Title),
		strings.ToLower(params.Album),
		strconv.Itoa(params.Duration),
	}, "\x00")
	sum := sha256.Sum256([]byte(parts))
	return "lyrics:" + hex.EncodeToString(sum[:16])
}
