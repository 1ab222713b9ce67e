package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"scrolltunes/internal/ratelimit/models"
)

// RedisStore implements the sliding window as a sorted set of request
// timestamps per key, so all instances share one budget.
type RedisStore struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, now: time.Now}
}

func (s *RedisStore) Take(ctx context.Context, key string, limit models.Limit) (models.Result, error) {
	now := s.now()
	cutoff := now.Add(-limit.Window)
	redisKey := "rl:" + key
	member := strconv.FormatInt(now.UnixNano(), 10) + "-" + uuid.NewString()

	// Prune, add, and count inside one MULTI/EXEC. Admission is judged on
	// the post-add cardinality, so two concurrent requests on the same key
	// cannot both observe a pre-admission count and overshoot the budget.
	pipe := s.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", strconv.FormatInt(cutoff.UnixNano(), 10))
	pipe.ZAdd(ctx, redisKey, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: member,
	})
	countCmd := pipe.ZCard(ctx, redisKey)
	oldestCmd := pipe.ZRangeWithScores(ctx, redisKey, 0, 0)
	pipe.Expire(ctx, redisKey, limit.Window+time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		return models.Result{}, fmt.Errorf("rate limit window update: %w", err)
	}

	count := int(countCmd.Val())
	if count > limit.Requests {
		// Over budget: drop our marker so a denied request doesn't shrink
		// the window for the ones that follow.
		s.client.ZRem(ctx, redisKey, member)
		oldest := now
		if entries := oldestCmd.Val(); len(entries) > 0 {
			oldest = time.Unix(0, int64(entries[0].Score))
		}
		return models.Result{
			Limit:      limit.Requests,
			RetryAfter: retryAfter(oldest, limit.Window, now),
		}, nil
	}

	return models.Result{
		Allowed:   true,
		Limit:     limit.Requests,
		Remaining: limit.Requests - count,
	}, nil
}
