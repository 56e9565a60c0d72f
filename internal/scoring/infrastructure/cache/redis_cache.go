package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/taskpilot/internal/scoring/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisScoreCache is a Redis-backed ScoreCache. Entries are written with a
// TTL equal to the freshness window, so Redis itself enforces staleness and
// ClearExpired has nothing left to do.
type RedisScoreCache struct {
	client *redis.Client
}

// NewRedisScoreCache creates a Redis-backed score cache.
func NewRedisScoreCache(client *redis.Client) *RedisScoreCache {
	return &RedisScoreCache{client: client}
}

func scoreKey(taskID uuid.UUID) string {
	return fmt.Sprintf("taskpilot:score:%s", taskID)
}

// Get returns the cached score for a task if present.
func (c *RedisScoreCache) Get(ctx context.Context, taskID uuid.UUID) (domain.PriorityScore, bool, error) {
	val, err := c.client.Get(ctx, scoreKey(taskID)).Bytes()
	if err == redis.Nil {
		return domain.PriorityScore{}, false, nil
	}
	if err != nil {
		return domain.PriorityScore{}, false, err
	}

	var score domain.PriorityScore
	if err := json.Unmarshal(val, &score); err != nil {
		return domain.PriorityScore{}, false, fmt.Errorf("corrupt cache entry for %s: %w", taskID, err)
	}
	return score, true, nil
}

// Set overwrites the cached score, expiring after the freshness window.
func (c *RedisScoreCache) Set(ctx context.Context, taskID uuid.UUID, score domain.PriorityScore) error {
	payload, err := json.Marshal(score)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, scoreKey(taskID), payload, domain.FreshnessWindow).Err()
}

// ClearExpired is a no-op: Redis evicts entries via TTL.
func (c *RedisScoreCache) ClearExpired(_ context.Context) error { return nil }

var _ domain.ScoreCache = (*RedisScoreCache)(nil)
