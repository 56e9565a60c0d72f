// Package cache provides ScoreCache implementations: an in-memory cache for
// local mode and tests, and a Redis-backed cache for production.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/felixgeelhaar/taskpilot/internal/scoring/domain"
	"github.com/google/uuid"
)

type entry struct {
	score     domain.PriorityScore
	writtenAt time.Time
}

// MemoryScoreCache is an in-process ScoreCache. Entries older than the
// freshness window are treated as absent by Get; ClearExpired reclaims the
// memory they hold.
type MemoryScoreCache struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]entry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryScoreCache creates a cache with the standard freshness window.
func NewMemoryScoreCache() *MemoryScoreCache {
	return &MemoryScoreCache{
		entries: make(map[uuid.UUID]entry),
		ttl:     domain.FreshnessWindow,
		now:     time.Now,
	}
}

// WithClock overrides the cache's clock. Used by tests.
func (c *MemoryScoreCache) WithClock(now func() time.Time) *MemoryScoreCache {
	c.now = now
	return c
}

// Get returns the cached score for a task if present and fresh.
func (c *MemoryScoreCache) Get(_ context.Context, taskID uuid.UUID) (domain.PriorityScore, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[taskID]
	if !ok || c.now().Sub(e.writtenAt) >= c.ttl {
		return domain.PriorityScore{}, false, nil
	}
	return e.score, true, nil
}

// Set overwrites the cached score for a task.
func (c *MemoryScoreCache) Set(_ context.Context, taskID uuid.UUID, score domain.PriorityScore) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[taskID] = entry{score: score, writtenAt: c.now()}
	return nil
}

// ClearExpired removes entries older than the freshness window.
func (c *MemoryScoreCache) ClearExpired(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for id, e := range c.entries {
		if now.Sub(e.writtenAt) >= c.ttl {
			delete(c.entries, id)
		}
	}
	return nil
}

// Len returns the number of stored entries, including stale ones.
func (c *MemoryScoreCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

var _ domain.ScoreCache = (*MemoryScoreCache)(nil)
