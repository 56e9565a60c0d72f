// Package history provides PatternStore implementations: an in-memory store
// for tests and a durable SQLite store for production use.
package history

import (
	"context"
	"sync"
	"time"

	"github.com/felixgeelhaar/taskpilot/internal/scoring/domain"
	"github.com/google/uuid"
)

// MemoryPatternStore keeps historical patterns in a process-local map. Data
// is lost on restart; use the SQLite store outside of tests.
type MemoryPatternStore struct {
	mu       sync.Mutex
	patterns map[uuid.UUID]domain.HistoricalPattern
	now      func() time.Time
}

// NewMemoryPatternStore creates an in-memory pattern store.
func NewMemoryPatternStore() *MemoryPatternStore {
	return &MemoryPatternStore{
		patterns: make(map[uuid.UUID]domain.HistoricalPattern),
		now:      time.Now,
	}
}

// WithClock overrides the store's clock. Used by tests.
func (s *MemoryPatternStore) WithClock(now func() time.Time) *MemoryPatternStore {
	s.now = now
	return s
}

// Get returns the user's pattern, regenerating defaults when missing or stale.
func (s *MemoryPatternStore) Get(_ context.Context, userID uuid.UUID) (domain.HistoricalPattern, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	p, ok := s.patterns[userID]
	if !ok || p.IsStale(now) {
		p = domain.DefaultPattern(userID, now)
		s.patterns[userID] = p
	}
	return p, nil
}

// RecordCompletion folds a completion into the user's rolling statistics.
func (s *MemoryPatternStore) RecordCompletion(_ context.Context, userID uuid.UUID, actualHours float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	p, ok := s.patterns[userID]
	if !ok || p.IsStale(now) {
		p = domain.DefaultPattern(userID, now)
	}
	p.RecordCompletion(actualHours, now)
	s.patterns[userID] = p
	return nil
}

var _ domain.PatternStore = (*MemoryPatternStore)(nil)
