package persistence

import (
	"context"
	"sort"
	"sync"

	"github.com/felixgeelhaar/taskpilot/internal/scoring/domain"
	"github.com/google/uuid"
)

// MemoryScoreRepository is an in-memory ScoreRepository for local mode and
// tests. Rows are keyed by (user, task) like the PostgreSQL implementation.
type MemoryScoreRepository struct {
	mu      sync.RWMutex
	records map[uuid.UUID]map[uuid.UUID]domain.ScoreRecord
}

// NewMemoryScoreRepository creates an empty in-memory score repository.
func NewMemoryScoreRepository() *MemoryScoreRepository {
	return &MemoryScoreRepository{
		records: make(map[uuid.UUID]map[uuid.UUID]domain.ScoreRecord),
	}
}

// Save upserts a score record keyed by (user, task).
func (r *MemoryScoreRepository) Save(_ context.Context, rec domain.ScoreRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	byTask, ok := r.records[rec.UserID]
	if !ok {
		byTask = make(map[uuid.UUID]domain.ScoreRecord)
		r.records[rec.UserID] = byTask
	}
	byTask[rec.TaskID] = rec
	return nil
}

// ListByUser returns all scores for a user, most urgent first.
func (r *MemoryScoreRepository) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.ScoreRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byTask := r.records[userID]
	records := make([]domain.ScoreRecord, 0, len(byTask))
	for _, rec := range byTask {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].Score.Overall != records[j].Score.Overall {
			return records[i].Score.Overall > records[j].Score.Overall
		}
		return records[i].Score.UpdatedAt.After(records[j].Score.UpdatedAt)
	})
	return records, nil
}

// DeleteByUser removes all scores for a user.
func (r *MemoryScoreRepository) DeleteByUser(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.records, userID)
	return nil
}

var _ domain.ScoreRepository = (*MemoryScoreRepository)(nil)
