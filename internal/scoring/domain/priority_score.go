package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// FreshnessWindow is the age beyond which a cached score is treated as absent.
const FreshnessWindow = time.Hour

// PriorityScore is the five-component scoring record produced by the engine.
// Component values and the aggregates are integers in [0,100]. A score is
// immutable once produced.
type PriorityScore struct {
	Impact     int       `json:"impact"`
	Effort     int       `json:"effort"`
	Urgency    int       `json:"urgency"`
	Dependency int       `json:"dependency"`
	Workload   int       `json:"workload"`
	Overall    int       `json:"overall"`
	Confidence int       `json:"confidence"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Age returns how old the score is relative to now.
func (s PriorityScore) Age(now time.Time) time.Duration {
	return now.Sub(s.UpdatedAt)
}

// IsFresh reports whether the score is still inside the freshness window.
func (s PriorityScore) IsFresh(now time.Time) bool {
	return s.Age(now) < FreshnessWindow
}

// ScoreCache maps task identifiers to their last computed score. Readers must
// never observe an entry older than the freshness window; implementations may
// evict lazily.
type ScoreCache interface {
	// Get returns the cached score for a task, or ok=false if no fresh
	// entry exists. Lookup failures are treated as misses by callers.
	Get(ctx context.Context, taskID uuid.UUID) (PriorityScore, bool, error)

	// Set overwrites the cached score for a task.
	Set(ctx context.Context, taskID uuid.UUID, score PriorityScore) error

	// ClearExpired reclaims memory held by stale entries. It has no
	// behavioral effect beyond that since Get already treats stale
	// entries as absent.
	ClearExpired(ctx context.Context) error
}

// ScoreRecord is a persisted priority score row.
type ScoreRecord struct {
	ID     uuid.UUID
	UserID uuid.UUID
	TaskID uuid.UUID
	Score  PriorityScore
}

// ScoreRepository defines durable persistence for priority scores.
type ScoreRepository interface {
	Save(ctx context.Context, rec ScoreRecord) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]ScoreRecord, error)
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}
