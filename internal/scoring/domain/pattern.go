package domain

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
)

// PatternStaleAfter is the age beyond which a historical pattern is discarded
// and regenerated with defaults.
const PatternStaleAfter = 7 * 24 * time.Hour

// HistoricalPattern holds per-user rolling completion statistics used to
// contextualize effort scoring and confidence.
type HistoricalPattern struct {
	UserID             uuid.UUID      `json:"user_id"`
	AvgCompletionHours float64        `json:"avg_completion_hours"`
	SuccessRate        float64        `json:"success_rate"`
	PreferredHours     []int          `json:"preferred_hours"`
	PreferredDays      []time.Weekday `json:"preferred_days"`
	SimilarCompleted   int            `json:"similar_completed"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// DefaultPattern synthesizes the pattern used for users with no recorded
// history: business hours, weekdays, a 4 hour average and a 75% success rate.
func DefaultPattern(userID uuid.UUID, now time.Time) HistoricalPattern {
	return HistoricalPattern{
		UserID:             userID,
		AvgCompletionHours: 4,
		SuccessRate:        0.75,
		PreferredHours:     []int{9, 10, 11, 12, 13, 14, 15, 16, 17},
		PreferredDays: []time.Weekday{
			time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
		},
		SimilarCompleted: 0,
		UpdatedAt:        now,
	}
}

// IsStale reports whether the pattern is older than the staleness window.
func (p HistoricalPattern) IsStale(now time.Time) bool {
	return now.Sub(p.UpdatedAt) > PatternStaleAfter
}

// RecordCompletion folds a completed task into the rolling statistics using
// the incremental mean formula newAvg = (oldAvg*n + hours) / (n+1).
func (p *HistoricalPattern) RecordCompletion(actualHours float64, at time.Time) {
	n := float64(p.SimilarCompleted)
	p.AvgCompletionHours = (p.AvgCompletionHours*n + actualHours) / (n + 1)
	p.SimilarCompleted++

	if hour := at.Hour(); !slices.Contains(p.PreferredHours, hour) {
		p.PreferredHours = append(p.PreferredHours, hour)
	}
	if day := at.Weekday(); !slices.Contains(p.PreferredDays, day) {
		p.PreferredDays = append(p.PreferredDays, day)
	}

	p.UpdatedAt = at
}

// PatternStore defines persistence for historical patterns. Get is the only
// reader used by the scoring path; RecordCompletion is the only writer and is
// invoked by the task-completion collaborator, never by scoring itself.
type PatternStore interface {
	// Get returns the stored pattern for a user if present and fresh,
	// otherwise synthesizes a default pattern, stores it and returns it.
	Get(ctx context.Context, userID uuid.UUID) (HistoricalPattern, error)

	// RecordCompletion updates the user's rolling statistics with a
	// completed task. Writes for a given user are serialized.
	RecordCompletion(ctx context.Context, userID uuid.UUID, actualHours float64) error
}
