package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestDefaultPattern(t *testing.T) {
	userID := uuid.New()
	now := time.Now().UTC()
	p := DefaultPattern(userID, now)

	assert.Equal(t, userID, p.UserID)
	assert.Equal(t, 4.0, p.AvgCompletionHours)
	assert.Equal(t, 0.75, p.SuccessRate)
	assert.Equal(t, []int{9, 10, 11, 12, 13, 14, 15, 16, 17}, p.PreferredHours)
	assert.Len(t, p.PreferredDays, 5)
	assert.NotContains(t, p.PreferredDays, time.Saturday)
	assert.NotContains(t, p.PreferredDays, time.Sunday)
	assert.Zero(t, p.SimilarCompleted)
}

func TestHistoricalPattern_IsStale(t *testing.T) {
	now := time.Now().UTC()
	p := DefaultPattern(uuid.New(), now)

	assert.False(t, p.IsStale(now))
	assert.False(t, p.IsStale(now.Add(6*24*time.Hour)))
	assert.True(t, p.IsStale(now.Add(8*24*time.Hour)))
}

func TestHistoricalPattern_RecordCompletion_IncrementalMean(t *testing.T) {
	now := time.Date(2026, 3, 3, 10, 30, 0, 0, time.UTC) // a Tuesday
	p := DefaultPattern(uuid.New(), now.Add(-time.Hour))

	// First completion: (4*0 + 6) / 1 = 6.
	p.RecordCompletion(6, now)
	assert.InDelta(t, 6.0, p.AvgCompletionHours, 1e-9)
	assert.Equal(t, 1, p.SimilarCompleted)

	// Second completion: (6*1 + 2) / 2 = 4.
	p.RecordCompletion(2, now.Add(time.Hour))
	assert.InDelta(t, 4.0, p.AvgCompletionHours, 1e-9)
	assert.Equal(t, 2, p.SimilarCompleted)

	assert.Equal(t, now.Add(time.Hour), p.UpdatedAt)
}

func TestHistoricalPattern_RecordCompletion_PreferenceAppend(t *testing.T) {
	base := time.Date(2026, 3, 7, 22, 0, 0, 0, time.UTC) // Saturday, 22:00
	p := DefaultPattern(uuid.New(), base.Add(-time.Hour))

	p.RecordCompletion(1, base)
	assert.Contains(t, p.PreferredHours, 22)
	assert.Contains(t, p.PreferredDays, time.Saturday)

	// Recording at the same hour/day again must not duplicate.
	hours := len(p.PreferredHours)
	days := len(p.PreferredDays)
	p.RecordCompletion(1, base.Add(time.Minute))
	assert.Len(t, p.PreferredHours, hours)
	assert.Len(t, p.PreferredDays, days)
}
