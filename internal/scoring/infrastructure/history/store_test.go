package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/felixgeelhaar/taskpilot/internal/scoring/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryPatternStore_SynthesizesDefault(t *testing.T) {
	store := NewMemoryPatternStore()
	userID := uuid.New()

	p, err := store.Get(context.Background(), userID)
	require.NoError(t, err)

	assert.Equal(t, userID, p.UserID)
	assert.Equal(t, 4.0, p.AvgCompletionHours)
	assert.Equal(t, 0.75, p.SuccessRate)
	assert.Zero(t, p.SimilarCompleted)
}

func TestMemoryPatternStore_StalePatternRegenerated(t *testing.T) {
	ctx := context.Background()
	current := time.Now().UTC()
	store := NewMemoryPatternStore().WithClock(func() time.Time { return current })
	userID := uuid.New()

	require.NoError(t, store.RecordCompletion(ctx, userID, 10))
	p, err := store.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, p.SimilarCompleted)

	current = current.Add(domain.PatternStaleAfter + time.Hour)
	p, err = store.Get(ctx, userID)
	require.NoError(t, err)
	assert.Zero(t, p.SimilarCompleted)
	assert.Equal(t, 4.0, p.AvgCompletionHours)
}

func TestSQLitePatternStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := OpenSQLitePatternStore(filepath.Join(t.TempDir(), "patterns.db"))
	require.NoError(t, err)
	defer store.Close()

	userID := uuid.New()

	// First read synthesizes and persists the default.
	p, err := store.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, p.AvgCompletionHours)

	// Completions update the rolling average: (4*0+6)/1=6 then (6*1+2)/2=4.
	require.NoError(t, store.RecordCompletion(ctx, userID, 6))
	require.NoError(t, store.RecordCompletion(ctx, userID, 2))

	p, err = store.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 2, p.SimilarCompleted)
	assert.InDelta(t, 4.0, p.AvgCompletionHours, 1e-9)
	assert.NotEmpty(t, p.PreferredHours)
	assert.NotEmpty(t, p.PreferredDays)
}

func TestSQLitePatternStore_SeparateUsers(t *testing.T) {
	ctx := context.Background()
	store, err := OpenSQLitePatternStore(filepath.Join(t.TempDir(), "patterns.db"))
	require.NoError(t, err)
	defer store.Close()

	alice := uuid.New()
	bob := uuid.New()

	require.NoError(t, store.RecordCompletion(ctx, alice, 8))

	pa, err := store.Get(ctx, alice)
	require.NoError(t, err)
	pb, err := store.Get(ctx, bob)
	require.NoError(t, err)

	assert.Equal(t, 1, pa.SimilarCompleted)
	assert.Zero(t, pb.SimilarCompleted)
}

func TestSQLitePatternStore_StaleRegenerated(t *testing.T) {
	ctx := context.Background()
	current := time.Now().UTC()
	store, err := OpenSQLitePatternStore(filepath.Join(t.TempDir(), "patterns.db"))
	require.NoError(t, err)
	defer store.Close()
	store.WithClock(func() time.Time { return current })

	userID := uuid.New()
	require.NoError(t, store.RecordCompletion(ctx, userID, 12))

	current = current.Add(domain.PatternStaleAfter + time.Hour)
	p, err := store.Get(ctx, userID)
	require.NoError(t, err)
	assert.Zero(t, p.SimilarCompleted)
	assert.Equal(t, 4.0, p.AvgCompletionHours)
}
