package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/felixgeelhaar/taskpilot/internal/scoring/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(userID uuid.UUID, overall int, updatedAt time.Time) domain.ScoreRecord {
	return domain.ScoreRecord{
		ID:     uuid.New(),
		UserID: userID,
		TaskID: uuid.New(),
		Score:  domain.PriorityScore{Overall: overall, UpdatedAt: updatedAt},
	}
}

func TestMemoryScoreRepository_ListOrdersByOverall(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryScoreRepository()
	userID := uuid.New()
	now := time.Now().UTC()

	require.NoError(t, repo.Save(ctx, record(userID, 40, now)))
	require.NoError(t, repo.Save(ctx, record(userID, 90, now)))
	require.NoError(t, repo.Save(ctx, record(userID, 65, now)))

	records, err := repo.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, 90, records[0].Score.Overall)
	assert.Equal(t, 65, records[1].Score.Overall)
	assert.Equal(t, 40, records[2].Score.Overall)
}

func TestMemoryScoreRepository_SaveReplacesByTask(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryScoreRepository()
	userID := uuid.New()
	now := time.Now().UTC()

	rec := record(userID, 40, now)
	require.NoError(t, repo.Save(ctx, rec))

	rec.Score.Overall = 80
	require.NoError(t, repo.Save(ctx, rec))

	records, err := repo.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 80, records[0].Score.Overall)
}

func TestMemoryScoreRepository_DeleteByUser(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryScoreRepository()
	alice := uuid.New()
	bob := uuid.New()
	now := time.Now().UTC()

	require.NoError(t, repo.Save(ctx, record(alice, 50, now)))
	require.NoError(t, repo.Save(ctx, record(bob, 60, now)))

	require.NoError(t, repo.DeleteByUser(ctx, alice))

	records, err := repo.ListByUser(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, records)

	records, err = repo.ListByUser(ctx, bob)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
