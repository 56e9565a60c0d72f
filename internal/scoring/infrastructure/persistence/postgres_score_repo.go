// Package persistence provides durable storage for computed priority scores.
package persistence

import (
	"context"

	"github.com/felixgeelhaar/taskpilot/internal/scoring/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresScoreRepository implements domain.ScoreRepository using PostgreSQL.
// One row per (user, task); recomputing a score replaces the previous row.
type PostgresScoreRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresScoreRepository creates a new PostgreSQL score repository.
func NewPostgresScoreRepository(pool *pgxpool.Pool) *PostgresScoreRepository {
	return &PostgresScoreRepository{pool: pool}
}

// Save upserts a score record keyed by (user_id, task_id).
func (r *PostgresScoreRepository) Save(ctx context.Context, rec domain.ScoreRecord) error {
	query := `
		INSERT INTO priority_scores (
			id, user_id, task_id, impact, effort, urgency,
			dependency, workload, overall, confidence, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (user_id, task_id) DO UPDATE SET
			impact = EXCLUDED.impact,
			effort = EXCLUDED.effort,
			urgency = EXCLUDED.urgency,
			dependency = EXCLUDED.dependency,
			workload = EXCLUDED.workload,
			overall = EXCLUDED.overall,
			confidence = EXCLUDED.confidence,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.pool.Exec(ctx, query,
		rec.ID,
		rec.UserID,
		rec.TaskID,
		rec.Score.Impact,
		rec.Score.Effort,
		rec.Score.Urgency,
		rec.Score.Dependency,
		rec.Score.Workload,
		rec.Score.Overall,
		rec.Score.Confidence,
		rec.Score.UpdatedAt,
	)
	return err
}

// ListByUser returns all persisted scores for a user, most urgent first.
func (r *PostgresScoreRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.ScoreRecord, error) {
	query := `
		SELECT id, user_id, task_id, impact, effort, urgency,
		       dependency, workload, overall, confidence, updated_at
		FROM priority_scores
		WHERE user_id = $1
		ORDER BY overall DESC, updated_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.ScoreRecord
	for rows.Next() {
		var rec domain.ScoreRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.UserID,
			&rec.TaskID,
			&rec.Score.Impact,
			&rec.Score.Effort,
			&rec.Score.Urgency,
			&rec.Score.Dependency,
			&rec.Score.Workload,
			&rec.Score.Overall,
			&rec.Score.Confidence,
			&rec.Score.UpdatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// DeleteByUser removes all persisted scores for a user.
func (r *PostgresScoreRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM priority_scores WHERE user_id = $1`, userID)
	return err
}

var _ domain.ScoreRepository = (*PostgresScoreRepository)(nil)
