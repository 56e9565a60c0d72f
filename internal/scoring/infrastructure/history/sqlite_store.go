package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/felixgeelhaar/taskpilot/internal/scoring/domain"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS historical_patterns (
	user_id              TEXT PRIMARY KEY,
	avg_completion_hours REAL NOT NULL,
	success_rate         REAL NOT NULL,
	preferred_hours      TEXT NOT NULL,
	preferred_days       TEXT NOT NULL,
	similar_completed    INTEGER NOT NULL,
	updated_at           TEXT NOT NULL
)`

// SQLitePatternStore persists historical patterns per user. Writes for a
// given user are serialized with a per-user mutex.
type SQLitePatternStore struct {
	db    *sql.DB
	now   func() time.Time
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

// OpenSQLitePatternStore opens (and migrates) the pattern database at path.
func OpenSQLitePatternStore(path string) (*SQLitePatternStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pattern database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate pattern database: %w", err)
	}
	return &SQLitePatternStore{
		db:    db,
		now:   time.Now,
		locks: make(map[uuid.UUID]*sync.Mutex),
	}, nil
}

// WithClock overrides the store's clock. Used by tests.
func (s *SQLitePatternStore) WithClock(now func() time.Time) *SQLitePatternStore {
	s.now = now
	return s
}

// Close closes the underlying database.
func (s *SQLitePatternStore) Close() error { return s.db.Close() }

func (s *SQLitePatternStore) userLock(userID uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[userID] = lock
	}
	return lock
}

// Get returns the user's pattern, regenerating defaults when missing or stale.
func (s *SQLitePatternStore) Get(ctx context.Context, userID uuid.UUID) (domain.HistoricalPattern, error) {
	now := s.now().UTC()

	p, err := s.load(ctx, userID)
	if err == nil && !p.IsStale(now) {
		return p, nil
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return domain.HistoricalPattern{}, err
	}

	p = domain.DefaultPattern(userID, now)
	if err := s.save(ctx, p); err != nil {
		return domain.HistoricalPattern{}, err
	}
	return p, nil
}

// RecordCompletion folds a completion into the user's rolling statistics.
func (s *SQLitePatternStore) RecordCompletion(ctx context.Context, userID uuid.UUID, actualHours float64) error {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	now := s.now().UTC()
	p, err := s.load(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		p = domain.DefaultPattern(userID, now)
	} else if err != nil {
		return err
	} else if p.IsStale(now) {
		p = domain.DefaultPattern(userID, now)
	}

	p.RecordCompletion(actualHours, now)
	return s.save(ctx, p)
}

func (s *SQLitePatternStore) load(ctx context.Context, userID uuid.UUID) (domain.HistoricalPattern, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT avg_completion_hours, success_rate, preferred_hours,
		       preferred_days, similar_completed, updated_at
		FROM historical_patterns
		WHERE user_id = ?`, userID.String())

	var (
		p             domain.HistoricalPattern
		hoursJSON     string
		daysJSON      string
		updatedAtText string
	)
	p.UserID = userID

	if err := row.Scan(
		&p.AvgCompletionHours,
		&p.SuccessRate,
		&hoursJSON,
		&daysJSON,
		&p.SimilarCompleted,
		&updatedAtText,
	); err != nil {
		return domain.HistoricalPattern{}, err
	}

	if err := json.Unmarshal([]byte(hoursJSON), &p.PreferredHours); err != nil {
		return domain.HistoricalPattern{}, fmt.Errorf("invalid preferred_hours: %w", err)
	}
	if err := json.Unmarshal([]byte(daysJSON), &p.PreferredDays); err != nil {
		return domain.HistoricalPattern{}, fmt.Errorf("invalid preferred_days: %w", err)
	}

	updatedAt, err := time.Parse(time.RFC3339, updatedAtText)
	if err != nil {
		return domain.HistoricalPattern{}, fmt.Errorf("invalid updated_at: %w", err)
	}
	p.UpdatedAt = updatedAt

	return p, nil
}

func (s *SQLitePatternStore) save(ctx context.Context, p domain.HistoricalPattern) error {
	hoursJSON, err := json.Marshal(p.PreferredHours)
	if err != nil {
		return err
	}
	daysJSON, err := json.Marshal(p.PreferredDays)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO historical_patterns (
			user_id, avg_completion_hours, success_rate,
			preferred_hours, preferred_days, similar_completed, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			avg_completion_hours = excluded.avg_completion_hours,
			success_rate = excluded.success_rate,
			preferred_hours = excluded.preferred_hours,
			preferred_days = excluded.preferred_days,
			similar_completed = excluded.similar_completed,
			updated_at = excluded.updated_at`,
		p.UserID.String(),
		p.AvgCompletionHours,
		p.SuccessRate,
		string(hoursJSON),
		string(daysJSON),
		p.SimilarCompleted,
		p.UpdatedAt.Format(time.RFC3339),
	)
	return err
}

var _ domain.PatternStore = (*SQLitePatternStore)(nil)
