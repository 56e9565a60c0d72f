package domain

import (
	"github.com/felixgeelhaar/taskpilot/internal/shared/domain"
	"github.com/google/uuid"
)

const (
	AggregateType = "Task"

	RoutingKeyTaskCompleted = "scoring.task.completed"
	RoutingKeyScoreComputed = "scoring.score.computed"
)

// TaskCompleted is emitted when a task is completed. ActualHours is the
// hours the task actually took; with no measured duration the parsed
// estimate stands in, so completions always feed the owner's history.
type TaskCompleted struct {
	domain.BaseEvent
	UserID      uuid.UUID `json:"user_id"`
	Title       string    `json:"title"`
	ActualHours float64   `json:"actual_hours"`
}

// NewTaskCompleted creates a TaskCompleted event.
func NewTaskCompleted(taskID, userID uuid.UUID, title string, actualHours float64) TaskCompleted {
	return TaskCompleted{
		BaseEvent:   domain.NewBaseEvent(taskID, AggregateType, RoutingKeyTaskCompleted),
		UserID:      userID,
		Title:       title,
		ActualHours: actualHours,
	}
}

// ScoreComputed is emitted when the engine produces a new priority score.
type ScoreComputed struct {
	domain.BaseEvent
	UserID     uuid.UUID `json:"user_id"`
	Overall    int       `json:"overall"`
	Confidence int       `json:"confidence"`
}

// NewScoreComputed creates a ScoreComputed event.
func NewScoreComputed(taskID, userID uuid.UUID, score PriorityScore) ScoreComputed {
	return ScoreComputed{
		BaseEvent:  domain.NewBaseEvent(taskID, AggregateType, RoutingKeyScoreComputed),
		UserID:     userID,
		Overall:    score.Overall,
		Confidence: score.Confidence,
	}
}
