// Package domain contains the domain model for the scoring bounded context.
package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/felixgeelhaar/taskpilot/internal/shared/domain"
	"github.com/google/uuid"
)

var (
	ErrEmptyTitle          = errors.New("task title cannot be empty")
	ErrTaskAlreadyComplete = errors.New("task is already completed")
	ErrInvalidPriority     = errors.New("invalid priority value")
)

// Priority represents the user-assigned task priority level.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
)

var priorityNames = map[Priority]string{
	PriorityLow:    "low",
	PriorityMedium: "medium",
	PriorityHigh:   "high",
}

var priorityValues = map[string]Priority{
	"low":    PriorityLow,
	"medium": PriorityMedium,
	"high":   PriorityHigh,
}

// ParsePriority creates a Priority from a string.
func ParsePriority(s string) (Priority, error) {
	p, ok := priorityValues[strings.ToLower(s)]
	if !ok {
		return PriorityLow, ErrInvalidPriority
	}
	return p, nil
}

// String returns the string representation of the priority.
func (p Priority) String() string {
	if name, ok := priorityNames[p]; ok {
		return name
	}
	return "unknown"
}

// IsValid returns true if the priority is a valid value.
func (p Priority) IsValid() bool {
	_, ok := priorityNames[p]
	return ok
}

// ImpactHint is an optional caller-supplied impact annotation.
// The zero value means no hint was given.
type ImpactHint string

const (
	ImpactHintNone     ImpactHint = ""
	ImpactHintCritical ImpactHint = "critical"
	ImpactHintHigh     ImpactHint = "high"
	ImpactHintMedium   ImpactHint = "medium"
	ImpactHintLow      ImpactHint = "low"
)

// EffortHint is an optional caller-supplied effort annotation.
type EffortHint string

const (
	EffortHintNone     EffortHint = ""
	EffortHintVeryHigh EffortHint = "very_high"
	EffortHintHigh     EffortHint = "high"
	EffortHintMedium   EffortHint = "medium"
	EffortHintLow      EffortHint = "low"
)

// Task represents a unit of work to be scored. Subtasks are tasks with a
// parent reference; they denormalize the parent's owner at construction so
// workload scoring never needs a parent lookup.
type Task struct {
	domain.BaseAggregateRoot
	userID       uuid.UUID
	parentID     *uuid.UUID
	title        string
	completed    bool
	completedAt  *time.Time
	dueDate      *time.Time
	priority     Priority
	impactHint   ImpactHint
	effortHint   EffortHint
	estimate     string
	analysis     string
	dependencies []Dependency
	score        *PriorityScore
}

// NewTask creates a new top-level task with the given title.
func NewTask(userID uuid.UUID, title string) (*Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	t := &Task{
		BaseAggregateRoot: domain.NewBaseAggregateRoot(),
		userID:            userID,
		title:             title,
		priority:          PriorityMedium,
	}

	return t, nil
}

// NewSubtask creates a subtask nested one level under parent. The owner is
// inherited from the parent.
func NewSubtask(parent *Task, title string) (*Task, error) {
	t, err := NewTask(parent.UserID(), title)
	if err != nil {
		return nil, err
	}
	parentID := parent.ID()
	t.parentID = &parentID
	return t, nil
}

// Rehydrate recreates a task from persisted state without emitting events.
func Rehydrate(
	id uuid.UUID,
	userID uuid.UUID,
	parentID *uuid.UUID,
	title string,
	completed bool,
	dueDate *time.Time,
	priority Priority,
	createdAt, updatedAt time.Time,
) *Task {
	return &Task{
		BaseAggregateRoot: domain.RehydrateBaseAggregateRoot(
			domain.RehydrateBaseEntity(id, createdAt, updatedAt),
		),
		userID:    userID,
		parentID:  parentID,
		title:     title,
		completed: completed,
		dueDate:   dueDate,
		priority:  priority,
	}
}

// Getters

func (t *Task) UserID() uuid.UUID          { return t.userID }
func (t *Task) ParentID() *uuid.UUID       { return t.parentID }
func (t *Task) Title() string              { return t.title }
func (t *Task) IsCompleted() bool          { return t.completed }
func (t *Task) IsSubtask() bool            { return t.parentID != nil }
func (t *Task) CompletedAt() *time.Time    { return t.completedAt }
func (t *Task) DueDate() *time.Time        { return t.dueDate }
func (t *Task) Priority() Priority         { return t.priority }
func (t *Task) ImpactHint() ImpactHint     { return t.impactHint }
func (t *Task) EffortHint() EffortHint     { return t.effortHint }
func (t *Task) Estimate() string           { return t.estimate }
func (t *Task) Analysis() string           { return t.analysis }
func (t *Task) Dependencies() []Dependency { return t.dependencies }
func (t *Task) Score() *PriorityScore      { return t.score }

// SetPriority updates the task priority.
func (t *Task) SetPriority(priority Priority) error {
	if !priority.IsValid() {
		return ErrInvalidPriority
	}
	t.priority = priority
	t.Touch()
	return nil
}

// SetDueDate updates the due date.
func (t *Task) SetDueDate(dueDate *time.Time) {
	t.dueDate = dueDate
	t.Touch()
}

// SetEstimate updates the free-text time estimate (e.g. "4h", "2d").
func (t *Task) SetEstimate(estimate string) {
	t.estimate = strings.TrimSpace(estimate)
	t.Touch()
}

// SetImpactHint updates the impact hint.
func (t *Task) SetImpactHint(hint ImpactHint) {
	t.impactHint = hint
	t.Touch()
}

// SetEffortHint updates the effort hint.
func (t *Task) SetEffortHint(hint EffortHint) {
	t.effortHint = hint
	t.Touch()
}

// SetAnalysis attaches prior AI analysis text. The leading difficulty label
// ("Hard - needs a schema migration") feeds the effort heuristic.
func (t *Task) SetAnalysis(analysis string) {
	t.analysis = strings.TrimSpace(analysis)
	t.Touch()
}

// AddDependency records a relationship to another task. The engine only reads
// the edges that are present; it does not enforce symmetry between blocks and
// blocked_by on the referenced task.
func (t *Task) AddDependency(dep Dependency) {
	t.dependencies = append(t.dependencies, dep)
	t.Touch()
}

// AttachScore replaces the cached priority score on the task. Scores are
// immutable; a new computation always produces a new value.
func (t *Task) AttachScore(score PriorityScore) {
	t.score = &score
	t.Touch()
}

// Complete marks the task as completed. The emitted event carries the
// parsed estimate as the actual duration; callers that measured the real
// time spent use CompleteWithActual instead.
func (t *Task) Complete() error {
	return t.CompleteWithActual(ParseEstimatedTime(t.estimate))
}

// CompleteWithActual marks the task as completed, recording how many hours
// it actually took.
func (t *Task) CompleteWithActual(actualHours float64) error {
	if t.completed {
		return ErrTaskAlreadyComplete
	}

	now := time.Now().UTC()
	t.completed = true
	t.completedAt = &now
	t.Touch()

	t.AddDomainEvent(NewTaskCompleted(t.ID(), t.userID, t.title, actualHours))

	return nil
}
