// Package subscribers wires domain events into the scoring context's
// application services.
package subscribers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/taskpilot/internal/scoring/domain"
	"github.com/felixgeelhaar/taskpilot/internal/shared/infrastructure/eventbus"
	"github.com/google/uuid"
)

// CompletionRecorder is the slice of the pattern store the subscriber needs.
type CompletionRecorder interface {
	RecordCompletion(ctx context.Context, userID uuid.UUID, actualHours float64) error
}

// CompletionSubscriber folds completed tasks into the owner's historical
// pattern, keeping effort judgments personal over time.
type CompletionSubscriber struct {
	recorder CompletionRecorder
	logger   *slog.Logger
}

// NewCompletionSubscriber creates the subscriber.
func NewCompletionSubscriber(recorder CompletionRecorder, logger *slog.Logger) *CompletionSubscriber {
	if logger == nil {
		logger = slog.Default()
	}
	return &CompletionSubscriber{recorder: recorder, logger: logger}
}

// EventTypes returns the routing keys this subscriber handles.
func (s *CompletionSubscriber) EventTypes() []string {
	return []string{domain.RoutingKeyTaskCompleted}
}

// Handle records the completion in the owner's historical pattern.
func (s *CompletionSubscriber) Handle(ctx context.Context, event *eventbus.ConsumedEvent) error {
	var payload struct {
		UserID      uuid.UUID `json:"user_id"`
		Title       string    `json:"title"`
		ActualHours float64   `json:"actual_hours"`
	}
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("failed to decode task completed payload: %w", err)
	}
	if payload.UserID == uuid.Nil {
		return fmt.Errorf("task completed event %s has no user", event.EventID)
	}

	if err := s.recorder.RecordCompletion(ctx, payload.UserID, payload.ActualHours); err != nil {
		return fmt.Errorf("failed to record completion: %w", err)
	}

	s.logger.Debug("completion recorded",
		"user_id", payload.UserID,
		"task_id", event.AggregateID,
		"actual_hours", payload.ActualHours,
	)
	return nil
}

var _ eventbus.EventConsumer = (*CompletionSubscriber)(nil)
