package subscribers

import (
	"context"
	"log/slog"
	"testing"

	"github.com/felixgeelhaar/taskpilot/internal/scoring/domain"
	"github.com/felixgeelhaar/taskpilot/internal/scoring/infrastructure/history"
	"github.com/felixgeelhaar/taskpilot/internal/shared/infrastructure/eventbus"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompletionSubscriber_RecordsCompletion(t *testing.T) {
	ctx := context.Background()
	patterns := history.NewMemoryPatternStore()
	subscriber := NewCompletionSubscriber(patterns, slog.New(slog.DiscardHandler))

	bus := eventbus.NewInProcessEventBus(slog.New(slog.DiscardHandler))
	bus.RegisterConsumer(subscriber)

	task, err := domain.NewTask(uuid.New(), "Finish migration")
	require.NoError(t, err)
	task.SetEstimate("6h")
	require.NoError(t, task.Complete())

	events := task.DomainEvents()
	require.Len(t, events, 1)
	payload, err := eventbus.EncodeDomainEvent(events[0])
	require.NoError(t, err)
	require.NoError(t, bus.Publish(ctx, events[0].RoutingKey(), payload))

	p, err := patterns.Get(ctx, task.UserID())
	require.NoError(t, err)
	assert.Equal(t, 1, p.SimilarCompleted)
	assert.Equal(t, 6.0, p.AvgCompletionHours)
}

func TestCompletionSubscriber_RejectsMissingUser(t *testing.T) {
	subscriber := NewCompletionSubscriber(history.NewMemoryPatternStore(), slog.New(slog.DiscardHandler))

	err := subscriber.Handle(context.Background(), &eventbus.ConsumedEvent{
		EventID:    uuid.New(),
		RoutingKey: domain.RoutingKeyTaskCompleted,
		Payload:    []byte(`{"title": "orphaned"}`),
	})
	require.Error(t, err)
}

func TestCompletionSubscriber_EventTypes(t *testing.T) {
	subscriber := NewCompletionSubscriber(history.NewMemoryPatternStore(), nil)
	assert.Equal(t, []string{domain.RoutingKeyTaskCompleted}, subscriber.EventTypes())
}
