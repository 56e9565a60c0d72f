package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/felixgeelhaar/taskpilot/internal/shared/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingConsumer struct {
	keys     []string
	received []*ConsumedEvent
	err      error
}

func (c *recordingConsumer) EventTypes() []string { return c.keys }

func (c *recordingConsumer) Handle(_ context.Context, event *ConsumedEvent) error {
	c.received = append(c.received, event)
	return c.err
}

type testEvent struct {
	domain.BaseEvent
	Detail string `json:"detail"`
}

func TestInProcessEventBus_DispatchesByRoutingKey(t *testing.T) {
	bus := NewInProcessEventBus(slog.Default())

	matched := &recordingConsumer{keys: []string{"scoring.task.completed"}}
	other := &recordingConsumer{keys: []string{"scoring.score.computed"}}
	bus.RegisterConsumer(matched)
	bus.RegisterConsumer(other)

	event := testEvent{
		BaseEvent: domain.NewBaseEvent(uuid.New(), "Task", "scoring.task.completed"),
		Detail:    "done",
	}
	payload, err := EncodeDomainEvent(event)
	require.NoError(t, err)

	require.NoError(t, bus.Publish(context.Background(), event.RoutingKey(), payload))

	require.Len(t, matched.received, 1)
	assert.Empty(t, other.received)
	assert.Equal(t, event.AggregateID(), matched.received[0].AggregateID)

	var body struct {
		Detail string `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(matched.received[0].Payload, &body))
	assert.Equal(t, "done", body.Detail)
}

func TestInProcessEventBus_ConsumerErrorDoesNotFailPublish(t *testing.T) {
	bus := NewInProcessEventBus(slog.Default())
	failing := &recordingConsumer{
		keys: []string{"scoring.task.completed"},
		err:  errors.New("boom"),
	}
	bus.RegisterConsumer(failing)

	event := testEvent{
		BaseEvent: domain.NewBaseEvent(uuid.New(), "Task", "scoring.task.completed"),
	}
	payload, err := EncodeDomainEvent(event)
	require.NoError(t, err)

	assert.NoError(t, bus.Publish(context.Background(), event.RoutingKey(), payload))
	assert.Len(t, failing.received, 1)
}

func TestInProcessEventBus_MalformedPayloadIsSkipped(t *testing.T) {
	bus := NewInProcessEventBus(slog.Default())
	consumer := &recordingConsumer{keys: []string{"scoring.task.completed"}}
	bus.RegisterConsumer(consumer)

	assert.NoError(t, bus.Publish(context.Background(), "scoring.task.completed", []byte("{not json")))
	assert.Empty(t, consumer.received)
}
