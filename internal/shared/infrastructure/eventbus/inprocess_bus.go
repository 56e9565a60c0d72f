package eventbus

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/felixgeelhaar/taskpilot/internal/shared/domain"
)

// InProcessEventBus is an in-memory event bus for local mode (no RabbitMQ).
// Events are delivered synchronously to registered consumers.
type InProcessEventBus struct {
	mu        sync.Mutex
	consumers map[string][]EventConsumer
	logger    *slog.Logger
}

// NewInProcessEventBus creates a new in-process event bus.
func NewInProcessEventBus(logger *slog.Logger) *InProcessEventBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &InProcessEventBus{
		consumers: make(map[string][]EventConsumer),
		logger:    logger,
	}
}

// RegisterConsumer registers an event consumer for its routing keys.
func (b *InProcessEventBus) RegisterConsumer(consumer EventConsumer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, key := range consumer.EventTypes() {
		b.consumers[key] = append(b.consumers[key], consumer)
	}
}

// Publish decodes the envelope and synchronously dispatches it to all
// consumers registered for the routing key. Consumer failures are logged,
// never surfaced to the publisher.
func (b *InProcessEventBus) Publish(ctx context.Context, routingKey string, payload []byte) error {
	event := &ConsumedEvent{}
	if err := json.Unmarshal(payload, event); err != nil {
		b.logger.Error("failed to unmarshal event payload",
			"routing_key", routingKey,
			"error", err,
		)
		return nil
	}
	if event.RoutingKey == "" {
		event.RoutingKey = routingKey
	}

	b.mu.Lock()
	consumers := b.consumers[event.RoutingKey]
	b.mu.Unlock()

	for _, consumer := range consumers {
		if err := consumer.Handle(ctx, event); err != nil {
			b.logger.Error("event dispatch failed",
				"routing_key", event.RoutingKey,
				"event_id", event.EventID,
				"error", err,
			)
		}
	}
	return nil
}

// Close is a no-op for the in-process bus.
func (b *InProcessEventBus) Close() error { return nil }

// EncodeDomainEvent wraps a domain event into the wire envelope used by both
// the in-process bus and RabbitMQ. The event's exported fields become the
// payload.
func EncodeDomainEvent(event domain.DomainEvent) ([]byte, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}

	envelope := ConsumedEvent{
		EventID:       event.EventID(),
		AggregateID:   event.AggregateID(),
		AggregateType: event.AggregateType(),
		RoutingKey:    event.RoutingKey(),
		OccurredAt:    event.OccurredAt(),
		Payload:       payload,
		Metadata: EventMetadata{
			UserID: event.Metadata().UserID,
		},
	}
	return json.Marshal(envelope)
}
