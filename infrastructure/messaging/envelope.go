package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fooddelivery/domain/shared"

	"github.com/google/uuid"
)

// Envelope is the JSON body of every notification.
type Envelope struct {
	EventID     string         `json:"event_id"`
	EventName   string         `json:"event_name"`
	AggregateID string         `json:"aggregate_id"`
	OccurredOn  time.Time      `json:"occurred_on"`
	Data        map[string]any `json:"data"`
}

// NewMessage wraps event in an envelope with a fresh time-ordered id.
func NewMessage(event shared.DomainEvent) (Message, error) {
	if err := shared.ValidateEvent(event); err != nil {
		return Message{}, err
	}
	eventID, err := uuid.NewV7()
	if err != nil {
		return Message{}, fmt.Errorf("failed to generate event ID: %w", err)
	}

	payload, err := json.Marshal(Envelope{
		EventID:     eventID.String(),
		EventName:   event.EventName(),
		AggregateID: event.GetAggregateID(),
		OccurredOn:  event.OccurredOn(),
		Data:        event.Payload(),
	})
	if err != nil {
		return Message{}, fmt.Errorf("failed to serialize event %s: %w", event.EventName(), err)
	}
	return Message{
		ID:          eventID.String(),
		AggregateID: event.GetAggregateID(),
		EventType:   event.EventName(),
		Payload:     payload,
	}, nil
}

// DecodeEnvelope parses a message payload.
func DecodeEnvelope(payload []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// Publisher delivers one message to a broker.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
}

// EventForwarder hands in-process domain events straight to a broker. It
// replaces the outbox relay when the service runs without a database.
type EventForwarder struct {
	publisher Publisher
	timeout   time.Duration
}

func NewEventForwarder(publisher Publisher) *EventForwarder {
	return &EventForwarder{publisher: publisher, timeout: 5 * time.Second}
}

func (f *EventForwarder) Handle(event shared.DomainEvent) error {
	msg, err := NewMessage(event)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	defer cancel()
	return f.publisher.Publish(ctx, msg)
}

func (f *EventForwarder) Name() string { return "notification-forwarder" }

// Subscribe registers the forwarder for every event name.
func (f *EventForwarder) Subscribe(bus shared.EventPublisher, eventNames ...string) error {
	for _, name := range eventNames {
		if err := bus.Subscribe(name, f); err != nil {
			return err
		}
	}
	return nil
}

var _ shared.EventHandler = (*EventForwarder)(nil)
