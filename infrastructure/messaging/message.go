// Package messaging delivers outbox events to brokers.
package messaging

import (
	"context"

	"fooddelivery/pkg/logger"

	"go.uber.org/zap"
)

// Message is one outbox row ready for delivery. Payload is the JSON envelope
// {event_id, event_name, aggregate_id, occurred_on, data}.
type Message struct {
	ID          string
	AggregateID string
	EventType   string
	Payload     []byte
}

// LogPublisher writes messages to the application log. Used when no broker is
// configured.
type LogPublisher struct{}

func NewLogPublisher() *LogPublisher { return &LogPublisher{} }

func (p *LogPublisher) Publish(ctx context.Context, msg Message) error {
	logger.Info("outbox event",
		zap.String("event_id", msg.ID),
		zap.String("event_type", msg.EventType),
		zap.String("aggregate_id", msg.AggregateID),
		zap.ByteString("payload", msg.Payload),
	)
	return nil
}

func (p *LogPublisher) Close() error { return nil }
