package po

import (
	"time"

	"fooddelivery/domain/shared"
	"fooddelivery/infrastructure/messaging"
)

// OutboxEventPO transactional outbox row.
type OutboxEventPO struct {
	ID          string    `gorm:"primaryKey;size:64"`
	AggregateID string    `gorm:"size:64;index;not null"`
	EventType   string    `gorm:"size:100;index;not null"`          // e.g. "order.placed"
	Payload     string    `gorm:"type:text;not null"`               // JSON envelope
	Status      string    `gorm:"size:20;default:PENDING;not null"` // PENDING, PROCESSING, PUBLISHED, FAILED
	RetryCount  int       `gorm:"default:0;not null"`
	CreatedAt   time.Time `gorm:"index"`
	UpdatedAt   time.Time
}

func (OutboxEventPO) TableName() string {
	return "outbox_events"
}

type EventStatus string

const (
	EventStatusPending    EventStatus = "PENDING"
	EventStatusProcessing EventStatus = "PROCESSING"
	EventStatusPublished  EventStatus = "PUBLISHED"
	EventStatusFailed     EventStatus = "FAILED"
)

// FromDomainEvent converts a domain event to an outbox row.
func FromDomainEvent(event shared.DomainEvent) (*OutboxEventPO, error) {
	msg, err := messaging.NewMessage(event)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &OutboxEventPO{
		ID:          msg.ID,
		AggregateID: msg.AggregateID,
		EventType:   msg.EventType,
		Payload:     string(msg.Payload),
		Status:      string(EventStatusPending),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// ToEnvelope decodes the stored payload.
func (p *OutboxEventPO) ToEnvelope() (*messaging.Envelope, error) {
	return messaging.DecodeEnvelope([]byte(p.Payload))
}
