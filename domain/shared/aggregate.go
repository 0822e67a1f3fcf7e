package shared

// AggregateRoot is the entry point of a consistency boundary.
// Cart and Order are the aggregate roots of this service: every change to a
// CartItem or OrderItem goes through its owning root, and the root records the
// domain events that the unit of work later writes to the outbox.
type AggregateRoot interface {
	// ID returns the global identifier of the aggregate.
	ID() string

	// Version returns the optimistic-lock version loaded from storage.
	Version() int

	// PullEvents returns the recorded domain events and clears them.
	PullEvents() []DomainEvent
}

// Entity has identity but lives inside an aggregate.
type Entity interface {
	ID() string
}

// EventRecorder is embedded by aggregates to collect domain events.
type EventRecorder struct {
	events []DomainEvent
}

// Record appends an event to the pending list.
func (r *EventRecorder) Record(event DomainEvent) {
	r.events = append(r.events, event)
}

// PullEvents returns a copy of the pending events and resets the list.
func (r *EventRecorder) PullEvents() []DomainEvent {
	events := make([]DomainEvent, len(r.events))
	copy(events, r.events)
	r.events = nil
	return events
}

// PendingEvents reports how many events are waiting to be pulled.
func (r *EventRecorder) PendingEvents() int {
	return len(r.events)
}
