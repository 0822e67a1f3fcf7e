package shared

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// DomainEvent is a fact recorded by an aggregate.
type DomainEvent interface {
	EventName() string
	OccurredOn() time.Time
	GetAggregateID() string
	// Payload is the event-specific data serialized into the outbox.
	Payload() map[string]any
}

// EventHandler consumes domain events dispatched in-process.
type EventHandler interface {
	Handle(event DomainEvent) error
	Name() string
}

// EventPublisher dispatches events to subscribed handlers.
type EventPublisher interface {
	Publish(event DomainEvent) error
	Subscribe(eventName string, handler EventHandler) error
}

// ValidateEvent rejects events the outbox could not route: every
// notification needs a name, the cart or order id it concerns and a time.
func ValidateEvent(event DomainEvent) error {
	switch {
	case event == nil:
		return errors.New("invalid event: nil")
	case event.EventName() == "":
		return errors.New("invalid event: empty name")
	case event.GetAggregateID() == "":
		return fmt.Errorf("invalid event %s: empty aggregate id", event.EventName())
	case event.OccurredOn().IsZero():
		return fmt.Errorf("invalid event %s: zero timestamp", event.EventName())
	}
	return nil
}

// BaseEvent holds the fields every event shares.
type BaseEvent struct {
	name        string
	aggregateID string
	occurredOn  time.Time
}

// NewBaseEvent stamps an event with the current time.
func NewBaseEvent(name, aggregateID string) BaseEvent {
	return BaseEvent{name: name, aggregateID: aggregateID, occurredOn: time.Now()}
}

func (e BaseEvent) EventName() string      { return e.name }
func (e BaseEvent) OccurredOn() time.Time  { return e.occurredOn }
func (e BaseEvent) GetAggregateID() string { return e.aggregateID }

// EventBus dispatches synchronously to in-process handlers. It stands in for
// the outbox when the service runs without a database, so a handler error
// fails the publishing operation just like a failed outbox insert would.
type EventBus struct {
	mu       sync.RWMutex
	handlers map[string][]EventHandler
}

func NewEventBus() *EventBus {
	return &EventBus{handlers: make(map[string][]EventHandler)}
}

// Publish runs every handler subscribed to the event's name, in
// subscription order, and joins their errors. Events without subscribers are
// dropped.
func (bus *EventBus) Publish(event DomainEvent) error {
	if err := ValidateEvent(event); err != nil {
		return err
	}

	bus.mu.RLock()
	handlers := bus.handlers[event.EventName()]
	bus.mu.RUnlock()

	var errs []error
	for _, h := range handlers {
		if err := h.Handle(event); err != nil {
			errs = append(errs, fmt.Errorf("%s: %s: %w", event.EventName(), h.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Subscribe registers handler for eventName. Handler names are unique per event.
func (bus *EventBus) Subscribe(eventName string, handler EventHandler) error {
	if eventName == "" || handler == nil {
		return errors.New("subscribe: event name and handler are required")
	}

	bus.mu.Lock()
	defer bus.mu.Unlock()
	for _, h := range bus.handlers[eventName] {
		if h.Name() == handler.Name() {
			return fmt.Errorf("subscribe: %s already handles %s", handler.Name(), eventName)
		}
	}
	// Copy on write so Publish can iterate its snapshot without the lock.
	next := make([]EventHandler, 0, len(bus.handlers[eventName])+1)
	next = append(next, bus.handlers[eventName]...)
	bus.handlers[eventName] = append(next, handler)
	return nil
}

// Subscribers reports how many handlers listen to eventName.
func (bus *EventBus) Subscribers(eventName string) int {
	bus.mu.RLock()
	defer bus.mu.RUnlock()
	return len(bus.handlers[eventName])
}

// FuncHandler adapts a function to EventHandler.
type FuncHandler struct {
	name string
	fn   func(DomainEvent) error
}

func NewFuncHandler(name string, fn func(DomainEvent) error) *FuncHandler {
	return &FuncHandler{name: name, fn: fn}
}

func (h *FuncHandler) Handle(event DomainEvent) error { return h.fn(event) }
func (h *FuncHandler) Name() string                   { return h.name }

var _ EventPublisher = (*EventBus)(nil)
