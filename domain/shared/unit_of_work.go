package shared

import "context"

// UnitOfWork is the transaction boundary of one cart or order operation.
// Aggregates registered inside Execute have their recorded events handed to
// the outbox (or the in-process bus) only if fn succeeds; repositories
// called with the ctx given to fn join the same transaction.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(ctx context.Context) error) error
	RegisterNew(aggregate AggregateRoot)
	RegisterDirty(aggregate AggregateRoot)
	RegisterRemoved(aggregate AggregateRoot)
}

// UnitOfWorkFactory returns a fresh UnitOfWork per call.
type UnitOfWorkFactory interface {
	New() UnitOfWork
}

// OutboxRepository appends an event to the outbox within the caller's transaction.
type OutboxRepository interface {
	SaveEvent(ctx context.Context, event DomainEvent) error
}
