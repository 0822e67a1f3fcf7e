package mocks

import (
	"context"

	"fooddelivery/domain/shared"
	"fooddelivery/infrastructure/persistence/retry"
	"fooddelivery/pkg/logger"

	"go.uber.org/zap"
)

// MockUnitOfWork runs fn without a real transaction. Events of registered
// aggregates are handed to the in-process publisher after fn succeeds, which
// stands in for the outbox in mock mode.
type MockUnitOfWork struct {
	aggregates  []shared.AggregateRoot
	publisher   shared.EventPublisher
	retryConfig retry.Config
}

func NewMockUnitOfWork(publisher shared.EventPublisher) *MockUnitOfWork {
	cfg := retry.DefaultConfig
	cfg.InitialDelay = 0
	cfg.JitterEnabled = false
	return &MockUnitOfWork{
		publisher:   publisher,
		retryConfig: cfg,
	}
}

func (u *MockUnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	return retry.ExecuteWithRetry(ctx, u.retryConfig, func(ctx context.Context) error {
		u.aggregates = u.aggregates[:0]

		if err := fn(ctx); err != nil {
			return err
		}

		for _, agg := range u.aggregates {
			for _, event := range agg.PullEvents() {
				if u.publisher == nil {
					continue
				}
				if err := u.publisher.Publish(event); err != nil {
					logger.Warn("mock outbox publish failed",
						zap.String("event", event.EventName()),
						zap.String("aggregate_id", agg.ID()),
						zap.Error(err),
					)
				}
			}
		}
		return nil
	})
}

func (u *MockUnitOfWork) RegisterNew(aggregate shared.AggregateRoot) {
	u.aggregates = append(u.aggregates, aggregate)
}

func (u *MockUnitOfWork) RegisterDirty(aggregate shared.AggregateRoot) {
	u.aggregates = append(u.aggregates, aggregate)
}

func (u *MockUnitOfWork) RegisterRemoved(aggregate shared.AggregateRoot) {
	u.aggregates = append(u.aggregates, aggregate)
}

// MockUnitOfWorkFactory Mock factory sharing one publisher.
type MockUnitOfWorkFactory struct {
	publisher shared.EventPublisher
}

func NewMockUnitOfWorkFactory(publisher shared.EventPublisher) *MockUnitOfWorkFactory {
	return &MockUnitOfWorkFactory{publisher: publisher}
}

func (f *MockUnitOfWorkFactory) New() shared.UnitOfWork {
	return NewMockUnitOfWork(f.publisher)
}

var (
	_ shared.UnitOfWork        = (*MockUnitOfWork)(nil)
	_ shared.UnitOfWorkFactory = (*MockUnitOfWorkFactory)(nil)
)
