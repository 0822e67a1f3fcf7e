package mysql

import (
	"context"
	"fmt"

	"fooddelivery/domain/shared"
	"fooddelivery/infrastructure/persistence"
	"fooddelivery/infrastructure/persistence/retry"
	"fooddelivery/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UnitOfWork runs one business operation in a GORM transaction and writes the
// events of every registered aggregate to the outbox before commit.
type UnitOfWork struct {
	db          *gorm.DB
	aggregates  []shared.AggregateRoot
	outbox      shared.OutboxRepository
	retryConfig retry.Config
}

func NewUnitOfWork(db *gorm.DB, policy retry.Config) *UnitOfWork {
	return &UnitOfWork{db: db, outbox: NewOutboxRepository(db), retryConfig: policy}
}

// UnitOfWorkFactory hands out one UnitOfWork per cart or order operation so
// concurrent requests never share registered aggregates.
type UnitOfWorkFactory struct {
	db     *gorm.DB
	policy retry.Config
}

func NewUnitOfWorkFactory(db *gorm.DB, policy retry.Config) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{db: db, policy: policy}
}

func (f *UnitOfWorkFactory) New() shared.UnitOfWork { return NewUnitOfWork(f.db, f.policy) }

// Execute begins a transaction, hands fn a context carrying it, saves pending
// events to the outbox and commits. Retryable failures (version conflicts,
// deadlocks, lock wait timeouts) rerun fn from scratch, so fn must reload
// whatever it mutates.
func (u *UnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	attempt := 0
	executeOnce := func(ctx context.Context) error {
		attempt++
		if attempt > 1 {
			logger.Debug("retrying unit of work", zap.Int("attempt", attempt))
		}
		u.aggregates = u.aggregates[:0]

		tx := u.db.WithContext(ctx).Begin()
		if tx.Error != nil {
			return fmt.Errorf("failed to begin transaction: %w", tx.Error)
		}
		txCtx := persistence.ContextWithTx(ctx, tx)

		if err := fn(txCtx); err != nil {
			tx.Rollback()
			return err
		}

		for _, agg := range u.aggregates {
			for _, event := range agg.PullEvents() {
				if err := u.outbox.SaveEvent(txCtx, event); err != nil {
					tx.Rollback()
					return fmt.Errorf("failed to save event to outbox: %w", err)
				}
			}
		}

		if err := tx.Commit().Error; err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
		return nil
	}

	return retry.ExecuteWithRetry(ctx, u.retryConfig, executeOnce)
}

func (u *UnitOfWork) RegisterNew(aggregate shared.AggregateRoot) {
	u.aggregates = append(u.aggregates, aggregate)
}

func (u *UnitOfWork) RegisterDirty(aggregate shared.AggregateRoot) {
	u.aggregates = append(u.aggregates, aggregate)
}

func (u *UnitOfWork) RegisterRemoved(aggregate shared.AggregateRoot) {
	u.aggregates = append(u.aggregates, aggregate)
}

var (
	_ shared.UnitOfWork        = (*UnitOfWork)(nil)
	_ shared.UnitOfWorkFactory = (*UnitOfWorkFactory)(nil)
)
