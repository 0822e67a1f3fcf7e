package order

import (
	"context"

	"fooddelivery/domain/shared"
)

// Repository persists Order aggregates.
type Repository interface {
	// Save inserts a new order or updates status, payment status and the
	// payment record of a loaded one. Cancelled orders are archived on save.
	// A stale version yields ErrConcurrentModification.
	Save(ctx context.Context, order *Order) error

	// FindByID returns live orders only; archived orders are NotFound.
	FindByID(ctx context.Context, id string) (*Order, error)

	// FindByIDIncludingArchived is used by payment reconciliation.
	FindByIDIncludingArchived(ctx context.Context, id string) (*Order, error)

	// FindAll lists orders, archived included, newest first.
	FindAll(ctx context.Context, spec shared.Specification[*Order]) ([]*Order, error)
}
