package cart

import "context"

// Repository persists Cart aggregates.
// Lookups made with a transactional context lock the cart row until commit.
type Repository interface {
	// Save inserts a new cart or writes the changed lines of a loaded one.
	// A stale version yields ErrConcurrentModification.
	Save(ctx context.Context, cart *Cart) error

	FindByID(ctx context.Context, id string) (*Cart, error)

	FindByUserID(ctx context.Context, userID int64) (*Cart, error)

	// FindByItemID resolves the cart that owns a line.
	FindByItemID(ctx context.Context, itemID string) (*Cart, error)
}
