package cart

import (
	"fmt"
	"strconv"

	"fooddelivery/domain/shared"
)

var (
	// ErrConcurrentModification is returned when the optimistic version check fails.
	// It wraps shared.ErrConflict so callers may retry.
	ErrConcurrentModification = fmt.Errorf("cart was modified by another transaction: %w", shared.ErrConflict)
)

// NewCartNotFoundError reports a missing cart looked up by field.
func NewCartNotFoundError(field string, value any) error {
	return shared.NewNotFoundError("cart", field, value)
}

// NewUserCartNotFoundError is raised when a user has no provisioned cart.
func NewUserCartNotFoundError(userID int64) error {
	return shared.NewNotFoundError("cart", "userId", strconv.FormatInt(userID, 10))
}

func NewCartItemNotFoundError(itemID string) error {
	return shared.NewNotFoundError("cartItem", "id", itemID)
}

func NewInvalidQuantityError(quantity int) error {
	return shared.NewValidationError("cartItem", "quantity", fmt.Sprintf("quantity must be greater than 0, got %d", quantity))
}

// NewCartNotOwnedError is raised when a caller touches another user's cart.
func NewCartNotOwnedError(cartID string) error {
	return shared.NewForbiddenError("cart", "cart "+cartID+" does not belong to the current user")
}

func NewConcurrentModificationError(cartID string) error {
	return shared.NewError(ErrConcurrentModification, "cart", "cart "+cartID+" was modified by another transaction, please retry")
}
