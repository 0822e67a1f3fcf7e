/*
Package order - order domain errors

Every constructor returns a *shared.DomainError, so callers classify with
errors.Is against the shared sentinels and read the origin stack through
shared.Stacker. Transport concerns stay out of this package.
*/
package order

import (
	"fmt"
	"strconv"

	"fooddelivery/domain/shared"
)

var (
	// ErrConcurrentModification optimistic lock failure; wraps shared.ErrConflict
	ErrConcurrentModification = fmt.Errorf("order was modified by another transaction: %w", shared.ErrConflict)

	// ErrRestaurantClosed the restaurant does not accept orders right now
	ErrRestaurantClosed = fmt.Errorf("restaurant is closed: %w", shared.ErrInvalidState)
)

func NewOrderNotFoundError(orderID string) error {
	return shared.NewNotFoundError("order", "id", orderID)
}

func NewConcurrentModificationError(orderID string) error {
	return shared.NewError(ErrConcurrentModification, "order", "order "+orderID+" was modified by another transaction, please retry")
}

// NewInvalidStatusError rejects a status outside the whitelist.
func NewInvalidStatusError(status string) error {
	return shared.NewInvalidStateError("order", "Invalid order status: "+status)
}

// NewInvalidTransitionError rejects a from -> to pair missing from the transition table.
func NewInvalidTransitionError(from, to Status) error {
	return shared.NewInvalidStateError("order", "cannot transition from "+string(from)+" to "+string(to))
}

func NewCannotCancelError(current Status) error {
	return shared.NewInvalidStateError("order", "Cannot cancel order in "+string(current)+" status")
}

func NewRestaurantClosedError(restaurantID int64) error {
	e := shared.NewError(ErrRestaurantClosed, "restaurant", "Restaurant is currently closed")
	e.Field = "id"
	e.Value = strconv.FormatInt(restaurantID, 10)
	return e
}

func NewEmptyOrderItemsError() error {
	return shared.NewValidationError("order", "items", "order must have at least one item")
}

func NewInvalidQuantityError(foodID int64, quantity int) error {
	return shared.NewValidationError("orderItem", "quantity",
		fmt.Sprintf("quantity for food %d must be greater than 0, got %d", foodID, quantity))
}

func NewNonPositiveTotalError() error {
	return shared.NewValidationError("order", "totalAmount", "order total amount must be positive")
}

// NewFoodNotInRestaurantError rejects a line for a food served by another restaurant.
func NewFoodNotInRestaurantError(foodID, restaurantID int64) error {
	return shared.NewValidationError("orderItem", "foodId",
		fmt.Sprintf("food %d is not served by restaurant %d", foodID, restaurantID))
}

func NewInvalidPaymentMethodError(method string) error {
	return shared.NewValidationError("order", "paymentMethod", "Invalid payment method: "+method)
}

// NewSessionMismatchError rejects a payment outcome for a different checkout session.
func NewSessionMismatchError(orderID, sessionID string) error {
	return shared.NewValidationError("payment", "sessionId",
		"checkout session "+sessionID+" does not belong to order "+orderID)
}

// NewNoCheckoutSessionError rejects a payment outcome for an order that never
// opened a checkout session.
func NewNoCheckoutSessionError(orderID string) error {
	return shared.NewInvalidStateError("payment", "order "+orderID+" has no checkout session")
}

func NewPaymentAlreadySettledError(orderID string, status PaymentStatus) error {
	return shared.NewInvalidStateError("payment", "payment for order "+orderID+" is already "+string(status))
}

func NewPaymentAlreadyAttachedError(orderID string) error {
	return shared.NewInvalidStateError("payment", "order "+orderID+" already has a payment record")
}

// NewOrderAccessDeniedError is raised when a caller reads an order that is not theirs.
func NewOrderAccessDeniedError(orderID string) error {
	return shared.NewForbiddenError("order", "order "+orderID+" is not accessible to the current user")
}
