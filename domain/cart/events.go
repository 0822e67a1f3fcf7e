package cart

import (
	"strconv"

	"fooddelivery/domain/shared"
)

// CartClearedEvent is recorded when every line is removed from a cart.
type CartClearedEvent struct {
	shared.BaseEvent
	userID       int64
	removedLines int
	reason       string
}

func NewCartClearedEvent(cartID string, userID int64, removedLines int, reason string) *CartClearedEvent {
	return &CartClearedEvent{
		BaseEvent:    shared.NewBaseEvent("cart.cleared", cartID),
		userID:       userID,
		removedLines: removedLines,
		reason:       reason,
	}
}

func (e *CartClearedEvent) UserID() int64     { return e.userID }
func (e *CartClearedEvent) RemovedLines() int { return e.removedLines }
func (e *CartClearedEvent) Reason() string    { return e.reason }

func (e *CartClearedEvent) Payload() map[string]any {
	return map[string]any{
		"cartId":       e.GetAggregateID(),
		"userId":       strconv.FormatInt(e.userID, 10),
		"removedLines": e.removedLines,
		"reason":       e.reason,
	}
}
