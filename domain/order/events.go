package order

import (
	"fooddelivery/domain/shared"
)

type OrderPlacedEvent struct {
	shared.BaseEvent
	userID        int64
	restaurantID  int64
	totalAmount   shared.Money
	paymentMethod PaymentMethod
	itemCount     int
}

func NewOrderPlacedEvent(o *Order) *OrderPlacedEvent {
	return &OrderPlacedEvent{
		BaseEvent:     shared.NewBaseEvent("order.placed", o.id),
		userID:        o.userID,
		restaurantID:  o.restaurantID,
		totalAmount:   o.totalAmount,
		paymentMethod: o.paymentMethod,
		itemCount:     len(o.items),
	}
}

func (e *OrderPlacedEvent) UserID() int64             { return e.userID }
func (e *OrderPlacedEvent) RestaurantID() int64       { return e.restaurantID }
func (e *OrderPlacedEvent) TotalAmount() shared.Money { return e.totalAmount }

func (e *OrderPlacedEvent) Payload() map[string]any {
	return map[string]any{
		"orderId":       e.GetAggregateID(),
		"userId":        e.userID,
		"restaurantId":  e.restaurantID,
		"totalAmount":   e.totalAmount.Amount().StringFixed(2),
		"currency":      e.totalAmount.Currency(),
		"paymentMethod": string(e.paymentMethod),
		"itemCount":     e.itemCount,
	}
}

type OrderStatusChangedEvent struct {
	shared.BaseEvent
	from Status
	to   Status
}

func NewOrderStatusChangedEvent(orderID string, from, to Status) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseEvent: shared.NewBaseEvent("order.status_changed", orderID),
		from:      from,
		to:        to,
	}
}

func (e *OrderStatusChangedEvent) From() Status { return e.from }
func (e *OrderStatusChangedEvent) To() Status   { return e.to }

func (e *OrderStatusChangedEvent) Payload() map[string]any {
	return map[string]any{
		"orderId": e.GetAggregateID(),
		"from":    string(e.from),
		"to":      string(e.to),
	}
}

type OrderCancelledEvent struct {
	shared.BaseEvent
	userID       int64
	restaurantID int64
	reason       string
}

func NewOrderCancelledEvent(o *Order, reason string) *OrderCancelledEvent {
	return &OrderCancelledEvent{
		BaseEvent:    shared.NewBaseEvent("order.cancelled", o.id),
		userID:       o.userID,
		restaurantID: o.restaurantID,
		reason:       reason,
	}
}

func (e *OrderCancelledEvent) Reason() string { return e.reason }

func (e *OrderCancelledEvent) Payload() map[string]any {
	return map[string]any{
		"orderId":      e.GetAggregateID(),
		"userId":       e.userID,
		"restaurantId": e.restaurantID,
		"reason":       e.reason,
	}
}

type PaymentRecordedEvent struct {
	shared.BaseEvent
	provider  string
	sessionID string
	amount    shared.Money
}

func NewPaymentRecordedEvent(orderID string, p *Payment) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseEvent: shared.NewBaseEvent("order.payment_recorded", orderID),
		provider:  p.provider,
		sessionID: p.sessionID,
		amount:    p.amount,
	}
}

func (e *PaymentRecordedEvent) SessionID() string { return e.sessionID }

func (e *PaymentRecordedEvent) Payload() map[string]any {
	return map[string]any{
		"orderId":   e.GetAggregateID(),
		"provider":  e.provider,
		"sessionId": e.sessionID,
		"amount":    e.amount.Amount().StringFixed(2),
		"currency":  e.amount.Currency(),
	}
}

type PaymentSucceededEvent struct {
	shared.BaseEvent
	sessionID string
}

func NewPaymentSucceededEvent(orderID, sessionID string) *PaymentSucceededEvent {
	return &PaymentSucceededEvent{
		BaseEvent: shared.NewBaseEvent("order.payment_succeeded", orderID),
		sessionID: sessionID,
	}
}

func (e *PaymentSucceededEvent) Payload() map[string]any {
	return map[string]any{
		"orderId":   e.GetAggregateID(),
		"sessionId": e.sessionID,
	}
}

type PaymentFailedEvent struct {
	shared.BaseEvent
	sessionID string
	reason    string
}

func NewPaymentFailedEvent(orderID, sessionID, reason string) *PaymentFailedEvent {
	return &PaymentFailedEvent{
		BaseEvent: shared.NewBaseEvent("order.payment_failed", orderID),
		sessionID: sessionID,
		reason:    reason,
	}
}

func (e *PaymentFailedEvent) Reason() string { return e.reason }

func (e *PaymentFailedEvent) Payload() map[string]any {
	return map[string]any{
		"orderId":   e.GetAggregateID(),
		"sessionId": e.sessionID,
		"reason":    e.reason,
	}
}
