package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateOrderRequest is the checkout body. When Items is empty the caller's
// cart lines for the restaurant are checked out instead.
// Any client-side total is ignored; the amount is always recomputed.
type CreateOrderRequest struct {
	RestaurantID  int64              `json:"restaurantId" binding:"required"`
	AddressID     int64              `json:"addressId" binding:"required"`
	PaymentMethod string             `json:"paymentMethod" binding:"required"`
	Items         []OrderItemRequest `json:"items"`
}

// OrderItemRequest is one requested line.
type OrderItemRequest struct {
	FoodID      int64    `json:"foodId" binding:"required"`
	Quantity    int      `json:"quantity" binding:"required"`
	Ingredients []string `json:"ingredients"`
}

// CreateOrderResponse carries the placed order and the hosted checkout URL.
// PaymentURL is empty for cash on delivery.
type CreateOrderResponse struct {
	PaymentURL string         `json:"payment_url"`
	Order      *OrderResponse `json:"order"`
}

// OrderResponse is the order projection returned to clients.
type OrderResponse struct {
	OrderID        string              `json:"orderId"`
	UserID         int64               `json:"userId"`
	RestaurantID   int64               `json:"restaurantId"`
	RestaurantName string              `json:"restaurantName"`
	Items          []OrderItemResponse `json:"items"`
	TotalAmount    decimal.Decimal     `json:"totalAmount"`
	Currency       string              `json:"currency"`
	OrderStatus    string              `json:"orderStatus"`
	PaymentStatus  string              `json:"paymentStatus"`
	AddressID      int64               `json:"addressId"`
	PaymentMethod  string              `json:"paymentMethod"`
	CreatedAt      time.Time           `json:"createdAt"`
	Payment        *PaymentResponse    `json:"payment,omitempty"`
}

// OrderItemResponse is a snapshot line.
type OrderItemResponse struct {
	ID          string          `json:"id"`
	FoodID      int64           `json:"foodId"`
	FoodName    string          `json:"foodName"`
	Quantity    int             `json:"quantity"`
	Ingredients []string        `json:"ingredients"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
}

// PaymentResponse is the checkout session attached to an order.
type PaymentResponse struct {
	Provider  string          `json:"provider"`
	SessionID string          `json:"sessionId"`
	URL       string          `json:"url"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"createdAt"`
}

// PaymentOutcomeRequest is a verified payment processor notification.
type PaymentOutcomeRequest struct {
	EventID   string `json:"eventId" binding:"required"`
	OrderID   string `json:"orderId" binding:"required"`
	SessionID string `json:"sessionId" binding:"required"`
	Outcome   string `json:"outcome" binding:"required"`
	Reason    string `json:"reason"`
}

// PaymentOutcomeResponse reports the order state after a notification.
type PaymentOutcomeResponse struct {
	OrderID       string `json:"orderId"`
	OrderStatus   string `json:"orderStatus"`
	PaymentStatus string `json:"paymentStatus"`
	Duplicate     bool   `json:"duplicate"`
}
