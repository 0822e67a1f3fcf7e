package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

// AddItemRequest is the body of PUT /cart/add.
type AddItemRequest struct {
	FoodID      int64    `json:"foodId" binding:"required"`
	Quantity    int      `json:"quantity" binding:"required"`
	Ingredients []string `json:"ingredients"`
}

// CartResponse is the cart projection returned to clients.
type CartResponse struct {
	ID         string             `json:"id"`
	UserID     int64              `json:"userId"`
	Items      []CartItemResponse `json:"items"`
	TotalPrice decimal.Decimal    `json:"totalPrice"`
	Currency   string             `json:"currency"`
	UpdatedAt  time.Time          `json:"updatedAt"`
}

// CartItemResponse is one cart line.
type CartItemResponse struct {
	ID          string          `json:"id"`
	FoodID      int64           `json:"foodId"`
	FoodName    string          `json:"foodName"`
	Quantity    int             `json:"quantity"`
	Ingredients []string        `json:"ingredients"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
}

// TotalResponse is the body of GET /cart/total.
type TotalResponse struct {
	CartID   string          `json:"cartId"`
	Total    decimal.Decimal `json:"total"`
	Currency string          `json:"currency"`
}
