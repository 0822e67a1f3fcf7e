package po

import (
	"time"

	"fooddelivery/domain/cart"
	"fooddelivery/domain/shared"

	"github.com/shopspring/decimal"
)

// CartPO cart persistence object. One row per user.
type CartPO struct {
	ID        string    `gorm:"primaryKey;size:64"`
	UserID    int64     `gorm:"uniqueIndex;not null"`
	Version   int       `gorm:"default:0;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (CartPO) TableName() string {
	return "carts"
}

// CartItemPO cart line persistence object. No GORM association with CartPO.
type CartItemPO struct {
	ID          string          `gorm:"primaryKey;size:64"`
	CartID      string          `gorm:"size:64;index;not null"`
	Position    int             `gorm:"not null;default:0"`
	FoodID      int64           `gorm:"not null"`
	FoodName    string          `gorm:"size:255;not null"`
	Quantity    int             `gorm:"not null"`
	Ingredients []string        `gorm:"type:text;serializer:json"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Currency    string          `gorm:"size:3;not null"`
}

func (CartItemPO) TableName() string {
	return "cart_items"
}

// FromCartDomain converts the aggregate to persistence objects.
func FromCartDomain(c *cart.Cart) (*CartPO, []CartItemPO) {
	cartPO := &CartPO{
		ID:        c.ID(),
		UserID:    c.UserID(),
		Version:   c.Version(),
		CreatedAt: c.CreatedAt(),
		UpdatedAt: c.UpdatedAt(),
	}

	items := c.Items()
	itemPOs := make([]CartItemPO, len(items))
	for i, item := range items {
		itemPOs[i] = CartItemPO{
			ID:          item.ID(),
			CartID:      c.ID(),
			Position:    i,
			FoodID:      item.FoodID(),
			FoodName:    item.FoodName(),
			Quantity:    item.Quantity(),
			Ingredients: item.Ingredients(),
			UnitPrice:   item.UnitPrice().Amount(),
			TotalPrice:  item.TotalPrice().Amount(),
			Currency:    item.TotalPrice().Currency(),
		}
	}

	return cartPO, itemPOs
}

// ToDomain rebuilds the aggregate. itemPOs must be ordered by position.
func (p *CartPO) ToDomain(itemPOs []CartItemPO) *cart.Cart {
	items := make([]cart.CartItem, len(itemPOs))
	for i, itemPO := range itemPOs {
		items[i] = cart.RebuildItemFromDTO(cart.ItemReconstructionDTO{
			ID:          itemPO.ID,
			FoodID:      itemPO.FoodID,
			FoodName:    itemPO.FoodName,
			UnitPrice:   shared.NewMoney(itemPO.UnitPrice, itemPO.Currency),
			Quantity:    itemPO.Quantity,
			Ingredients: itemPO.Ingredients,
			TotalPrice:  shared.NewMoney(itemPO.TotalPrice, itemPO.Currency),
		})
	}

	return cart.RebuildFromDTO(cart.ReconstructionDTO{
		ID:        p.ID,
		UserID:    p.UserID,
		Items:     items,
		Version:   p.Version,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	})
}
