package po

import (
	"time"

	"fooddelivery/domain/order"
	"fooddelivery/domain/shared"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderPO order persistence object.
// DeletedAt archives cancelled orders: they stay queryable with Unscoped.
type OrderPO struct {
	ID             string          `gorm:"primaryKey;size:64"`
	UserID         int64           `gorm:"index;not null"`
	RestaurantID   int64           `gorm:"index;not null"`
	RestaurantName string          `gorm:"size:255;not null"`
	AddressID      int64           `gorm:"not null"`
	Status         string          `gorm:"size:20;index;not null"`
	PaymentStatus  string          `gorm:"size:20;not null"`
	PaymentMethod  string          `gorm:"size:32;not null"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Currency       string          `gorm:"size:3;not null"`
	Version        int             `gorm:"default:0;not null"`
	CreatedAt      time.Time       `gorm:"index"`
	UpdatedAt      time.Time
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}

func (OrderPO) TableName() string {
	return "orders"
}

// OrderItemPO order line snapshot.
type OrderItemPO struct {
	ID          string          `gorm:"primaryKey;size:64"`
	OrderID     string          `gorm:"size:64;index;not null"`
	Position    int             `gorm:"not null;default:0"`
	FoodID      int64           `gorm:"not null"`
	FoodName    string          `gorm:"size:255;not null"`
	Quantity    int             `gorm:"not null"`
	Ingredients []string        `gorm:"type:text;serializer:json"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Currency    string          `gorm:"size:3;not null"`
}

func (OrderItemPO) TableName() string {
	return "order_items"
}

// PaymentPO checkout session record, one per order.
type PaymentPO struct {
	ID        string          `gorm:"primaryKey;size:64"`
	OrderID   string          `gorm:"size:64;uniqueIndex;not null"`
	Provider  string          `gorm:"size:32;not null"`
	SessionID string          `gorm:"size:255;index;not null"`
	URL       string          `gorm:"size:1024"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Currency  string          `gorm:"size:3;not null"`
	CreatedAt time.Time
}

func (PaymentPO) TableName() string {
	return "payments"
}

// FromOrderDomain converts the aggregate to persistence objects.
// The payment PO is nil when the order has no payment record.
func FromOrderDomain(o *order.Order) (*OrderPO, []OrderItemPO, *PaymentPO) {
	orderPO := &OrderPO{
		ID:             o.ID(),
		UserID:         o.UserID(),
		RestaurantID:   o.RestaurantID(),
		RestaurantName: o.RestaurantName(),
		AddressID:      o.AddressID(),
		Status:         string(o.Status()),
		PaymentStatus:  string(o.PaymentStatus()),
		PaymentMethod:  string(o.PaymentMethod()),
		TotalAmount:    o.TotalAmount().Amount(),
		Currency:       o.TotalAmount().Currency(),
		Version:        o.Version(),
		CreatedAt:      o.CreatedAt(),
		UpdatedAt:      o.UpdatedAt(),
	}

	items := o.Items()
	itemPOs := make([]OrderItemPO, len(items))
	for i, item := range items {
		itemPOs[i] = OrderItemPO{
			ID:          item.ID(),
			OrderID:     o.ID(),
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

	var paymentPO *PaymentPO
	if p := o.Payment(); p != nil {
		paymentPO = &PaymentPO{
			ID:        p.ID(),
			OrderID:   o.ID(),
			Provider:  p.Provider(),
			SessionID: p.SessionID(),
			URL:       p.URL(),
			Amount:    p.Amount().Amount(),
			Currency:  p.Amount().Currency(),
			CreatedAt: p.CreatedAt(),
		}
	}

	return orderPO, itemPOs, paymentPO
}

// ToDomain rebuilds the aggregate. itemPOs must be ordered by position.
func (p *OrderPO) ToDomain(itemPOs []OrderItemPO, paymentPO *PaymentPO) *order.Order {
	items := make([]order.OrderItem, len(itemPOs))
	for i, itemPO := range itemPOs {
		items[i] = order.RebuildItemFromDTO(order.ItemReconstructionDTO{
			ID:          itemPO.ID,
			FoodID:      itemPO.FoodID,
			FoodName:    itemPO.FoodName,
			Quantity:    itemPO.Quantity,
			Ingredients: itemPO.Ingredients,
			UnitPrice:   shared.NewMoney(itemPO.UnitPrice, itemPO.Currency),
			TotalPrice:  shared.NewMoney(itemPO.TotalPrice, itemPO.Currency),
		})
	}

	var payment *order.Payment
	if paymentPO != nil {
		payment = order.RebuildPaymentFromDTO(order.PaymentReconstructionDTO{
			ID:        paymentPO.ID,
			Provider:  paymentPO.Provider,
			SessionID: paymentPO.SessionID,
			URL:       paymentPO.URL,
			Amount:    shared.NewMoney(paymentPO.Amount, paymentPO.Currency),
			CreatedAt: paymentPO.CreatedAt,
		})
	}

	return order.RebuildFromDTO(order.ReconstructionDTO{
		ID:             p.ID,
		UserID:         p.UserID,
		RestaurantID:   p.RestaurantID,
		RestaurantName: p.RestaurantName,
		AddressID:      p.AddressID,
		Items:          items,
		TotalAmount:    shared.NewMoney(p.TotalAmount, p.Currency),
		Status:         order.Status(p.Status),
		PaymentStatus:  order.PaymentStatus(p.PaymentStatus),
		PaymentMethod:  order.PaymentMethod(p.PaymentMethod),
		Payment:        payment,
		Version:        p.Version,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	})
}
