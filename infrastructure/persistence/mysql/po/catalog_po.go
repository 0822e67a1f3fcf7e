package po

import (
	"fooddelivery/domain/address"
	"fooddelivery/domain/catalog"
	"fooddelivery/domain/shared"

	"github.com/shopspring/decimal"
)

// RestaurantPO is owned by the catalog service; this service only reads it.
type RestaurantPO struct {
	ID      int64  `gorm:"primaryKey;autoIncrement:false"`
	Name    string `gorm:"size:255;not null"`
	OwnerID int64  `gorm:"index;not null"`
	Open    bool   `gorm:"not null"`
}

func (RestaurantPO) TableName() string {
	return "restaurants"
}

func (p *RestaurantPO) ToDomain() *catalog.Restaurant {
	return &catalog.Restaurant{
		ID:      p.ID,
		Name:    p.Name,
		OwnerID: p.OwnerID,
		Open:    p.Open,
	}
}

// FoodPO menu entry.
type FoodPO struct {
	ID           int64           `gorm:"primaryKey;autoIncrement:false"`
	RestaurantID int64           `gorm:"index;not null"`
	CategoryID   int64           `gorm:"not null;default:0"`
	Name         string          `gorm:"size:255;not null"`
	Price        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Currency     string          `gorm:"size:3;not null"`
	Available    bool            `gorm:"not null"`
}

func (FoodPO) TableName() string {
	return "foods"
}

func (p *FoodPO) ToDomain() *catalog.Food {
	return &catalog.Food{
		ID:           p.ID,
		RestaurantID: p.RestaurantID,
		CategoryID:   p.CategoryID,
		Name:         p.Name,
		Price:        shared.NewMoney(p.Price, p.Currency),
		Available:    p.Available,
	}
}

// AddressPO delivery address, owned by the address service.
type AddressPO struct {
	ID         int64  `gorm:"primaryKey;autoIncrement:false"`
	OwnerID    int64  `gorm:"index;not null"`
	Line       string `gorm:"size:255;not null"`
	City       string `gorm:"size:128"`
	PostalCode string `gorm:"size:32"`
}

func (AddressPO) TableName() string {
	return "addresses"
}

func (p *AddressPO) ToDomain() *address.Address {
	return &address.Address{
		ID:         p.ID,
		OwnerID:    p.OwnerID,
		Line:       p.Line,
		City:       p.City,
		PostalCode: p.PostalCode,
	}
}

func FromRestaurant(r *catalog.Restaurant) *RestaurantPO {
	return &RestaurantPO{ID: r.ID, Name: r.Name, OwnerID: r.OwnerID, Open: r.Open}
}

func FromFood(f *catalog.Food) *FoodPO {
	return &FoodPO{
		ID:           f.ID,
		RestaurantID: f.RestaurantID,
		CategoryID:   f.CategoryID,
		Name:         f.Name,
		Price:        f.Price.Amount(),
		Currency:     f.Price.Currency(),
		Available:    f.Available,
	}
}

func FromAddress(a *address.Address) *AddressPO {
	return &AddressPO{ID: a.ID, OwnerID: a.OwnerID, Line: a.Line, City: a.City, PostalCode: a.PostalCode}
}
