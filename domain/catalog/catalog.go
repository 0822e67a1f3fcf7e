/*
Package catalog exposes the restaurant and food records the ordering core reads.

Restaurants and foods are owned by the catalog service; this package only
models the fields the cart and order flows depend on. Menu CRUD lives elsewhere.
*/
package catalog

import (
	"context"
	"strconv"

	"fooddelivery/domain/shared"
)

// Restaurant is a read model of a restaurant.
type Restaurant struct {
	ID      int64
	Name    string
	OwnerID int64
	Open    bool
}

// IsOpen reports whether the restaurant currently accepts orders.
func (r *Restaurant) IsOpen() bool { return r.Open }

// IsOwnedBy reports whether userID owns the restaurant.
func (r *Restaurant) IsOwnedBy(userID int64) bool { return r.OwnerID == userID }

// Food is a read model of a menu entry. Price is the current catalog price.
type Food struct {
	ID           int64
	RestaurantID int64
	CategoryID   int64
	Name         string
	Price        shared.Money
	Available    bool
}

func (f *Food) IsAvailable() bool { return f.Available }

// BelongsTo reports whether the food is served by the given restaurant.
func (f *Food) BelongsTo(restaurantID int64) bool { return f.RestaurantID == restaurantID }

// Repository is the catalog lookup contract.
type Repository interface {
	FindFoodByID(ctx context.Context, id int64) (*Food, error)
	FindRestaurantByID(ctx context.Context, id int64) (*Restaurant, error)
}

func NewFoodNotFoundError(id int64) error {
	return shared.NewNotFoundError("food", "id", strconv.FormatInt(id, 10))
}

func NewRestaurantNotFoundError(id int64) error {
	return shared.NewNotFoundError("restaurant", "id", strconv.FormatInt(id, 10))
}

// NewFoodUnavailableError reports a food that exists but cannot be ordered.
func NewFoodUnavailableError(f *Food) error {
	return shared.NewInvalidStateError("food", "Food "+f.Name+" is currently unavailable")
}
