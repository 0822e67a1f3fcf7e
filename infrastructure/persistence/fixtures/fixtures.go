// Package fixtures holds the demo catalog used by mock mode, the sqlite
// profile and tests.
package fixtures

import (
	"fooddelivery/domain/address"
	"fooddelivery/domain/catalog"
	"fooddelivery/domain/shared"
)

const (
	CustomerID      int64 = 1
	OtherCustomerID int64 = 2
	OwnerID         int64 = 100
	ClosedOwnerID   int64 = 101

	OpenRestaurantID   int64 = 5
	ClosedRestaurantID int64 = 6

	MargheritaID  int64 = 10
	PepperoniID   int64 = 11
	TiramisuID    int64 = 12 // unavailable
	RamenID       int64 = 20 // served by the closed restaurant
	CustomerAddr  int64 = 3
	OtherUserAddr int64 = 4
)

// Customers are the users whose carts are provisioned on startup.
func Customers() []int64 {
	return []int64{CustomerID, OtherCustomerID}
}

func Restaurants() []*catalog.Restaurant {
	return []*catalog.Restaurant{
		{ID: OpenRestaurantID, Name: "Pizza Palace", OwnerID: OwnerID, Open: true},
		{ID: ClosedRestaurantID, Name: "Night Noodles", OwnerID: ClosedOwnerID, Open: false},
	}
}

func Foods() []*catalog.Food {
	return []*catalog.Food{
		{ID: MargheritaID, RestaurantID: OpenRestaurantID, CategoryID: 1, Name: "Margherita", Price: shared.MustParseMoney("9.99", shared.DefaultCurrency), Available: true},
		{ID: PepperoniID, RestaurantID: OpenRestaurantID, CategoryID: 1, Name: "Pepperoni", Price: shared.MustParseMoney("12.50", shared.DefaultCurrency), Available: true},
		{ID: TiramisuID, RestaurantID: OpenRestaurantID, CategoryID: 2, Name: "Tiramisu", Price: shared.MustParseMoney("6.00", shared.DefaultCurrency), Available: false},
		{ID: RamenID, RestaurantID: ClosedRestaurantID, CategoryID: 3, Name: "Tonkotsu Ramen", Price: shared.MustParseMoney("11.00", shared.DefaultCurrency), Available: true},
	}
}

func Addresses() []*address.Address {
	return []*address.Address{
		{ID: CustomerAddr, OwnerID: CustomerID, Line: "1 Main Street", City: "Springfield", PostalCode: "12345"},
		{ID: OtherUserAddr, OwnerID: OtherCustomerID, Line: "2 Side Road", City: "Springfield", PostalCode: "12346"},
	}
}
