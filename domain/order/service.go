package order

import (
	"context"

	"fooddelivery/domain/address"
	"fooddelivery/domain/catalog"
)

// LineRequest is one requested order line, before pricing.
type LineRequest struct {
	FoodID      int64
	Quantity    int
	Ingredients []string
}

// PlacementRequest is a checkout as submitted by a customer.
type PlacementRequest struct {
	UserID        int64
	RestaurantID  int64
	AddressID     int64
	PaymentMethod PaymentMethod
	Lines         []LineRequest
}

// DomainService validates checkouts against the catalog and address stores.
// It reads through repositories but never saves; persistence is left to the
// application service.
type DomainService struct {
	catalog   catalog.Repository
	addresses address.Repository
}

func NewDomainService(catalogRepo catalog.Repository, addressRepo address.Repository) *DomainService {
	return &DomainService{
		catalog:   catalogRepo,
		addresses: addressRepo,
	}
}

// PrepareOrder runs the placement rules in order and returns a new PENDING
// order priced from the current catalog:
//  1. restaurant exists and is open
//  2. address exists and belongs to the customer
//  3. every food exists, is served by the restaurant and is available
func (s *DomainService) PrepareOrder(ctx context.Context, req PlacementRequest) (*Order, error) {
	if len(req.Lines) == 0 {
		return nil, NewEmptyOrderItemsError()
	}

	restaurant, err := s.catalog.FindRestaurantByID(ctx, req.RestaurantID)
	if err != nil {
		return nil, err
	}
	if !restaurant.IsOpen() {
		return nil, NewRestaurantClosedError(restaurant.ID)
	}

	addr, err := s.addresses.FindByID(ctx, req.AddressID)
	if err != nil {
		return nil, err
	}
	if !addr.IsOwnedBy(req.UserID) {
		return nil, address.NewAddressNotOwnedError(addr.ID)
	}

	snapshots := make([]ItemSnapshot, 0, len(req.Lines))
	for _, line := range req.Lines {
		if line.Quantity <= 0 {
			return nil, NewInvalidQuantityError(line.FoodID, line.Quantity)
		}

		food, err := s.catalog.FindFoodByID(ctx, line.FoodID)
		if err != nil {
			return nil, err
		}
		if !food.BelongsTo(restaurant.ID) {
			return nil, NewFoodNotInRestaurantError(food.ID, restaurant.ID)
		}
		if !food.IsAvailable() {
			return nil, catalog.NewFoodUnavailableError(food)
		}

		snapshots = append(snapshots, ItemSnapshot{
			FoodID:      food.ID,
			FoodName:    food.Name,
			UnitPrice:   food.Price,
			Quantity:    line.Quantity,
			Ingredients: line.Ingredients,
		})
	}

	return NewOrder(PlaceOptions{
		UserID:         req.UserID,
		RestaurantID:   restaurant.ID,
		RestaurantName: restaurant.Name,
		AddressID:      addr.ID,
		PaymentMethod:  req.PaymentMethod,
		Items:          snapshots,
	})
}
