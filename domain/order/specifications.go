package order

import (
	"context"

	"fooddelivery/domain/shared"
)

// ByUserIDSpecification filters orders placed by a user.
type ByUserIDSpecification struct {
	UserID int64
}

func (spec ByUserIDSpecification) IsSatisfiedBy(ctx context.Context, entity *Order) bool {
	return entity.UserID() == spec.UserID
}

// ByRestaurantIDSpecification filters orders placed at a restaurant.
type ByRestaurantIDSpecification struct {
	RestaurantID int64
}

func (spec ByRestaurantIDSpecification) IsSatisfiedBy(ctx context.Context, entity *Order) bool {
	return entity.RestaurantID() == spec.RestaurantID
}

// ByStatusSpecification filters orders by lifecycle status.
type ByStatusSpecification struct {
	Status Status
}

func (spec ByStatusSpecification) IsSatisfiedBy(ctx context.Context, entity *Order) bool {
	return entity.Status() == spec.Status
}

func NewByUserIDSpecification(userID int64) shared.Specification[*Order] {
	return ByUserIDSpecification{UserID: userID}
}

func NewByRestaurantIDSpecification(restaurantID int64) shared.Specification[*Order] {
	return ByRestaurantIDSpecification{RestaurantID: restaurantID}
}

func NewByStatusSpecification(status Status) shared.Specification[*Order] {
	return ByStatusSpecification{Status: status}
}

// RestaurantOrders builds the listing filter for a restaurant, with an
// optional status.
func RestaurantOrders(restaurantID int64, status *Status) shared.Specification[*Order] {
	spec := NewByRestaurantIDSpecification(restaurantID)
	if status != nil {
		spec = shared.And(spec, NewByStatusSpecification(*status))
	}
	return spec
}
