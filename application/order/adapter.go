package order

import (
	"context"

	"fooddelivery/domain/cart"
	"fooddelivery/domain/catalog"
	"fooddelivery/domain/order"
)

// cartLineSource turns the caller's cart into order lines for one restaurant.
type cartLineSource struct {
	cartRepo cart.Repository
	catalog  catalog.Repository
}

// linesFor returns the cart, the lines served by restaurantID and their food ids.
func (a *cartLineSource) linesFor(ctx context.Context, userID, restaurantID int64) (*cart.Cart, []order.LineRequest, []int64, error) {
	c, err := a.cartRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, nil, nil, err
	}

	var (
		lines   []order.LineRequest
		foodIDs []int64
	)
	for _, item := range c.Items() {
		food, err := a.catalog.FindFoodByID(ctx, item.FoodID())
		if err != nil {
			return nil, nil, nil, err
		}
		if !food.BelongsTo(restaurantID) {
			continue
		}
		lines = append(lines, order.LineRequest{
			FoodID:      item.FoodID(),
			Quantity:    item.Quantity(),
			Ingredients: item.Ingredients(),
		})
		foodIDs = append(foodIDs, item.FoodID())
	}

	if len(lines) == 0 {
		return nil, nil, nil, order.NewEmptyOrderItemsError()
	}
	return c, lines, foodIDs, nil
}
