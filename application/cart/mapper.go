package cart

import (
	"fooddelivery/domain/cart"
	"fooddelivery/domain/shared"
)

func toCartItemResponse(item cart.CartItem) *CartItemResponse {
	return &CartItemResponse{
		ID:          item.ID(),
		FoodID:      item.FoodID(),
		FoodName:    item.FoodName(),
		Quantity:    item.Quantity(),
		Ingredients: item.Ingredients(),
		UnitPrice:   item.UnitPrice().Amount(),
		TotalPrice:  item.TotalPrice().Amount(),
	}
}

func toCartResponse(c *cart.Cart) (*CartResponse, error) {
	total, err := c.Total()
	if err != nil {
		return nil, err
	}

	items := make([]CartItemResponse, 0, c.Len())
	for _, item := range c.Items() {
		items = append(items, *toCartItemResponse(item))
	}

	return &CartResponse{
		ID:         c.ID(),
		UserID:     c.UserID(),
		Items:      items,
		TotalPrice: total.Amount(),
		Currency:   total.Currency(),
		UpdatedAt:  c.UpdatedAt(),
	}, nil
}

func toTotalResponse(cartID string, total shared.Money) *TotalResponse {
	return &TotalResponse{
		CartID:   cartID,
		Total:    total.Amount(),
		Currency: total.Currency(),
	}
}
