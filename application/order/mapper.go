package order

import (
	"fooddelivery/domain/order"
)

func toOrderResponse(o *order.Order) *OrderResponse {
	items := make([]OrderItemResponse, len(o.Items()))
	for i, item := range o.Items() {
		items[i] = OrderItemResponse{
			ID:          item.ID(),
			FoodID:      item.FoodID(),
			FoodName:    item.FoodName(),
			Quantity:    item.Quantity(),
			Ingredients: item.Ingredients(),
			UnitPrice:   item.UnitPrice().Amount(),
			TotalPrice:  item.TotalPrice().Amount(),
		}
	}

	resp := &OrderResponse{
		OrderID:        o.ID(),
		UserID:         o.UserID(),
		RestaurantID:   o.RestaurantID(),
		RestaurantName: o.RestaurantName(),
		Items:          items,
		TotalAmount:    o.TotalAmount().Amount(),
		Currency:       o.TotalAmount().Currency(),
		OrderStatus:    string(o.Status()),
		PaymentStatus:  string(o.PaymentStatus()),
		AddressID:      o.AddressID(),
		PaymentMethod:  string(o.PaymentMethod()),
		CreatedAt:      o.CreatedAt(),
	}

	if p := o.Payment(); p != nil {
		resp.Payment = &PaymentResponse{
			Provider:  p.Provider(),
			SessionID: p.SessionID(),
			URL:       p.URL(),
			Amount:    p.Amount().Amount(),
			CreatedAt: p.CreatedAt(),
		}
	}

	return resp
}

func toOrderResponses(orders []*order.Order) []*OrderResponse {
	responses := make([]*OrderResponse, len(orders))
	for i, o := range orders {
		responses[i] = toOrderResponse(o)
	}
	return responses
}

func toLineRequests(items []OrderItemRequest) []order.LineRequest {
	lines := make([]order.LineRequest, len(items))
	for i, item := range items {
		lines[i] = order.LineRequest{
			FoodID:      item.FoodID,
			Quantity:    item.Quantity,
			Ingredients: item.Ingredients,
		}
	}
	return lines
}
