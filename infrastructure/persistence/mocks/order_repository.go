package mocks

import (
	"context"
	"sort"
	"sync"

	"fooddelivery/domain/order"
	"fooddelivery/domain/shared"
)

// MockOrderRepository Mock implementation of order repository.
// Cancelled orders stay in the map but are hidden from FindByID, matching the
// soft delete of the GORM repository.
type MockOrderRepository struct {
	orders map[string]order.ReconstructionDTO
	mu     sync.RWMutex
}

func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]order.ReconstructionDTO),
	}
}

func (r *MockOrderRepository) Save(ctx context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.orders[o.ID()]
	if o.IsNew() {
		if exists {
			return order.NewConcurrentModificationError(o.ID())
		}
	} else if !exists || stored.Version != o.Version() {
		return order.NewConcurrentModificationError(o.ID())
	}

	r.orders[o.ID()] = order.ReconstructionDTO{
		ID:             o.ID(),
		UserID:         o.UserID(),
		RestaurantID:   o.RestaurantID(),
		RestaurantName: o.RestaurantName(),
		AddressID:      o.AddressID(),
		Items:          o.Items(),
		TotalAmount:    o.TotalAmount(),
		Status:         o.Status(),
		PaymentStatus:  o.PaymentStatus(),
		PaymentMethod:  o.PaymentMethod(),
		Payment:        o.Payment(),
		Version:        o.Version() + 1,
		CreatedAt:      o.CreatedAt(),
		UpdatedAt:      o.UpdatedAt(),
	}

	o.IncrementVersionForSave()
	o.ClearDirtyTracking()
	return nil
}

func (r *MockOrderRepository) FindByID(ctx context.Context, id string) (*order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	dto, ok := r.orders[id]
	if !ok || dto.Status == order.StatusCancelled {
		return nil, order.NewOrderNotFoundError(id)
	}
	return rebuildOrder(dto), nil
}

func (r *MockOrderRepository) FindByIDIncludingArchived(ctx context.Context, id string) (*order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	dto, ok := r.orders[id]
	if !ok {
		return nil, order.NewOrderNotFoundError(id)
	}
	return rebuildOrder(dto), nil
}

// FindAll returns matching orders, archived included, newest first.
func (r *MockOrderRepository) FindAll(ctx context.Context, spec shared.Specification[*order.Order]) ([]*order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*order.Order, 0)
	for _, dto := range r.orders {
		o := rebuildOrder(dto)
		if spec == nil || spec.IsSatisfiedBy(ctx, o) {
			result = append(result, o)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt().Equal(result[j].CreatedAt()) {
			return result[i].ID() > result[j].ID()
		}
		return result[i].CreatedAt().After(result[j].CreatedAt())
	})
	return result, nil
}

// Count returns the number of stored orders, archived included.
func (r *MockOrderRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.orders)
}

func rebuildOrder(dto order.ReconstructionDTO) *order.Order {
	items := make([]order.OrderItem, len(dto.Items))
	copy(items, dto.Items)
	dto.Items = items
	return order.RebuildFromDTO(dto)
}

var _ order.Repository = (*MockOrderRepository)(nil)
