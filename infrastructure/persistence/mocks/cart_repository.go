package mocks

import (
	"context"
	"sync"

	"fooddelivery/domain/cart"
)

// MockCartRepository keeps carts in memory. It stores snapshots, not the
// caller's pointer, so a cart loaded by two operations behaves like two reads
// of the same row: the second save fails the version check.
type MockCartRepository struct {
	carts  map[string]cart.ReconstructionDTO
	byUser map[int64]string
	byItem map[string]string
	mu     sync.RWMutex
}

func NewMockCartRepository() *MockCartRepository {
	return &MockCartRepository{
		carts:  make(map[string]cart.ReconstructionDTO),
		byUser: make(map[int64]string),
		byItem: make(map[string]string),
	}
}

func (r *MockCartRepository) Save(ctx context.Context, c *cart.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c.IsNew() {
		if _, exists := r.byUser[c.UserID()]; exists {
			return cart.NewConcurrentModificationError(c.ID())
		}
	} else {
		stored, ok := r.carts[c.ID()]
		if !ok || stored.Version != c.Version() {
			return cart.NewConcurrentModificationError(c.ID())
		}
		for _, item := range stored.Items {
			delete(r.byItem, item.ID())
		}
	}

	items := c.Items()
	for _, item := range items {
		r.byItem[item.ID()] = c.ID()
	}
	r.carts[c.ID()] = cart.ReconstructionDTO{
		ID:        c.ID(),
		UserID:    c.UserID(),
		Items:     items,
		Version:   c.Version() + 1,
		CreatedAt: c.CreatedAt(),
		UpdatedAt: c.UpdatedAt(),
	}
	r.byUser[c.UserID()] = c.ID()

	c.IncrementVersionForSave()
	c.ClearDirtyTracking()
	return nil
}

func (r *MockCartRepository) FindByID(ctx context.Context, id string) (*cart.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	dto, ok := r.carts[id]
	if !ok {
		return nil, cart.NewCartNotFoundError("id", id)
	}
	return rebuildCart(dto), nil
}

func (r *MockCartRepository) FindByUserID(ctx context.Context, userID int64) (*cart.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUser[userID]
	if !ok {
		return nil, cart.NewUserCartNotFoundError(userID)
	}
	return rebuildCart(r.carts[id]), nil
}

func (r *MockCartRepository) FindByItemID(ctx context.Context, itemID string) (*cart.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byItem[itemID]
	if !ok {
		return nil, cart.NewCartItemNotFoundError(itemID)
	}
	return rebuildCart(r.carts[id]), nil
}

// Count returns the number of stored carts.
func (r *MockCartRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.carts)
}

func rebuildCart(dto cart.ReconstructionDTO) *cart.Cart {
	items := make([]cart.CartItem, len(dto.Items))
	copy(items, dto.Items)
	dto.Items = items
	return cart.RebuildFromDTO(dto)
}

var _ cart.Repository = (*MockCartRepository)(nil)
