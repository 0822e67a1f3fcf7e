package mocks

import (
	"context"
	"sync"

	"fooddelivery/domain/address"
	"fooddelivery/domain/catalog"
	"fooddelivery/infrastructure/persistence/fixtures"
)

// MockCatalogRepository read-only catalog seeded from fixtures.
type MockCatalogRepository struct {
	restaurants map[int64]catalog.Restaurant
	foods       map[int64]catalog.Food
	mu          sync.RWMutex
}

func NewMockCatalogRepository() *MockCatalogRepository {
	repo := &MockCatalogRepository{
		restaurants: make(map[int64]catalog.Restaurant),
		foods:       make(map[int64]catalog.Food),
	}
	for _, r := range fixtures.Restaurants() {
		repo.restaurants[r.ID] = *r
	}
	for _, f := range fixtures.Foods() {
		repo.foods[f.ID] = *f
	}
	return repo
}

func (r *MockCatalogRepository) FindFoodByID(ctx context.Context, id int64) (*catalog.Food, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.foods[id]
	if !ok {
		return nil, catalog.NewFoodNotFoundError(id)
	}
	return &f, nil
}

func (r *MockCatalogRepository) FindRestaurantByID(ctx context.Context, id int64) (*catalog.Restaurant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rest, ok := r.restaurants[id]
	if !ok {
		return nil, catalog.NewRestaurantNotFoundError(id)
	}
	return &rest, nil
}

// PutFood adds or replaces a food, e.g. to change a price between calls.
func (r *MockCatalogRepository) PutFood(f catalog.Food) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.foods[f.ID] = f
}

// PutRestaurant adds or replaces a restaurant.
func (r *MockCatalogRepository) PutRestaurant(rest catalog.Restaurant) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.restaurants[rest.ID] = rest
}

// MockAddressRepository read-only address book seeded from fixtures.
type MockAddressRepository struct {
	addresses map[int64]address.Address
	mu        sync.RWMutex
}

func NewMockAddressRepository() *MockAddressRepository {
	repo := &MockAddressRepository{addresses: make(map[int64]address.Address)}
	for _, a := range fixtures.Addresses() {
		repo.addresses[a.ID] = *a
	}
	return repo
}

func (r *MockAddressRepository) FindByID(ctx context.Context, id int64) (*address.Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.addresses[id]
	if !ok {
		return nil, address.NewAddressNotFoundError(id)
	}
	return &a, nil
}

var (
	_ catalog.Repository = (*MockCatalogRepository)(nil)
	_ address.Repository = (*MockAddressRepository)(nil)
)
