package mysql

import (
	"context"
	"errors"

	"fooddelivery/domain/address"
	"fooddelivery/domain/catalog"
	"fooddelivery/infrastructure/persistence"
	"fooddelivery/infrastructure/persistence/mysql/po"

	"gorm.io/gorm"
)

// CatalogRepository reads the restaurants and foods tables written by the
// catalog service.
type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) getDB(ctx context.Context) *gorm.DB {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db.WithContext(ctx)
}

func (r *CatalogRepository) FindFoodByID(ctx context.Context, id int64) (*catalog.Food, error) {
	var foodPO po.FoodPO
	if err := r.getDB(ctx).First(&foodPO, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.NewFoodNotFoundError(id)
		}
		return nil, err
	}
	return foodPO.ToDomain(), nil
}

func (r *CatalogRepository) FindRestaurantByID(ctx context.Context, id int64) (*catalog.Restaurant, error) {
	var restaurantPO po.RestaurantPO
	if err := r.getDB(ctx).First(&restaurantPO, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.NewRestaurantNotFoundError(id)
		}
		return nil, err
	}
	return restaurantPO.ToDomain(), nil
}

// AddressRepository reads the addresses table written by the address service.
type AddressRepository struct {
	db *gorm.DB
}

func NewAddressRepository(db *gorm.DB) *AddressRepository {
	return &AddressRepository{db: db}
}

func (r *AddressRepository) FindByID(ctx context.Context, id int64) (*address.Address, error) {
	db := persistence.TxFromContext(ctx)
	if db == nil {
		db = r.db.WithContext(ctx)
	}

	var addressPO po.AddressPO
	if err := db.First(&addressPO, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, address.NewAddressNotFoundError(id)
		}
		return nil, err
	}
	return addressPO.ToDomain(), nil
}

var (
	_ catalog.Repository = (*CatalogRepository)(nil)
	_ address.Repository = (*AddressRepository)(nil)
)
