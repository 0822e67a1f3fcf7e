package mysql

import (
	"context"
	"fmt"

	"fooddelivery/infrastructure/persistence/fixtures"
	"fooddelivery/infrastructure/persistence/mysql/po"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Models lists every table owned or read by this service.
func Models() []any {
	return []any{
		&po.CartPO{},
		&po.CartItemPO{},
		&po.OrderPO{},
		&po.OrderItemPO{},
		&po.PaymentPO{},
		&po.OutboxEventPO{},
		&po.RestaurantPO{},
		&po.FoodPO{},
		&po.AddressPO{},
	}
}

// AutoMigrate creates or updates the schema.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// SeedCatalog inserts the demo restaurants, foods and addresses, skipping rows
// that already exist.
func SeedCatalog(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ignore := tx.Clauses(clause.OnConflict{DoNothing: true})
		for _, r := range fixtures.Restaurants() {
			if err := ignore.Create(po.FromRestaurant(r)).Error; err != nil {
				return err
			}
		}
		for _, f := range fixtures.Foods() {
			if err := ignore.Create(po.FromFood(f)).Error; err != nil {
				return err
			}
		}
		for _, a := range fixtures.Addresses() {
			if err := ignore.Create(po.FromAddress(a)).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
