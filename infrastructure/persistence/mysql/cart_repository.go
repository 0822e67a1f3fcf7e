package mysql

import (
	"context"
	"errors"
	"time"

	"fooddelivery/domain/cart"
	"fooddelivery/infrastructure/persistence"
	"fooddelivery/infrastructure/persistence/mysql/po"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartRepository GORM implementation of cart.Repository.
// Reads made inside a unit of work take a row lock on the cart
// (SELECT ... FOR UPDATE) so concurrent read-modify-write cycles serialize.
type CartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) *CartRepository {
	return &CartRepository{db: db}
}

func (r *CartRepository) getDB(ctx context.Context) *gorm.DB {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db.WithContext(ctx)
}

func (r *CartRepository) Save(ctx context.Context, c *cart.Cart) error {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return r.saveWithTx(tx, c)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.saveWithTx(tx, c)
	})
}

func (r *CartRepository) saveWithTx(tx *gorm.DB, c *cart.Cart) error {
	cartPO, itemPOs := po.FromCartDomain(c)

	if c.IsNew() {
		cartPO.Version = c.Version() + 1
		if err := tx.Create(cartPO).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return cart.NewConcurrentModificationError(c.ID())
			}
			return err
		}
	} else {
		result := tx.Model(&po.CartPO{}).
			Where("id = ? AND version = ?", c.ID(), c.Version()).
			Updates(map[string]any{
				"version":    c.Version() + 1,
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return cart.NewConcurrentModificationError(c.ID())
		}
	}

	if removed := c.RemovedItems(); len(removed) > 0 {
		ids := make([]string, len(removed))
		for i, item := range removed {
			ids[i] = item.ID()
		}
		if err := tx.Where("id IN ?", ids).Delete(&po.CartItemPO{}).Error; err != nil {
			return err
		}
	}

	if len(itemPOs) > 0 {
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&itemPOs).Error; err != nil {
			return err
		}
	}

	c.IncrementVersionForSave()
	c.ClearDirtyTracking()
	return nil
}

func (r *CartRepository) FindByID(ctx context.Context, id string) (*cart.Cart, error) {
	return r.findBy(ctx, "id = ?", id, func() error { return cart.NewCartNotFoundError("id", id) })
}

func (r *CartRepository) FindByUserID(ctx context.Context, userID int64) (*cart.Cart, error) {
	return r.findBy(ctx, "user_id = ?", userID, func() error { return cart.NewUserCartNotFoundError(userID) })
}

func (r *CartRepository) FindByItemID(ctx context.Context, itemID string) (*cart.Cart, error) {
	var itemPO po.CartItemPO
	if err := r.getDB(ctx).Select("cart_id").First(&itemPO, "id = ?", itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, cart.NewCartItemNotFoundError(itemID)
		}
		return nil, err
	}
	return r.FindByID(ctx, itemPO.CartID)
}

func (r *CartRepository) findBy(ctx context.Context, query string, arg any, notFound func() error) (*cart.Cart, error) {
	db := r.getDB(ctx)
	lookup := db
	if persistence.InTx(ctx) {
		lookup = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var cartPO po.CartPO
	if err := lookup.First(&cartPO, query, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound()
		}
		return nil, err
	}

	var itemPOs []po.CartItemPO
	if err := db.Where("cart_id = ?", cartPO.ID).Order("position ASC").Find(&itemPOs).Error; err != nil {
		return nil, err
	}

	return cartPO.ToDomain(itemPOs), nil
}

var _ cart.Repository = (*CartRepository)(nil)
