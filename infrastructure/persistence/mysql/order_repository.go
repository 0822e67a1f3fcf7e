package mysql

import (
	"context"
	"errors"
	"time"

	"fooddelivery/domain/order"
	"fooddelivery/domain/shared"
	"fooddelivery/infrastructure/persistence"
	"fooddelivery/infrastructure/persistence/mysql/po"
	"fooddelivery/infrastructure/persistence/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderRepository GORM implementation of order.Repository.
// Associations are not used; lines and payment are loaded explicitly to keep
// the aggregate boundary visible.
type OrderRepository struct {
	db         *gorm.DB
	translator *specification.OrderTranslator
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db, translator: specification.NewOrderTranslator()}
}

func (r *OrderRepository) getDB(ctx context.Context) *gorm.DB {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db.WithContext(ctx)
}

// Save inserts a new order or updates a loaded one under an optimistic version check.
// Within a unit of work it joins the transaction; standalone it opens its own.
func (r *OrderRepository) Save(ctx context.Context, o *order.Order) error {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return r.saveWithTx(tx, o)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.saveWithTx(tx, o)
	})
}

func (r *OrderRepository) saveWithTx(tx *gorm.DB, o *order.Order) error {
	orderPO, itemPOs, paymentPO := po.FromOrderDomain(o)

	if o.IsNew() {
		orderPO.Version = o.Version() + 1
		if err := tx.Create(orderPO).Error; err != nil {
			return err
		}
		if len(itemPOs) > 0 {
			if err := tx.Create(&itemPOs).Error; err != nil {
				return err
			}
		}
	} else {
		result := tx.Unscoped().Model(&po.OrderPO{}).
			Where("id = ? AND version = ?", o.ID(), o.Version()).
			Updates(map[string]any{
				"status":         orderPO.Status,
				"payment_status": orderPO.PaymentStatus,
				"version":        o.Version() + 1,
				"updated_at":     time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return order.NewConcurrentModificationError(o.ID())
		}
	}

	if paymentPO != nil && (o.IsNew() || o.PaymentAttached()) {
		if err := tx.Create(paymentPO).Error; err != nil {
			return err
		}
	}

	if o.IsArchived() {
		if err := tx.Where("id = ?", o.ID()).Delete(&po.OrderPO{}).Error; err != nil {
			return err
		}
	}

	o.IncrementVersionForSave()
	o.ClearDirtyTracking()
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*order.Order, error) {
	return r.findOne(ctx, r.getDB(ctx), id)
}

func (r *OrderRepository) FindByIDIncludingArchived(ctx context.Context, id string) (*order.Order, error) {
	return r.findOne(ctx, r.getDB(ctx).Unscoped(), id)
}

func (r *OrderRepository) findOne(ctx context.Context, db *gorm.DB, id string) (*order.Order, error) {
	if persistence.InTx(ctx) {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var orderPO po.OrderPO
	if err := db.First(&orderPO, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.NewOrderNotFoundError(id)
		}
		return nil, err
	}

	orders, err := r.hydrate(r.getDB(ctx), []po.OrderPO{orderPO})
	if err != nil {
		return nil, err
	}
	return orders[0], nil
}

// FindAll lists orders, archived included, newest first. Specifications the
// translator cannot push into SQL are applied in memory.
func (r *OrderRepository) FindAll(ctx context.Context, spec shared.Specification[*order.Order]) ([]*order.Order, error) {
	db := r.getDB(ctx)
	query := db.Unscoped().Model(&po.OrderPO{})

	scope, pushed := r.translator.Translate(spec)
	if pushed {
		query = query.Scopes(scope)
	}

	var orderPOs []po.OrderPO
	if err := query.Order("created_at DESC").Find(&orderPOs).Error; err != nil {
		return nil, err
	}

	orders, err := r.hydrate(db, orderPOs)
	if err != nil {
		return nil, err
	}
	if pushed || spec == nil {
		return orders, nil
	}

	filtered := orders[:0]
	for _, o := range orders {
		if spec.IsSatisfiedBy(ctx, o) {
			filtered = append(filtered, o)
		}
	}
	return filtered, nil
}

// hydrate loads lines and payments for a batch of orders in two queries.
func (r *OrderRepository) hydrate(db *gorm.DB, orderPOs []po.OrderPO) ([]*order.Order, error) {
	if len(orderPOs) == 0 {
		return []*order.Order{}, nil
	}

	ids := make([]string, len(orderPOs))
	for i, p := range orderPOs {
		ids[i] = p.ID
	}

	var itemPOs []po.OrderItemPO
	if err := db.Where("order_id IN ?", ids).Order("position ASC").Find(&itemPOs).Error; err != nil {
		return nil, err
	}
	var paymentPOs []po.PaymentPO
	if err := db.Where("order_id IN ?", ids).Find(&paymentPOs).Error; err != nil {
		return nil, err
	}

	itemsByOrder := make(map[string][]po.OrderItemPO, len(orderPOs))
	for _, item := range itemPOs {
		itemsByOrder[item.OrderID] = append(itemsByOrder[item.OrderID], item)
	}
	paymentByOrder := make(map[string]*po.PaymentPO, len(paymentPOs))
	for i := range paymentPOs {
		paymentByOrder[paymentPOs[i].OrderID] = &paymentPOs[i]
	}

	orders := make([]*order.Order, len(orderPOs))
	for i := range orderPOs {
		orders[i] = orderPOs[i].ToDomain(itemsByOrder[orderPOs[i].ID], paymentByOrder[orderPOs[i].ID])
	}
	return orders, nil
}

var _ order.Repository = (*OrderRepository)(nil)
