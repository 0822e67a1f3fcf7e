package specification

import (
	"fooddelivery/domain/order"
	"fooddelivery/domain/shared"

	"gorm.io/gorm"
)

// Scope is a GORM query fragment.
type Scope = func(*gorm.DB) *gorm.DB

// OrderTranslator converts order specifications to GORM scopes.
// Translate reports false for specifications it cannot express in SQL;
// callers then fall back to IsSatisfiedBy in memory.
type OrderTranslator struct{}

func NewOrderTranslator() *OrderTranslator {
	return &OrderTranslator{}
}

func (t *OrderTranslator) Translate(spec shared.Specification[*order.Order]) (Scope, bool) {
	if spec == nil {
		return func(db *gorm.DB) *gorm.DB { return db }, true
	}

	switch s := spec.(type) {
	case shared.AndSpecification[*order.Order]:
		return t.translateAnd(s)
	case shared.OrSpecification[*order.Order], shared.NotSpecification[*order.Order]:
		// not pushed down
		return nil, false
	case order.ByUserIDSpecification:
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("user_id = ?", s.UserID)
		}, true
	case order.ByRestaurantIDSpecification:
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("restaurant_id = ?", s.RestaurantID)
		}, true
	case order.ByStatusSpecification:
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("status = ?", string(s.Status))
		}, true
	}

	return nil, false
}

func (t *OrderTranslator) translateAnd(spec shared.AndSpecification[*order.Order]) (Scope, bool) {
	left, ok := t.Translate(spec.Left)
	if !ok {
		return nil, false
	}
	right, ok := t.Translate(spec.Right)
	if !ok {
		return nil, false
	}
	return func(db *gorm.DB) *gorm.DB {
		return right(left(db))
	}, true
}
