/*
Package cart Application Layer - Cart Engine

Every mutation runs as one read-modify-write inside a unit of work, which
locks the cart row for the duration of the transaction. On top of that the
service serializes writers per user through a Locker, so two concurrent adds
of the same food cannot lose an update even on stores without row locks.
*/
package cart

import (
	"context"
	"errors"
	"strconv"

	"fooddelivery/domain/cart"
	"fooddelivery/domain/catalog"
	"fooddelivery/domain/shared"
	"fooddelivery/pkg/logger"

	"go.uber.org/zap"
)

// Locker serializes work on a key across requests (and processes, when
// backed by a shared store).
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// ApplicationService coordinates the cart use cases.
type ApplicationService struct {
	cartRepo   cart.Repository
	catalog    catalog.Repository
	uowFactory shared.UnitOfWorkFactory
	locker     Locker
}

func NewApplicationService(
	cartRepo cart.Repository,
	catalogRepo catalog.Repository,
	uowFactory shared.UnitOfWorkFactory,
	locker Locker,
) *ApplicationService {
	return &ApplicationService{
		cartRepo:   cartRepo,
		catalog:    catalogRepo,
		uowFactory: uowFactory,
		locker:     locker,
	}
}

// LockKey is the lock name guarding a user's cart.
func LockKey(userID int64) string {
	return "cart:user:" + strconv.FormatInt(userID, 10)
}

// withCartLock runs fn in a unit of work while holding the user's cart lock.
func (s *ApplicationService) withCartLock(ctx context.Context, userID int64, fn func(ctx context.Context, uow shared.UnitOfWork) error) error {
	unlock, err := s.locker.Lock(ctx, LockKey(userID))
	if err != nil {
		return err
	}
	defer unlock()

	uow := s.uowFactory.New()
	return uow.Execute(ctx, func(ctx context.Context) error {
		return fn(ctx, uow)
	})
}

// ProvisionCart creates the user's cart if it does not exist yet.
// It is called by the identity service at signup and is safe to repeat.
func (s *ApplicationService) ProvisionCart(ctx context.Context, userID int64) (*CartResponse, error) {
	var c *cart.Cart

	err := s.withCartLock(ctx, userID, func(ctx context.Context, uow shared.UnitOfWork) error {
		existing, err := s.cartRepo.FindByUserID(ctx, userID)
		if err == nil {
			c = existing
			return nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return err
		}

		c, err = cart.NewCart(userID)
		if err != nil {
			return err
		}
		if err := s.cartRepo.Save(ctx, c); err != nil {
			return err
		}
		uow.RegisterNew(c)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("cart provisioned", zap.Int64("user_id", userID), zap.String("cart_id", c.ID()))
	return toCartResponse(c)
}

// AddItem adds a food to the caller's cart, merging with an existing line
// for the same food.
func (s *ApplicationService) AddItem(ctx context.Context, actor shared.Actor, req AddItemRequest) (*CartItemResponse, error) {
	if req.Quantity <= 0 {
		return nil, cart.NewInvalidQuantityError(req.Quantity)
	}

	var item cart.CartItem

	err := s.withCartLock(ctx, actor.UserID, func(ctx context.Context, uow shared.UnitOfWork) error {
		food, err := s.catalog.FindFoodByID(ctx, req.FoodID)
		if err != nil {
			return err
		}
		if !food.IsAvailable() {
			return catalog.NewFoodUnavailableError(food)
		}

		c, err := s.cartRepo.FindByUserID(ctx, actor.UserID)
		if err != nil {
			return err
		}

		item, err = c.AddItem(cart.FoodLine{
			FoodID:    food.ID,
			FoodName:  food.Name,
			UnitPrice: food.Price,
		}, req.Quantity, req.Ingredients)
		if err != nil {
			return err
		}

		if err := s.cartRepo.Save(ctx, c); err != nil {
			return err
		}
		uow.RegisterDirty(c)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toCartItemResponse(item), nil
}

// UpdateItemQuantity sets the quantity of one of the caller's cart lines and
// reprices it at the current catalog price.
func (s *ApplicationService) UpdateItemQuantity(ctx context.Context, actor shared.Actor, cartItemID string, quantity int) (*CartItemResponse, error) {
	if quantity <= 0 {
		return nil, cart.NewInvalidQuantityError(quantity)
	}

	var item cart.CartItem

	err := s.withCartLock(ctx, actor.UserID, func(ctx context.Context, uow shared.UnitOfWork) error {
		c, err := s.ownedCartByItem(ctx, actor, cartItemID)
		if err != nil {
			return err
		}

		current, _ := c.Item(cartItemID)
		food, err := s.catalog.FindFoodByID(ctx, current.FoodID())
		if err != nil {
			return err
		}

		item, err = c.UpdateItemQuantity(cartItemID, quantity, food.Price)
		if err != nil {
			return err
		}

		if err := s.cartRepo.Save(ctx, c); err != nil {
			return err
		}
		uow.RegisterDirty(c)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toCartItemResponse(item), nil
}

// RemoveItem deletes one of the caller's cart lines and returns the cart.
func (s *ApplicationService) RemoveItem(ctx context.Context, actor shared.Actor, cartItemID string) (*CartResponse, error) {
	var c *cart.Cart

	err := s.withCartLock(ctx, actor.UserID, func(ctx context.Context, uow shared.UnitOfWork) error {
		var err error
		c, err = s.ownedCartByItem(ctx, actor, cartItemID)
		if err != nil {
			return err
		}

		if err := c.RemoveItem(cartItemID); err != nil {
			return err
		}

		if err := s.cartRepo.Save(ctx, c); err != nil {
			return err
		}
		uow.RegisterDirty(c)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toCartResponse(c)
}

// Clear empties a cart. userID 0 means the caller's own cart.
func (s *ApplicationService) Clear(ctx context.Context, actor shared.Actor, userID int64) (*CartResponse, error) {
	userID, err := resolveUser(actor, userID)
	if err != nil {
		return nil, err
	}

	var c *cart.Cart

	err = s.withCartLock(ctx, userID, func(ctx context.Context, uow shared.UnitOfWork) error {
		var err error
		c, err = s.cartRepo.FindByUserID(ctx, userID)
		if err != nil {
			return err
		}

		c.Clear("cleared by user " + strconv.FormatInt(actor.UserID, 10))

		if err := s.cartRepo.Save(ctx, c); err != nil {
			return err
		}
		uow.RegisterDirty(c)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toCartResponse(c)
}

// GetByUser returns a user's cart. userID 0 means the caller's own cart.
func (s *ApplicationService) GetByUser(ctx context.Context, actor shared.Actor, userID int64) (*CartResponse, error) {
	userID, err := resolveUser(actor, userID)
	if err != nil {
		return nil, err
	}

	c, err := s.cartRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toCartResponse(c)
}

// GetTotal sums a cart's line totals.
func (s *ApplicationService) GetTotal(ctx context.Context, actor shared.Actor, cartID string) (*TotalResponse, error) {
	c, err := s.cartRepo.FindByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if !actor.CanActFor(c.UserID()) {
		return nil, cart.NewCartNotOwnedError(cartID)
	}

	total, err := c.Total()
	if err != nil {
		return nil, err
	}
	return toTotalResponse(c.ID(), total), nil
}

func (s *ApplicationService) ownedCartByItem(ctx context.Context, actor shared.Actor, cartItemID string) (*cart.Cart, error) {
	c, err := s.cartRepo.FindByItemID(ctx, cartItemID)
	if err != nil {
		return nil, err
	}
	if !c.IsOwnedBy(actor.UserID) {
		return nil, cart.NewCartNotOwnedError(c.ID())
	}
	return c, nil
}

func resolveUser(actor shared.Actor, userID int64) (int64, error) {
	if userID == 0 {
		return actor.UserID, nil
	}
	if !actor.CanActFor(userID) {
		return 0, shared.NewForbiddenError("cart", "cart of user "+strconv.FormatInt(userID, 10)+" does not belong to the current user")
	}
	return userID, nil
}
