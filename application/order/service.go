/*
Package order Application Layer - Order Engine and Order Status Authority

Application services never publish events themselves: aggregates record
them, the unit of work writes them to the outbox in the same transaction,
and the outbox worker relays them to the broker.

Order placement is split in two transactions around the gateway call, so a
slow or failing payment processor never holds database locks:
 1. validate, snapshot and persist the PENDING order (+ order.placed)
 2. call the gateway, then attach the Payment record (+ order.payment_recorded)

If step 2 fails the order stays PENDING without a payment session until a
status update cancels it. Checkout from the cart keeps the cart lines until
step 2 commits, so the customer can check out again.
*/
package order

import (
	"context"
	"errors"
	"strconv"
	"time"

	"fooddelivery/domain/cart"
	"fooddelivery/domain/catalog"
	"fooddelivery/domain/order"
	"fooddelivery/domain/payment"
	"fooddelivery/domain/shared"
	"fooddelivery/pkg/logger"

	"go.uber.org/zap"
)

// Locker serializes work on a key; the same lock guards cart mutations.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// Deduplicator remembers processed notification ids.
type Deduplicator interface {
	// Claim returns false if key was already claimed.
	Claim(ctx context.Context, key string) (bool, error)
	// Release forgets a claim whose processing failed.
	Release(ctx context.Context, key string) error
}

// Options tunes the application service.
type Options struct {
	// CheckoutTimeout bounds the whole gateway call, retries included.
	CheckoutTimeout time.Duration
}

// ApplicationService coordinates order placement, status changes and payment reconciliation.
type ApplicationService struct {
	orderRepo     order.Repository
	catalog       catalog.Repository
	cartRepo      cart.Repository
	domainService *order.DomainService
	cartLines     *cartLineSource
	gateway       payment.Gateway
	uowFactory    shared.UnitOfWorkFactory
	locker        Locker
	dedup         Deduplicator
	opts          Options
}

// Dependencies groups the collaborators of the service.
type Dependencies struct {
	OrderRepo   order.Repository
	CartRepo    cart.Repository
	Catalog     catalog.Repository
	DomainSvc   *order.DomainService
	Gateway     payment.Gateway
	UoWFactory  shared.UnitOfWorkFactory
	Locker      Locker
	Deduplicate Deduplicator
}

func NewApplicationService(deps Dependencies, opts Options) *ApplicationService {
	if opts.CheckoutTimeout <= 0 {
		opts.CheckoutTimeout = 30 * time.Second
	}
	return &ApplicationService{
		orderRepo:     deps.OrderRepo,
		catalog:       deps.Catalog,
		cartRepo:      deps.CartRepo,
		domainService: deps.DomainSvc,
		cartLines:     &cartLineSource{cartRepo: deps.CartRepo, catalog: deps.Catalog},
		gateway:       deps.Gateway,
		uowFactory:    deps.UoWFactory,
		locker:        deps.Locker,
		dedup:         deps.Deduplicate,
		opts:          opts,
	}
}

// ============================================================================
// Order Engine
// ============================================================================

// CreateOrder places an order and returns the hosted checkout URL.
func (s *ApplicationService) CreateOrder(ctx context.Context, actor shared.Actor, req CreateOrderRequest) (*CreateOrderResponse, error) {
	method, err := order.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return nil, err
	}

	o, cartFoods, err := s.placeOrder(ctx, actor, req, method)
	if err != nil {
		return nil, err
	}

	log := logger.With(zap.String("order_id", o.ID()), zap.Int64("user_id", actor.UserID))
	log.Info("order placed",
		zap.Int64("restaurant_id", o.RestaurantID()),
		zap.String("total", o.TotalAmount().String()))

	if !method.RequiresCheckout() {
		return &CreateOrderResponse{Order: toOrderResponse(o)}, nil
	}

	session, err := s.openCheckout(ctx, o)
	if err != nil {
		log.Warn("checkout session failed, order left pending", zap.Error(err))
		return nil, err
	}

	o, err = s.attachPayment(ctx, actor.UserID, o.ID(), session, cartFoods)
	if err != nil {
		return nil, err
	}

	return &CreateOrderResponse{
		PaymentURL: session.URL,
		Order:      toOrderResponse(o),
	}, nil
}

// placeOrder validates and persists a PENDING order in one transaction.
// For checkout from the cart it also returns the ordered food ids. Those
// lines are removed here when no gateway is involved, otherwise only once
// the checkout session is attached.
func (s *ApplicationService) placeOrder(ctx context.Context, actor shared.Actor, req CreateOrderRequest, method order.PaymentMethod) (*order.Order, []int64, error) {
	fromCart := len(req.Items) == 0
	if fromCart {
		unlock, err := s.locker.Lock(ctx, cartLockKey(actor.UserID))
		if err != nil {
			return nil, nil, err
		}
		defer unlock()
	}

	var (
		o       *order.Order
		foodIDs []int64
	)
	uow := s.uowFactory.New()
	err := uow.Execute(ctx, func(ctx context.Context) error {
		lines := toLineRequests(req.Items)

		var (
			c   *cart.Cart
			err error
		)
		if fromCart {
			c, lines, foodIDs, err = s.cartLines.linesFor(ctx, actor.UserID, req.RestaurantID)
			if err != nil {
				return err
			}
		}

		o, err = s.domainService.PrepareOrder(ctx, order.PlacementRequest{
			UserID:        actor.UserID,
			RestaurantID:  req.RestaurantID,
			AddressID:     req.AddressID,
			PaymentMethod: method,
			Lines:         lines,
		})
		if err != nil {
			return err
		}

		if err := s.orderRepo.Save(ctx, o); err != nil {
			return err
		}
		uow.RegisterNew(o)

		if c != nil && !method.RequiresCheckout() {
			c.RemoveItemsForFoods(foodIDs)
			if err := s.cartRepo.Save(ctx, c); err != nil {
				return err
			}
			uow.RegisterDirty(c)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	if !method.RequiresCheckout() {
		foodIDs = nil
	}
	return o, foodIDs, nil
}

func (s *ApplicationService) openCheckout(ctx context.Context, o *order.Order) (payment.CheckoutSession, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.CheckoutTimeout)
	defer cancel()

	return s.gateway.CreateCheckoutSession(ctx, payment.CheckoutRequest{
		OrderID:       o.ID(),
		Amount:        o.TotalAmount(),
		PaymentMethod: string(o.PaymentMethod()),
	})
}

// attachPayment records the checkout session on the order and, for checkout
// from the cart, removes the ordered lines in the same transaction.
func (s *ApplicationService) attachPayment(ctx context.Context, userID int64, orderID string, session payment.CheckoutSession, cartFoods []int64) (*order.Order, error) {
	if len(cartFoods) > 0 {
		unlock, err := s.locker.Lock(ctx, cartLockKey(userID))
		if err != nil {
			return nil, err
		}
		defer unlock()
	}

	var o *order.Order
	uow := s.uowFactory.New()
	err := uow.Execute(ctx, func(ctx context.Context) error {
		var err error
		o, err = s.orderRepo.FindByIDIncludingArchived(ctx, orderID)
		if err != nil {
			return err
		}

		p, err := order.NewPayment(session.Provider, session.ID, session.URL, o.TotalAmount())
		if err != nil {
			return err
		}
		if err := o.AttachPayment(p); err != nil {
			return err
		}

		if err := s.orderRepo.Save(ctx, o); err != nil {
			return err
		}
		uow.RegisterDirty(o)

		if len(cartFoods) == 0 {
			return nil
		}
		c, err := s.cartRepo.FindByUserID(ctx, userID)
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if c.RemoveItemsForFoods(cartFoods) == 0 {
			return nil
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
	return o, nil
}

// ============================================================================
// Order Status Authority
// ============================================================================

// UpdateStatus applies a status change if the transition table allows it.
// Repeating the current status is a no-op.
func (s *ApplicationService) UpdateStatus(ctx context.Context, actor shared.Actor, orderID, status string) (*OrderResponse, error) {
	target, err := order.ParseStatus(status)
	if err != nil {
		return nil, err
	}

	var o *order.Order
	uow := s.uowFactory.New()
	err = uow.Execute(ctx, func(ctx context.Context) error {
		var err error
		o, err = s.orderRepo.FindByIDIncludingArchived(ctx, orderID)
		if err != nil {
			return err
		}
		if err := s.authorizeRestaurant(ctx, actor, o.RestaurantID()); err != nil {
			return err
		}

		changed, err := o.ChangeStatus(target)
		if err != nil || !changed {
			return err
		}

		if err := s.orderRepo.Save(ctx, o); err != nil {
			return err
		}
		uow.RegisterDirty(o)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("order status updated",
		zap.String("order_id", orderID),
		zap.String("status", string(o.Status())),
		zap.Int64("actor_id", actor.UserID))
	return toOrderResponse(o), nil
}

// CancelOrder cancels a PENDING order. The order is archived, not deleted.
func (s *ApplicationService) CancelOrder(ctx context.Context, actor shared.Actor, orderID string) error {
	uow := s.uowFactory.New()
	err := uow.Execute(ctx, func(ctx context.Context) error {
		o, err := s.orderRepo.FindByIDIncludingArchived(ctx, orderID)
		if err != nil {
			return err
		}
		if err := s.authorizeRestaurant(ctx, actor, o.RestaurantID()); err != nil {
			return err
		}

		if err := o.Cancel("cancelled by " + string(actor.Role) + " " + strconv.FormatInt(actor.UserID, 10)); err != nil {
			return err
		}

		if err := s.orderRepo.Save(ctx, o); err != nil {
			return err
		}
		uow.RegisterDirty(o)
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("order cancelled", zap.String("order_id", orderID), zap.Int64("actor_id", actor.UserID))
	return nil
}

// ApplyPaymentOutcome applies a payment processor notification. Each event
// id is applied at most once.
func (s *ApplicationService) ApplyPaymentOutcome(ctx context.Context, req PaymentOutcomeRequest) (*PaymentOutcomeResponse, error) {
	outcome, err := payment.ParseOutcome(req.Outcome)
	if err != nil {
		return nil, err
	}

	key := "payment:event:" + req.EventID
	first, err := s.dedup.Claim(ctx, key)
	if err != nil {
		return nil, err
	}
	if !first {
		o, err := s.orderRepo.FindByIDIncludingArchived(ctx, req.OrderID)
		if err != nil {
			return nil, err
		}
		logger.Info("duplicate payment notification ignored", zap.String("event_id", req.EventID))
		return toOutcomeResponse(o, true), nil
	}

	var o *order.Order
	uow := s.uowFactory.New()
	err = uow.Execute(ctx, func(ctx context.Context) error {
		var err error
		o, err = s.orderRepo.FindByIDIncludingArchived(ctx, req.OrderID)
		if err != nil {
			return err
		}

		var changed bool
		switch outcome {
		case payment.OutcomePaid:
			changed, err = o.MarkPaid(req.SessionID)
		case payment.OutcomeFailed:
			changed, err = o.MarkPaymentFailed(req.SessionID, req.Reason)
		}
		if err != nil || !changed {
			return err
		}

		if err := s.orderRepo.Save(ctx, o); err != nil {
			return err
		}
		uow.RegisterDirty(o)
		return nil
	})
	if err != nil {
		if relErr := s.dedup.Release(ctx, key); relErr != nil {
			logger.Warn("failed to release payment notification claim", zap.String("key", key), zap.Error(relErr))
		}
		return nil, err
	}

	logger.Info("payment outcome applied",
		zap.String("order_id", o.ID()),
		zap.String("outcome", string(outcome)),
		zap.String("payment_status", string(o.PaymentStatus())))
	return toOutcomeResponse(o, false), nil
}

// ============================================================================
// Queries
// ============================================================================

// GetOrder returns a live order visible to the caller.
func (s *ApplicationService) GetOrder(ctx context.Context, actor shared.Actor, orderID string) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if o.UserID() != actor.UserID {
		if err := s.authorizeRestaurant(ctx, actor, o.RestaurantID()); err != nil {
			return nil, order.NewOrderAccessDeniedError(orderID)
		}
	}
	return toOrderResponse(o), nil
}

// GetUserOrders lists the caller's orders, cancelled ones included.
func (s *ApplicationService) GetUserOrders(ctx context.Context, actor shared.Actor) ([]*OrderResponse, error) {
	orders, err := s.orderRepo.FindAll(ctx, order.NewByUserIDSpecification(actor.UserID))
	if err != nil {
		return nil, err
	}
	return toOrderResponses(orders), nil
}

// GetRestaurantOrders lists a restaurant's orders, optionally filtered by status.
func (s *ApplicationService) GetRestaurantOrders(ctx context.Context, actor shared.Actor, restaurantID int64, status string) ([]*OrderResponse, error) {
	var filter *order.Status
	if status != "" {
		st, err := order.ParseStatus(status)
		if err != nil {
			return nil, err
		}
		filter = &st
	}

	if err := s.authorizeRestaurant(ctx, actor, restaurantID); err != nil {
		return nil, err
	}

	orders, err := s.orderRepo.FindAll(ctx, order.RestaurantOrders(restaurantID, filter))
	if err != nil {
		return nil, err
	}
	return toOrderResponses(orders), nil
}

// authorizeRestaurant lets admins through and restaurant owners only for
// their own restaurant.
func (s *ApplicationService) authorizeRestaurant(ctx context.Context, actor shared.Actor, restaurantID int64) error {
	if actor.IsAdmin() {
		return nil
	}
	if actor.Role != shared.RoleRestaurantOwner {
		return shared.NewForbiddenError("restaurant", "restaurant orders require the restaurant owner role")
	}

	r, err := s.catalog.FindRestaurantByID(ctx, restaurantID)
	if err != nil {
		return err
	}
	if !r.IsOwnedBy(actor.UserID) {
		return shared.NewForbiddenError("restaurant", "restaurant "+strconv.FormatInt(restaurantID, 10)+" is not owned by the current user")
	}
	return nil
}

func toOutcomeResponse(o *order.Order, duplicate bool) *PaymentOutcomeResponse {
	return &PaymentOutcomeResponse{
		OrderID:       o.ID(),
		OrderStatus:   string(o.Status()),
		PaymentStatus: string(o.PaymentStatus()),
		Duplicate:     duplicate,
	}
}

func cartLockKey(userID int64) string {
	return "cart:user:" + strconv.FormatInt(userID, 10)
}
