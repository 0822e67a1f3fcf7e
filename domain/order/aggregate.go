/*
Package order Order subdomain

An Order is created at checkout from a snapshot of catalog data and never
changes its lines or amount afterwards. Only the lifecycle status, the payment
status and the attached Payment record move, and only through aggregate
methods that record domain events for the outbox.

Lifecycle:

	PENDING -> COMPLETED
	PENDING -> CANCELLED (archived, kept for history)

COMPLETED and CANCELLED are terminal.
*/
package order

import (
	"fmt"
	"time"

	"fooddelivery/domain/shared"

	"github.com/google/uuid"
)

// Order aggregate root
type Order struct {
	shared.EventRecorder

	id             string
	userID         int64
	restaurantID   int64
	restaurantName string
	addressID      int64
	items          []OrderItem
	totalAmount    shared.Money
	status         Status
	paymentStatus  PaymentStatus
	paymentMethod  PaymentMethod
	payment        *Payment
	version        int // optimistic lock
	createdAt      time.Time
	updatedAt      time.Time

	isNew           bool
	paymentAttached bool // payment record added since load
}

// OrderItem is an immutable snapshot of a food at order time.
type OrderItem struct {
	id          string
	foodID      int64
	foodName    string
	quantity    int
	ingredients []string
	unitPrice   shared.Money
	totalPrice  shared.Money
}

// ItemSnapshot is the catalog data copied into an OrderItem.
type ItemSnapshot struct {
	FoodID      int64
	FoodName    string
	UnitPrice   shared.Money
	Quantity    int
	Ingredients []string
}

// PlaceOptions describes a validated checkout.
type PlaceOptions struct {
	UserID         int64
	RestaurantID   int64
	RestaurantName string
	AddressID      int64
	PaymentMethod  PaymentMethod
	Items          []ItemSnapshot
}

// NewOrder creates a PENDING order. The total is always recomputed from the
// snapshots; there is no way to pass an amount in.
func NewOrder(opts PlaceOptions) (*Order, error) {
	if opts.UserID <= 0 {
		return nil, shared.NewValidationError("order", "userId", "user id must be positive")
	}
	if len(opts.Items) == 0 {
		return nil, NewEmptyOrderItemsError()
	}
	if opts.PaymentMethod == "" {
		return nil, NewInvalidPaymentMethodError("")
	}

	items := make([]OrderItem, len(opts.Items))
	total := shared.ZeroMoney(opts.Items[0].UnitPrice.Currency())
	for i, snap := range opts.Items {
		if snap.Quantity <= 0 {
			return nil, NewInvalidQuantityError(snap.FoodID, snap.Quantity)
		}

		lineTotal, err := snap.UnitPrice.Multiply(snap.Quantity)
		if err != nil {
			return nil, err
		}
		total, err = total.Add(lineTotal)
		if err != nil {
			return nil, err
		}

		id, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("failed to generate order item ID: %w", err)
		}

		ingredients := make([]string, len(snap.Ingredients))
		copy(ingredients, snap.Ingredients)

		items[i] = OrderItem{
			id:          id.String(),
			foodID:      snap.FoodID,
			foodName:    snap.FoodName,
			quantity:    snap.Quantity,
			ingredients: ingredients,
			unitPrice:   snap.UnitPrice,
			totalPrice:  lineTotal,
		}
	}

	if !total.IsPositive() {
		return nil, NewNonPositiveTotalError()
	}

	orderID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate order ID: %w", err)
	}

	now := time.Now()
	o := &Order{
		id:             orderID.String(),
		userID:         opts.UserID,
		restaurantID:   opts.RestaurantID,
		restaurantName: opts.RestaurantName,
		addressID:      opts.AddressID,
		items:          items,
		totalAmount:    total,
		status:         StatusPending,
		paymentStatus:  PaymentStatusPending,
		paymentMethod:  opts.PaymentMethod,
		createdAt:      now,
		updatedAt:      now,
		isNew:          true,
	}

	o.Record(NewOrderPlacedEvent(o))

	return o, nil
}

// ReconstructionDTO is for repository use only.
type ReconstructionDTO struct {
	ID             string
	UserID         int64
	RestaurantID   int64
	RestaurantName string
	AddressID      int64
	Items          []OrderItem
	TotalAmount    shared.Money
	Status         Status
	PaymentStatus  PaymentStatus
	PaymentMethod  PaymentMethod
	Payment        *Payment
	Version        int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// RebuildFromDTO reconstructs an Order from storage.
func RebuildFromDTO(dto ReconstructionDTO) *Order {
	return &Order{
		id:             dto.ID,
		userID:         dto.UserID,
		restaurantID:   dto.RestaurantID,
		restaurantName: dto.RestaurantName,
		addressID:      dto.AddressID,
		items:          dto.Items,
		totalAmount:    dto.TotalAmount,
		status:         dto.Status,
		paymentStatus:  dto.PaymentStatus,
		paymentMethod:  dto.PaymentMethod,
		payment:        dto.Payment,
		version:        dto.Version,
		createdAt:      dto.CreatedAt,
		updatedAt:      dto.UpdatedAt,
	}
}

// ItemReconstructionDTO rebuilds an OrderItem from storage.
type ItemReconstructionDTO struct {
	ID          string
	FoodID      int64
	FoodName    string
	Quantity    int
	Ingredients []string
	UnitPrice   shared.Money
	TotalPrice  shared.Money
}

func RebuildItemFromDTO(dto ItemReconstructionDTO) OrderItem {
	return OrderItem{
		id:          dto.ID,
		foodID:      dto.FoodID,
		foodName:    dto.FoodName,
		quantity:    dto.Quantity,
		ingredients: dto.Ingredients,
		unitPrice:   dto.UnitPrice,
		totalPrice:  dto.TotalPrice,
	}
}

// ============================================================================
// Status transitions
// ============================================================================

// ChangeStatus moves the order to target if the transition table allows it.
// It returns false when target equals the current status (no-op).
// Moving to CANCELLED goes through Cancel.
func (o *Order) ChangeStatus(target Status) (bool, error) {
	if !o.status.CanTransitionTo(target) {
		return false, NewInvalidTransitionError(o.status, target)
	}
	if target == o.status {
		return false, nil
	}
	if target == StatusCancelled {
		return true, o.Cancel("status update")
	}

	from := o.status
	o.status = target
	o.updatedAt = time.Now()
	o.Record(NewOrderStatusChangedEvent(o.id, from, target))

	return true, nil
}

// Cancel moves a PENDING order to CANCELLED.
func (o *Order) Cancel(reason string) error {
	if o.status != StatusPending {
		return NewCannotCancelError(o.status)
	}

	o.status = StatusCancelled
	o.updatedAt = time.Now()
	o.Record(NewOrderCancelledEvent(o, reason))

	return nil
}

// ============================================================================
// Payment
// ============================================================================

// AttachPayment links the checkout session issued for this order.
func (o *Order) AttachPayment(p *Payment) error {
	if o.payment != nil {
		return NewPaymentAlreadyAttachedError(o.id)
	}

	o.payment = p
	o.paymentAttached = true
	o.updatedAt = time.Now()
	o.Record(NewPaymentRecordedEvent(o.id, p))

	return nil
}

// MarkPaid records a successful payment. Repeating it is a no-op.
func (o *Order) MarkPaid(sessionID string) (bool, error) {
	if err := o.checkSession(sessionID); err != nil {
		return false, err
	}

	switch o.paymentStatus {
	case PaymentStatusPaid:
		return false, nil
	case PaymentStatusFailed:
		return false, NewPaymentAlreadySettledError(o.id, o.paymentStatus)
	}

	o.paymentStatus = PaymentStatusPaid
	o.updatedAt = time.Now()
	o.Record(NewPaymentSucceededEvent(o.id, sessionID))

	return true, nil
}

// MarkPaymentFailed records a failed payment and cancels the order if it is
// still PENDING. Repeating it is a no-op.
func (o *Order) MarkPaymentFailed(sessionID, reason string) (bool, error) {
	if err := o.checkSession(sessionID); err != nil {
		return false, err
	}

	switch o.paymentStatus {
	case PaymentStatusFailed:
		return false, nil
	case PaymentStatusPaid:
		return false, NewPaymentAlreadySettledError(o.id, o.paymentStatus)
	}

	o.paymentStatus = PaymentStatusFailed
	o.updatedAt = time.Now()
	o.Record(NewPaymentFailedEvent(o.id, sessionID, reason))

	if !o.status.IsTerminal() {
		if err := o.Cancel("payment failed: " + reason); err != nil {
			return false, err
		}
	}

	return true, nil
}

// checkSession accepts outcomes only for the checkout session attached to
// the order. Orders without one (cash on delivery, failed checkout) have no
// payment to settle.
func (o *Order) checkSession(sessionID string) error {
	if o.payment == nil {
		return NewNoCheckoutSessionError(o.id)
	}
	if o.payment.sessionID != sessionID {
		return NewSessionMismatchError(o.id, sessionID)
	}
	return nil
}

// IsArchived reports whether the order is kept only for history.
func (o *Order) IsArchived() bool { return o.status == StatusCancelled }

// IncrementVersionForSave is called by the repository after a successful save.
func (o *Order) IncrementVersionForSave() {
	o.version++
}

// ============================================================================
// Getters
// ============================================================================

func (o *Order) ID() string                   { return o.id }
func (o *Order) UserID() int64                { return o.userID }
func (o *Order) RestaurantID() int64          { return o.restaurantID }
func (o *Order) RestaurantName() string       { return o.restaurantName }
func (o *Order) AddressID() int64             { return o.addressID }
func (o *Order) TotalAmount() shared.Money    { return o.totalAmount }
func (o *Order) Status() Status               { return o.status }
func (o *Order) PaymentStatus() PaymentStatus { return o.paymentStatus }
func (o *Order) PaymentMethod() PaymentMethod { return o.paymentMethod }
func (o *Order) Payment() *Payment            { return o.payment }
func (o *Order) Version() int                 { return o.version }
func (o *Order) CreatedAt() time.Time         { return o.createdAt }
func (o *Order) UpdatedAt() time.Time         { return o.updatedAt }

// Items returns a copy of the order lines.
func (o *Order) Items() []OrderItem {
	items := make([]OrderItem, len(o.items))
	copy(items, o.items)
	return items
}

// Dirty tracking, for repository use.

func (o *Order) IsNew() bool { return o.isNew }

// PaymentAttached reports whether the payment record still needs inserting.
func (o *Order) PaymentAttached() bool { return o.paymentAttached }

func (o *Order) ClearDirtyTracking() {
	o.isNew = false
	o.paymentAttached = false
}

func (item OrderItem) ID() string               { return item.id }
func (item OrderItem) FoodID() int64            { return item.foodID }
func (item OrderItem) FoodName() string         { return item.foodName }
func (item OrderItem) Quantity() int            { return item.quantity }
func (item OrderItem) UnitPrice() shared.Money  { return item.unitPrice }
func (item OrderItem) TotalPrice() shared.Money { return item.totalPrice }

func (item OrderItem) Ingredients() []string {
	out := make([]string, len(item.ingredients))
	copy(out, item.ingredients)
	return out
}

var _ shared.AggregateRoot = (*Order)(nil)
