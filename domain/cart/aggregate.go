/*
Package cart is the Cart subdomain.

A Cart is provisioned once per user and is never deleted; it is emptied
instead. All CartItem changes go through the Cart aggregate root, which keeps
two invariants:
 1. at most one line per food id (adding the same food again merges)
 2. every line's total equals quantity times its unit price
*/
package cart

import (
	"fmt"
	"time"

	"fooddelivery/domain/shared"

	"github.com/google/uuid"
)

// Cart aggregate root.
type Cart struct {
	shared.EventRecorder

	id        string
	userID    int64
	items     []CartItem
	version   int
	createdAt time.Time
	updatedAt time.Time

	// dirty tracking since load
	addedIDs     map[string]struct{}
	removedItems []CartItem
	isNew        bool
}

// CartItem is a cart line, only reachable through its Cart.
type CartItem struct {
	id          string
	foodID      int64
	foodName    string
	unitPrice   shared.Money
	quantity    int
	ingredients []string
	totalPrice  shared.Money
}

// NewCart provisions an empty cart for a user.
func NewCart(userID int64) (*Cart, error) {
	if userID <= 0 {
		return nil, shared.NewValidationError("cart", "userId", "user id must be positive")
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate cart ID: %w", err)
	}

	now := time.Now()
	return &Cart{
		id:        id.String(),
		userID:    userID,
		createdAt: now,
		updatedAt: now,
		isNew:     true,
	}, nil
}

// ReconstructionDTO is used by repositories to rebuild a Cart from storage.
type ReconstructionDTO struct {
	ID        string
	UserID    int64
	Items     []CartItem
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

func RebuildFromDTO(dto ReconstructionDTO) *Cart {
	return &Cart{
		id:        dto.ID,
		userID:    dto.UserID,
		items:     dto.Items,
		version:   dto.Version,
		createdAt: dto.CreatedAt,
		updatedAt: dto.UpdatedAt,
	}
}

// ItemReconstructionDTO rebuilds a CartItem from storage.
type ItemReconstructionDTO struct {
	ID          string
	FoodID      int64
	FoodName    string
	UnitPrice   shared.Money
	Quantity    int
	Ingredients []string
	TotalPrice  shared.Money
}

func RebuildItemFromDTO(dto ItemReconstructionDTO) CartItem {
	return CartItem{
		id:          dto.ID,
		foodID:      dto.FoodID,
		foodName:    dto.FoodName,
		unitPrice:   dto.UnitPrice,
		quantity:    dto.Quantity,
		ingredients: copyStrings(dto.Ingredients),
		totalPrice:  dto.TotalPrice,
	}
}

// FoodLine is the catalog data a cart line is priced from.
type FoodLine struct {
	FoodID    int64
	FoodName  string
	UnitPrice shared.Money
}

// AddItem adds quantity of a food to the cart.
// If the food already has a line, the quantities are summed and the line is
// repriced through UpdateItemQuantity. A non-empty ingredients list replaces
// the line's ingredients; an empty one keeps them.
func (c *Cart) AddItem(food FoodLine, quantity int, ingredients []string) (CartItem, error) {
	if quantity <= 0 {
		return CartItem{}, NewInvalidQuantityError(quantity)
	}

	if idx := c.indexOfFood(food.FoodID); idx >= 0 {
		existing := c.items[idx]
		if _, err := c.UpdateItemQuantity(existing.id, existing.quantity+quantity, food.UnitPrice); err != nil {
			return CartItem{}, err
		}
		if len(ingredients) > 0 {
			c.items[idx].ingredients = copyStrings(ingredients)
		}
		return c.items[idx], nil
	}

	total, err := food.UnitPrice.Multiply(quantity)
	if err != nil {
		return CartItem{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return CartItem{}, fmt.Errorf("failed to generate cart item ID: %w", err)
	}

	item := CartItem{
		id:          id.String(),
		foodID:      food.FoodID,
		foodName:    food.FoodName,
		unitPrice:   food.UnitPrice,
		quantity:    quantity,
		ingredients: copyStrings(ingredients),
		totalPrice:  total,
	}
	c.items = append(c.items, item)
	if !c.isNew {
		if c.addedIDs == nil {
			c.addedIDs = make(map[string]struct{})
		}
		c.addedIDs[item.id] = struct{}{}
	}
	c.updatedAt = time.Now()

	return item, nil
}

// UpdateItemQuantity sets the quantity of a line and recomputes its total
// from the given current unit price.
func (c *Cart) UpdateItemQuantity(itemID string, quantity int, unitPrice shared.Money) (CartItem, error) {
	idx := c.indexOfItem(itemID)
	if idx < 0 {
		return CartItem{}, NewCartItemNotFoundError(itemID)
	}
	if quantity <= 0 {
		return CartItem{}, NewInvalidQuantityError(quantity)
	}

	total, err := unitPrice.Multiply(quantity)
	if err != nil {
		return CartItem{}, err
	}

	c.items[idx].quantity = quantity
	c.items[idx].unitPrice = unitPrice
	c.items[idx].totalPrice = total
	c.updatedAt = time.Now()

	return c.items[idx], nil
}

// RemoveItem detaches a line from the cart.
func (c *Cart) RemoveItem(itemID string) error {
	idx := c.indexOfItem(itemID)
	if idx < 0 {
		return NewCartItemNotFoundError(itemID)
	}

	removed := c.items[idx]
	c.items = append(c.items[:idx], c.items[idx+1:]...)
	c.trackRemoval(removed)
	c.updatedAt = time.Now()

	return nil
}

// RemoveItemsForFoods detaches every line whose food is in foodIDs.
// Used when cart lines are checked out into an order.
func (c *Cart) RemoveItemsForFoods(foodIDs []int64) int {
	wanted := make(map[int64]struct{}, len(foodIDs))
	for _, id := range foodIDs {
		wanted[id] = struct{}{}
	}

	kept := c.items[:0]
	removed := 0
	for _, item := range c.items {
		if _, ok := wanted[item.foodID]; ok {
			c.trackRemoval(item)
			removed++
			continue
		}
		kept = append(kept, item)
	}
	c.items = kept
	if removed > 0 {
		c.updatedAt = time.Now()
	}
	return removed
}

// Clear empties the cart. The cart itself is kept.
func (c *Cart) Clear(reason string) {
	n := len(c.items)
	for _, item := range c.items {
		c.trackRemoval(item)
	}
	c.items = nil
	c.updatedAt = time.Now()

	c.Record(NewCartClearedEvent(c.id, c.userID, n, reason))
}

// Total sums the line totals. An empty cart totals zero.
func (c *Cart) Total() (shared.Money, error) {
	if len(c.items) == 0 {
		return shared.ZeroMoney(shared.DefaultCurrency), nil
	}

	total := shared.ZeroMoney(c.items[0].totalPrice.Currency())
	for _, item := range c.items {
		var err error
		total, err = total.Add(item.totalPrice)
		if err != nil {
			return shared.Money{}, err
		}
	}
	return total, nil
}

// IsOwnedBy reports whether the cart belongs to userID.
func (c *Cart) IsOwnedBy(userID int64) bool { return c.userID == userID }

// Item returns the line with the given id.
func (c *Cart) Item(itemID string) (CartItem, bool) {
	if idx := c.indexOfItem(itemID); idx >= 0 {
		return c.items[idx], true
	}
	return CartItem{}, false
}

// ItemForFood returns the line holding foodID, if any.
func (c *Cart) ItemForFood(foodID int64) (CartItem, bool) {
	if idx := c.indexOfFood(foodID); idx >= 0 {
		return c.items[idx], true
	}
	return CartItem{}, false
}

func (c *Cart) indexOfItem(itemID string) int {
	for i, item := range c.items {
		if item.id == itemID {
			return i
		}
	}
	return -1
}

func (c *Cart) indexOfFood(foodID int64) int {
	for i, item := range c.items {
		if item.foodID == foodID {
			return i
		}
	}
	return -1
}

func (c *Cart) trackRemoval(item CartItem) {
	if c.isNew {
		return
	}
	if _, added := c.addedIDs[item.id]; added {
		delete(c.addedIDs, item.id)
		return
	}
	c.removedItems = append(c.removedItems, item)
}

// IncrementVersionForSave is called by the repository after a successful save.
func (c *Cart) IncrementVersionForSave() {
	c.version++
}

// Getters

func (c *Cart) ID() string           { return c.id }
func (c *Cart) UserID() int64        { return c.userID }
func (c *Cart) Version() int         { return c.version }
func (c *Cart) CreatedAt() time.Time { return c.createdAt }
func (c *Cart) UpdatedAt() time.Time { return c.updatedAt }
func (c *Cart) Len() int             { return len(c.items) }

// Items returns a copy of the cart lines.
func (c *Cart) Items() []CartItem {
	items := make([]CartItem, len(c.items))
	copy(items, c.items)
	return items
}

// Dirty tracking, for repository use.

func (c *Cart) IsNew() bool { return c.isNew }

// RemovedItems returns persisted lines removed since load.
func (c *Cart) RemovedItems() []CartItem {
	items := make([]CartItem, len(c.removedItems))
	copy(items, c.removedItems)
	return items
}

func (c *Cart) ClearDirtyTracking() {
	c.addedIDs = nil
	c.removedItems = nil
	c.isNew = false
}

func (item CartItem) ID() string               { return item.id }
func (item CartItem) FoodID() int64            { return item.foodID }
func (item CartItem) FoodName() string         { return item.foodName }
func (item CartItem) UnitPrice() shared.Money  { return item.unitPrice }
func (item CartItem) Quantity() int            { return item.quantity }
func (item CartItem) TotalPrice() shared.Money { return item.totalPrice }

// Ingredients returns a copy of the selected customizations.
func (item CartItem) Ingredients() []string { return copyStrings(item.ingredients) }

func copyStrings(in []string) []string {
	if len(in) == 0 {
		return []string{}
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

var _ shared.AggregateRoot = (*Cart)(nil)
