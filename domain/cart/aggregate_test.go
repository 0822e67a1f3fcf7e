package cart

import (
	"errors"
	"math"
	"testing"

	"fooddelivery/domain/shared"
)

func margherita() FoodLine {
	return FoodLine{FoodID: 10, FoodName: "Margherita", UnitPrice: shared.MustParseMoney("9.99", "USD")}
}

func pepperoni() FoodLine {
	return FoodLine{FoodID: 11, FoodName: "Pepperoni", UnitPrice: shared.MustParseMoney("12.50", "USD")}
}

func newTestCart(t *testing.T) *Cart {
	t.Helper()
	c, err := NewCart(1)
	if err != nil {
		t.Fatalf("NewCart: %v", err)
	}
	return c
}

func TestNewCartRejectsInvalidUser(t *testing.T) {
	for _, id := range []int64{0, -3} {
		if _, err := NewCart(id); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("NewCart(%d) err = %v, want ErrInvalidInput", id, err)
		}
	}
}

func TestAddItem(t *testing.T) {
	t.Run("new line is priced", func(t *testing.T) {
		c := newTestCart(t)
		item, err := c.AddItem(margherita(), 2, []string{"basil"})
		if err != nil {
			t.Fatalf("AddItem: %v", err)
		}
		if item.Quantity() != 2 {
			t.Errorf("quantity = %d, want 2", item.Quantity())
		}
		if want := shared.MustParseMoney("19.98", "USD"); !item.TotalPrice().Equals(want) {
			t.Errorf("total = %s, want %s", item.TotalPrice(), want)
		}
		if got := item.Ingredients(); len(got) != 1 || got[0] != "basil" {
			t.Errorf("ingredients = %v", got)
		}
	})

	t.Run("same food merges into one line", func(t *testing.T) {
		c := newTestCart(t)
		first, _ := c.AddItem(margherita(), 1, []string{"basil"})
		merged, err := c.AddItem(margherita(), 3, nil)
		if err != nil {
			t.Fatalf("AddItem: %v", err)
		}
		if c.Len() != 1 {
			t.Fatalf("lines = %d, want 1", c.Len())
		}
		if merged.ID() != first.ID() {
			t.Errorf("merged line id changed: %s != %s", merged.ID(), first.ID())
		}
		if merged.Quantity() != 4 {
			t.Errorf("quantity = %d, want 4", merged.Quantity())
		}
		if want := shared.MustParseMoney("39.96", "USD"); !merged.TotalPrice().Equals(want) {
			t.Errorf("total = %s, want %s", merged.TotalPrice(), want)
		}
		if got := merged.Ingredients(); len(got) != 1 || got[0] != "basil" {
			t.Errorf("empty ingredients should keep existing ones, got %v", got)
		}
	})

	t.Run("merge with ingredients replaces them", func(t *testing.T) {
		c := newTestCart(t)
		_, _ = c.AddItem(margherita(), 1, []string{"basil"})
		merged, _ := c.AddItem(margherita(), 1, []string{"olives", "chili"})
		if got := merged.Ingredients(); len(got) != 2 || got[0] != "olives" {
			t.Errorf("ingredients = %v, want [olives chili]", got)
		}
	})

	t.Run("failed merge leaves the line untouched", func(t *testing.T) {
		c := newTestCart(t)
		if _, err := c.AddItem(margherita(), math.MaxInt, []string{"basil"}); err != nil {
			t.Fatalf("AddItem: %v", err)
		}
		if _, err := c.AddItem(margherita(), 1, []string{"olives"}); !errors.Is(err, shared.ErrInvalidInput) {
			t.Fatalf("overflowing merge err = %v, want ErrInvalidInput", err)
		}
		item, ok := c.ItemForFood(margherita().FoodID)
		if !ok {
			t.Fatal("line disappeared")
		}
		if item.Quantity() != math.MaxInt {
			t.Errorf("quantity = %d, want unchanged", item.Quantity())
		}
		if got := item.Ingredients(); len(got) != 1 || got[0] != "basil" {
			t.Errorf("ingredients = %v, want [basil]", got)
		}
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		c := newTestCart(t)
		for _, q := range []int{0, -1} {
			if _, err := c.AddItem(margherita(), q, nil); !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("quantity %d: err = %v, want ErrInvalidInput", q, err)
			}
		}
		if c.Len() != 0 {
			t.Errorf("cart should stay empty, has %d lines", c.Len())
		}
	})
}

func TestUpdateItemQuantity(t *testing.T) {
	c := newTestCart(t)
	item, _ := c.AddItem(margherita(), 1, nil)

	newPrice := shared.MustParseMoney("10.00", "USD")
	updated, err := c.UpdateItemQuantity(item.ID(), 3, newPrice)
	if err != nil {
		t.Fatalf("UpdateItemQuantity: %v", err)
	}
	if want := shared.MustParseMoney("30.00", "USD"); !updated.TotalPrice().Equals(want) {
		t.Errorf("total = %s, want %s", updated.TotalPrice(), want)
	}

	if _, err := c.UpdateItemQuantity(item.ID(), 0, newPrice); !errors.Is(err, shared.ErrInvalidInput) {
		t.Errorf("zero quantity err = %v, want ErrInvalidInput", err)
	}
	if _, err := c.UpdateItemQuantity("missing", 1, newPrice); !errors.Is(err, shared.ErrNotFound) {
		t.Errorf("missing item err = %v, want ErrNotFound", err)
	}
}

func TestRemoveItemAndTotal(t *testing.T) {
	c := newTestCart(t)
	a, _ := c.AddItem(margherita(), 2, nil)
	_, _ = c.AddItem(pepperoni(), 1, nil)

	total, err := c.Total()
	if err != nil {
		t.Fatalf("Total: %v", err)
	}
	if want := shared.MustParseMoney("32.48", "USD"); !total.Equals(want) {
		t.Errorf("total = %s, want %s", total, want)
	}

	if err := c.RemoveItem(a.ID()); err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if err := c.RemoveItem(a.ID()); !errors.Is(err, shared.ErrNotFound) {
		t.Errorf("second remove err = %v, want ErrNotFound", err)
	}
	total, _ = c.Total()
	if want := shared.MustParseMoney("12.50", "USD"); !total.Equals(want) {
		t.Errorf("total after remove = %s, want %s", total, want)
	}
}

func TestEmptyCartTotalIsZero(t *testing.T) {
	c := newTestCart(t)
	total, err := c.Total()
	if err != nil {
		t.Fatalf("Total: %v", err)
	}
	if !total.IsZero() {
		t.Errorf("empty cart total = %s, want 0", total)
	}
}

func TestClearKeepsCartAndRecordsEvent(t *testing.T) {
	c := newTestCart(t)
	_, _ = c.AddItem(margherita(), 1, nil)
	_, _ = c.AddItem(pepperoni(), 1, nil)
	c.ClearDirtyTracking()

	c.Clear("checkout")

	if c.Len() != 0 {
		t.Errorf("lines after clear = %d", c.Len())
	}
	if got := len(c.RemovedItems()); got != 2 {
		t.Errorf("removed items tracked = %d, want 2", got)
	}
	events := c.PullEvents()
	if len(events) != 1 || events[0].EventName() != "cart.cleared" {
		t.Fatalf("events = %v", events)
	}
	cleared := events[0].(*CartClearedEvent)
	if cleared.RemovedLines() != 2 || cleared.Reason() != "checkout" {
		t.Errorf("event = %+v", cleared.Payload())
	}
	if c.PendingEvents() != 0 {
		t.Error("PullEvents should reset pending events")
	}
}

func TestRemoveItemsForFoods(t *testing.T) {
	c := newTestCart(t)
	_, _ = c.AddItem(margherita(), 1, nil)
	_, _ = c.AddItem(pepperoni(), 1, nil)

	if n := c.RemoveItemsForFoods([]int64{10, 99}); n != 1 {
		t.Fatalf("removed = %d, want 1", n)
	}
	if _, ok := c.ItemForFood(10); ok {
		t.Error("food 10 should be gone")
	}
	if _, ok := c.ItemForFood(11); !ok {
		t.Error("food 11 should remain")
	}
}

func TestDirtyTrackingOnLoadedCart(t *testing.T) {
	persisted := RebuildItemFromDTO(ItemReconstructionDTO{
		ID: "item-1", FoodID: 10, FoodName: "Margherita",
		UnitPrice: shared.MustParseMoney("9.99", "USD"), Quantity: 1,
		TotalPrice: shared.MustParseMoney("9.99", "USD"),
	})
	c := RebuildFromDTO(ReconstructionDTO{ID: "cart-1", UserID: 1, Items: []CartItem{persisted}, Version: 4})

	added, _ := c.AddItem(pepperoni(), 1, nil)
	// a line added and removed in the same session never reaches storage
	_ = c.RemoveItem(added.ID())
	_ = c.RemoveItem("item-1")

	removed := c.RemovedItems()
	if len(removed) != 1 || removed[0].ID() != "item-1" {
		t.Errorf("removed = %v, want only item-1", removed)
	}
	if c.IsNew() {
		t.Error("rebuilt cart must not be new")
	}
	if c.Version() != 4 {
		t.Errorf("version = %d", c.Version())
	}
}

func TestIsOwnedBy(t *testing.T) {
	c := newTestCart(t)
	if !c.IsOwnedBy(1) || c.IsOwnedBy(2) {
		t.Error("ownership check is wrong")
	}
}
