package cart

import (
	"context"
	"errors"
	"sync"
	"testing"

	"fooddelivery/domain/shared"
	"fooddelivery/infrastructure/cache"
	"fooddelivery/infrastructure/persistence/fixtures"
	"fooddelivery/infrastructure/persistence/mocks"
)

var (
	customer = shared.Actor{UserID: fixtures.CustomerID, Role: shared.RoleCustomer}
	other    = shared.Actor{UserID: fixtures.OtherCustomerID, Role: shared.RoleCustomer}
	admin    = shared.Actor{UserID: 900, Role: shared.RoleAdmin}
)

func newTestService(t *testing.T) (*ApplicationService, *shared.EventBus) {
	t.Helper()
	bus := shared.NewEventBus()
	svc := NewApplicationService(
		mocks.NewMockCartRepository(),
		mocks.NewMockCatalogRepository(),
		mocks.NewMockUnitOfWorkFactory(bus),
		cache.NewMemoryLocker(),
	)
	for _, id := range fixtures.Customers() {
		if _, err := svc.ProvisionCart(context.Background(), id); err != nil {
			t.Fatalf("ProvisionCart(%d): %v", id, err)
		}
	}
	return svc, bus
}

func TestProvisionCartIsIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.GetByUser(ctx, customer, 0)
	if err != nil {
		t.Fatalf("GetByUser: %v", err)
	}
	again, err := svc.ProvisionCart(ctx, fixtures.CustomerID)
	if err != nil {
		t.Fatalf("ProvisionCart: %v", err)
	}
	if again.ID != first.ID {
		t.Errorf("second provision created a new cart: %s != %s", again.ID, first.ID)
	}
}

func TestAddItem(t *testing.T) {
	ctx := context.Background()

	t.Run("adds and merges", func(t *testing.T) {
		svc, _ := newTestService(t)
		if _, err := svc.AddItem(ctx, customer, AddItemRequest{FoodID: fixtures.MargheritaID, Quantity: 1}); err != nil {
			t.Fatalf("AddItem: %v", err)
		}
		item, err := svc.AddItem(ctx, customer, AddItemRequest{FoodID: fixtures.MargheritaID, Quantity: 2})
		if err != nil {
			t.Fatalf("AddItem: %v", err)
		}
		if item.Quantity != 3 || item.TotalPrice.StringFixed(2) != "29.97" {
			t.Errorf("item = %+v", item)
		}

		c, _ := svc.GetByUser(ctx, customer, 0)
		if len(c.Items) != 1 {
			t.Errorf("lines = %d, want 1", len(c.Items))
		}
	})

	t.Run("rejects bad input", func(t *testing.T) {
		svc, _ := newTestService(t)
		tests := []struct {
			name string
			req  AddItemRequest
			want error
		}{
			{"zero quantity", AddItemRequest{FoodID: fixtures.MargheritaID, Quantity: 0}, shared.ErrInvalidInput},
			{"unknown food", AddItemRequest{FoodID: 999, Quantity: 1}, shared.ErrNotFound},
			{"unavailable food", AddItemRequest{FoodID: fixtures.TiramisuID, Quantity: 1}, shared.ErrInvalidState},
		}
		for _, tt := range tests {
			if _, err := svc.AddItem(ctx, customer, tt.req); !errors.Is(err, tt.want) {
				t.Errorf("%s: err = %v, want %v", tt.name, err, tt.want)
			}
		}
	})

	t.Run("user without cart", func(t *testing.T) {
		svc, _ := newTestService(t)
		stranger := shared.Actor{UserID: 77, Role: shared.RoleCustomer}
		if _, err := svc.AddItem(ctx, stranger, AddItemRequest{FoodID: fixtures.MargheritaID, Quantity: 1}); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestConcurrentAddsDoNotLoseUpdates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AddItem(ctx, customer, AddItemRequest{FoodID: fixtures.PepperoniID, Quantity: 1})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("AddItem: %v", err)
		}
	}

	c, err := svc.GetByUser(ctx, customer, 0)
	if err != nil {
		t.Fatalf("GetByUser: %v", err)
	}
	if len(c.Items) != 1 || c.Items[0].Quantity != workers {
		t.Fatalf("items = %+v, want one line with quantity %d", c.Items, workers)
	}
}

func TestUpdateAndRemoveItem(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	item, _ := svc.AddItem(ctx, customer, AddItemRequest{FoodID: fixtures.MargheritaID, Quantity: 1})

	updated, err := svc.UpdateItemQuantity(ctx, customer, item.ID, 4)
	if err != nil {
		t.Fatalf("UpdateItemQuantity: %v", err)
	}
	if updated.Quantity != 4 || updated.TotalPrice.StringFixed(2) != "39.96" {
		t.Errorf("updated = %+v", updated)
	}

	if _, err := svc.UpdateItemQuantity(ctx, customer, item.ID, 0); !errors.Is(err, shared.ErrInvalidInput) {
		t.Errorf("zero quantity err = %v", err)
	}
	if _, err := svc.UpdateItemQuantity(ctx, other, item.ID, 2); !errors.Is(err, shared.ErrForbidden) {
		t.Errorf("foreign update err = %v, want ErrForbidden", err)
	}
	if _, err := svc.RemoveItem(ctx, other, item.ID); !errors.Is(err, shared.ErrForbidden) {
		t.Errorf("foreign remove err = %v, want ErrForbidden", err)
	}

	c, err := svc.RemoveItem(ctx, customer, item.ID)
	if err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if len(c.Items) != 0 {
		t.Errorf("lines after remove = %d", len(c.Items))
	}
	if _, err := svc.RemoveItem(ctx, customer, item.ID); !errors.Is(err, shared.ErrNotFound) {
		t.Errorf("second remove err = %v, want ErrNotFound", err)
	}
}

func TestGetTotal(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, _ = svc.AddItem(ctx, customer, AddItemRequest{FoodID: fixtures.MargheritaID, Quantity: 2})
	_, _ = svc.AddItem(ctx, customer, AddItemRequest{FoodID: fixtures.PepperoniID, Quantity: 1})
	c, _ := svc.GetByUser(ctx, customer, 0)

	total, err := svc.GetTotal(ctx, customer, c.ID)
	if err != nil {
		t.Fatalf("GetTotal: %v", err)
	}
	if total.Total.StringFixed(2) != "32.48" || total.Currency != "USD" {
		t.Errorf("total = %+v", total)
	}

	if _, err := svc.GetTotal(ctx, other, c.ID); !errors.Is(err, shared.ErrForbidden) {
		t.Errorf("foreign total err = %v, want ErrForbidden", err)
	}
	if _, err := svc.GetTotal(ctx, admin, c.ID); err != nil {
		t.Errorf("admin total: %v", err)
	}
	if _, err := svc.GetTotal(ctx, customer, "missing"); !errors.Is(err, shared.ErrNotFound) {
		t.Errorf("missing cart err = %v", err)
	}
}

func TestClear(t *testing.T) {
	svc, bus := newTestService(t)
	ctx := context.Background()

	var cleared []string
	_ = bus.Subscribe("cart.cleared", shared.NewFuncHandler("test", func(e shared.DomainEvent) error {
		cleared = append(cleared, e.GetAggregateID())
		return nil
	}))

	_, _ = svc.AddItem(ctx, customer, AddItemRequest{FoodID: fixtures.MargheritaID, Quantity: 2})

	if _, err := svc.Clear(ctx, other, fixtures.CustomerID); !errors.Is(err, shared.ErrForbidden) {
		t.Errorf("foreign clear err = %v, want ErrForbidden", err)
	}

	c, err := svc.Clear(ctx, customer, 0)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if len(c.Items) != 0 || !c.TotalPrice.IsZero() {
		t.Errorf("cart after clear = %+v", c)
	}
	if len(cleared) != 1 || cleared[0] != c.ID {
		t.Errorf("cart.cleared events = %v", cleared)
	}

	// the cart itself survives
	if _, err := svc.GetByUser(ctx, customer, 0); err != nil {
		t.Errorf("GetByUser after clear: %v", err)
	}
}

func TestGetByUserAccess(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.GetByUser(ctx, other, fixtures.CustomerID); !errors.Is(err, shared.ErrForbidden) {
		t.Errorf("err = %v, want ErrForbidden", err)
	}
	c, err := svc.GetByUser(ctx, admin, fixtures.CustomerID)
	if err != nil {
		t.Fatalf("admin GetByUser: %v", err)
	}
	if c.UserID != fixtures.CustomerID {
		t.Errorf("userId = %d", c.UserID)
	}
}
