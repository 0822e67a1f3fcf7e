package order

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"fooddelivery/domain/cart"
	"fooddelivery/domain/order"
	"fooddelivery/domain/payment"
	"fooddelivery/domain/shared"
	"fooddelivery/infrastructure/cache"
	"fooddelivery/infrastructure/persistence/fixtures"
	"fooddelivery/infrastructure/persistence/mocks"
)

var (
	customer    = shared.Actor{UserID: fixtures.CustomerID, Role: shared.RoleCustomer}
	otherUser   = shared.Actor{UserID: fixtures.OtherCustomerID, Role: shared.RoleCustomer}
	owner       = shared.Actor{UserID: fixtures.OwnerID, Role: shared.RoleRestaurantOwner}
	strangerOwn = shared.Actor{UserID: fixtures.ClosedOwnerID, Role: shared.RoleRestaurantOwner}
	admin       = shared.Actor{UserID: 900, Role: shared.RoleAdmin}
)

// stubGateway hands out numbered sessions or a fixed error.
type stubGateway struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (g *stubGateway) CreateCheckoutSession(ctx context.Context, req payment.CheckoutRequest) (payment.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.err != nil {
		return payment.CheckoutSession{}, g.err
	}
	return payment.CheckoutSession{
		ID:       "cs_" + req.OrderID,
		URL:      "https://pay.test/" + req.OrderID,
		Provider: "stub",
	}, nil
}

type fixture struct {
	svc     *ApplicationService
	carts   *mocks.MockCartRepository
	orders  *mocks.MockOrderRepository
	catalog *mocks.MockCatalogRepository
	gateway *stubGateway
	events  []string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		carts:   mocks.NewMockCartRepository(),
		orders:  mocks.NewMockOrderRepository(),
		gateway: &stubGateway{},
	}

	bus := shared.NewEventBus()
	var mu sync.Mutex
	for _, name := range []string{"order.placed", "order.payment_recorded", "order.payment_succeeded",
		"order.payment_failed", "order.status_changed", "order.cancelled"} {
		_ = bus.Subscribe(name, shared.NewFuncHandler("test", func(e shared.DomainEvent) error {
			mu.Lock()
			f.events = append(f.events, e.EventName())
			mu.Unlock()
			return nil
		}))
	}

	catalogRepo := mocks.NewMockCatalogRepository()
	f.catalog = catalogRepo
	f.svc = NewApplicationService(Dependencies{
		OrderRepo:   f.orders,
		CartRepo:    f.carts,
		Catalog:     catalogRepo,
		DomainSvc:   order.NewDomainService(catalogRepo, mocks.NewMockAddressRepository()),
		Gateway:     f.gateway,
		UoWFactory:  mocks.NewMockUnitOfWorkFactory(bus),
		Locker:      cache.NewMemoryLocker(),
		Deduplicate: cache.NewMemoryDeduplicator(time.Hour),
	}, Options{CheckoutTimeout: time.Second})
	return f
}

func (f *fixture) seedCart(t *testing.T, userID int64, lines map[int64]int) {
	t.Helper()
	c, err := cart.NewCart(userID)
	if err != nil {
		t.Fatalf("NewCart: %v", err)
	}
	for _, food := range fixtures.Foods() {
		if q, ok := lines[food.ID]; ok {
			if _, err := c.AddItem(cart.FoodLine{FoodID: food.ID, FoodName: food.Name, UnitPrice: food.Price}, q, nil); err != nil {
				t.Fatalf("AddItem: %v", err)
			}
		}
	}
	if err := f.carts.Save(context.Background(), c); err != nil {
		t.Fatalf("Save cart: %v", err)
	}
}

func cardOrder() CreateOrderRequest {
	return CreateOrderRequest{
		RestaurantID:  fixtures.OpenRestaurantID,
		AddressID:     fixtures.CustomerAddr,
		PaymentMethod: "CARD",
		Items: []OrderItemRequest{
			{FoodID: fixtures.MargheritaID, Quantity: 2},
			{FoodID: fixtures.PepperoniID, Quantity: 1},
		},
	}
}

func (f *fixture) place(t *testing.T) *OrderResponse {
	t.Helper()
	resp, err := f.svc.CreateOrder(context.Background(), customer, cardOrder())
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	return resp.Order
}

func TestCreateOrderWithCheckout(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.CreateOrder(context.Background(), customer, cardOrder())
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	o := resp.Order
	if resp.PaymentURL != "https://pay.test/"+o.OrderID {
		t.Errorf("payment url = %q", resp.PaymentURL)
	}
	if o.OrderStatus != "PENDING" || o.PaymentStatus != "PENDING" {
		t.Errorf("status = %s/%s", o.OrderStatus, o.PaymentStatus)
	}
	if o.TotalAmount.StringFixed(2) != "32.48" {
		t.Errorf("total = %s", o.TotalAmount)
	}
	if o.Payment == nil || o.Payment.SessionID != "cs_"+o.OrderID {
		t.Errorf("payment = %+v", o.Payment)
	}
	if len(f.events) != 2 || f.events[0] != "order.placed" || f.events[1] != "order.payment_recorded" {
		t.Errorf("events = %v", f.events)
	}
}

func TestCreateOrderFromCart(t *testing.T) {
	f := newFixture(t)
	f.seedCart(t, fixtures.CustomerID, map[int64]int{fixtures.MargheritaID: 3, fixtures.RamenID: 1})

	req := cardOrder()
	req.Items = nil
	resp, err := f.svc.CreateOrder(context.Background(), customer, req)
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if len(resp.Order.Items) != 1 || resp.Order.Items[0].Quantity != 3 {
		t.Fatalf("items = %+v", resp.Order.Items)
	}

	c, err := f.carts.FindByUserID(context.Background(), fixtures.CustomerID)
	if err != nil {
		t.Fatalf("FindByUserID: %v", err)
	}
	// lines of other restaurants stay in the cart
	if c.Len() != 1 {
		t.Fatalf("cart lines = %d, want 1", c.Len())
	}
	if _, ok := c.ItemForFood(fixtures.RamenID); !ok {
		t.Error("ramen line should remain")
	}
}

func TestCreateOrderFromCartWithoutMatchingLines(t *testing.T) {
	f := newFixture(t)
	f.seedCart(t, fixtures.CustomerID, map[int64]int{fixtures.RamenID: 1})

	req := cardOrder()
	req.Items = nil
	if _, err := f.svc.CreateOrder(context.Background(), customer, req); !errors.Is(err, shared.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
	if f.orders.Count() != 0 {
		t.Error("no order should be stored")
	}
}

func TestCreateOrderCashOnDeliverySkipsGateway(t *testing.T) {
	f := newFixture(t)
	req := cardOrder()
	req.PaymentMethod = "cash_on_delivery"

	resp, err := f.svc.CreateOrder(context.Background(), customer, req)
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if resp.PaymentURL != "" || resp.Order.Payment != nil {
		t.Errorf("cash order got a checkout: %+v", resp)
	}
	if f.gateway.calls != 0 {
		t.Errorf("gateway calls = %d", f.gateway.calls)
	}
}

func TestCreateOrderGatewayFailureLeavesOrderPending(t *testing.T) {
	f := newFixture(t)
	f.gateway.err = &payment.GatewayError{Provider: "stub", StatusCode: 503, Message: "down", Transient: true}

	_, err := f.svc.CreateOrder(context.Background(), customer, cardOrder())
	if !errors.Is(err, payment.ErrGateway) {
		t.Fatalf("err = %v, want ErrGateway", err)
	}

	orders, err := f.svc.GetUserOrders(context.Background(), customer)
	if err != nil {
		t.Fatalf("GetUserOrders: %v", err)
	}
	if len(orders) != 1 || orders[0].OrderStatus != "PENDING" || orders[0].Payment != nil {
		t.Errorf("orders = %+v", orders)
	}
}

func TestCreateOrderFromCartGatewayFailureKeepsCart(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedCart(t, fixtures.CustomerID, map[int64]int{fixtures.MargheritaID: 2})
	f.gateway.err = &payment.GatewayError{Provider: "stub", StatusCode: 503, Message: "down", Transient: true}

	req := cardOrder()
	req.Items = nil
	if _, err := f.svc.CreateOrder(ctx, customer, req); !errors.Is(err, payment.ErrGateway) {
		t.Fatalf("err = %v, want ErrGateway", err)
	}

	c, err := f.carts.FindByUserID(ctx, fixtures.CustomerID)
	if err != nil {
		t.Fatalf("FindByUserID: %v", err)
	}
	item, ok := c.ItemForFood(fixtures.MargheritaID)
	if !ok || item.Quantity() != 2 {
		t.Fatalf("cart lost its lines after a failed checkout: len=%d", c.Len())
	}

	// gateway back up: checking out from the same cart succeeds and clears it
	f.gateway.err = nil
	resp, err := f.svc.CreateOrder(ctx, customer, req)
	if err != nil {
		t.Fatalf("retry CreateOrder: %v", err)
	}
	if resp.PaymentURL == "" || len(resp.Order.Items) != 1 || resp.Order.Items[0].Quantity != 2 {
		t.Errorf("retry = %+v", resp)
	}
	c, err = f.carts.FindByUserID(ctx, fixtures.CustomerID)
	if err != nil {
		t.Fatalf("FindByUserID: %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("cart lines = %d after checkout, want 0", c.Len())
	}
	if f.orders.Count() != 2 {
		t.Errorf("orders stored = %d, want 2", f.orders.Count())
	}
}

func TestCreateOrderFromCartCashOnDeliveryClearsCart(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedCart(t, fixtures.CustomerID, map[int64]int{fixtures.PepperoniID: 1})

	req := cardOrder()
	req.Items = nil
	req.PaymentMethod = "CASH_ON_DELIVERY"
	if _, err := f.svc.CreateOrder(ctx, customer, req); err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	c, err := f.carts.FindByUserID(ctx, fixtures.CustomerID)
	if err != nil {
		t.Fatalf("FindByUserID: %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("cart lines = %d, want 0", c.Len())
	}
}

func TestPlacedOrderIgnoresLaterPriceChanges(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	placed := f.place(t)

	for _, food := range fixtures.Foods() {
		if food.ID == fixtures.MargheritaID {
			raised := *food
			raised.Price = shared.MustParseMoney("99.00", shared.DefaultCurrency)
			f.catalog.PutFood(raised)
		}
	}

	got, err := f.svc.GetOrder(ctx, customer, placed.OrderID)
	if err != nil {
		t.Fatalf("GetOrder: %v", err)
	}
	if got.TotalAmount.StringFixed(2) != "32.48" {
		t.Errorf("total = %s, want 32.48", got.TotalAmount.StringFixed(2))
	}
	for _, item := range got.Items {
		if item.FoodID == fixtures.MargheritaID &&
			(item.UnitPrice.StringFixed(2) != "9.99" || item.TotalPrice.StringFixed(2) != "19.98") {
			t.Errorf("margherita line = %s x %d = %s", item.UnitPrice, item.Quantity, item.TotalPrice)
		}
	}

	// a new order is priced from the current catalog
	fresh := f.place(t)
	if fresh.TotalAmount.StringFixed(2) != "210.50" {
		t.Errorf("new order total = %s, want 210.50", fresh.TotalAmount.StringFixed(2))
	}
}

func TestCreateOrderValidation(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name   string
		mutate func(*CreateOrderRequest)
		want   error
	}{
		{"payment method", func(r *CreateOrderRequest) { r.PaymentMethod = "BARTER" }, shared.ErrInvalidInput},
		{"closed restaurant", func(r *CreateOrderRequest) {
			r.RestaurantID = fixtures.ClosedRestaurantID
			r.Items = []OrderItemRequest{{FoodID: fixtures.RamenID, Quantity: 1}}
		}, shared.ErrInvalidState},
		{"foreign address", func(r *CreateOrderRequest) { r.AddressID = fixtures.OtherUserAddr }, shared.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := cardOrder()
			tt.mutate(&req)
			if _, err := f.svc.CreateOrder(context.Background(), customer, req); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			if f.orders.Count() != 0 {
				t.Errorf("orders stored = %d, want 0", f.orders.Count())
			}
			if f.gateway.calls != 0 {
				t.Errorf("gateway calls = %d, want 0", f.gateway.calls)
			}
		})
	}
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("owner completes order", func(t *testing.T) {
		f := newFixture(t)
		o := f.place(t)
		updated, err := f.svc.UpdateStatus(ctx, owner, o.OrderID, "completed")
		if err != nil {
			t.Fatalf("UpdateStatus: %v", err)
		}
		if updated.OrderStatus != "COMPLETED" {
			t.Errorf("status = %s", updated.OrderStatus)
		}
		if _, err := f.svc.UpdateStatus(ctx, owner, o.OrderID, "PENDING"); !errors.Is(err, shared.ErrInvalidState) {
			t.Errorf("COMPLETED -> PENDING err = %v", err)
		}
	})

	t.Run("same status is a no-op", func(t *testing.T) {
		f := newFixture(t)
		o := f.place(t)
		before := len(f.events)
		if _, err := f.svc.UpdateStatus(ctx, admin, o.OrderID, "PENDING"); err != nil {
			t.Fatalf("UpdateStatus: %v", err)
		}
		if len(f.events) != before {
			t.Errorf("no-op recorded events: %v", f.events[before:])
		}
	})

	t.Run("rejections", func(t *testing.T) {
		f := newFixture(t)
		o := f.place(t)
		if _, err := f.svc.UpdateStatus(ctx, owner, o.OrderID, "DELIVERED"); !errors.Is(err, shared.ErrInvalidState) {
			t.Errorf("unknown status err = %v", err)
		}
		if _, err := f.svc.UpdateStatus(ctx, strangerOwn, o.OrderID, "COMPLETED"); !errors.Is(err, shared.ErrForbidden) {
			t.Errorf("other owner err = %v", err)
		}
		if _, err := f.svc.UpdateStatus(ctx, customer, o.OrderID, "COMPLETED"); !errors.Is(err, shared.ErrForbidden) {
			t.Errorf("customer err = %v", err)
		}
		if _, err := f.svc.UpdateStatus(ctx, admin, "missing", "COMPLETED"); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("missing order err = %v", err)
		}
	})
}

func TestCancelOrderArchives(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.place(t)

	if err := f.svc.CancelOrder(ctx, owner, o.OrderID); err != nil {
		t.Fatalf("CancelOrder: %v", err)
	}
	if err := f.svc.CancelOrder(ctx, owner, o.OrderID); !errors.Is(err, shared.ErrInvalidState) {
		t.Errorf("second cancel err = %v, want ErrInvalidState", err)
	}
	if _, err := f.svc.GetOrder(ctx, customer, o.OrderID); !errors.Is(err, shared.ErrNotFound) {
		t.Errorf("archived GetOrder err = %v, want ErrNotFound", err)
	}

	orders, _ := f.svc.GetUserOrders(ctx, customer)
	if len(orders) != 1 || orders[0].OrderStatus != "CANCELLED" {
		t.Errorf("history = %+v", orders)
	}
	if f.orders.Count() != 1 {
		t.Error("cancelled order must be kept")
	}
}

func TestApplyPaymentOutcome(t *testing.T) {
	ctx := context.Background()

	t.Run("paid then duplicate", func(t *testing.T) {
		f := newFixture(t)
		o := f.place(t)
		req := PaymentOutcomeRequest{EventID: "evt_1", OrderID: o.OrderID, SessionID: "cs_" + o.OrderID, Outcome: "PAID"}

		res, err := f.svc.ApplyPaymentOutcome(ctx, req)
		if err != nil {
			t.Fatalf("ApplyPaymentOutcome: %v", err)
		}
		if res.PaymentStatus != "PAID" || res.Duplicate {
			t.Errorf("result = %+v", res)
		}

		res, err = f.svc.ApplyPaymentOutcome(ctx, req)
		if err != nil {
			t.Fatalf("duplicate: %v", err)
		}
		if !res.Duplicate || res.PaymentStatus != "PAID" {
			t.Errorf("duplicate result = %+v", res)
		}
	})

	t.Run("failure cancels order", func(t *testing.T) {
		f := newFixture(t)
		o := f.place(t)
		res, err := f.svc.ApplyPaymentOutcome(ctx, PaymentOutcomeRequest{
			EventID: "evt_2", OrderID: o.OrderID, SessionID: "cs_" + o.OrderID, Outcome: "FAILED", Reason: "declined",
		})
		if err != nil {
			t.Fatalf("ApplyPaymentOutcome: %v", err)
		}
		if res.OrderStatus != "CANCELLED" || res.PaymentStatus != "FAILED" {
			t.Errorf("result = %+v", res)
		}
	})

	t.Run("rejected notification releases its claim", func(t *testing.T) {
		f := newFixture(t)
		o := f.place(t)
		bad := PaymentOutcomeRequest{EventID: "evt_3", OrderID: o.OrderID, SessionID: "cs_wrong", Outcome: "PAID"}
		if _, err := f.svc.ApplyPaymentOutcome(ctx, bad); !errors.Is(err, shared.ErrInvalidInput) {
			t.Fatalf("err = %v, want ErrInvalidInput", err)
		}

		good := bad
		good.SessionID = "cs_" + o.OrderID
		res, err := f.svc.ApplyPaymentOutcome(ctx, good)
		if err != nil {
			t.Fatalf("redelivery: %v", err)
		}
		if res.Duplicate || res.PaymentStatus != "PAID" {
			t.Errorf("redelivery result = %+v", res)
		}
	})

	t.Run("unknown outcome", func(t *testing.T) {
		f := newFixture(t)
		o := f.place(t)
		_, err := f.svc.ApplyPaymentOutcome(ctx, PaymentOutcomeRequest{EventID: "e", OrderID: o.OrderID, SessionID: "s", Outcome: "MAYBE"})
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("err = %v", err)
		}
	})
}

func TestReadAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.place(t)

	if _, err := f.svc.GetOrder(ctx, customer, o.OrderID); err != nil {
		t.Errorf("owner read: %v", err)
	}
	if _, err := f.svc.GetOrder(ctx, owner, o.OrderID); err != nil {
		t.Errorf("restaurant owner read: %v", err)
	}
	if _, err := f.svc.GetOrder(ctx, otherUser, o.OrderID); !errors.Is(err, shared.ErrForbidden) {
		t.Errorf("other customer err = %v, want ErrForbidden", err)
	}

	pending, err := f.svc.GetRestaurantOrders(ctx, owner, fixtures.OpenRestaurantID, "PENDING")
	if err != nil || len(pending) != 1 {
		t.Fatalf("pending orders = %v, %v", pending, err)
	}
	completed, err := f.svc.GetRestaurantOrders(ctx, owner, fixtures.OpenRestaurantID, "COMPLETED")
	if err != nil || len(completed) != 0 {
		t.Errorf("completed orders = %v, %v", completed, err)
	}
	if _, err := f.svc.GetRestaurantOrders(ctx, strangerOwn, fixtures.OpenRestaurantID, ""); !errors.Is(err, shared.ErrForbidden) {
		t.Errorf("other owner err = %v", err)
	}
	if _, err := f.svc.GetRestaurantOrders(ctx, owner, fixtures.OpenRestaurantID, "SHIPPED"); !errors.Is(err, shared.ErrInvalidState) {
		t.Errorf("bad filter err = %v", err)
	}

	others, _ := f.svc.GetUserOrders(ctx, otherUser)
	if len(others) != 0 {
		t.Errorf("other user sees %d orders", len(others))
	}
}
