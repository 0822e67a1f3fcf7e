package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"fooddelivery/config"
	"fooddelivery/infrastructure/persistence/fixtures"
	paymentgw "fooddelivery/infrastructure/payment"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	testSecret        = "test-secret"
	testWebhookSecret = "whsec_test"
)

type envelope struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Code    int             `json:"code"`
	Data    json.RawMessage `json:"data"`
}

func newTestApp(t *testing.T) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	cfg.App.Env = "test"
	cfg.Database.Type = "mock"
	cfg.Auth.Enabled = true
	cfg.Auth.Secret = testSecret
	cfg.Auth.Issuer = ""
	cfg.Payment.Provider = "sandbox"
	cfg.Payment.WebhookSecret = testWebhookSecret
	cfg.Redis.Enabled = false
	cfg.Worker.Broker = "log"
	cfg.Server.RateLimit.Enabled = false

	app, err := NewBuilder(cfg).Build(context.Background())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(app.close)
	return app.Handler()
}

func token(t *testing.T, userID int64, role string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"userId": userID,
		"role":   role,
		"exp":    time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func do(t *testing.T, h http.Handler, method, path, bearer string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	return rec, env
}

func decode(t *testing.T, raw json.RawMessage, v any) {
	t.Helper()
	if err := json.Unmarshal(raw, v); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
}

func TestHealthIsPublic(t *testing.T) {
	h := newTestApp(t)
	for _, path := range []string{"/api/v1/health", "/api/v1/health/live", "/api/v1/health/ready"} {
		if rec, _ := do(t, h, http.MethodGet, path, "", nil); rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d", path, rec.Code)
		}
	}
}

func TestAuthentication(t *testing.T) {
	h := newTestApp(t)

	if rec, env := do(t, h, http.MethodGet, "/api/v1/cart", "", nil); rec.Code != http.StatusUnauthorized || env.Success {
		t.Errorf("no token = %d %+v", rec.Code, env)
	}
	if rec, _ := do(t, h, http.MethodGet, "/api/v1/cart", "not-a-jwt", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("bad token = %d", rec.Code)
	}

	customer := token(t, fixtures.CustomerID, "CUSTOMER")
	if rec, _ := do(t, h, http.MethodGet, "/api/v1/admin/order/restaurant/5", customer, nil); rec.Code != http.StatusForbidden {
		t.Errorf("customer on admin route = %d, want 403", rec.Code)
	}
}

func TestCartEndpoints(t *testing.T) {
	h := newTestApp(t)
	customer := token(t, fixtures.CustomerID, "CUSTOMER")
	other := token(t, fixtures.OtherCustomerID, "CUSTOMER")

	rec, env := do(t, h, http.MethodGet, "/api/v1/cart", customer, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET cart = %d", rec.Code)
	}
	var c struct {
		ID string `json:"id"`
	}
	decode(t, env.Data, &c)

	rec, env = do(t, h, http.MethodPut, "/api/v1/cart/add", customer, map[string]any{"foodId": fixtures.MargheritaID, "quantity": 2})
	if rec.Code != http.StatusOK {
		t.Fatalf("add = %d %s", rec.Code, rec.Body)
	}
	var item struct {
		ID       string `json:"id"`
		Quantity int    `json:"quantity"`
	}
	decode(t, env.Data, &item)

	if rec, _ := do(t, h, http.MethodPut, "/api/v1/cart/add", customer, map[string]any{"foodId": fixtures.TiramisuID, "quantity": 1}); rec.Code != http.StatusConflict {
		t.Errorf("unavailable food = %d, want 409", rec.Code)
	}
	if rec, _ := do(t, h, http.MethodPut, "/api/v1/cart/add", customer, map[string]any{"foodId": 999, "quantity": 1}); rec.Code != http.StatusNotFound {
		t.Errorf("unknown food = %d, want 404", rec.Code)
	}

	path := "/api/v1/cart-item/update?cartItemId=" + item.ID + "&quantity=3"
	if rec, _ := do(t, h, http.MethodPut, path, other, nil); rec.Code != http.StatusForbidden {
		t.Errorf("foreign update = %d, want 403", rec.Code)
	}
	if rec, _ := do(t, h, http.MethodPut, path, customer, nil); rec.Code != http.StatusOK {
		t.Errorf("update = %d", rec.Code)
	}
	if rec, _ := do(t, h, http.MethodPut, "/api/v1/cart-item/update?cartItemId="+item.ID+"&quantity=x", customer, nil); rec.Code != http.StatusBadRequest {
		t.Errorf("bad quantity = %d, want 400", rec.Code)
	}

	rec, env = do(t, h, http.MethodGet, "/api/v1/cart/total?cartId="+c.ID, customer, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("total = %d", rec.Code)
	}
	var total struct {
		Total string `json:"total"`
	}
	decode(t, env.Data, &total)
	if total.Total != "29.97" {
		t.Errorf("total = %q, want 29.97", total.Total)
	}

	if rec, _ := do(t, h, http.MethodPut, "/api/v1/cart/clear", customer, nil); rec.Code != http.StatusOK {
		t.Errorf("clear = %d", rec.Code)
	}
	if rec, _ := do(t, h, http.MethodDelete, "/api/v1/cart-item/"+item.ID+"/remove", customer, nil); rec.Code != http.StatusNotFound {
		t.Errorf("remove after clear = %d, want 404", rec.Code)
	}
}

func TestCartProvisioningIsAdminOnly(t *testing.T) {
	h := newTestApp(t)
	path := "/api/v1/admin/carts/4242"

	if rec, _ := do(t, h, http.MethodPost, path, token(t, fixtures.OwnerID, "RESTAURANT_OWNER"), nil); rec.Code != http.StatusForbidden {
		t.Errorf("owner provisioning = %d, want 403", rec.Code)
	}
	if rec, _ := do(t, h, http.MethodPost, path, token(t, fixtures.CustomerID, "CUSTOMER"), nil); rec.Code != http.StatusForbidden {
		t.Errorf("customer provisioning = %d, want 403", rec.Code)
	}
	if rec, _ := do(t, h, http.MethodPost, path, token(t, 900, "ADMIN"), nil); rec.Code != http.StatusCreated {
		t.Errorf("admin provisioning = %d %s, want 201", rec.Code, rec.Body)
	}
}

type orderView struct {
	OrderID       string `json:"orderId"`
	OrderStatus   string `json:"orderStatus"`
	PaymentStatus string `json:"paymentStatus"`
	Payment       *struct {
		SessionID string `json:"sessionId"`
	} `json:"payment"`
}

func placeOrder(t *testing.T, h http.Handler, bearer string) (string, orderView) {
	t.Helper()
	rec, env := do(t, h, http.MethodPost, "/api/v1/order", bearer, map[string]any{
		"restaurantId":  fixtures.OpenRestaurantID,
		"addressId":     fixtures.CustomerAddr,
		"paymentMethod": "CARD",
		"items":         []map[string]any{{"foodId": fixtures.PepperoniID, "quantity": 2}},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create order = %d %s", rec.Code, rec.Body)
	}
	var created struct {
		PaymentURL string    `json:"payment_url"`
		Order      orderView `json:"order"`
	}
	decode(t, env.Data, &created)
	return created.PaymentURL, created.Order
}

func TestOrderEndpoints(t *testing.T) {
	h := newTestApp(t)
	customer := token(t, fixtures.CustomerID, "CUSTOMER")
	other := token(t, fixtures.OtherCustomerID, "CUSTOMER")
	owner := token(t, fixtures.OwnerID, "RESTAURANT_OWNER")
	foreignOwner := token(t, fixtures.ClosedOwnerID, "RESTAURANT_OWNER")

	paymentURL, o := placeOrder(t, h, customer)
	if paymentURL == "" || o.Payment == nil {
		t.Fatalf("checkout missing: url=%q order=%+v", paymentURL, o)
	}

	if rec, _ := do(t, h, http.MethodGet, "/api/v1/order/"+o.OrderID, customer, nil); rec.Code != http.StatusOK {
		t.Errorf("owner read = %d", rec.Code)
	}
	if rec, _ := do(t, h, http.MethodGet, "/api/v1/order/"+o.OrderID, other, nil); rec.Code != http.StatusForbidden {
		t.Errorf("foreign read = %d, want 403", rec.Code)
	}

	restaurantPath := "/api/v1/admin/order/restaurant/" + strconv.FormatInt(fixtures.OpenRestaurantID, 10)
	rec, env := do(t, h, http.MethodGet, restaurantPath+"?order_status=PENDING", owner, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("restaurant orders = %d", rec.Code)
	}
	var list []orderView
	decode(t, env.Data, &list)
	if len(list) != 1 {
		t.Errorf("restaurant orders = %d, want 1", len(list))
	}
	if rec, _ := do(t, h, http.MethodGet, restaurantPath, foreignOwner, nil); rec.Code != http.StatusForbidden {
		t.Errorf("foreign owner = %d, want 403", rec.Code)
	}

	if rec, _ := do(t, h, http.MethodPut, "/api/v1/admin/orders/"+o.OrderID+"/SHIPPED", owner, nil); rec.Code != http.StatusConflict {
		t.Errorf("unknown status = %d, want 409", rec.Code)
	}
	if rec, _ := do(t, h, http.MethodPut, "/api/v1/admin/orders/"+o.OrderID+"/COMPLETED", owner, nil); rec.Code != http.StatusOK {
		t.Errorf("complete = %d", rec.Code)
	}
	if rec, _ := do(t, h, http.MethodDelete, "/api/v1/admin/order/"+o.OrderID, owner, nil); rec.Code != http.StatusConflict {
		t.Errorf("cancel completed = %d, want 409", rec.Code)
	}

	_, second := placeOrder(t, h, customer)
	if rec, _ := do(t, h, http.MethodDelete, "/api/v1/admin/order/"+second.OrderID, owner, nil); rec.Code != http.StatusOK {
		t.Errorf("cancel = %d", rec.Code)
	}
	if rec, _ := do(t, h, http.MethodGet, "/api/v1/order/"+second.OrderID, customer, nil); rec.Code != http.StatusNotFound {
		t.Errorf("read cancelled = %d, want 404", rec.Code)
	}

	rec, env = do(t, h, http.MethodGet, "/api/v1/order/user", customer, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("user orders = %d", rec.Code)
	}
	decode(t, env.Data, &list)
	if len(list) != 2 {
		t.Errorf("history = %d orders, want 2", len(list))
	}
}

func TestPaymentWebhook(t *testing.T) {
	h := newTestApp(t)
	customer := token(t, fixtures.CustomerID, "CUSTOMER")
	_, o := placeOrder(t, h, customer)

	body, _ := json.Marshal(map[string]string{
		"eventId":   "evt_100",
		"orderId":   o.OrderID,
		"sessionId": o.Payment.SessionID,
		"outcome":   "PAID",
	})
	send := func(signature string) (*httptest.ResponseRecorder, envelope) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", bytes.NewReader(body))
		req.Header.Set(paymentgw.SignatureHeader, signature)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		var env envelope
		_ = json.Unmarshal(rec.Body.Bytes(), &env)
		return rec, env
	}

	if rec, _ := send("deadbeef"); rec.Code != http.StatusUnauthorized {
		t.Errorf("bad signature = %d, want 401", rec.Code)
	}

	signature := "sha256=" + paymentgw.NewWebhookVerifier(testWebhookSecret).Sign(body)
	rec, env := send(signature)
	if rec.Code != http.StatusOK {
		t.Fatalf("webhook = %d %s", rec.Code, rec.Body)
	}
	var result struct {
		PaymentStatus string `json:"paymentStatus"`
		Duplicate     bool   `json:"duplicate"`
	}
	decode(t, env.Data, &result)
	if result.PaymentStatus != "PAID" || result.Duplicate {
		t.Errorf("result = %+v", result)
	}

	_, env = send(signature)
	decode(t, env.Data, &result)
	if !result.Duplicate {
		t.Error("redelivery should be reported as duplicate")
	}
}
