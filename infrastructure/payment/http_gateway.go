// Package payment holds the adapters for the hosted checkout processor.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"fooddelivery/domain/payment"

	"github.com/shopspring/decimal"
)

const providerHTTP = "http"

// HTTPConfig settings of the hosted checkout API.
type HTTPConfig struct {
	BaseURL    string
	APIKey     string
	SuccessURL string
	CancelURL  string
	// Currency is sent when the order amount carries none.
	Currency string
	Timeout  time.Duration
}

// HTTPGateway creates checkout sessions through POST {base}/v1/checkout/sessions.
type HTTPGateway struct {
	cfg    HTTPConfig
	client *http.Client
}

func NewHTTPGateway(cfg HTTPConfig) (*HTTPGateway, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("payment base url is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &HTTPGateway{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type checkoutSessionRequest struct {
	OrderID       string          `json:"order_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	SuccessURL    string          `json:"success_url"`
	CancelURL     string          `json:"cancel_url"`
	PaymentMethod string          `json:"payment_method"`
}

type checkoutSessionResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (g *HTTPGateway) CreateCheckoutSession(ctx context.Context, req payment.CheckoutRequest) (payment.CheckoutSession, error) {
	currency := req.Amount.Currency()
	if currency == "" {
		currency = g.cfg.Currency
	}
	body, err := json.Marshal(checkoutSessionRequest{
		OrderID:       req.OrderID,
		Amount:        req.Amount.Amount(),
		Currency:      currency,
		SuccessURL:    g.cfg.SuccessURL,
		CancelURL:     g.cfg.CancelURL,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		return payment.CheckoutSession{}, g.fail(0, "failed to encode request", false, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.BaseURL+"/v1/checkout/sessions", bytes.NewReader(body))
	if err != nil {
		return payment.CheckoutSession{}, g.fail(0, "failed to build request", false, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Idempotency-Key", req.OrderID)
	if g.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)
	}

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return payment.CheckoutSession{}, g.fail(0, "request failed", isTransientTransportError(err), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return payment.CheckoutSession{}, g.fail(resp.StatusCode, "failed to read response", true, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		transient := resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
		return payment.CheckoutSession{}, g.fail(resp.StatusCode, errorMessage(raw, resp.Status), transient, nil)
	}

	var out checkoutSessionResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return payment.CheckoutSession{}, g.fail(resp.StatusCode, "invalid response body", false, err)
	}
	if out.ID == "" || out.URL == "" {
		return payment.CheckoutSession{}, g.fail(resp.StatusCode, "response is missing session id or url", false, nil)
	}

	return payment.CheckoutSession{ID: out.ID, URL: out.URL, Provider: providerHTTP}, nil
}

func (g *HTTPGateway) fail(status int, msg string, transient bool, err error) error {
	return &payment.GatewayError{
		Provider:   providerHTTP,
		StatusCode: status,
		Message:    msg,
		Transient:  transient,
		Err:        err,
	}
}

func errorMessage(raw []byte, fallback string) string {
	var e errorResponse
	if json.Unmarshal(raw, &e) == nil {
		if e.Message != "" {
			return e.Message
		}
		if e.Error != "" {
			return e.Error
		}
	}
	return fallback
}

// isTransientTransportError treats timeouts and network errors as retryable.
// A cancelled caller context is not.
func isTransientTransportError(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF)
}

var _ payment.Gateway = (*HTTPGateway)(nil)
