/*
Package payment defines the boundary to the external payment processor.

The processor turns an order into a hosted checkout URL and later reports the
outcome through a signed webhook. Both directions are modelled here; the
adapters live in infrastructure/payment.
*/
package payment

import (
	"context"
	"errors"
	"fmt"

	"fooddelivery/domain/shared"
)

// CheckoutRequest is what the gateway needs to open a hosted checkout.
type CheckoutRequest struct {
	OrderID       string
	Amount        shared.Money
	PaymentMethod string
}

// CheckoutSession is the gateway's answer.
type CheckoutSession struct {
	ID       string
	URL      string
	Provider string
}

// Gateway issues hosted checkout sessions.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (CheckoutSession, error)
}

// ErrGateway is the sentinel for every payment processor failure.
var ErrGateway = errors.New("payment gateway error")

// GatewayError is a failed gateway call.
// Transient failures (timeouts, 5xx, 429, network) may be retried.
type GatewayError struct {
	Provider   string
	StatusCode int
	Message    string
	Transient  bool
	Err        error
}

func (e *GatewayError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("payment gateway %s returned %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("payment gateway %s: %s", e.Provider, e.Message)
}

// Is makes errors.Is(err, ErrGateway) hold for every GatewayError.
func (e *GatewayError) Is(target error) bool { return target == ErrGateway }

func (e *GatewayError) Unwrap() error { return e.Err }

// IsTransient reports whether err is a retryable gateway failure.
func IsTransient(err error) bool {
	var ge *GatewayError
	return errors.As(err, &ge) && ge.Transient
}

// Outcome is the final result reported by the processor.
type Outcome string

const (
	OutcomePaid   Outcome = "PAID"
	OutcomeFailed Outcome = "FAILED"
)

func ParseOutcome(s string) (Outcome, error) {
	switch o := Outcome(s); o {
	case OutcomePaid, OutcomeFailed:
		return o, nil
	}
	return "", shared.NewValidationError("payment", "outcome", "Invalid payment outcome: "+s)
}
