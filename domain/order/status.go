package order

import "strings"

// Status is the order lifecycle state.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// transitions lists the allowed next states for each state.
// Same-state entries make repeated updates idempotent.
var transitions = map[Status][]Status{
	StatusPending:   {StatusPending, StatusCompleted, StatusCancelled},
	StatusCompleted: {StatusCompleted},
	StatusCancelled: {StatusCancelled},
}

// ParseStatus accepts only the known statuses (case-insensitive).
func ParseStatus(s string) (Status, error) {
	candidate := Status(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := transitions[candidate]; !ok {
		return "", NewInvalidStatusError(s)
	}
	return candidate, nil
}

// CanTransitionTo reports whether next is reachable from s.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no other state is reachable.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func (s Status) String() string { return string(s) }

// PaymentStatus tracks the gateway side of an order.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)

// PaymentMethod is how the customer pays.
type PaymentMethod string

const (
	PaymentMethodCard           PaymentMethod = "CARD"
	PaymentMethodCashOnDelivery PaymentMethod = "CASH_ON_DELIVERY"
	PaymentMethodWallet         PaymentMethod = "WALLET"
)

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch m := PaymentMethod(strings.ToUpper(strings.TrimSpace(s))); m {
	case PaymentMethodCard, PaymentMethodCashOnDelivery, PaymentMethodWallet:
		return m, nil
	}
	return "", NewInvalidPaymentMethodError(s)
}

// RequiresCheckout reports whether the method goes through the hosted checkout.
func (m PaymentMethod) RequiresCheckout() bool {
	return m != PaymentMethodCashOnDelivery
}
