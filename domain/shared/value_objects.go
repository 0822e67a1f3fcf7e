package shared

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when the catalog does not specify one.
const DefaultCurrency = "USD"

var (
	ErrCurrencyMismatch = errors.New("cannot combine money with different currencies")
	ErrNegativeQuantity = errors.New("multiplier must not be negative")
)

// Money is an immutable decimal amount in a currency.
type Money struct {
	amount   decimal.Decimal
	currency string
}

// NewMoney creates a Money value; an empty currency falls back to DefaultCurrency.
func NewMoney(amount decimal.Decimal, currency string) Money {
	if currency == "" {
		currency = DefaultCurrency
	}
	return Money{amount: amount, currency: currency}
}

// ZeroMoney is the neutral element for sums.
func ZeroMoney(currency string) Money {
	return NewMoney(decimal.Zero, currency)
}

// MustParseMoney parses a decimal string, panicking on malformed input.
// Intended for fixtures and seed data.
func MustParseMoney(amount, currency string) Money {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		panic(fmt.Sprintf("invalid money amount %q: %v", amount, err))
	}
	return NewMoney(d, currency)
}

func (m Money) Amount() decimal.Decimal { return m.amount }
func (m Money) Currency() string        { return m.currency }

// Add returns m + other.
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, ErrCurrencyMismatch
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Multiply returns m * quantity.
func (m Money) Multiply(quantity int) (Money, error) {
	if quantity < 0 {
		return Money{}, ErrNegativeQuantity
	}
	return Money{amount: m.amount.Mul(decimal.NewFromInt(int64(quantity))), currency: m.currency}, nil
}

func (m Money) IsZero() bool     { return m.amount.IsZero() }
func (m Money) IsPositive() bool { return m.amount.IsPositive() }

// Equals compares amount (numerically) and currency.
func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// String renders "12.50 USD".
func (m Money) String() string {
	return m.amount.StringFixed(2) + " " + m.currency
}
