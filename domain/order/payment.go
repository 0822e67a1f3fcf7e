package order

import (
	"fmt"
	"time"

	"fooddelivery/domain/shared"

	"github.com/google/uuid"
)

// Payment is the checkout session issued for an order. One per order.
type Payment struct {
	id        string
	provider  string
	sessionID string
	url       string
	amount    shared.Money
	createdAt time.Time
}

// NewPayment records a checkout session returned by the gateway.
func NewPayment(provider, sessionID, url string, amount shared.Money) (*Payment, error) {
	if sessionID == "" {
		return nil, shared.NewValidationError("payment", "sessionId", "checkout session id is required")
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate payment ID: %w", err)
	}

	return &Payment{
		id:        id.String(),
		provider:  provider,
		sessionID: sessionID,
		url:       url,
		amount:    amount,
		createdAt: time.Now(),
	}, nil
}

// PaymentReconstructionDTO rebuilds a Payment from storage.
type PaymentReconstructionDTO struct {
	ID        string
	Provider  string
	SessionID string
	URL       string
	Amount    shared.Money
	CreatedAt time.Time
}

func RebuildPaymentFromDTO(dto PaymentReconstructionDTO) *Payment {
	return &Payment{
		id:        dto.ID,
		provider:  dto.Provider,
		sessionID: dto.SessionID,
		url:       dto.URL,
		amount:    dto.Amount,
		createdAt: dto.CreatedAt,
	}
}

func (p *Payment) ID() string           { return p.id }
func (p *Payment) Provider() string     { return p.provider }
func (p *Payment) SessionID() string    { return p.sessionID }
func (p *Payment) URL() string          { return p.url }
func (p *Payment) Amount() shared.Money { return p.amount }
func (p *Payment) CreatedAt() time.Time { return p.createdAt }
