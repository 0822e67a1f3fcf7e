package payment

import (
	"context"
	"time"

	"fooddelivery/domain/payment"
	"fooddelivery/infrastructure/persistence/retry"
	"fooddelivery/pkg/logger"

	"go.uber.org/zap"
)

// RetryingGateway retries transient checkout failures with exponential backoff.
// Permanent failures and the last transient one are returned unchanged.
type RetryingGateway struct {
	next   payment.Gateway
	config retry.Config
}

func NewRetryingGateway(next payment.Gateway, maxAttempts int, initialDelay, maxDelay time.Duration) *RetryingGateway {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return &RetryingGateway{
		next:   next,
		config: retry.ForPredicate(maxAttempts, initialDelay, maxDelay, payment.IsTransient),
	}
}

func (g *RetryingGateway) CreateCheckoutSession(ctx context.Context, req payment.CheckoutRequest) (payment.CheckoutSession, error) {
	var session payment.CheckoutSession
	attempt := 0
	err := retry.ExecuteWithRetry(ctx, g.config, func(ctx context.Context) error {
		attempt++
		var err error
		session, err = g.next.CreateCheckoutSession(ctx, req)
		if err != nil && payment.IsTransient(err) {
			logger.Ctx(ctx).Warn("transient checkout failure",
				zap.String("order_id", req.OrderID),
				zap.Int("attempt", attempt),
				zap.Error(err))
		}
		return err
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && err == ctxErr {
			return payment.CheckoutSession{}, &payment.GatewayError{
				Provider:  "checkout",
				Message:   "checkout timed out",
				Transient: true,
				Err:       err,
			}
		}
		return payment.CheckoutSession{}, err
	}
	return session, nil
}

var _ payment.Gateway = (*RetryingGateway)(nil)
