package payment

import (
	"context"
	"strings"

	"fooddelivery/domain/payment"

	"github.com/google/uuid"
)

const providerSandbox = "sandbox"

// SandboxGateway issues local checkout URLs without calling out. The session
// id is random; the URL is {base}/pay/{orderID}.
type SandboxGateway struct {
	baseURL string
}

func NewSandboxGateway(baseURL string) *SandboxGateway {
	return &SandboxGateway{baseURL: strings.TrimRight(baseURL, "/")}
}

func (g *SandboxGateway) CreateCheckoutSession(ctx context.Context, req payment.CheckoutRequest) (payment.CheckoutSession, error) {
	if err := ctx.Err(); err != nil {
		return payment.CheckoutSession{}, &payment.GatewayError{Provider: providerSandbox, Message: "request cancelled", Err: err}
	}
	return payment.CheckoutSession{
		ID:       "cs_" + uuid.NewString(),
		URL:      g.baseURL + "/pay/" + req.OrderID,
		Provider: providerSandbox,
	}, nil
}

var _ payment.Gateway = (*SandboxGateway)(nil)
