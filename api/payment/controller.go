// Package payment receives payment processor notifications.
package payment

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"fooddelivery/api/ctxutil"
	"fooddelivery/api/response"
	orderapp "fooddelivery/application/order"
	paymentgw "fooddelivery/infrastructure/payment"

	"github.com/gin-gonic/gin"
)

const maxWebhookBody = 64 << 10

type Controller struct {
	orderService *orderapp.ApplicationService
	verifier     *paymentgw.WebhookVerifier
}

func NewController(orderService *orderapp.ApplicationService, verifier *paymentgw.WebhookVerifier) *Controller {
	return &Controller{orderService: orderService, verifier: verifier}
}

// RegisterRoutes registers the webhook on an unauthenticated group; the
// signature is the authentication.
func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/payments/webhook", c.Webhook)
}

// Webhook POST /api/v1/payments/webhook
func (c *Controller) Webhook(ctx *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(ctx.Request.Body, maxWebhookBody))
	if err != nil {
		response.HandleError(ctx, err, "failed to read body", http.StatusBadRequest)
		return
	}

	if !c.verifier.Verify(body, ctx.GetHeader(paymentgw.SignatureHeader)) {
		response.HandleError(ctx, errors.New("signature mismatch"), "invalid signature", http.StatusUnauthorized)
		return
	}

	var req orderapp.PaymentOutcomeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}
	if req.EventID == "" || req.OrderID == "" || req.SessionID == "" || req.Outcome == "" {
		response.HandleError(ctx, errors.New("missing fields"), "eventId, orderId, sessionId and outcome are required", http.StatusBadRequest)
		return
	}

	result, err := c.orderService.ApplyPaymentOutcome(ctxutil.WithRequestID(ctx), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, result, "payment notification processed")
}
