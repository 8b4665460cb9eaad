package handlers

import (
	"errors"
	"log"

	"refundly/internal/services/billing"
	"refundly/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

// SignatureHeader carries the hex HMAC-SHA256 of the raw webhook body.
const SignatureHeader = "x-razorpay-signature"

type WebhookHandler struct {
	billingService *billing.Service
}

func NewWebhookHandler(billingService *billing.Service) *WebhookHandler {
	return &WebhookHandler{billingService: billingService}
}

// HandleGatewayWebhook receives subscription lifecycle events from the
// payment gateway. Business-logic "ignore" outcomes are acknowledged with 200
// so the gateway stops retrying; only unexpected failures return 5xx.
func (h *WebhookHandler) HandleGatewayWebhook(c *fiber.Ctx) error {
	signature := c.Get(SignatureHeader)
	if signature == "" {
		return response.BadRequest(c, "missing signature header")
	}

	result, err := h.billingService.HandleWebhook(c.Context(), c.Body(), signature)
	if err != nil {
		switch {
		case errors.Is(err, billing.ErrInvalidSignature):
			return response.BadRequest(c, "invalid signature")
		case errors.Is(err, billing.ErrMalformedEvent):
			return response.BadRequest(c, "malformed event body")
		}
		log.Printf("webhook reconciliation failed: %v", err)
		return response.ServerError(c, "reconciliation failed")
	}

	return c.JSON(result)
}
