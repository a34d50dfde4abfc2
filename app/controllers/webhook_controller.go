package controllers

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/CreatorHub/internal/pkg/webhook"
)

// StripeSignatureHeader carries the provider's payload signature.
const StripeSignatureHeader = "Stripe-Signature"

const webhookTimeout = 15 * time.Second

// EventProcessor runs one provider delivery through the payment pipeline.
type EventProcessor interface {
	Process(ctx context.Context, payload []byte, signatureHeader string) (webhook.Response, int)
}

// WebhookController receives provider event deliveries
type WebhookController struct {
	processor EventProcessor
}

// NewWebhookController creates the provider webhook endpoint
func NewWebhookController(processor EventProcessor) *WebhookController {
	return &WebhookController{processor: processor}
}

// HandleStripeWebhook verifies and processes one delivery. The raw body is
// passed through untouched because the signature covers the exact bytes.
func (wc *WebhookController) HandleStripeWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	signature := strings.TrimSpace(c.Get(StripeSignatureHeader))

	ctx, cancel := context.WithTimeout(context.Background(), webhookTimeout)
	defer cancel()

	resp, status := wc.processor.Process(ctx, rawBody, signature)
	return c.Status(status).JSON(resp)
}
