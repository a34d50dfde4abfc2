package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/CreatorHub/app/controllers"
)

// WebhookPath is where the payment provider delivers events.
const WebhookPath = "/api/webhooks/stripe"

type ApiRouter struct {
	webhooks *controllers.WebhookController
}

// InstallRouter registers the provider endpoint. No rate limit here, Stripe
// retries anything that is not acknowledged.
func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api")
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	app.Post(WebhookPath, h.webhooks.HandleStripeWebhook)
}

func NewApiRouter(webhooks *controllers.WebhookController) *ApiRouter {
	return &ApiRouter{webhooks: webhooks}
}
