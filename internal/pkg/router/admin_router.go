package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/CreatorHub/app/controllers"
	"github.com/ManuelReschke/CreatorHub/internal/pkg/middleware"
)

const (
	adminRateLimit  = 60
	adminRateWindow = time.Minute
)

type AdminRouter struct {
	controller *controllers.AdminWebhookController
	creds      middleware.AdminCredentials
	storage    fiber.Storage
}

func (h AdminRouter) InstallRouter(app *fiber.App) {
	adminGroup := app.Group("/admin",
		middleware.RateLimit(h.storage, adminRateLimit, adminRateWindow),
		middleware.RequireAdmin(h.creds),
	)

	// Event ledger
	adminGroup.Get("/webhooks/events", h.controller.HandleListEvents)
	adminGroup.Get("/webhooks/events/:eventId", h.controller.HandleGetEvent)
	adminGroup.Post("/webhooks/events/:eventId/replay", h.controller.HandleReplayEvent)

	// Error reports + queue monitor
	adminGroup.Get("/errors", h.controller.HandleRecentErrors)
	adminGroup.Get("/jobs/stats", h.controller.HandleJobStats)
}

// NewAdminRouter creates the operator routes. A nil storage keeps rate-limit
// counters in memory.
func NewAdminRouter(controller *controllers.AdminWebhookController, creds middleware.AdminCredentials, storage fiber.Storage) *AdminRouter {
	return &AdminRouter{controller: controller, creds: creds, storage: storage}
}
