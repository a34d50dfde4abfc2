package router

import (
	"github.com/gofiber/fiber/v2"
)

// Router registers a group of routes on the application.
type Router interface {
	InstallRouter(app *fiber.App)
}

// InstallRouter registers the given routers in order.
func InstallRouter(app *fiber.App, routers ...Router) {
	setup(app, routers...)
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
