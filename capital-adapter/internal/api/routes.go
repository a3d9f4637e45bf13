package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes registers all HTTP routes on the Fiber app.
// nc may be nil when the NATS responder is disabled.
func RegisterRoutes(app *fiber.App, nc *nats.Conn, capitalHandler *CapitalHandler) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		checks := map[string]string{
			"session": "ok",
			"nats":    "disabled",
		}
		status := "ok"
		code := fiber.StatusOK

		if !capitalHandler.service.IsAuthenticated() {
			checks["session"] = "unauthenticated"
			status = "degraded"
			code = fiber.StatusServiceUnavailable
		}

		if nc != nil {
			checks["nats"] = "ok"
			if !nc.IsConnected() {
				checks["nats"] = "disconnected"
				status = "degraded"
				code = fiber.StatusServiceUnavailable
			} else if err := nc.FlushTimeout(1 * time.Second); err != nil {
				checks["nats"] = err.Error()
				status = "degraded"
				code = fiber.StatusServiceUnavailable
			}
		}

		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"checks": checks,
		})
	})

	// API routes
	v1 := app.Group("/api/v1")
	v1.Post("/session", capitalHandler.Login)
	v1.Delete("/session", capitalHandler.Logout)
	v1.Get("/positions", capitalHandler.Positions)
	v1.Get("/orders", capitalHandler.Orders)
	v1.Get("/markets", capitalHandler.Markets)
	v1.Get("/ping", capitalHandler.Ping)
	v1.Get("/time", capitalHandler.ServerTime)
}
