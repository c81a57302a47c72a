package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sla-dashboard/internal/api/http/handlers"
	"github.com/spec-kit/sla-dashboard/internal/auth"
)

// RouteConfig bundles dependencies for route registration. A nil AuthMiddleware
// leaves the API routes open.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	SLA            *handlers.SLAHandler
	Metrics        fiber.Handler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", cfg.Metrics)
	}

	if cfg.Auth != nil {
		app.Post("/auth/login", cfg.Auth.Login)
	}

	var guards []fiber.Handler
	if cfg.AuthMiddleware != nil {
		guards = append(guards, cfg.AuthMiddleware.Handle)
	}
	api := app.Group("/api", guards...)

	api.Get("/chamados", cfg.Tickets.List)
	api.Get("/chamados/:id", cfg.Tickets.Get)
	api.Get("/chamados/:id/sla", cfg.SLA.TicketSLA)
	api.Get("/chamados/:id/sla/stream", cfg.SLA.Stream)

	api.Get("/sla/metricas", cfg.SLA.Metrics)
	api.Get("/sla/config", cfg.SLA.Settings)
}
