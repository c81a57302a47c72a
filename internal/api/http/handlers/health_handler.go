package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sla-dashboard/internal/sla"
)

// Pinger is a dependency whose reachability is reported by the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler responds to liveness and readiness probes.
type HealthHandler struct {
	serviceName string
	version     string
	engine      *sla.Engine
	postgres    Pinger
	redis       Pinger
}

// NewHealthHandler returns a new handler instance. Postgres gates readiness.
// Redis only backs the metrics cache: nil reports "disabled" and an unreachable
// server is reported without failing the probe.
func NewHealthHandler(serviceName, version string, engine *sla.Engine, postgres, redis Pinger) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version, engine: engine, postgres: postgres, redis: redis}
}

// Live reports service liveness and whether the SLA clock is currently running.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	body := fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	}
	if h.engine != nil {
		now := h.engine.CurrentTime()
		if loc := h.engine.Calendar.Location; loc != nil {
			now = now.In(loc)
		}
		body["horarioComercial"] = h.engine.Calendar.IsBusinessInstant(now)
		body["agora"] = now.Format(time.RFC3339)
	}
	return c.JSON(body)
}

// Ready pings the dependencies with a short deadline.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	deps := fiber.Map{"postgres": "ok", "redis": "ok"}
	ready := true

	if err := h.postgres.Ping(ctx); err != nil {
		deps["postgres"] = err.Error()
		ready = false
	}
	if h.redis == nil {
		deps["redis"] = "disabled"
	} else if err := h.redis.Ping(ctx); err != nil {
		deps["redis"] = "unreachable"
	}

	if !ready {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    "DEPENDENCY_UNAVAILABLE",
				"message": "database unavailable",
				"details": deps,
			},
		})
	}
	return c.JSON(fiber.Map{"status": "ready", "dependencies": deps})
}
