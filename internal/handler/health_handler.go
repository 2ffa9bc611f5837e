package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

const healthCheckTimeout = 2 * time.Second

// Pinger is an interface for health check ping operations.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	pool    Pinger
	version string
}

// NewHealthHandler creates a new HealthHandler reporting the given build version.
func NewHealthHandler(pool Pinger, version string) *HealthHandler {
	return &HealthHandler{pool: pool, version: version}
}

// Check pings the database within a short deadline.
// Returns 200 {"status":"healthy"} or 503 {"status":"unhealthy"}.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), healthCheckTimeout)
	defer cancel()

	if err := h.pool.Ping(ctx); err != nil {
		log.Error().Err(err).Msg("health check failed: database unreachable")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":  "unhealthy",
			"version": h.version,
			"error":   "database connection failed",
		})
	}
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"version": h.version,
	})
}
