package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Version is reported by the health endpoints.
const Version = "1.2.0"

// Pinger checks a dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	startTime  time.Time
	prediction Pinger
}

func NewHealthHandler(prediction Pinger) *HealthHandler {
	return &HealthHandler{
		startTime:  time.Now(),
		prediction: prediction,
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"service": "stockpredict-api",
		"version": Version,
		"uptime":  time.Since(h.startTime).String(),
		"time":    time.Now(),
	})
}

// Ready handles GET /health/ready
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	if err := h.prediction.Ping(ctx); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "not ready",
			"checks": fiber.Map{
				"api":        "ok",
				"prediction": err.Error(),
			},
		})
	}

	return c.JSON(fiber.Map{
		"status": "ready",
		"checks": fiber.Map{
			"api":        "ok",
			"prediction": "ok",
		},
	})
}
