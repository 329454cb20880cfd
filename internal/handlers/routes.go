package handlers

import (
	"github.com/gofiber/fiber/v2"

	"stockpredict-api/internal/metrics"
)

// Register mounts every route of the gateway on app.
func Register(app *fiber.App, predictions *PredictionHandler, health *HealthHandler) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"service": "Stock Prediction API",
			"version": Version,
			"status":  "running",
		})
	})

	app.Get("/health", health.Health)
	app.Get("/health/ready", health.Ready)
	app.Get("/metrics", metrics.Handler())

	// API v1 routes
	v1 := app.Group("/v1")
	v1.Post("/predict", predictions.Predict)
	v1.Get("/periods", predictions.Periods)
	v1.Get("/tickers", predictions.GetTickerBatch)
	v1.Get("/tickers/:symbol", predictions.GetTickerData)
	v1.Post("/admin/refresh", predictions.RefreshCache)
}
