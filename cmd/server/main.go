package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"stockpredict-api/internal/config"
	"stockpredict-api/internal/handlers"
	"stockpredict-api/internal/logging"
	"stockpredict-api/internal/metrics"
	"stockpredict-api/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logging.New("error", false).Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel, cfg.IsDevelopment())

	// Initialize services
	predictionClient := services.NewPredictionClient(cfg)
	orchestrator := services.NewPredictionOrchestrator(predictionClient, cfg.CacheTTL, log)
	defer orchestrator.Close()
	quotes := services.NewQuoteService(cfg, log)
	defer quotes.Close()

	// Initialize handlers
	predictionHandler := handlers.NewPredictionHandler(orchestrator, quotes, cfg.PredictionTimeout, log)
	healthHandler := handlers.NewHealthHandler(predictionClient)

	app := fiber.New(fiber.Config{
		StrictRouting: true,
		CaseSensitive: true,
		ServerHeader:  "StockPredict-API",
		AppName:       "StockPredict v" + handlers.Version,
		ReadTimeout:   time.Second * 10,
		// Predictions train a model per request upstream.
		WriteTimeout: cfg.PredictionTimeout + 30*time.Second,
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: handlers.CustomErrorHandler,
	})

	// Middleware stack
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path} ${locals:requestid}\n",
	}))
	app.Use(metrics.Middleware)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization,X-Request-ID",
		AllowCredentials: false,
		MaxAge:           3600,
	}))
	if cfg.RateLimitPerMinute > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimitPerMinute,
			Expiration: 1 * time.Minute,
			Next: func(c *fiber.Ctx) bool {
				return c.Path() == "/metrics" || c.Path() == "/health" || c.Path() == "/health/ready"
			},
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"error": "Rate limit exceeded. Please try again later.",
				})
			},
		}))
	}

	handlers.Register(app, predictionHandler, healthHandler)

	// Graceful shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	log.Info("stock prediction API started",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"prediction_service", cfg.PredictionEndpoint(),
		"cache_ttl", cfg.CacheTTL.String())

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		return
	}

	log.Info("server shutdown complete")
}
