// Package metrics provides Prometheus instrumentation for the prediction gateway.
package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// PredictionsTotal counts reconciled predictions by outcome.
	PredictionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spa_predictions_total",
		Help: "Total prediction submissions by outcome",
	}, []string{"outcome"})

	// UpstreamLatency tracks prediction service round trips.
	UpstreamLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "spa_upstream_latency_seconds",
		Help:    "Prediction service call latency in seconds",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
	}, []string{"status"})

	// ConsistencyWarnings counts data-consistency warnings raised while
	// reconciling, by kind.
	ConsistencyWarnings = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spa_consistency_warnings_total",
		Help: "Data consistency warnings raised during reconciliation",
	}, []string{"kind"})

	// CacheLookups counts response cache lookups by result.
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spa_cache_lookups_total",
		Help: "Response cache lookups",
	}, []string{"cache", "result"})

	// ModelsPerResponse observes how many model variants a response carried.
	ModelsPerResponse = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "spa_models_per_response",
		Help:    "Number of model variants per prediction response",
		Buckets: []float64{1, 2, 3, 4},
	})

	// HTTPRequestsTotal counts HTTP requests by method, route, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spa_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request duration by method and route.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "spa_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120},
	}, []string{"method", "path"})
)

// Handler returns the Prometheus metrics handler mounted on fiber.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}

// Middleware records request metrics. The route pattern is used as the
// path label to keep cardinality bounded.
func Middleware(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	duration := time.Since(start).Seconds()

	status := c.Response().StatusCode()
	if err != nil {
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		} else {
			status = fiber.StatusInternalServerError
		}
	}

	path := c.Route().Path
	HTTPRequestsTotal.WithLabelValues(c.Method(), path, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(c.Method(), path).Observe(duration)
	return err
}
