package handlers

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"stockpredict-api/internal/models"
	"stockpredict-api/internal/prediction"
	"stockpredict-api/internal/presenter"
	"stockpredict-api/internal/services"
	"stockpredict-api/pkg/yahoo"
)

const maxBatchSymbols = 50

// PredictResponse is the body of a successful POST /v1/predict.
type PredictResponse struct {
	Ticker         string                              `json:"ticker"`
	Period         prediction.Period                   `json:"period"`
	InitialBalance float64                             `json:"initial_balance"`
	ProfitLoss     *float64                            `json:"profit_loss,omitempty"`
	Models         []string                            `json:"models"`
	Series         prediction.AlignedSeries            `json:"series"`
	Overlay        prediction.TradeOverlay             `json:"overlay"`
	Metrics        map[string]prediction.ModelMetrics  `json:"metrics"`
	Warnings       []prediction.DataConsistencyWarning `json:"warnings"`
	TradeLogs      map[string][]prediction.TradeEvent  `json:"trade_logs"`
	Chart          presenter.ChartData                 `json:"chart"`
	CacheHit       bool                                `json:"cache_hit"`
	GeneratedAt    time.Time                           `json:"generated_at"`
}

func newPredictResponse(out *services.PredictionOutcome) PredictResponse {
	r := out.Result
	return PredictResponse{
		Ticker:         r.Ticker,
		Period:         r.Period,
		InitialBalance: r.InitialBalance,
		ProfitLoss:     r.ProfitLoss,
		Models:         r.Models,
		Series:         r.Series,
		Overlay:        r.Overlay,
		Metrics:        r.Metrics,
		Warnings:       r.Warnings,
		TradeLogs:      r.TradeLogs,
		Chart:          presenter.Chart(r),
		CacheHit:       out.CacheHit,
		GeneratedAt:    out.GeneratedAt,
	}
}

type PredictionHandler struct {
	orchestrator *services.PredictionOrchestrator
	quotes       *services.QuoteService
	timeout      time.Duration
	logger       *slog.Logger
}

func NewPredictionHandler(orchestrator *services.PredictionOrchestrator, quotes *services.QuoteService, timeout time.Duration, logger *slog.Logger) *PredictionHandler {
	return &PredictionHandler{
		orchestrator: orchestrator,
		quotes:       quotes,
		timeout:      timeout,
		logger:       logger,
	}
}

// Predict handles POST /v1/predict
func (h *PredictionHandler) Predict(c *fiber.Ctx) error {
	var req models.PredictRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
			Code:    fiber.StatusBadRequest,
		})
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()
	if id := c.GetRespHeader(fiber.HeaderXRequestID); id != "" {
		ctx = services.WithRequestID(ctx, id)
	}

	out, err := h.orchestrator.Predict(ctx, req)
	if err != nil {
		code, _ := statusFor(err)
		if code >= fiber.StatusInternalServerError {
			h.logger.Error("prediction failed", "ticker", req.Ticker, "status", code, "error", err)
		}
		return writeError(c, err)
	}

	return c.JSON(newPredictResponse(out))
}

// Periods handles GET /v1/periods
func (h *PredictionHandler) Periods(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"periods":         prediction.Periods(),
		"default":         prediction.DefaultPeriod,
		"max_future_days": prediction.MaxFutureDays,
	})
}

// GetTickerData handles GET /v1/tickers/:symbol
func (h *PredictionHandler) GetTickerData(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 10*time.Second)
	defer cancel()

	symbol, err := prediction.NormalizeTicker(utils.CopyString(c.Params("symbol")))
	if err != nil {
		return writeError(c, err)
	}

	data, err := h.quotes.Quote(ctx, symbol)
	if err != nil {
		if errors.Is(err, yahoo.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{
				Error:   "Ticker not found",
				Message: err.Error(),
				Code:    fiber.StatusNotFound,
			})
		}
		return c.Status(fiber.StatusBadGateway).JSON(models.ErrorResponse{
			Error:   "Quote lookup failed",
			Message: err.Error(),
			Code:    fiber.StatusBadGateway,
		})
	}

	return c.JSON(data)
}

// GetTickerBatch handles GET /v1/tickers?symbols=AAPL,MSFT
func (h *PredictionHandler) GetTickerBatch(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 15*time.Second)
	defer cancel()

	var symbols []string
	for _, raw := range strings.Split(utils.CopyString(c.Query("symbols")), ",") {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		symbol, err := prediction.NormalizeTicker(raw)
		if err != nil {
			return writeError(c, err)
		}
		symbols = append(symbols, symbol)
	}

	if len(symbols) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error:   "Symbols are required",
			Message: "Please provide at least one ticker symbol",
			Code:    fiber.StatusBadRequest,
		})
	}
	if len(symbols) > maxBatchSymbols {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error:   "Too many symbols",
			Message: "Maximum 50 symbols allowed per request",
			Code:    fiber.StatusBadRequest,
		})
	}

	quotes, err := h.quotes.QuoteBatch(ctx, symbols)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(models.ErrorResponse{
			Error:   "Quote lookup failed",
			Message: err.Error(),
			Code:    fiber.StatusBadGateway,
		})
	}

	return c.JSON(quotes)
}

// RefreshCache handles POST /v1/admin/refresh
func (h *PredictionHandler) RefreshCache(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 60*time.Second)
	defer cancel()

	n, err := h.orchestrator.RefreshCache(ctx)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
			Error:   "Failed to refresh cache",
			Message: err.Error(),
			Code:    fiber.StatusInternalServerError,
		})
	}

	return c.JSON(fiber.Map{
		"message": "Cache refreshed successfully",
		"purged":  n,
		"time":    time.Now(),
	})
}
