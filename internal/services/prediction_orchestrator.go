package services

import (
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"stockpredict-api/internal/metrics"
	"stockpredict-api/internal/models"
	"stockpredict-api/internal/prediction"
)

// DataError wraps a response the prediction service sent but that cannot
// be reconciled: malformed fields, an ambiguous shape or duplicate dates.
type DataError struct {
	Err error
}

func (e *DataError) Error() string {
	return "inconsistent prediction data: " + e.Err.Error()
}

func (e *DataError) Unwrap() error {
	return e.Err
}

// PredictionOutcome is a reconciled result plus delivery metadata.
type PredictionOutcome struct {
	Result      *prediction.Result
	CacheHit    bool
	GeneratedAt time.Time
}

// PredictionOrchestrator coordinates the prediction pipeline: validate the
// submission, fetch the raw response (cache, then a de-duplicated upstream
// call), normalize it and reconcile it.
type PredictionOrchestrator struct {
	predictor Predictor
	cache     *Cache[string, *models.ServiceResponse]
	group     singleflight.Group
	logger    *slog.Logger
	now       func() time.Time

	mu      sync.Mutex
	flights map[string]*flight
	seq     uint64
}

// flight is one shared upstream call. It runs on its own context, detached
// from any single caller, and is cancelled once every caller has left.
type flight struct {
	key     string
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

// NewPredictionOrchestrator caches raw responses for cacheTTL; zero
// disables caching.
func NewPredictionOrchestrator(predictor Predictor, cacheTTL time.Duration, logger *slog.Logger) *PredictionOrchestrator {
	return &PredictionOrchestrator{
		predictor: predictor,
		cache:     NewCache[string, *models.ServiceResponse](cacheTTL),
		logger:    logger,
		now:       time.Now,
		flights:   make(map[string]*flight),
	}
}

// Predict runs one submission through the whole pipeline.
func (o *PredictionOrchestrator) Predict(ctx context.Context, in models.PredictRequest) (*PredictionOutcome, error) {
	req, err := prediction.BuildRequest(in.Ticker, in.Period, in.InitialBalance, in.FutureDays)
	if err != nil {
		metrics.PredictionsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}
	return o.PredictRequest(ctx, req)
}

// PredictRequest runs an already validated request.
func (o *PredictionOrchestrator) PredictRequest(ctx context.Context, req prediction.Request) (*PredictionOutcome, error) {
	return o.predict(ctx, req, nil)
}

// predict fetches and reconciles req. When current is non-nil it is
// consulted once the raw response is in hand; a false answer discards the
// response before it reaches reconciliation.
func (o *PredictionOrchestrator) predict(ctx context.Context, req prediction.Request, current func() bool) (*PredictionOutcome, error) {
	key := o.generateCacheKey(req)

	raw, cacheHit := o.cache.Get(key)
	if o.cache.Enabled() {
		metrics.CacheLookups.WithLabelValues("prediction", hitLabel(cacheHit)).Inc()
	}

	if !cacheHit {
		v, shared, err := o.fetch(ctx, key, req)
		if err != nil {
			metrics.PredictionsTotal.WithLabelValues("upstream_error").Inc()
			return nil, fmt.Errorf("failed to call prediction service: %w", err)
		}
		raw = v
		if shared {
			o.logger.Debug("shared in-flight prediction", "ticker", req.Ticker, "period", req.Period)
		}
	}

	if current != nil && !current() {
		return nil, ErrSuperseded
	}

	resp, err := prediction.FromWire(raw)
	if err != nil {
		metrics.PredictionsTotal.WithLabelValues("bad_data").Inc()
		return nil, &DataError{Err: err}
	}
	if !cacheHit {
		o.cache.Set(key, raw)
	}

	result, err := prediction.Reconcile(req, resp)
	if err != nil {
		metrics.PredictionsTotal.WithLabelValues("bad_data").Inc()
		var dup *prediction.DuplicateDateError
		if errors.As(err, &dup) {
			o.cache.Delete(key)
			return nil, &DataError{Err: err}
		}
		return nil, err
	}

	for _, w := range result.Warnings {
		metrics.ConsistencyWarnings.WithLabelValues(string(w.Kind)).Inc()
		o.logger.Warn("data consistency warning",
			"ticker", req.Ticker,
			"model", w.Model,
			"date", w.Date.String(),
			"kind", string(w.Kind),
			"message", w.Message)
	}

	metrics.PredictionsTotal.WithLabelValues("ok").Inc()
	metrics.ModelsPerResponse.Observe(float64(len(result.Models)))
	o.logger.Info("prediction reconciled",
		"ticker", req.Ticker,
		"period", req.Period,
		"future_days", req.FutureDays,
		"models", len(result.Models),
		"dates", len(result.Series.Dates),
		"trades", len(result.Overlay),
		"warnings", len(result.Warnings),
		"cache_hit", cacheHit)

	return &PredictionOutcome{
		Result:      result,
		CacheHit:    cacheHit,
		GeneratedAt: o.now(),
	}, nil
}

// fetch joins the in-flight call for key or starts one. A caller whose
// context ends stops waiting without failing the others; the call itself
// is cancelled only when no caller is left.
func (o *PredictionOrchestrator) fetch(ctx context.Context, key string, req prediction.Request) (*models.ServiceResponse, bool, error) {
	o.mu.Lock()
	f, ok := o.flights[key]
	if !ok {
		o.seq++
		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		f = &flight{key: key + "#" + strconv.FormatUint(o.seq, 10), ctx: fctx, cancel: cancel}
		o.flights[key] = f
	}
	f.waiters++
	ch := o.group.DoChan(f.key, func() (interface{}, error) {
		defer o.land(key, f)
		return o.predictor.Predict(f.ctx, req)
	})
	o.mu.Unlock()

	select {
	case res := <-ch:
		o.leave(key, f)
		if res.Err != nil {
			return nil, false, res.Err
		}
		return res.Val.(*models.ServiceResponse), res.Shared, nil
	case <-ctx.Done():
		o.leave(key, f)
		return nil, false, ctx.Err()
	}
}

// land retires f once its call has returned, so later callers start afresh.
func (o *PredictionOrchestrator) land(key string, f *flight) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.flights[key] == f {
		delete(o.flights, key)
	}
	f.cancel()
}

func (o *PredictionOrchestrator) leave(key string, f *flight) {
	o.mu.Lock()
	defer o.mu.Unlock()
	f.waiters--
	if f.waiters > 0 {
		return
	}
	if o.flights[key] == f {
		delete(o.flights, key)
	}
	f.cancel()
}

// RefreshCache drops every cached response.
func (o *PredictionOrchestrator) RefreshCache(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	n := o.cache.Purge()
	o.logger.Info("prediction cache purged", "entries", n)
	return n, nil
}

// Close releases the cache sweeper.
func (o *PredictionOrchestrator) Close() {
	o.cache.Close()
}

// Helper functions

func (o *PredictionOrchestrator) generateCacheKey(req prediction.Request) string {
	key := req.Ticker + "|" + string(req.Period) + "|" +
		strconv.FormatFloat(req.InitialBalance, 'f', -1, 64) + "|" +
		strconv.Itoa(req.FutureDays)
	return fmt.Sprintf("%x", md5.Sum([]byte(key)))
}

func hitLabel(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}
