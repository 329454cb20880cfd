package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"stockpredict-api/internal/config"
	"stockpredict-api/internal/metrics"
	"stockpredict-api/internal/models"
	"stockpredict-api/internal/prediction"
)

const maxResponseBytes = 64 << 20

// UpstreamError is a non-2xx answer from the prediction service.
type UpstreamError struct {
	Status int
	Detail string
}

func (e *UpstreamError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("prediction service returned %d", e.Status)
	}
	return fmt.Sprintf("prediction service returned %d: %s", e.Status, e.Detail)
}

// ClientError reports whether the service rejected the request itself
// (4xx), as opposed to failing while serving it.
func (e *UpstreamError) ClientError() bool {
	return e.Status >= 400 && e.Status < 500
}

// Predictor fetches raw prediction results for a validated request.
type Predictor interface {
	Predict(ctx context.Context, req prediction.Request) (*models.ServiceResponse, error)
}

// PredictionClient talks to the remote prediction service over HTTP.
type PredictionClient struct {
	endpoint   string
	healthURL  string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewPredictionClient(cfg *config.Config) *PredictionClient {
	limit := rate.Inf
	burst := 1
	if n := cfg.PredictionRatePerMinute; n > 0 {
		limit = rate.Every(time.Minute / time.Duration(n))
		burst = n
	}

	return &PredictionClient{
		endpoint:  cfg.PredictionEndpoint(),
		healthURL: strings.TrimRight(cfg.PredictionServiceURL, "/") + cfg.PredictionHealthPath,
		httpClient: &http.Client{
			Timeout: cfg.PredictionTimeout,
		},
		limiter: rate.NewLimiter(limit, burst),
	}
}

type requestIDKey struct{}

// WithRequestID attaches a correlation ID forwarded to the prediction
// service as X-Request-ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}

// Predict posts req to the prediction endpoint and decodes the response.
func (c *PredictionClient) Predict(ctx context.Context, req prediction.Request) (*models.ServiceResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for prediction service slot: %w", err)
	}

	futureDays := req.FutureDays
	jsonData, err := json.Marshal(models.ServiceRequest{
		Ticker:         req.Ticker,
		Period:         string(req.Period),
		InitialBalance: req.InitialBalance,
		FutureDays:     &futureDays,
	})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestIDFrom(ctx))

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		metrics.UpstreamLatency.WithLabelValues("error").Observe(time.Since(start).Seconds())
		return nil, err
	}
	defer resp.Body.Close()
	metrics.UpstreamLatency.WithLabelValues(strconv.Itoa(resp.StatusCode)).Observe(time.Since(start).Seconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return nil, &UpstreamError{Status: resp.StatusCode, Detail: errorDetail(body)}
	}

	var out models.ServiceResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode prediction response: %w", err)
	}

	return &out, nil
}

// Ping checks that the prediction service answers at all.
func (c *PredictionClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.healthURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode >= 500 {
		return &UpstreamError{Status: resp.StatusCode}
	}
	return nil
}

// errorDetail extracts FastAPI's "detail" field, which is a string for
// HTTPException and a list of objects for request validation errors.
func errorDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Detail) > 0 {
		var s string
		if err := json.Unmarshal(envelope.Detail, &s); err == nil {
			return s
		}
		var compact bytes.Buffer
		if err := json.Compact(&compact, envelope.Detail); err == nil {
			return compact.String()
		}
	}

	text := strings.TrimSpace(string(body))
	if len(text) > 512 {
		text = text[:512]
	}
	return text
}

// IsUpstream reports whether err came back from the prediction service.
func IsUpstream(err error) (*UpstreamError, bool) {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}
