package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpredict-api/internal/config"
	"stockpredict-api/internal/models"
	"stockpredict-api/internal/prediction"
)

func testConfig(url string) *config.Config {
	cfg := config.Defaults()
	cfg.PredictionServiceURL = url
	cfg.PredictionTimeout = 5 * time.Second
	cfg.PredictionRatePerMinute = 0
	return cfg
}

func testRequest(t *testing.T, ticker string) prediction.Request {
	t.Helper()
	req, err := prediction.BuildRequest(ticker, "1y", 10000, nil)
	require.NoError(t, err)
	return req
}

func TestPredictionClient_Predict(t *testing.T) {
	var got models.ServiceRequest
	var gotPath, gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRequestID = r.Header.Get("X-Request-ID")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"initial_balance":10000,"final_balance":10100,
"predictions":[{"date":"2024-03-01","predicted":1,"actual":null}],"trade_log":[]}`))
	}))
	defer srv.Close()

	client := NewPredictionClient(testConfig(srv.URL + "/"))
	ctx := WithRequestID(context.Background(), "req-42")

	resp, err := client.Predict(ctx, testRequest(t, "aapl"))
	require.NoError(t, err)

	assert.Equal(t, "/api/predict", gotPath)
	assert.Equal(t, "req-42", gotRequestID)
	assert.Equal(t, "AAPL", got.Ticker)
	assert.Equal(t, "1y", got.Period)
	assert.Equal(t, 10000.0, got.InitialBalance)
	require.NotNil(t, got.FutureDays)
	assert.Equal(t, 0, *got.FutureDays)

	require.Len(t, resp.Predictions, 1)
	assert.Nil(t, resp.Predictions[0].Actual)
	require.NotNil(t, resp.FinalBalance)
	assert.Equal(t, 10100.0, *resp.FinalBalance)
}

func TestPredictionClient_GeneratesRequestID(t *testing.T) {
	var gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRequestID = r.Header.Get("X-Request-ID")
		w.Write([]byte(`{"initial_balance":1,"predictions":[]}`))
	}))
	defer srv.Close()

	_, err := NewPredictionClient(testConfig(srv.URL)).Predict(context.Background(), testRequest(t, "MSFT"))
	require.NoError(t, err)
	assert.Len(t, gotRequestID, 36)
}

func TestPredictionClient_UpstreamErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantDetail  string
		clientError bool
	}{
		{"string detail", http.StatusBadRequest, `{"detail":"No data found for ticker ZZZZ"}`, "No data found for ticker ZZZZ", true},
		{"validation list", http.StatusUnprocessableEntity, `{"detail":[{"loc":["body","ticker"],"msg":"field required"}]}`, `"msg":"field required"`, true},
		{"server failure", http.StatusInternalServerError, `{"detail":"model training failed"}`, "model training failed", false},
		{"plain text", http.StatusBadGateway, "bad gateway\n", "bad gateway", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewPredictionClient(testConfig(srv.URL)).Predict(context.Background(), testRequest(t, "AAPL"))
			require.Error(t, err)

			ue, ok := IsUpstream(err)
			require.True(t, ok)
			assert.Equal(t, tt.status, ue.Status)
			assert.Contains(t, ue.Detail, tt.wantDetail)
			assert.Equal(t, tt.clientError, ue.ClientError())
		})
	}
}

func TestPredictionClient_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"predictions": "nope"`))
	}))
	defer srv.Close()

	_, err := NewPredictionClient(testConfig(srv.URL)).Predict(context.Background(), testRequest(t, "AAPL"))
	require.Error(t, err)
	_, upstream := IsUpstream(err)
	assert.False(t, upstream)
}

func TestPredictionClient_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPredictionClient(testConfig(srv.URL)).Predict(ctx, testRequest(t, "AAPL"))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestPredictionClient_Ping(t *testing.T) {
	status := http.StatusOK
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(status)
	}))
	defer srv.Close()

	client := NewPredictionClient(testConfig(srv.URL))
	require.NoError(t, client.Ping(context.Background()))
	assert.Equal(t, "/openapi.json", gotPath)

	status = http.StatusServiceUnavailable
	err := client.Ping(context.Background())
	ue, ok := IsUpstream(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusServiceUnavailable, ue.Status)
}
