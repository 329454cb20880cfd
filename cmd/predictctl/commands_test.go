package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpredict-api/internal/models"
)

const serviceBody = `{
  "initial_balance": 10000,
  "final_balance": 10450.5,
  "rmse": 3.2,
  "predictions": [
    {"date": "2024-03-01", "predicted": 101.0, "actual": 100.0},
    {"date": "2024-03-04", "predicted": 102.0, "actual": 103.0},
    {"date": "2024-03-05", "predicted": 104.0, "actual": null}
  ],
  "trade_log": [
    {"date": "2024-03-01", "action": "Bought", "shares": 100, "price": 100.0, "balance": 0},
    {"date": "2024-03-04", "action": "Sold", "shares": 100, "price": 103.0, "balance": 10300}
  ]
}`

func cleanEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"CONFIG_FILE", "PREDICTION_SERVICE_URL", "PREDICTION_PATH", "PREDICTION_TIMEOUT", "PREDICTION_RATE_PER_MINUTE"} {
		t.Setenv(key, "")
	}
}

func fakeService(t *testing.T, got *models.ServiceRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(got))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(serviceBody))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestPeriodsCmd(t *testing.T) {
	out, err := execute(t, "", "periods")
	require.NoError(t, err)
	assert.Contains(t, out, "1y (default)")
	assert.Contains(t, out, "ytd\n")
	assert.Contains(t, out, "max\n")
}

func TestPredictCmd_JSON(t *testing.T) {
	cleanEnv(t)
	var got models.ServiceRequest
	srv := fakeService(t, &got)

	out, err := execute(t, "", "predict", "aapl", "--service-url", srv.URL, "--period", "5y", "--future-days", "30", "--json")
	require.NoError(t, err)

	assert.Equal(t, "AAPL", got.Ticker)
	assert.Equal(t, "5y", got.Period)
	require.NotNil(t, got.FutureDays)
	assert.Equal(t, 30, *got.FutureDays)

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Equal(t, "AAPL", body["ticker"])
	assert.Contains(t, body, "chart")
	assert.Contains(t, body, "series")
}

func TestPredictCmd_Table(t *testing.T) {
	cleanEnv(t)
	srv := fakeService(t, nil)

	out, err := execute(t, "", "predict", "MSFT", "--service-url", srv.URL, "--balance", "10000")
	require.NoError(t, err)
	assert.Contains(t, out, "MSFT")
	assert.Contains(t, out, "4.51%")
	assert.Contains(t, out, "Basic model trades")
}

func TestPredictCmd_Errors(t *testing.T) {
	cleanEnv(t)
	srv := fakeService(t, nil)

	_, err := execute(t, "", "predict", "AAPL", "--service-url", srv.URL, "--period", "3y")
	assert.ErrorContains(t, err, "invalid period")

	_, err = execute(t, "", "predict", "AAPL")
	assert.ErrorContains(t, err, "PREDICTION_SERVICE_URL")

	_, err = execute(t, "", "predict")
	assert.Error(t, err)
}

func TestWatchCmd(t *testing.T) {
	cleanEnv(t)
	srv := fakeService(t, nil)

	stdin := "# comment\n\nAAPL 1y abc\nAAPL 1y 10000 5\n"
	out, err := execute(t, stdin, "watch", "--service-url", srv.URL)
	require.NoError(t, err)

	assert.Contains(t, out, `error: balance "abc"`)
	assert.Contains(t, out, "AAPL")
	assert.Contains(t, out, "Basic model trades")
}

func TestParseWatchLine(t *testing.T) {
	req, err := parseWatchLine("msft", 5000)
	require.NoError(t, err)
	assert.Equal(t, models.PredictRequest{Ticker: "msft", InitialBalance: 5000}, req)

	req, err = parseWatchLine("AAPL 2y 25000 30", 5000)
	require.NoError(t, err)
	assert.Equal(t, "2y", req.Period)
	assert.Equal(t, 25000.0, req.InitialBalance)
	require.NotNil(t, req.FutureDays)
	assert.Equal(t, 30, *req.FutureDays)

	for _, bad := range []string{"AAPL 1y 1 2 3", "AAPL 1y x", "AAPL 1y 100 soon"} {
		_, err := parseWatchLine(bad, 5000)
		assert.Error(t, err, bad)
	}
}
