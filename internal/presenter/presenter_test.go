package presenter

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpredict-api/internal/prediction"
)

func dualResult(t *testing.T) *prediction.Result {
	t.Helper()
	d := prediction.MustParseDate
	resp := prediction.Response{
		InitialBalance: 10000,
		Models: map[string]prediction.ModelResult{
			prediction.ModelBasic: {
				Predictions: []prediction.PredictionPoint{
					{Date: d("2024-03-01"), Predicted: 101, Actual: prediction.Float(100)},
					{Date: d("2024-03-04"), Predicted: 102, Actual: prediction.Float(103)},
				},
				TradeLog: []prediction.TradeEvent{
					{Date: d("2024-03-01"), Action: prediction.ActionBought, Shares: 100, Price: 100, Balance: 0},
					{Date: d("2024-03-04"), Action: prediction.ActionSold, Shares: 100, Price: 103, Balance: 10300},
				},
				FinalBalance: 11000,
				RMSE:         2,
			},
			prediction.ModelEnhanced: {
				Predictions: []prediction.PredictionPoint{
					{Date: d("2024-03-04"), Predicted: 104, Actual: prediction.Float(103)},
					{Date: d("2024-03-05"), Predicted: 105},
				},
				FinalBalance: 9000,
				RMSE:         1.5,
			},
		},
	}
	req, err := prediction.BuildRequest("AAPL", "1y", 10000, nil)
	require.NoError(t, err)
	r, err := prediction.Reconcile(req, resp)
	require.NoError(t, err)
	return r
}

func TestCurrency(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{5, "$5.00"},
		{999.999, "$1,000.00"},
		{1234.56, "$1,234.56"},
		{1234567.891, "$1,234,567.89"},
		{-450.5, "-$450.50"},
		{-0.001, "$0.00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Currency(tt.in), "%v", tt.in)
	}
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "10.00%", Percent(10))
	assert.Equal(t, "-10.00%", Percent(-10))
	assert.Equal(t, "4.51%", Percent(4.505))
	assert.Equal(t, "0.00%", Percent(0))
}

func TestChart(t *testing.T) {
	c := Chart(dualResult(t))

	assert.Equal(t, []string{"2024-03-01", "2024-03-04", "2024-03-05"}, c.Labels)
	require.Len(t, c.Datasets, 5)

	basicLine := c.Datasets[0]
	assert.Equal(t, "Basic Model Predictions", basicLine.Label)
	assert.Equal(t, "#4F46E5", basicLine.BorderColor)
	assert.Equal(t, "rgba(79, 70, 229, 0.1)", basicLine.BackgroundColor)
	require.Len(t, basicLine.Data, 3)
	assert.Nil(t, basicLine.Data[2].Y, "basic has no prediction on 2024-03-05")

	basicTrades := c.Datasets[1]
	assert.Equal(t, "Basic Model Trades", basicTrades.Label)
	assert.Equal(t, "scatter", basicTrades.Type)
	assert.Equal(t, []string{"#22C55E", "#EF4444"}, basicTrades.PointBackgroundColor)
	assert.Equal(t, "Bought", basicTrades.Data[0].Action)
	assert.Equal(t, 100.0, *basicTrades.Data[0].Y)

	enhancedLine := c.Datasets[2]
	assert.Equal(t, "Enhanced Model Predictions", enhancedLine.Label)
	assert.Equal(t, "#7C3AED", enhancedLine.BorderColor)
	assert.Nil(t, enhancedLine.Data[0].Y)

	assert.Empty(t, c.Datasets[3].Data)

	actual := c.Datasets[4]
	assert.Equal(t, "Actual Prices", actual.Label)
	assert.Equal(t, "#EF4444", actual.BorderColor)
	assert.Equal(t, 100.0, *actual.Data[0].Y)
	assert.Equal(t, 103.0, *actual.Data[1].Y)
	assert.Nil(t, actual.Data[2].Y)
}

func TestChart_JSONGapsAreNull(t *testing.T) {
	b, err := json.Marshal(Chart(dualResult(t)))
	require.NoError(t, err)
	assert.Contains(t, string(b), `{"x":"2024-03-05","y":null}`)
}

func TestPaletteFor(t *testing.T) {
	enhanced := PaletteFor(prediction.ModelEnhanced, 0)
	assert.Equal(t, "#15803D", MarkerColor(enhanced, prediction.ActionBought))
	assert.Equal(t, "#B91C1C", MarkerColor(enhanced, prediction.ActionSold))

	other := PaletteFor("lstm", 4)
	assert.NotEmpty(t, other.Line)
	assert.NotEqual(t, other.Buy, other.Sell)
}

func TestSummary(t *testing.T) {
	out := Summary(dualResult(t))

	for _, want := range []string{"Model", "Basic", "Enhanced", "$11,000.00", "10.00%", "-10.00%", "-$1,000.00", "2 (1/1)"} {
		assert.Contains(t, out, want)
	}
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, dualResult(t)))

	out := buf.String()
	assert.Contains(t, out, "AAPL")
	assert.Contains(t, out, "3 dates, 2024-03-01 to 2024-03-05")
	assert.Contains(t, out, "Basic model trades")
	assert.Contains(t, out, "$10,300.00")
	assert.Contains(t, out, "Enhanced model made no trades")
}
