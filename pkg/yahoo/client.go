package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"stockpredict-api/internal/models"
)

const DefaultBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// ErrNotFound is returned when Yahoo has no chart for the symbol.
var ErrNotFound = errors.New("symbol not found")

type Client struct {
	baseURL    string
	httpClient *http.Client
	now        func() time.Time
}

// NewClient returns a client for the chart API at baseURL; empty means
// DefaultBaseURL.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		now: time.Now,
	}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol              string  `json:"symbol"`
				Currency            string  `json:"currency"`
				RegularMarketPrice  float64 `json:"regularMarketPrice"`
				PreviousClose       float64 `json:"previousClose"`
				ChartPreviousClose  float64 `json:"chartPreviousClose"`
				RegularMarketVolume int64   `json:"regularMarketVolume"`
			} `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// GetQuote returns the latest quote for symbol.
func (c *Client) GetQuote(ctx context.Context, symbol string) (*models.TickerData, error) {
	endpoint := fmt.Sprintf("%s/%s?interval=1d&range=1d", c.baseURL, url.PathEscape(symbol))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s: %w", symbol, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo finance returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	var chart chartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("decode yahoo chart: %w", err)
	}

	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("%s: %s: %w", symbol, chart.Chart.Error.Description, ErrNotFound)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, fmt.Errorf("%s: %w", symbol, ErrNotFound)
	}

	meta := chart.Chart.Result[0].Meta
	previousClose := meta.PreviousClose
	if previousClose == 0 {
		previousClose = meta.ChartPreviousClose
	}
	change := meta.RegularMarketPrice - previousClose
	changePercent := 0.0
	if previousClose > 0 {
		changePercent = (change / previousClose) * 100
	}

	out := &models.TickerData{
		Symbol:        symbol,
		Price:         meta.RegularMarketPrice,
		Change:        change,
		ChangePercent: changePercent,
		Volume:        meta.RegularMarketVolume,
		Currency:      meta.Currency,
		LastUpdated:   c.now(),
		Source:        "yahoo",
	}
	if meta.Symbol != "" {
		out.Symbol = meta.Symbol
	}
	return out, nil
}
