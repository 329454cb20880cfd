package prediction

import (
	"math"
	"regexp"
	"strings"
)

// MaxFutureDays is the longest forecast horizon the service accepts.
const MaxFutureDays = 365

// tickerPattern matches equity, index (^GSPC) and FX (EURUSD=X) symbols.
var tickerPattern = regexp.MustCompile(`^[A-Z0-9^][A-Z0-9.\-^=]{0,14}$`)

// Request is a validated submission for the prediction service.
type Request struct {
	Ticker         string  `json:"ticker"`
	Period         Period  `json:"period"`
	InitialBalance float64 `json:"initial_balance"`
	FutureDays     int     `json:"future_days"`
}

// BuildRequest validates and normalizes user-supplied fields. A nil
// futureDays means none were requested. An empty period falls back to
// DefaultPeriod.
func BuildRequest(ticker, period string, initialBalance float64, futureDays *int) (Request, error) {
	symbol, err := NormalizeTicker(ticker)
	if err != nil {
		return Request{}, err
	}

	p := Period(strings.ToLower(strings.TrimSpace(period)))
	if p == "" {
		p = DefaultPeriod
	}
	if !p.Valid() {
		return Request{}, newValidationError(ReasonInvalidPeriod)
	}

	if math.IsNaN(initialBalance) || math.IsInf(initialBalance, 0) || initialBalance <= 0 {
		return Request{}, newValidationError(ReasonNonPositiveBalance)
	}

	days := 0
	if futureDays != nil {
		days = *futureDays
		if days < 0 || days > MaxFutureDays {
			return Request{}, newValidationError(ReasonFutureDaysRange)
		}
	}

	return Request{
		Ticker:         symbol,
		Period:         p,
		InitialBalance: initialBalance,
		FutureDays:     days,
	}, nil
}

// NormalizeTicker trims and upper-cases ticker and checks its syntax.
func NormalizeTicker(ticker string) (string, error) {
	symbol := strings.ToUpper(strings.TrimSpace(ticker))
	if symbol == "" {
		return "", newValidationError(ReasonEmptyTicker)
	}
	if !tickerPattern.MatchString(symbol) {
		return "", newValidationError(ReasonInvalidTicker)
	}
	return symbol, nil
}
