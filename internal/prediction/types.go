// Package prediction reconciles prediction service results into a single
// date-aligned structure that a chart can render: value series per model,
// trade markers and derived metrics.
//
// Everything in this package is pure. Nothing is cached between calls; a
// new response is always reconciled from scratch.
package prediction

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Period is the historical lookback window sent to the prediction service.
type Period string

const (
	Period6Mo Period = "6mo"
	Period1Y  Period = "1y"
	Period2Y  Period = "2y"
	Period5Y  Period = "5y"
	Period10Y Period = "10y"
	PeriodYTD Period = "ytd"
	PeriodMax Period = "max"
)

// DefaultPeriod is used when a submission leaves the period empty.
const DefaultPeriod = Period1Y

// Periods lists the accepted periods in display order.
func Periods() []Period {
	return []Period{Period6Mo, Period1Y, Period2Y, Period5Y, Period10Y, PeriodYTD, PeriodMax}
}

// Valid reports whether p is one of the accepted periods.
func (p Period) Valid() bool {
	for _, v := range Periods() {
		if p == v {
			return true
		}
	}
	return false
}

// Action is the side of a simulated trade.
type Action string

const (
	ActionBought Action = "Bought"
	ActionSold   Action = "Sold"
)

// Valid reports whether a is Bought or Sold.
func (a Action) Valid() bool {
	return a == ActionBought || a == ActionSold
}

// Date is a calendar date without time of day or location.
// It is comparable and safe to use as a map key.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

const dateLayout = "2006-01-02"

var dateLayouts = []string{
	dateLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
}

// NewDate returns the calendar date of t in t's location.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses the date formats the prediction service emits and keeps
// only the calendar value, so "2024-01-05" and "2024-01-05T00:00:00" are equal.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NewDate(t), nil
		}
	}
	return Date{}, fmt.Errorf("invalid date %q", s)
}

// MustParseDate is ParseDate for literals; it panics on malformed input.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d == Date{}
}

// Before reports whether d is strictly earlier than o.
func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

// AddDays returns the date n days after d.
func (d Date) AddDays(n int) Date {
	return NewDate(d.Time().AddDate(0, 0, n))
}

func (d Date) String() string {
	return d.Time().Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// PredictionPoint is one entry of a model's price series. Actual is nil
// for forecast-only dates beyond the historical record.
type PredictionPoint struct {
	Date      Date     `json:"date"`
	Predicted float64  `json:"predicted"`
	Actual    *float64 `json:"actual"`
}

// TradeEvent is one simulated trade. Balance is the running account
// balance after the trade.
type TradeEvent struct {
	Date    Date    `json:"date"`
	Action  Action  `json:"action"`
	Shares  float64 `json:"shares"`
	Price   float64 `json:"price"`
	Balance float64 `json:"balance"`
}

// ModelResult holds the output of one model variant.
type ModelResult struct {
	Predictions  []PredictionPoint `json:"predictions"`
	TradeLog     []TradeEvent      `json:"trade_log"`
	FinalBalance float64           `json:"final_balance"`
	RMSE         float64           `json:"rmse"`
}

// Well-known model names.
const (
	ModelBasic    = "basic"
	ModelEnhanced = "enhanced"
)

// Response is a normalized prediction service response. It carries one
// entry per model variant regardless of which wire shape it arrived in.
type Response struct {
	InitialBalance float64                `json:"initial_balance"`
	Models         map[string]ModelResult `json:"models"`
	ProfitLoss     *float64               `json:"profit_loss,omitempty"`
}

// ModelNames returns the model names of r in ascending order.
func (r Response) ModelNames() []string {
	return modelNames(r.Models)
}

func modelNames(models map[string]ModelResult) []string {
	names := make([]string, 0, len(models))
	for name := range models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Float returns a pointer to v. Handy for building Actual values.
func Float(v float64) *float64 {
	return &v
}
