package models

import "time"

// PredictRequest is the incoming body of POST /v1/predict, as posted by the form.
type PredictRequest struct {
	Ticker         string  `json:"ticker"`
	Period         string  `json:"period"`
	InitialBalance float64 `json:"initial_balance"`
	FutureDays     *int    `json:"future_days,omitempty"`
}

// ServiceRequest is the body posted to the prediction service.
type ServiceRequest struct {
	Ticker         string  `json:"ticker"`
	Period         string  `json:"period"`
	InitialBalance float64 `json:"initial_balance"`
	FutureDays     *int    `json:"future_days,omitempty"`
}

// PredictionItem is one entry of a predictions array on the wire.
// Actual is null for future-only dates; Predicted is never null.
type PredictionItem struct {
	Date      string   `json:"date" validate:"required"`
	Predicted *float64 `json:"predicted" validate:"required"`
	Actual    *float64 `json:"actual"`
}

// TradeItem is one entry of a trade_log array on the wire.
type TradeItem struct {
	Date    string  `json:"date" validate:"required"`
	Action  string  `json:"action" validate:"required,oneof=Bought Sold"`
	Shares  float64 `json:"shares" validate:"gte=0"`
	Price   float64 `json:"price" validate:"gte=0"`
	Balance float64 `json:"balance"`
}

// ServiceResponse is the response of the prediction service. It accepts
// both wire shapes: the single-model one (flat fields) and the dual-model
// one (fields suffixed with _basic and _enhanced). Absent arrays decode to
// nil, which is how the shapes are told apart.
type ServiceResponse struct {
	InitialBalance float64  `json:"initial_balance" validate:"gte=0"`
	ProfitLoss     *float64 `json:"profit_loss,omitempty"`

	FinalBalance *float64         `json:"final_balance,omitempty"`
	RMSE         *float64         `json:"rmse,omitempty" validate:"omitempty,gte=0"`
	Predictions  []PredictionItem `json:"predictions,omitempty" validate:"omitempty,dive"`
	TradeLog     []TradeItem      `json:"trade_log,omitempty" validate:"omitempty,dive"`

	FinalBalanceBasic *float64         `json:"final_balance_basic,omitempty"`
	RMSEBasic         *float64         `json:"rmse_basic,omitempty" validate:"omitempty,gte=0"`
	PredictionsBasic  []PredictionItem `json:"predictions_basic,omitempty" validate:"omitempty,dive"`
	TradeLogBasic     []TradeItem      `json:"trade_log_basic,omitempty" validate:"omitempty,dive"`

	FinalBalanceEnhanced *float64         `json:"final_balance_enhanced,omitempty"`
	RMSEEnhanced         *float64         `json:"rmse_enhanced,omitempty" validate:"omitempty,gte=0"`
	PredictionsEnhanced  []PredictionItem `json:"predictions_enhanced,omitempty" validate:"omitempty,dive"`
	TradeLogEnhanced     []TradeItem      `json:"trade_log_enhanced,omitempty" validate:"omitempty,dive"`
}

// TickerData represents the latest market quote for a ticker
type TickerData struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"changePercent"`
	Volume        int64     `json:"volume"`
	Currency      string    `json:"currency,omitempty"`
	LastUpdated   time.Time `json:"lastUpdated"`
	Source        string    `json:"source"`
}

// ErrorResponse represents API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
}
