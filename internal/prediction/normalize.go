package prediction

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"stockpredict-api/internal/models"
)

var wireValidate = validator.New()

// wireModel is one model's slice of a wire response before conversion.
type wireModel struct {
	finalBalance *float64
	rmse         *float64
	predictions  []models.PredictionItem
	tradeLog     []models.TradeItem
}

func (w wireModel) present() bool {
	return w.predictions != nil || w.tradeLog != nil || w.finalBalance != nil || w.rmse != nil
}

// FromWire maps either wire shape of a service response onto a Response.
// The flat shape becomes a single model named "basic"; the suffixed shape
// becomes "basic" and/or "enhanced", one per model with any suffixed field
// present. A model sent with trades but no predictions keeps its trades;
// they surface later as off-axis overlay points.
func FromWire(w *models.ServiceResponse) (Response, error) {
	if w == nil {
		return Response{}, ErrEmptyResponse
	}
	if err := wireValidate.Struct(w); err != nil {
		return Response{}, fmt.Errorf("invalid service response: %w", err)
	}

	flat := wireModel{w.FinalBalance, w.RMSE, w.Predictions, w.TradeLog}
	dual := map[string]wireModel{
		ModelBasic:    {w.FinalBalanceBasic, w.RMSEBasic, w.PredictionsBasic, w.TradeLogBasic},
		ModelEnhanced: {w.FinalBalanceEnhanced, w.RMSEEnhanced, w.PredictionsEnhanced, w.TradeLogEnhanced},
	}

	isDual := dual[ModelBasic].present() || dual[ModelEnhanced].present()
	if isDual && flat.present() {
		return Response{}, ErrAmbiguousShape
	}

	resp := Response{
		InitialBalance: w.InitialBalance,
		Models:         make(map[string]ModelResult),
	}
	if w.ProfitLoss != nil {
		resp.ProfitLoss = Float(*w.ProfitLoss)
	}

	if !isDual {
		if flat.predictions == nil {
			return Response{}, ErrEmptyResponse
		}
		m, err := flat.toModel(ModelBasic, w.InitialBalance)
		if err != nil {
			return Response{}, err
		}
		resp.Models[ModelBasic] = m
		return resp, nil
	}

	for _, name := range []string{ModelBasic, ModelEnhanced} {
		wm := dual[name]
		if !wm.present() {
			continue
		}
		m, err := wm.toModel(name, w.InitialBalance)
		if err != nil {
			return Response{}, err
		}
		resp.Models[name] = m
	}
	return resp, nil
}

func (w wireModel) toModel(name string, initialBalance float64) (ModelResult, error) {
	m := ModelResult{
		Predictions: make([]PredictionPoint, 0, len(w.predictions)),
		TradeLog:    make([]TradeEvent, 0, len(w.tradeLog)),
	}

	for i, item := range w.predictions {
		d, err := ParseDate(item.Date)
		if err != nil {
			return ModelResult{}, fmt.Errorf("model %s: predictions[%d]: %w", name, i, err)
		}
		p := PredictionPoint{Date: d, Predicted: *item.Predicted}
		if item.Actual != nil {
			p.Actual = Float(*item.Actual)
		}
		m.Predictions = append(m.Predictions, p)
	}

	for i, item := range w.tradeLog {
		d, err := ParseDate(item.Date)
		if err != nil {
			return ModelResult{}, fmt.Errorf("model %s: trade_log[%d]: %w", name, i, err)
		}
		m.TradeLog = append(m.TradeLog, TradeEvent{
			Date:    d,
			Action:  Action(item.Action),
			Shares:  item.Shares,
			Price:   item.Price,
			Balance: item.Balance,
		})
	}

	// The service reports the last trade's balance, or the starting
	// balance when nothing was traded.
	switch {
	case w.finalBalance != nil:
		m.FinalBalance = *w.finalBalance
	case len(m.TradeLog) > 0:
		m.FinalBalance = m.TradeLog[len(m.TradeLog)-1].Balance
	default:
		m.FinalBalance = initialBalance
	}
	if w.rmse != nil {
		m.RMSE = *w.rmse
	}

	return m, nil
}
