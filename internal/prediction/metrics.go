package prediction

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// ModelMetrics are presentation metrics derived from one model's result.
// PercentReturn is already a percentage; rounding is left to presenters.
type ModelMetrics struct {
	PercentReturn float64 `json:"percent_return"`
	ProfitLoss    float64 `json:"profit_loss"`
	FinalBalance  float64 `json:"final_balance"`
	RMSE          float64 `json:"rmse"`
	Trades        int     `json:"trades"`
	Buys          int     `json:"buys"`
	Sells         int     `json:"sells"`
}

// PercentReturn returns (final - initial) / initial * 100.
func PercentReturn(initial, final float64) (float64, error) {
	if initial == 0 {
		return 0, &DivisionError{}
	}
	start := decimal.NewFromFloat(initial)
	ret := decimal.NewFromFloat(final).Sub(start).Div(start).Mul(hundred)
	return ret.InexactFloat64(), nil
}

// DeriveMetrics computes ModelMetrics for every model of resp.
func DeriveMetrics(resp Response) (map[string]ModelMetrics, error) {
	if resp.InitialBalance == 0 {
		return nil, &DivisionError{}
	}

	out := make(map[string]ModelMetrics, len(resp.Models))
	for _, name := range resp.ModelNames() {
		m := resp.Models[name]
		pct, err := PercentReturn(resp.InitialBalance, m.FinalBalance)
		if err != nil {
			return nil, &DivisionError{Model: name}
		}

		metrics := ModelMetrics{
			PercentReturn: pct,
			ProfitLoss:    decimal.NewFromFloat(m.FinalBalance).Sub(decimal.NewFromFloat(resp.InitialBalance)).InexactFloat64(),
			FinalBalance:  m.FinalBalance,
			RMSE:          m.RMSE,
			Trades:        len(m.TradeLog),
		}
		for _, t := range m.TradeLog {
			switch t.Action {
			case ActionBought:
				metrics.Buys++
			case ActionSold:
				metrics.Sells++
			}
		}
		out[name] = metrics
	}
	return out, nil
}
