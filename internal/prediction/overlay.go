package prediction

import "fmt"

// OverlayPoint is one trade marker. Index is the position of Date on the
// aligned axis, or -1 when the axis does not contain the date.
type OverlayPoint struct {
	Date   Date    `json:"date"`
	Value  float64 `json:"value"`
	Action Action  `json:"action"`
	Model  string  `json:"model"`
	Index  int     `json:"index"`
}

// TradeOverlay lists trade markers, models in name order and trades in
// log order within a model.
type TradeOverlay []OverlayPoint

// CountByModel returns the number of markers per model.
func (o TradeOverlay) CountByModel() map[string]int {
	counts := make(map[string]int)
	for _, p := range o {
		counts[p.Model]++
	}
	return counts
}

// BuildOverlay emits one marker per trade event of every model, positioned
// by date against axis. Trades dated outside the axis are still emitted and
// reported as warnings.
func BuildOverlay(models map[string]ModelResult, axis []Date) (TradeOverlay, []DataConsistencyWarning) {
	positions := make(map[Date]int, len(axis))
	for i, d := range axis {
		positions[d] = i
	}

	overlay := TradeOverlay{}
	var warnings []DataConsistencyWarning

	for _, name := range modelNames(models) {
		for _, trade := range models[name].TradeLog {
			idx, ok := positions[trade.Date]
			if !ok {
				idx = -1
				warnings = append(warnings, DataConsistencyWarning{
					Kind:    WarnTradeOffAxis,
					Model:   name,
					Date:    trade.Date,
					Message: fmt.Sprintf("model %s: %s trade on %s is outside the prediction date axis", name, trade.Action, trade.Date),
				})
			}
			overlay = append(overlay, OverlayPoint{
				Date:   trade.Date,
				Value:  trade.Price,
				Action: trade.Action,
				Model:  name,
				Index:  idx,
			})
		}
	}

	return overlay, warnings
}
