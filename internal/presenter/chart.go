package presenter

import (
	"fmt"
	"strconv"
	"strings"

	"stockpredict-api/internal/prediction"
)

// ChartData is a chart.js style line chart: one label per aligned date and
// one dataset per line or marker group.
type ChartData struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// ChartPoint is one {x, y} point. Y is null where the series has a gap.
type ChartPoint struct {
	X      string   `json:"x"`
	Y      *float64 `json:"y"`
	Action string   `json:"action,omitempty"`
}

type Dataset struct {
	Label                string       `json:"label"`
	Type                 string       `json:"type"`
	Model                string       `json:"model,omitempty"`
	Data                 []ChartPoint `json:"data"`
	BorderColor          string       `json:"borderColor"`
	BackgroundColor      string       `json:"backgroundColor,omitempty"`
	PointBackgroundColor []string     `json:"pointBackgroundColor,omitempty"`
	PointRadius          int          `json:"pointRadius"`
	Tension              float64      `json:"tension,omitempty"`
	ShowLine             bool         `json:"showLine"`
}

// Palette is the colour set of one model.
type Palette struct {
	Line string
	Buy  string
	Sell string
}

const actualLineColor = "#EF4444"

var palettes = map[string]Palette{
	prediction.ModelBasic:    {Line: "#4F46E5", Buy: "#22C55E", Sell: "#EF4444"},
	prediction.ModelEnhanced: {Line: "#7C3AED", Buy: "#15803D", Sell: "#B91C1C"},
}

var fallbackLines = []string{"#0EA5E9", "#F59E0B", "#64748B"}

// PaletteFor returns the colours of model. Unknown models get a neutral
// line colour picked by position.
func PaletteFor(model string, position int) Palette {
	if p, ok := palettes[model]; ok {
		return p
	}
	return Palette{
		Line: fallbackLines[position%len(fallbackLines)],
		Buy:  "#16A34A",
		Sell: "#DC2626",
	}
}

// MarkerColor returns the marker colour of a trade of model.
func MarkerColor(p Palette, action prediction.Action) string {
	if action == prediction.ActionBought {
		return p.Buy
	}
	return p.Sell
}

// Chart turns a reconciled result into chart datasets: a predictions line
// and a trade marker group per model, then one "Actual Prices" line.
func Chart(r *prediction.Result) ChartData {
	labels := make([]string, len(r.Series.Dates))
	for i, d := range r.Series.Dates {
		labels[i] = d.String()
	}

	byModel := make(map[string][]prediction.OverlayPoint, len(r.Models))
	for _, p := range r.Overlay {
		if p.Index < 0 {
			continue
		}
		byModel[p.Model] = append(byModel[p.Model], p)
	}

	datasets := make([]Dataset, 0, 2*len(r.Models)+1)
	for i, model := range r.Models {
		pal := PaletteFor(model, i)
		series := r.Series.PerModel[model]

		line := make([]ChartPoint, len(labels))
		for j, label := range labels {
			line[j] = ChartPoint{X: label, Y: series.Predicted[j]}
		}
		datasets = append(datasets, Dataset{
			Label:           displayName(model) + " Model Predictions",
			Type:            "line",
			Model:           model,
			Data:            line,
			BorderColor:     pal.Line,
			BackgroundColor: rgba(pal.Line, 0.1),
			PointRadius:     2,
			Tension:         0.4,
			ShowLine:        true,
		})

		trades := byModel[model]
		points := make([]ChartPoint, len(trades))
		colors := make([]string, len(trades))
		for j, t := range trades {
			y := t.Value
			points[j] = ChartPoint{X: t.Date.String(), Y: &y, Action: string(t.Action)}
			colors[j] = MarkerColor(pal, t.Action)
		}
		datasets = append(datasets, Dataset{
			Label:                displayName(model) + " Model Trades",
			Type:                 "scatter",
			Model:                model,
			Data:                 points,
			BorderColor:          "transparent",
			PointBackgroundColor: colors,
			PointRadius:          6,
		})
	}

	datasets = append(datasets, Dataset{
		Label:           "Actual Prices",
		Type:            "line",
		Data:            actualLine(r, labels),
		BorderColor:     actualLineColor,
		BackgroundColor: rgba(actualLineColor, 0.1),
		PointRadius:     2,
		Tension:         0.4,
		ShowLine:        true,
	})

	return ChartData{Labels: labels, Datasets: datasets}
}

// actualLine takes, per date, the actual price of the first model that
// has one.
func actualLine(r *prediction.Result, labels []string) []ChartPoint {
	out := make([]ChartPoint, len(labels))
	for i, label := range labels {
		out[i] = ChartPoint{X: label}
		for _, model := range r.Models {
			if v := r.Series.PerModel[model].Actual[i]; v != nil {
				y := *v
				out[i].Y = &y
				break
			}
		}
	}
	return out
}

func displayName(model string) string {
	if model == "" {
		return model
	}
	return strings.ToUpper(model[:1]) + model[1:]
}

func rgba(hex string, alpha float64) string {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return ""
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", v>>16, (v>>8)&0xff, v&0xff, strconv.FormatFloat(alpha, 'f', -1, 64))
}
