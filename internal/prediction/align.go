package prediction

import "sort"

// ModelSeries holds one model's values on the aligned axis. A nil entry
// in Predicted is a gap: the model has no point on that date. A nil entry
// in Actual is either such a gap or a forecast-only date.
type ModelSeries struct {
	Predicted []*float64 `json:"predicted"`
	Actual    []*float64 `json:"actual"`
}

// AlignedSeries puts every model on one ascending, de-duplicated date axis.
// Each per-model slice has exactly len(Dates) entries.
type AlignedSeries struct {
	Dates    []Date                 `json:"dates"`
	PerModel map[string]ModelSeries `json:"per_model"`
}

// Index returns the position of d on the axis, or -1.
func (s AlignedSeries) Index(d Date) int {
	i := sort.Search(len(s.Dates), func(i int) bool { return !s.Dates[i].Before(d) })
	if i < len(s.Dates) && s.Dates[i] == d {
		return i
	}
	return -1
}

// Align merges the prediction series of every model onto the sorted union
// of their dates. A date repeated within one model is reported as a
// *DuplicateDateError rather than merged.
func Align(models map[string]ModelResult) (AlignedSeries, error) {
	names := modelNames(models)

	byModel := make(map[string]map[Date]PredictionPoint, len(models))
	seen := make(map[Date]struct{})
	var dates []Date

	for _, name := range names {
		points := models[name].Predictions
		index := make(map[Date]PredictionPoint, len(points))
		for _, p := range points {
			if _, dup := index[p.Date]; dup {
				return AlignedSeries{}, &DuplicateDateError{Model: name, Date: p.Date}
			}
			index[p.Date] = p
			if _, ok := seen[p.Date]; !ok {
				seen[p.Date] = struct{}{}
				dates = append(dates, p.Date)
			}
		}
		byModel[name] = index
	}

	sort.SliceStable(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	if dates == nil {
		dates = []Date{}
	}

	perModel := make(map[string]ModelSeries, len(names))
	for _, name := range names {
		index := byModel[name]
		series := ModelSeries{
			Predicted: make([]*float64, len(dates)),
			Actual:    make([]*float64, len(dates)),
		}
		for i, d := range dates {
			p, ok := index[d]
			if !ok {
				continue
			}
			series.Predicted[i] = Float(p.Predicted)
			if p.Actual != nil {
				series.Actual[i] = Float(*p.Actual)
			}
		}
		perModel[name] = series
	}

	return AlignedSeries{Dates: dates, PerModel: perModel}, nil
}
