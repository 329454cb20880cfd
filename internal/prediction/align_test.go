package prediction

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// series builds n consecutive daily points starting at start. The last
// future entries have no actual value.
func series(start string, n, future int, base float64) []PredictionPoint {
	d := MustParseDate(start)
	points := make([]PredictionPoint, 0, n)
	for i := 0; i < n; i++ {
		p := PredictionPoint{Date: d.AddDays(i), Predicted: base + float64(i)}
		if i < n-future {
			p.Actual = Float(base + float64(i) + 0.5)
		}
		points = append(points, p)
	}
	return points
}

func TestAlign_DifferentLengths(t *testing.T) {
	models := map[string]ModelResult{
		ModelBasic:    {Predictions: series("2024-03-01", 5, 0, 100)},
		ModelEnhanced: {Predictions: series("2024-03-01", 7, 2, 200)},
	}

	got, err := Align(models)
	require.NoError(t, err)

	require.Len(t, got.Dates, 7)
	assert.Equal(t, MustParseDate("2024-03-01"), got.Dates[0])
	assert.Equal(t, MustParseDate("2024-03-07"), got.Dates[6])

	basic := got.PerModel[ModelBasic]
	require.Len(t, basic.Predicted, 7)
	require.Len(t, basic.Actual, 7)
	for i := 0; i < 5; i++ {
		require.NotNil(t, basic.Predicted[i])
		assert.Equal(t, 100+float64(i), *basic.Predicted[i])
	}
	assert.Nil(t, basic.Predicted[5], "gap, not zero")
	assert.Nil(t, basic.Predicted[6], "gap, not zero")
	assert.Nil(t, basic.Actual[5])
	assert.Nil(t, basic.Actual[6])

	enhanced := got.PerModel[ModelEnhanced]
	require.NotNil(t, enhanced.Predicted[6])
	assert.Equal(t, 206.0, *enhanced.Predicted[6])
	assert.Nil(t, enhanced.Actual[5], "future-only point has no actual")
	assert.Nil(t, enhanced.Actual[6])
	require.NotNil(t, enhanced.Actual[4])
	assert.Equal(t, 204.5, *enhanced.Actual[4])
}

func TestAlign_UnionOfDisjointDates(t *testing.T) {
	models := map[string]ModelResult{
		"a": {Predictions: []PredictionPoint{
			{Date: MustParseDate("2024-01-03"), Predicted: 3},
			{Date: MustParseDate("2024-01-01"), Predicted: 1},
		}},
		"b": {Predictions: []PredictionPoint{
			{Date: MustParseDate("2024-01-02"), Predicted: 2},
			{Date: MustParseDate("2024-01-03"), Predicted: 30},
		}},
	}

	got, err := Align(models)
	require.NoError(t, err)

	assert.Equal(t, []Date{
		MustParseDate("2024-01-01"),
		MustParseDate("2024-01-02"),
		MustParseDate("2024-01-03"),
	}, got.Dates)

	for name, s := range got.PerModel {
		assert.Len(t, s.Predicted, len(got.Dates), name)
		assert.Len(t, s.Actual, len(got.Dates), name)
	}

	a := got.PerModel["a"]
	assert.Equal(t, 1.0, *a.Predicted[0])
	assert.Nil(t, a.Predicted[1])
	assert.Equal(t, 3.0, *a.Predicted[2])

	b := got.PerModel["b"]
	assert.Nil(t, b.Predicted[0])
	assert.Equal(t, 2.0, *b.Predicted[1])
	assert.Equal(t, 30.0, *b.Predicted[2])
}

func TestAlign_DatesComparedByCalendarValue(t *testing.T) {
	d1, err := ParseDate("2024-05-10")
	require.NoError(t, err)
	d2, err := ParseDate("2024-05-10T00:00:00")
	require.NoError(t, err)
	d3, err := ParseDate("2024-05-10 00:00:00")
	require.NoError(t, err)

	models := map[string]ModelResult{
		"a": {Predictions: []PredictionPoint{{Date: d1, Predicted: 1}}},
		"b": {Predictions: []PredictionPoint{{Date: d2, Predicted: 2}}},
		"c": {Predictions: []PredictionPoint{{Date: d3, Predicted: 3}}},
	}

	got, err := Align(models)
	require.NoError(t, err)
	assert.Len(t, got.Dates, 1)
}

func TestAlign_DuplicateDateReported(t *testing.T) {
	models := map[string]ModelResult{
		ModelBasic: {Predictions: []PredictionPoint{
			{Date: MustParseDate("2024-01-01"), Predicted: 1},
			{Date: MustParseDate("2024-01-01"), Predicted: 2},
		}},
	}

	_, err := Align(models)
	require.Error(t, err)

	var dup *DuplicateDateError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, ModelBasic, dup.Model)
	assert.Equal(t, MustParseDate("2024-01-01"), dup.Date)
}

func TestAlign_Idempotent(t *testing.T) {
	models := map[string]ModelResult{
		ModelBasic:    {Predictions: series("2024-03-01", 5, 0, 100)},
		ModelEnhanced: {Predictions: series("2024-02-27", 9, 3, 200)},
	}

	first, err := Align(models)
	require.NoError(t, err)
	second, err := Align(models)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAlign_DoesNotAliasInput(t *testing.T) {
	points := series("2024-03-01", 2, 0, 10)
	models := map[string]ModelResult{ModelBasic: {Predictions: points}}

	got, err := Align(models)
	require.NoError(t, err)

	*points[0].Actual = 999
	assert.Equal(t, 10.5, *got.PerModel[ModelBasic].Actual[0])
}

func TestAlign_Empty(t *testing.T) {
	got, err := Align(map[string]ModelResult{ModelBasic: {}})
	require.NoError(t, err)

	assert.Empty(t, got.Dates)
	assert.Empty(t, got.PerModel[ModelBasic].Predicted)
}

func TestAlignedSeries_Index(t *testing.T) {
	got, err := Align(map[string]ModelResult{ModelBasic: {Predictions: series("2024-03-01", 4, 0, 1)}})
	require.NoError(t, err)

	assert.Equal(t, 0, got.Index(MustParseDate("2024-03-01")))
	assert.Equal(t, 3, got.Index(MustParseDate("2024-03-04")))
	assert.Equal(t, -1, got.Index(MustParseDate("2024-03-05")))
	assert.Equal(t, -1, got.Index(MustParseDate("2024-02-29")))
}
