package prediction

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate_Layouts(t *testing.T) {
	want := Date{Year: 2024, Month: time.January, Day: 5}
	for _, s := range []string{
		"2024-01-05",
		" 2024-01-05 ",
		"2024-01-05T00:00:00",
		"2024-01-05 16:00:00",
		"2024-01-05T00:00:00Z",
		"2024-01-05T09:30:00-05:00",
	} {
		got, err := ParseDate(s)
		require.NoError(t, err, s)
		assert.Equal(t, want, got, s)
	}

	_, err := ParseDate("Jan 5 2024")
	assert.Error(t, err)
}

func TestDate_Ordering(t *testing.T) {
	a := MustParseDate("2023-12-31")
	b := MustParseDate("2024-01-01")
	c := MustParseDate("2024-02-01")

	assert.True(t, a.Before(b))
	assert.True(t, b.Before(c))
	assert.False(t, b.Before(b))
	assert.Equal(t, b, a.AddDays(1))
	assert.True(t, Date{}.IsZero())
}

func TestDate_JSON(t *testing.T) {
	d := MustParseDate("2024-07-04")
	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2024-07-04"`, string(b))

	var back Date
	require.NoError(t, json.Unmarshal([]byte(`"2024-07-04T00:00:00"`), &back))
	assert.Equal(t, d, back)

	assert.Error(t, json.Unmarshal([]byte(`12`), &back))
}

func TestPeriod_Valid(t *testing.T) {
	assert.True(t, Period("10y").Valid())
	assert.False(t, Period("3y").Valid())
	assert.Len(t, Periods(), 7)
}
