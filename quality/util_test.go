package quality

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCheckLimits(t *testing.T) {
	values := []float64{-1, 0, 5, 10, 11, math.NaN()}

	ok, err := CheckLimits(values, &Bound{Value: 0, Inclusive: true}, &Bound{Value: 10, Inclusive: true})
	require.NoError(t, err)
	require.Equal(t, []bool{false, true, true, true, false, false}, ok)

	ok, err = CheckLimits(values, &Bound{Value: 0}, nil)
	require.NoError(t, err)
	require.Equal(t, []bool{false, false, true, true, true, false}, ok)

	ok, err = CheckLimits(values, nil, &Bound{Value: 10})
	require.NoError(t, err)
	require.Equal(t, []bool{true, true, true, false, false, false}, ok)
}

func TestCheckLimitsNoBounds(t *testing.T) {
	_, err := CheckLimits([]float64{1}, nil, nil)
	require.ErrorIs(t, err, ErrNoBounds)
}

func TestDailyMin(t *testing.T) {
	// Two days of hourly data: day 1 dips to 2 overnight, day 2 never
	// drops below 8.
	values := make([]float64, 48)
	for i := range values {
		if i < 24 {
			values[i] = 2 + float64(i%5)
		} else {
			values[i] = 8 + float64(i%5)
		}
	}
	mask := DailyMin(hourlySeries(values), 5, false)
	require.False(t, mask.Values[3])
	require.True(t, mask.Values[30])
}

func TestDailyMinInclusive(t *testing.T) {
	values := make([]float64, 24)
	for i := range values {
		values[i] = 5 + float64(i%3)
	}
	series := hourlySeries(values)
	require.False(t, DailyMin(series, 5, false).Values[0])
	require.True(t, DailyMin(series, 5, true).Values[0])
}

func TestSpacing(t *testing.T) {
	start := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
	times := []time.Time{
		start,
		start.Add(time.Hour),
		start.Add(2 * time.Hour),
		start.Add(4 * time.Hour), // gap
		start.Add(5 * time.Hour),
	}
	got := Spacing(times, time.Hour)
	require.Equal(t, []bool{true, true, true, false, true}, got)
}

func TestSpacingMask(t *testing.T) {
	start := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
	times := []time.Time{start, start.Add(time.Hour)}
	mask := SpacingMask(times, time.Hour)
	require.Equal(t, 2, mask.Count())
	require.True(t, mask.Times[0].Equal(times[0]))
}
