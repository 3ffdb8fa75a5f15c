package quality

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pv-quality-lab/changepoint"
	"pv-quality-lab/timeseries"
)

// dailySeries builds a daily series of n values from fill, with a small
// deterministic wobble so consecutive readings never look stale.
func dailySeries(start time.Time, n int, fill func(i int) float64) *timeseries.Series {
	times := make([]time.Time, n)
	values := make([]float64, n)
	for i := range times {
		times[i] = start.Add(time.Duration(i) * timeseries.Day)
		values[i] = fill(i) + 0.2*math.Sin(1.3*float64(i))
	}
	return &timeseries.Series{Times: times, Values: values}
}

func TestDetectDataShiftsLongSeries(t *testing.T) {
	// Three years of daily insolation with a sensor rescale at the start
	// of the second year. The long-series path deseasonalizes and runs
	// the bottom-up search.
	start := time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)
	series := dailySeries(start, 1096, func(i int) float64 {
		if i < 365 {
			return 50
		}
		return 60
	})

	mask, err := DetectDataShifts(series, DefaultDataShiftConfig())
	require.NoError(t, err)
	require.GreaterOrEqual(t, mask.Count(), 1, "the rescale should be detected")
	require.LessOrEqual(t, mask.Count(), 2)

	shiftDate := start.AddDate(1, 0, 0)
	for i, shifted := range mask.Values {
		if shifted {
			days := mask.Times[i].Sub(shiftDate).Hours() / 24
			require.InDelta(t, 0, days, 10, "shift located at %v", mask.Times[i])
		}
	}
}

func TestDetectDataShiftsShortSeries(t *testing.T) {
	// Under two years the sliding-window search runs on the normalized
	// series directly.
	start := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
	series := dailySeries(start, 500, func(i int) float64 {
		if i < 250 {
			return 50
		}
		return 60
	})

	mask, err := DetectDataShifts(series, DefaultDataShiftConfig())
	require.NoError(t, err)
	require.GreaterOrEqual(t, mask.Count(), 1)

	shiftDate := start.Add(250 * timeseries.Day)
	for i, shifted := range mask.Values {
		if shifted {
			days := mask.Times[i].Sub(shiftDate).Hours() / 24
			require.InDelta(t, 0, days, 10, "shift located at %v", mask.Times[i])
		}
	}
}

func TestDetectDataShiftsNoShift(t *testing.T) {
	start := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
	series := dailySeries(start, 400, func(int) float64 { return 50 })

	mask, err := DetectDataShifts(series, DefaultDataShiftConfig())
	require.NoError(t, err)
	require.Zero(t, mask.Count(), "a steady series has no shifts")
}

func TestDetectDataShiftsUnsorted(t *testing.T) {
	start := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
	series := dailySeries(start, 100, func(int) float64 { return 50 })
	series.Times[10], series.Times[11] = series.Times[11], series.Times[10]

	_, err := DetectDataShifts(series, DefaultDataShiftConfig())
	require.ErrorIs(t, err, ErrUnsortedSeries)
}

func TestDetectDataShiftsNotDaily(t *testing.T) {
	start := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
	times := make([]time.Time, 100)
	values := make([]float64, 100)
	for i := range times {
		times[i] = start.Add(time.Duration(i) * time.Hour)
		values[i] = 50
	}
	_, err := DetectDataShifts(&timeseries.Series{Times: times, Values: values}, DefaultDataShiftConfig())
	require.ErrorIs(t, err, ErrNotDailySeries)
}

func TestDetectDataShiftsNothingUsable(t *testing.T) {
	// Filtering drops non-positive readings, leaving nothing to search.
	start := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
	times := make([]time.Time, 100)
	values := make([]float64, 100)
	for i := range times {
		times[i] = start.Add(time.Duration(i) * timeseries.Day)
		values[i] = -5
	}
	_, err := DetectDataShifts(&timeseries.Series{Times: times, Values: values}, DefaultDataShiftConfig())
	require.ErrorIs(t, err, ErrNoUsablePoints)
}

func TestGetLongestShiftSegmentDates(t *testing.T) {
	// Three levels with boundaries at days 50 and 300; the middle segment
	// wins and comes back pulled in by the buffer.
	start := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
	series := dailySeries(start, 400, func(i int) float64 {
		switch {
		case i < 50:
			return 10
		case i < 300:
			return 50
		default:
			return 90
		}
	})
	cfg := DataShiftConfig{
		Filtering:        false,
		UseDefaultModels: false,
		Method:           changepoint.MethodPelt,
		Cost:             changepoint.CostRBF,
		Penalty:          20,
	}

	segStart, segEnd, err := GetLongestShiftSegmentDates(series, cfg, 7)
	require.NoError(t, err)
	require.True(t, segStart.Equal(start.Add(57*timeseries.Day)), "got %v", segStart)
	require.True(t, segEnd.Equal(start.Add(292*timeseries.Day)), "got %v", segEnd)
}

func TestGetLongestShiftSegmentDatesNoShift(t *testing.T) {
	start := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
	series := dailySeries(start, 100, func(int) float64 { return 50 })

	segStart, segEnd, err := GetLongestShiftSegmentDates(series, DefaultDataShiftConfig(), 7)
	require.NoError(t, err)
	require.True(t, segStart.Equal(start.Add(7*timeseries.Day)))
	require.True(t, segEnd.Equal(start.Add(92*timeseries.Day)))
}

func TestPreprocessSeriesRemovesSeasonality(t *testing.T) {
	// A purely seasonal daily series deseasonalizes to near zero. The
	// span avoids leap years so each calendar day repeats exactly.
	start := time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC)
	times := make([]time.Time, 1095)
	values := make([]float64, 1095)
	for i := range times {
		times[i] = start.Add(time.Duration(i) * timeseries.Day)
		doy := float64(times[i].YearDay())
		values[i] = 50 + 10*math.Sin(2*math.Pi*doy/365)
	}
	series := &timeseries.Series{Times: times, Values: values}

	processed := preprocessSeries(series, true)
	for i, v := range processed.Values {
		require.InDelta(t, 0, v, 1e-6, "residual at %d", i)
	}
}

func TestPreprocessSeriesIdempotent(t *testing.T) {
	// After filtering and one normalization the values already span [0, 1],
	// so a second preprocessing pass must leave them unchanged.
	start := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
	series := dailySeries(start, 400, func(i int) float64 {
		if i%37 == 0 {
			return -1 // dropped by the filter
		}
		return 40 + float64(i%90)
	})

	once := preprocessSeries(erroneousFilter(series), false)
	twice := preprocessSeries(once, false)

	require.Equal(t, once.Times, twice.Times)
	require.Len(t, twice.Values, len(once.Values))
	for i := range once.Values {
		require.InDelta(t, once.Values[i], twice.Values[i], 1e-12, "value at %d", i)
	}
}

func TestStaleRunsRound(t *testing.T) {
	values := []float64{1.0001, 1.0002, 1.0004, 2, 3, 4, 5.001, 5.0012, 6}
	flags := staleRunsRound(values, 3, 3)
	want := []bool{true, true, true, false, false, false, false, false, false}
	require.Equal(t, want, flags)
}
