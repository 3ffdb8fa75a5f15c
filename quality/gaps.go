package quality

import (
	"errors"
	"fmt"
	"math"
	"time"

	"pv-quality-lab/timeseries"
)

// Errors returned by the gap and stale-value detectors.
var (
	// ErrWindowTooSmall is returned when a rolling window cannot express
	// the requested test.
	ErrWindowTooSmall = errors.New("window too small")
)

// StaleValues flags values at the end of a rolling window in which every
// value is close to the window's first value, indicating a stuck sensor.
// Closeness uses the usual relative plus absolute tolerance test. The
// window must hold at least two values.
func StaleValues(series *timeseries.Series, window int, rtol, atol float64) (*timeseries.Mask, error) {
	if window < 2 {
		return nil, fmt.Errorf("window %d, need at least 2: %w", window, ErrWindowTooSmall)
	}
	n := series.Len()
	values := make([]bool, n)
	for i := window - 1; i < n; i++ {
		values[i] = allCloseToFirst(series.Values[i-window+1:i+1], rtol, atol)
	}
	return &timeseries.Mask{Times: copyTimes(series.Times), Values: values}, nil
}

// StaleValuesRound flags every member of a run of window or more values
// that are identical after rounding to the given number of decimals.
// Unlike StaleValues this is an exact test, suited to registers that
// report quantized totals.
func StaleValuesRound(series *timeseries.Series, window, decimals int) (*timeseries.Mask, error) {
	if window < 2 {
		return nil, fmt.Errorf("window %d, need at least 2: %w", window, ErrWindowTooSmall)
	}
	values := staleRunsRound(series.Values, window, decimals)
	return &timeseries.Mask{Times: copyTimes(series.Times), Values: values}, nil
}

// InterpolatedValues flags sequences that look like a line segment: the
// first difference is stale over a window of window-1 differences. The
// window must hold at least three values.
func InterpolatedValues(series *timeseries.Series, window int, rtol, atol float64) (*timeseries.Mask, error) {
	if window < 3 {
		return nil, fmt.Errorf("window %d, need at least 3: %w", window, ErrWindowTooSmall)
	}
	n := series.Len()
	diff := make([]float64, n)
	diff[0] = math.NaN()
	for i := 1; i < n; i++ {
		diff[i] = series.Values[i] - series.Values[i-1]
	}
	diffSeries := &timeseries.Series{Times: series.Times, Values: diff}
	return StaleValues(diffSeries, window-1, rtol, atol)
}

// CompletenessScore computes, for every sample, the fraction of its
// calendar day covered by non-missing data: non-missing sample count
// times the sampling interval, over 24 hours. freq zero means infer from
// the index.
func CompletenessScore(series *timeseries.Series, freq time.Duration) (*timeseries.Series, error) {
	if freq == 0 {
		inferred, err := timeseries.InferFrequency(series.Times)
		if err != nil {
			return nil, err
		}
		freq = inferred
	}
	values := make([]float64, series.Len())
	for _, dr := range timeseries.Days(series.Times) {
		present := 0
		for i := dr.Start; i < dr.End; i++ {
			if !math.IsNaN(series.Values[i]) {
				present++
			}
		}
		score := float64(present) * freq.Hours() / 24
		for i := dr.Start; i < dr.End; i++ {
			values[i] = score
		}
	}
	return &timeseries.Series{Times: copyTimes(series.Times), Values: values}, nil
}

// Complete returns true for samples on days whose completeness score
// reaches minimumCompleteness.
func Complete(series *timeseries.Series, minimumCompleteness float64, freq time.Duration) (*timeseries.Mask, error) {
	score, err := CompletenessScore(series, freq)
	if err != nil {
		return nil, err
	}
	values := make([]bool, score.Len())
	for i, s := range score.Values {
		values[i] = s >= minimumCompleteness
	}
	return &timeseries.Mask{Times: score.Times, Values: values}, nil
}

// allCloseToFirst reports whether every value is within atol plus rtol
// times the first value's magnitude of the first value.
func allCloseToFirst(xs []float64, rtol, atol float64) bool {
	first := xs[0]
	for _, x := range xs {
		if math.IsNaN(x) || math.IsNaN(first) {
			return false
		}
		if math.Abs(x-first) > atol+rtol*math.Abs(first) {
			return false
		}
	}
	return true
}
