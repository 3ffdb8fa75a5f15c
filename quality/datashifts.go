// Package quality implements quality-control tests for PV telemetry:
// changepoint-based data-shift and time-shift detection, outlier filters,
// stale-value and interpolation detection, timestamp spacing checks, and
// physical limit tests for irradiance and weather streams.
package quality

import (
	"errors"
	"fmt"
	"math"
	"time"

	"pv-quality-lab/changepoint"
	"pv-quality-lab/internal/stats"
	"pv-quality-lab/timeseries"
)

// Errors returned by the shift detectors.
var (
	// ErrUnsortedSeries is returned for a non-chronological index.
	ErrUnsortedSeries = errors.New("series index must be sorted chronologically")

	// ErrNotDailySeries is returned when the dominant sampling interval
	// is not one day. Callers must resample first.
	ErrNotDailySeries = errors.New("series must be sampled daily")

	// ErrNoUsablePoints is returned when filtering leaves nothing to
	// search for changepoints.
	ErrNoUsablePoints = errors.New("no usable points remain after filtering")
)

// seasonalityMaxDays is the longest span, in days, that is analyzed
// without removing day-of-year seasonality. Two full years are needed
// before the per-calendar-day median is meaningful.
const seasonalityMaxDays = 730

// DataShiftConfig tunes DetectDataShifts.
type DataShiftConfig struct {
	// Filtering removes stale runs, non-positive values, and the extreme
	// 1% tails before searching.
	Filtering bool

	// UseDefaultModels selects the search by series span: bottom-up over
	// an RBF cost with penalty 40 for deseasonalized (long) series, a
	// width-50 sliding window over an RBF cost with penalty 30 otherwise.
	// When false, Method, Cost, and Penalty are used verbatim.
	UseDefaultModels bool

	// Method, Cost, and Penalty configure the search when
	// UseDefaultModels is false.
	Method  changepoint.Method
	Cost    string
	Penalty float64
}

// DefaultDataShiftConfig returns the default detection settings.
func DefaultDataShiftConfig() DataShiftConfig {
	return DataShiftConfig{
		Filtering:        true,
		UseDefaultModels: true,
		Method:           changepoint.MethodBottomUp,
		Cost:             changepoint.CostRBF,
		Penalty:          40,
	}
}

// DetectDataShifts locates abrupt level shifts in a daily PV data stream
// (daily insolation or energy totals) and returns a mask aligned with the
// input, true exactly where a new segment begins. A mask with no true
// values is a valid result, not an error.
//
// The input must be chronologically sorted and daily-sampled; violations
// are hard errors. Series spanning more than two years are deseasonalized
// by subtracting the per-(month, day) median before the search.
func DetectDataShifts(series *timeseries.Series, cfg DataShiftConfig) (*timeseries.Mask, error) {
	if err := checkDailySeries(series); err != nil {
		return nil, err
	}

	work := series.Clone()
	if cfg.Filtering {
		work = erroneousFilter(work)
	}
	removeSeasonality := false
	if work.Len() > 0 {
		span := work.Times[work.Len()-1].Sub(work.Times[0])
		removeSeasonality = span > seasonalityMaxDays*timeseries.Day
	}
	processed := preprocessSeries(work, removeSeasonality)

	// The search runs on the NaN-free values; keep the sample positions
	// so breakpoints translate back onto timestamps.
	points := make([]float64, 0, processed.Len())
	positions := make([]int, 0, processed.Len())
	for i, v := range processed.Values {
		if !math.IsNaN(v) {
			points = append(points, v)
			positions = append(positions, i)
		}
	}
	if len(points) == 0 {
		return nil, ErrNoUsablePoints
	}

	searcher, penalty, err := dataShiftSearcher(cfg, removeSeasonality)
	if err != nil {
		return nil, err
	}
	if err := searcher.Fit(points); err != nil {
		return nil, fmt.Errorf("changepoint search: %w", err)
	}
	breakpoints, err := searcher.Predict(penalty)
	if err != nil {
		return nil, fmt.Errorf("changepoint search: %w", err)
	}

	// Strip the length sentinel; the remaining indices mark the first
	// sample of each new segment.
	shiftTimes := make(map[time.Time]bool)
	for _, bp := range breakpoints {
		if bp == len(points) {
			continue
		}
		shiftTimes[processed.Times[positions[bp]]] = true
	}

	values := make([]bool, series.Len())
	for i, t := range series.Times {
		values[i] = shiftTimes[t]
	}
	times := make([]time.Time, series.Len())
	copy(times, series.Times)
	return &timeseries.Mask{Times: times, Values: values}, nil
}

// GetLongestShiftSegmentDates returns the start and end dates of the
// longest stretch of days between detected data shifts, pulled in by
// bufferDays on each side so settling around a shift stays outside the
// segment. When the longest segment is shorter than twice the buffer the
// returned end precedes the returned start; that degenerate result is the
// caller's to detect, not an error.
func GetLongestShiftSegmentDates(series *timeseries.Series, cfg DataShiftConfig, bufferDays int) (time.Time, time.Time, error) {
	mask, err := DetectDataShifts(series, cfg)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	// The running count of shifts assigns a segment id to every sample;
	// the id with the most samples wins, ties to the lowest id.
	segment := make([]int, mask.Len())
	id := 0
	for i, shifted := range mask.Values {
		if shifted {
			id++
		}
		segment[i] = id
	}
	counts := make([]int, id+1)
	for _, s := range segment {
		counts[s]++
	}
	best := 0
	for s, c := range counts {
		if c > counts[best] {
			best = s
		}
	}

	var start, end time.Time
	for i, s := range segment {
		if s != best {
			continue
		}
		if start.IsZero() {
			start = mask.Times[i]
		}
		end = mask.Times[i]
	}
	buffer := time.Duration(bufferDays) * timeseries.Day
	return start.Add(buffer), end.Add(-buffer), nil
}

func checkDailySeries(series *timeseries.Series) error {
	if !series.IsSorted() {
		return ErrUnsortedSeries
	}
	freq, err := timeseries.InferFrequency(series.Times)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotDailySeries, err)
	}
	if freq != timeseries.Day {
		return fmt.Errorf("%w: dominant interval is %v", ErrNotDailySeries, freq)
	}
	return nil
}

func dataShiftSearcher(cfg DataShiftConfig, removedSeasonality bool) (changepoint.Searcher, float64, error) {
	if !cfg.UseDefaultModels {
		searcher, err := changepoint.New(cfg.Method, cfg.Cost, changepoint.Options{})
		return searcher, cfg.Penalty, err
	}
	if removedSeasonality {
		searcher, err := changepoint.New(changepoint.MethodBottomUp, changepoint.CostRBF, changepoint.Options{})
		return searcher, 40, err
	}
	searcher, err := changepoint.New(changepoint.MethodWindow, changepoint.CostRBF, changepoint.Options{Width: 50})
	return searcher, 30, err
}

// erroneousFilter drops readings that cannot be genuine daily totals:
// members of stale runs (six or more samples identical to three
// decimals), non-positive values, the extreme 1% tails, and samples
// repeating an earlier timestamp.
func erroneousFilter(series *timeseries.Series) *timeseries.Series {
	stale := staleRunsRound(series.Values, 6, 3)

	// Quantile cutoffs come from the values surviving the stale and
	// non-positive filters.
	surviving := make([]float64, 0, series.Len())
	for i, v := range series.Values {
		if !stale[i] && v > 0 {
			surviving = append(surviving, v)
		}
	}
	lower := stats.Quantile(0.01, surviving)
	upper := stats.Quantile(0.99, surviving)

	times := make([]time.Time, 0, series.Len())
	values := make([]float64, 0, series.Len())
	seen := make(map[time.Time]bool, series.Len())
	for i, v := range series.Values {
		if stale[i] || math.IsNaN(v) || v <= 0 || v <= lower || v >= upper {
			continue
		}
		if seen[series.Times[i]] {
			continue
		}
		seen[series.Times[i]] = true
		times = append(times, series.Times[i])
		values = append(values, v)
	}
	return &timeseries.Series{Times: times, Values: values}
}

// preprocessSeries min-max normalizes and, when requested, subtracts the
// per-(month, day-of-month) median across years, leaving the non-seasonal
// residual.
func preprocessSeries(series *timeseries.Series, removeSeasonality bool) *timeseries.Series {
	normalized := stats.MinMaxNormalize(series.Values)
	out := &timeseries.Series{
		Times:  append([]time.Time(nil), series.Times...),
		Values: normalized,
	}
	if !removeSeasonality {
		return out
	}
	type monthDay struct {
		month time.Month
		day   int
	}
	grouped := make(map[monthDay][]float64)
	for i, t := range out.Times {
		key := monthDay{t.Month(), t.Day()}
		grouped[key] = append(grouped[key], normalized[i])
	}
	seasonal := make(map[monthDay]float64, len(grouped))
	for key, vals := range grouped {
		seasonal[key] = stats.Median(vals)
	}
	for i, t := range out.Times {
		out.Values[i] = normalized[i] - seasonal[monthDay{t.Month(), t.Day()}]
	}
	return out
}

// staleRunsRound flags every member of a run of length window or more of
// values equal after rounding to the given number of decimals.
func staleRunsRound(values []float64, window, decimals int) []bool {
	scale := math.Pow(10, float64(decimals))
	rounded := make([]float64, len(values))
	for i, v := range values {
		rounded[i] = math.Round(v*scale) / scale
	}
	flags := make([]bool, len(values))
	start := 0
	for i := 1; i <= len(values); i++ {
		if i == len(values) || rounded[i] != rounded[start] {
			if i-start >= window {
				for j := start; j < i; j++ {
					flags[j] = true
				}
			}
			start = i
		}
	}
	return flags
}
