// Package features labels characteristics of PV power and irradiance
// series: daytime classification, per-day sunrise/sunset extraction,
// inverter clipping, and sunny-day detection.
package features

import (
	"errors"
	"fmt"
	"math"
	"time"

	"pv-quality-lab/internal/stats"
	"pv-quality-lab/timeseries"
)

// Errors returned by the daytime classifier.
var (
	// ErrMaskMismatch is returned when an outlier or clipping mask is not
	// aligned 1:1 with the classified series.
	ErrMaskMismatch = errors.New("mask is not aligned with the series")

	// ErrUnsortedSeries is returned for a non-chronological index.
	ErrUnsortedSeries = errors.New("series index must be sorted chronologically")
)

// DaytimeConfig tunes PowerOrIrradiance. Use DefaultDaytimeConfig and
// override fields as needed.
type DaytimeConfig struct {
	// Outliers marks samples to exclude before normalization. Optional.
	Outliers *timeseries.Mask

	// Clipping marks samples where inverter clipping is indicated; such
	// samples are forced to daytime. Optional.
	Clipping *timeseries.Mask

	// Freq is the sampling interval. Zero means infer it from the index;
	// inference failure is a hard error.
	Freq time.Duration

	// LowValueThreshold is the maximum normalized value for a sample to
	// look like night.
	LowValueThreshold float64

	// LowMedianThreshold is the maximum rolling minute-of-day median for
	// a sample to look like night.
	LowMedianThreshold float64

	// LowDiffThreshold is the maximum absolute per-minute first
	// difference for a sample to look like night.
	LowDiffThreshold float64

	// MedianDays is the day window for the rolling minute-of-day median.
	MedianDays int

	// CorrectionWindow is the day window for the majority vote used to
	// repair invalid samples.
	CorrectionWindow int

	// HoursMin is the shortest believable day/night run, in hours. Runs
	// at or below this length are repaired.
	HoursMin float64

	// DayLengthDifferenceMax is how many minutes shorter than the rolling
	// median day length a day may be before the whole day is repaired.
	DayLengthDifferenceMax float64

	// DayLengthWindow is the day window for the rolling median day length.
	DayLengthWindow int
}

// DefaultDaytimeConfig returns the tuning used for 15-minute to hourly
// power and irradiance streams.
func DefaultDaytimeConfig() DaytimeConfig {
	return DaytimeConfig{
		LowValueThreshold:      0.003,
		LowMedianThreshold:     0.0015,
		LowDiffThreshold:       0.0015,
		MedianDays:             7,
		CorrectionWindow:       31,
		HoursMin:               5,
		DayLengthDifferenceMax: 30,
		DayLengthWindow:        14,
	}
}

// PowerOrIrradiance classifies each sample of a power or irradiance
// series as daytime (true) or night (false).
//
// A sample tentatively counts as night when at least two of three
// low-signal criteria hold: near-zero normalized value, near-zero
// per-minute first difference, and near-zero rolling minute-of-day
// median. The combination is the pairwise OR of ANDs
//
//	(lowValue && lowDiff) || (lowValue && lowMedian) || (lowDiff && lowMedian)
//
// which is kept as written rather than folded into a vote count: the
// three criteria are correlated, so the expression is the contract. Two
// repair passes follow: day/night runs shorter than HoursMin hours are
// replaced by the minute-of-day majority over CorrectionWindow days, and
// days whose apparent day length falls more than DayLengthDifferenceMax
// minutes below the rolling median day length are repaired whole. Samples
// flagged by the clipping mask are always daytime.
func PowerOrIrradiance(series *timeseries.Series, cfg DaytimeConfig) (*timeseries.Mask, error) {
	if !series.IsSorted() {
		return nil, ErrUnsortedSeries
	}
	if cfg.Outliers != nil && cfg.Outliers.Len() != series.Len() {
		return nil, fmt.Errorf("outliers: %w", ErrMaskMismatch)
	}
	if cfg.Clipping != nil && cfg.Clipping.Len() != series.Len() {
		return nil, fmt.Errorf("clipping: %w", ErrMaskMismatch)
	}
	freq := cfg.Freq
	if freq == 0 {
		inferred, err := timeseries.InferFrequency(series.Times)
		if err != nil {
			return nil, err
		}
		freq = inferred
	}
	minutesPerValue := freq.Minutes()

	norm := normalizeForClassification(series.Values, cfg.Outliers)

	// Per-minute first difference; the first sample has none.
	diff := make([]float64, len(norm))
	diff[0] = math.NaN()
	for i := 1; i < len(norm); i++ {
		diff[i] = (norm[i] - norm[i-1]) / minutesPerValue
	}

	rollingMedian := timeseries.RollingMedianByMinute(series.Times, norm, cfg.MedianDays)

	night := make([]bool, len(norm))
	for i := range norm {
		lowValue := norm[i] <= cfg.LowValueThreshold
		lowDiff := math.Abs(diff[i]) <= cfg.LowDiffThreshold
		lowMedian := rollingMedian[i] <= cfg.LowMedianThreshold
		night[i] = (lowValue && lowDiff) || (lowValue && lowMedian) || (lowDiff && lowMedian)
	}

	night = filterMiddayErrors(series.Times, night, minutesPerValue, cfg)
	if cfg.Clipping != nil {
		// Clipping cannot occur at night.
		for i, clipped := range cfg.Clipping.Values {
			if clipped {
				night[i] = false
			}
		}
	}
	night = filterEdgeOfDayErrors(series.Times, night, minutesPerValue, cfg)

	day := make([]bool, len(night))
	for i, n := range night {
		day[i] = !n
	}
	return &timeseries.Mask{Times: append([]time.Time(nil), series.Times...), Values: day}, nil
}

// normalizeForClassification zero-fills missing values, nulls outlier
// positions, clamps negatives to zero, min-max normalizes, and zero-fills
// again so every sample carries a finite value.
func normalizeForClassification(values []float64, outliers *timeseries.Mask) []float64 {
	work := make([]float64, len(values))
	for i, v := range values {
		switch {
		case outliers != nil && outliers.Values[i]:
			work[i] = math.NaN()
		case math.IsNaN(v) || v < 0:
			work[i] = 0
		default:
			work[i] = v
		}
	}
	norm := stats.MinMaxNormalize(work)
	for i, v := range norm {
		if math.IsNaN(v) {
			norm[i] = 0
		}
	}
	return norm
}

// filterMiddayErrors repairs stretches that flip between day and night on
// an implausibly short time scale (midday outages where power drops to
// zero for an hour or two).
func filterMiddayErrors(times []time.Time, night []bool, minutesPerValue float64, cfg DaytimeConfig) []bool {
	runs := timeseries.RunLengths(night)
	invalid := make([]bool, len(night))
	for i, r := range runs {
		invalid[i] = float64(r)*minutesPerValue <= cfg.HoursMin*60
	}
	return correctIfInvalid(times, night, invalid, cfg.CorrectionWindow)
}

// filterEdgeOfDayErrors repairs whole days whose apparent day length is
// substantially shorter than the rolling median day length. Daylight
// savings transitions and partial-day outages shrink the apparent day
// without being genuine night; repairing the whole day avoids leaving a
// spurious early sunset or late sunrise behind.
func filterEdgeOfDayErrors(times []time.Time, night []bool, minutesPerValue float64, cfg DaytimeConfig) []bool {
	day := make([]bool, len(night))
	for i, n := range night {
		day[i] = !n
	}
	runs := timeseries.RunLengths(day)
	days := timeseries.Days(times)

	// Per-day apparent day length in minutes: the median length of the
	// daytime runs the day's samples belong to.
	dayLength := make([]float64, len(days))
	for d, dr := range days {
		var lengths []float64
		for i := dr.Start; i < dr.End; i++ {
			if day[i] {
				lengths = append(lengths, float64(runs[i])*minutesPerValue)
			}
		}
		dayLength[d] = stats.Median(lengths)
	}

	rolling := rollingMedian(dayLength, cfg.DayLengthWindow)
	invalid := make([]bool, len(night))
	for d, dr := range days {
		if rolling[d]-dayLength[d] > cfg.DayLengthDifferenceMax {
			for i := dr.Start; i < dr.End; i++ {
				invalid[i] = true
			}
		}
	}
	return correctIfInvalid(times, night, invalid, cfg.CorrectionWindow)
}

// correctIfInvalid keeps valid samples and replaces invalid ones with the
// minute-of-day majority over the correction window. Exact ties resolve
// to false (day, when applied to a night mask).
func correctIfInvalid(times []time.Time, series []bool, invalid []bool, correctionWindow int) []bool {
	majority := timeseries.RollingMajorityByMinute(times, series, correctionWindow)
	out := make([]bool, len(series))
	for i := range series {
		out[i] = (!invalid[i] && series[i]) || (invalid[i] && majority[i])
	}
	return out
}

// rollingMedian is a centered NaN-ignoring rolling median with a minimum
// of one observation, over a plain slice.
func rollingMedian(xs []float64, window int) []float64 {
	out := make([]float64, len(xs))
	for i := range xs {
		lo := i - window/2
		if lo < 0 {
			lo = 0
		}
		hi := i + (window-1)/2
		if hi > len(xs)-1 {
			hi = len(xs) - 1
		}
		out[i] = stats.Median(xs[lo : hi+1])
	}
	return out
}
