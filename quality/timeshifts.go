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

// Errors returned by ShiftsRuptures.
var (
	// ErrPeriodTooLong is returned when the minimum shift period exceeds
	// the number of days in the event series.
	ErrPeriodTooLong = errors.New("minimum shift period exceeds the series length")

	// ErrSeriesMismatch is returned when the event and reference series
	// do not cover the same days.
	ErrSeriesMismatch = errors.New("event and reference series must cover the same days")
)

// TimeShiftConfig tunes ShiftsRuptures.
type TimeShiftConfig struct {
	// PeriodMin is the minimum number of days a time shift must persist
	// to be detected.
	PeriodMin int

	// ShiftMin is the granularity of reported shifts, in minutes. Clock
	// and timezone errors come in quarter-hour steps.
	ShiftMin int

	// RoundUpFrom is the remainder, in minutes, above which a difference
	// rounds up to the next ShiftMin multiple. Zero means half of
	// ShiftMin.
	RoundUpFrom int

	// PredictionPenalty is the changepoint-search penalty.
	PredictionPenalty float64
}

// DefaultTimeShiftConfig returns the default estimation settings.
func DefaultTimeShiftConfig() TimeShiftConfig {
	return TimeShiftConfig{
		PeriodMin:         2,
		ShiftMin:          15,
		PredictionPenalty: 13,
	}
}

// ShiftsRuptures estimates clock-time shifts between a measured daily
// event time and a modeled reference (both in minutes since midnight,
// e.g. a solar-noon proxy). The difference between the two series is
// segmented with an exact penalized changepoint search; within each
// segment every day is assigned the statistical mode of the differences
// rounded to ShiftMin-minute multiples. Returns a mask that is true on
// shifted days and the per-day shift amounts in minutes.
//
// Both series must be daily and cover the same calendar days; the
// comparison is timezone-naive. Days where either value is missing are
// excluded from the segment mode and report the segment's shift.
func ShiftsRuptures(eventMinutes, referenceMinutes *timeseries.Series, cfg TimeShiftConfig) (*timeseries.Mask, *timeseries.Series, error) {
	n := eventMinutes.Len()
	if cfg.PeriodMin > n {
		return nil, nil, fmt.Errorf("period %d, %d days: %w", cfg.PeriodMin, n, ErrPeriodTooLong)
	}
	if referenceMinutes.Len() != n {
		return nil, nil, ErrSeriesMismatch
	}
	for i := range eventMinutes.Times {
		if !sameDate(eventMinutes.Times[i], referenceMinutes.Times[i]) {
			return nil, nil, ErrSeriesMismatch
		}
	}
	roundUpFrom := cfg.RoundUpFrom
	if roundUpFrom == 0 {
		roundUpFrom = cfg.ShiftMin / 2
	}

	diff := make([]float64, n)
	for i := range diff {
		diff[i] = eventMinutes.Values[i] - referenceMinutes.Values[i]
	}

	breakpoints, err := timeShiftBreakpoints(diff, cfg)
	if err != nil {
		return nil, nil, err
	}

	shift := make([]float64, n)
	prev := 0
	for _, bp := range breakpoints {
		var rounded []int
		for i := prev; i < bp; i++ {
			if !math.IsNaN(diff[i]) {
				rounded = append(rounded, roundShift(diff[i], cfg.ShiftMin, roundUpFrom))
			}
		}
		mode := 0
		if len(rounded) > 0 {
			mode = stats.ModeInt(rounded)
		}
		for i := prev; i < bp; i++ {
			shift[i] = float64(mode)
		}
		prev = bp
	}

	times := make([]time.Time, n)
	copy(times, eventMinutes.Times)
	shifted := make([]bool, n)
	for i, s := range shift {
		shifted[i] = s != 0
	}
	amounts := &timeseries.Series{Times: times, Values: shift}
	mask := &timeseries.Mask{Times: append([]time.Time(nil), times...), Values: shifted}
	return mask, amounts, nil
}

// timeShiftBreakpoints runs the exact penalized search on the raw
// difference signal. Missing differences are zero-filled for the search
// only. The result always covers the full series.
func timeShiftBreakpoints(diff []float64, cfg TimeShiftConfig) ([]int, error) {
	signal := make([]float64, len(diff))
	for i, v := range diff {
		if !math.IsNaN(v) {
			signal[i] = v
		}
	}
	pelt, err := changepoint.NewPelt(changepoint.CostRBF, cfg.PeriodMin, 1)
	if err != nil {
		return nil, err
	}
	if err := pelt.Fit(signal); err != nil {
		return nil, fmt.Errorf("changepoint search: %w", err)
	}
	breakpoints, err := pelt.Predict(cfg.PredictionPenalty)
	if err != nil {
		return nil, fmt.Errorf("changepoint search: %w", err)
	}
	if len(breakpoints) == 0 || breakpoints[len(breakpoints)-1] != len(diff) {
		breakpoints = append(breakpoints, len(diff))
	}
	return breakpoints, nil
}

// roundShift rounds a difference to a multiple of shiftMin minutes,
// rounding the magnitude up when its remainder exceeds roundUpFrom and
// down otherwise. The sign is preserved.
func roundShift(diff float64, shiftMin, roundUpFrom int) int {
	magnitude := math.Abs(diff)
	quotient := int(magnitude) / shiftMin
	remainder := magnitude - float64(quotient*shiftMin)
	rounded := quotient * shiftMin
	if remainder > float64(roundUpFrom) {
		rounded += shiftMin
	}
	if diff < 0 {
		return -rounded
	}
	return rounded
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
