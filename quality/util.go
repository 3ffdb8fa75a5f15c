package quality

import (
	"errors"
	"math"

	"pv-quality-lab/timeseries"
)

// ErrNoBounds is returned when a limit check is given neither bound.
var ErrNoBounds = errors.New("must provide an upper or a lower bound")

// Bound is one side of a limit check. Nil means unbounded on that side.
type Bound struct {
	Value     float64
	Inclusive bool
}

func (b *Bound) above(v float64) bool {
	if b == nil {
		return true
	}
	if b.Inclusive {
		return v >= b.Value
	}
	return v > b.Value
}

func (b *Bound) below(v float64) bool {
	if b == nil {
		return true
	}
	if b.Inclusive {
		return v <= b.Value
	}
	return v < b.Value
}

// CheckLimits returns true for each value between the given bounds. At
// least one bound must be provided. Missing values never pass.
func CheckLimits(values []float64, lower, upper *Bound) ([]bool, error) {
	if lower == nil && upper == nil {
		return nil, ErrNoBounds
	}
	out := make([]bool, len(values))
	for i, v := range values {
		out[i] = !math.IsNaN(v) && lower.above(v) && upper.below(v)
	}
	return out, nil
}

// DailyMin returns true for samples on days whose daily minimum exceeds
// minimum (or reaches it, when inclusive). Useful for finding days where
// a sensor never drops to a plausible overnight value.
func DailyMin(series *timeseries.Series, minimum float64, inclusive bool) *timeseries.Mask {
	values := make([]bool, series.Len())
	for _, dr := range timeseries.Days(series.Times) {
		dayMin := math.NaN()
		for i := dr.Start; i < dr.End; i++ {
			v := series.Values[i]
			if !math.IsNaN(v) && (math.IsNaN(dayMin) || v < dayMin) {
				dayMin = v
			}
		}
		pass := dayMin > minimum || (inclusive && dayMin == minimum)
		for i := dr.Start; i < dr.End; i++ {
			values[i] = pass
		}
	}
	return &timeseries.Mask{Times: copyTimes(series.Times), Values: values}
}
