package features

import (
	"errors"
	"fmt"
	"time"

	"pv-quality-lab/timeseries"
)

// Alignment describes which instant of the sampling interval a timestamp
// labels.
type Alignment string

// Supported timestamp alignments.
const (
	// AlignLeft labels the start of the interval.
	AlignLeft Alignment = "L"
	// AlignCenter labels the middle of the interval.
	AlignCenter Alignment = "C"
	// AlignRight labels the end of the interval.
	AlignRight Alignment = "R"
)

// ErrInvalidAlignment is returned for an unrecognized alignment value.
var ErrInvalidAlignment = errors.New("alignment must be L, C, or R")

// Sunrise derives a per-day sunrise timestamp from a daytime mask: the
// timestamp of the day's first daytime sample, adjusted for alignment,
// fanned out to every sample of the day. Days without a daytime sample
// carry the zero time. freq zero means infer from the index.
//
// For right-aligned data the first daytime timestamp labels the end of
// the first daylit interval, so sunrise is one interval earlier; for
// center-aligned data, half an interval earlier.
func Sunrise(daytime *timeseries.Mask, freq time.Duration, alignment Alignment) (*timeseries.TimestampSeries, error) {
	return dayEdge(daytime, freq, alignment, true)
}

// Sunset derives a per-day sunset timestamp from a daytime mask: the
// timestamp of the day's last daytime sample, adjusted for alignment,
// fanned out to every sample of the day.
//
// For left-aligned data the last daytime timestamp labels the start of
// the last daylit interval, so sunset is one interval later; for
// center-aligned data, half an interval later.
func Sunset(daytime *timeseries.Mask, freq time.Duration, alignment Alignment) (*timeseries.TimestampSeries, error) {
	return dayEdge(daytime, freq, alignment, false)
}

func dayEdge(daytime *timeseries.Mask, freq time.Duration, alignment Alignment, sunrise bool) (*timeseries.TimestampSeries, error) {
	switch alignment {
	case AlignLeft, AlignCenter, AlignRight:
	default:
		return nil, fmt.Errorf("%q: %w", alignment, ErrInvalidAlignment)
	}
	if freq == 0 {
		inferred, err := timeseries.InferFrequency(daytime.Times)
		if err != nil {
			return nil, err
		}
		freq = inferred
	}

	values := make([]time.Time, daytime.Len())
	for _, dr := range timeseries.Days(daytime.Times) {
		edge := time.Time{}
		if sunrise {
			for i := dr.Start; i < dr.End; i++ {
				if daytime.Values[i] {
					edge = adjustSunrise(daytime.Times[i], freq, alignment)
					break
				}
			}
		} else {
			for i := dr.End - 1; i >= dr.Start; i-- {
				if daytime.Values[i] {
					edge = adjustSunset(daytime.Times[i], freq, alignment)
					break
				}
			}
		}
		for i := dr.Start; i < dr.End; i++ {
			values[i] = edge
		}
	}
	times := make([]time.Time, daytime.Len())
	copy(times, daytime.Times)
	return &timeseries.TimestampSeries{Times: times, Values: values}, nil
}

func adjustSunrise(t time.Time, freq time.Duration, alignment Alignment) time.Time {
	switch alignment {
	case AlignRight:
		return t.Add(-freq)
	case AlignCenter:
		return t.Add(-freq / 2)
	default:
		return t
	}
}

func adjustSunset(t time.Time, freq time.Duration, alignment Alignment) time.Time {
	switch alignment {
	case AlignLeft:
		return t.Add(freq)
	case AlignCenter:
		return t.Add(freq / 2)
	default:
		return t
	}
}
