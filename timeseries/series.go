// Package timeseries defines the ordered sample series and mask types
// shared by the quality and features packages, along with frequency
// inference, calendar-day grouping, and per-minute rolling statistics.
package timeseries

import (
	"errors"
	"math"
	"time"
)

// Errors returned by series constructors and frequency inference.
var (
	// ErrLengthMismatch is returned when timestamps and values differ in length.
	ErrLengthMismatch = errors.New("timestamps and values must have the same length")

	// ErrNoDominantFrequency is returned when no single inter-sample gap
	// accounts for a strict majority of the gaps in the index.
	ErrNoDominantFrequency = errors.New("no dominant sampling frequency")

	// ErrEmptySeries is returned for operations that need at least one sample.
	ErrEmptySeries = errors.New("series is empty")
)

// Series is an ordered sequence of (timestamp, value) samples.
// Missing values are represented as NaN. Timestamps are expected to be
// strictly increasing; functions that require ordering check it explicitly.
type Series struct {
	Times  []time.Time
	Values []float64
}

// NewSeries builds a series from parallel timestamp and value slices.
// The slices are retained, not copied.
func NewSeries(times []time.Time, values []float64) (*Series, error) {
	if len(times) != len(values) {
		return nil, ErrLengthMismatch
	}
	return &Series{Times: times, Values: values}, nil
}

// Len returns the number of samples.
func (s *Series) Len() int { return len(s.Values) }

// Clone returns a deep copy. Algorithms clone their input before any
// in-place work so the caller's series is never mutated.
func (s *Series) Clone() *Series {
	times := make([]time.Time, len(s.Times))
	values := make([]float64, len(s.Values))
	copy(times, s.Times)
	copy(values, s.Values)
	return &Series{Times: times, Values: values}
}

// IsSorted reports whether timestamps are strictly increasing.
func (s *Series) IsSorted() bool {
	for i := 1; i < len(s.Times); i++ {
		if !s.Times[i].After(s.Times[i-1]) {
			return false
		}
	}
	return true
}

// AllMissing reports whether every value is NaN.
func (s *Series) AllMissing() bool {
	for _, v := range s.Values {
		if !math.IsNaN(v) {
			return false
		}
	}
	return true
}

// Mask is a boolean series aligned 1:1 with the timestamps of the series
// it was derived from.
type Mask struct {
	Times  []time.Time
	Values []bool
}

// NewMask builds a mask from parallel slices. The slices are retained.
func NewMask(times []time.Time, values []bool) (*Mask, error) {
	if len(times) != len(values) {
		return nil, ErrLengthMismatch
	}
	return &Mask{Times: times, Values: values}, nil
}

// Len returns the number of samples.
func (m *Mask) Len() int { return len(m.Values) }

// Clone returns a deep copy of the mask.
func (m *Mask) Clone() *Mask {
	times := make([]time.Time, len(m.Times))
	values := make([]bool, len(m.Values))
	copy(times, m.Times)
	copy(values, m.Values)
	return &Mask{Times: times, Values: values}
}

// Count returns the number of true values.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.Values {
		if v {
			n++
		}
	}
	return n
}

// TimestampSeries is a series whose values are themselves timestamps
// (per-day sunrise/sunset instants fanned out over every sample of the
// day). The zero time marks a missing value.
type TimestampSeries struct {
	Times  []time.Time
	Values []time.Time
}

// Len returns the number of samples.
func (t *TimestampSeries) Len() int { return len(t.Values) }
