package timeseries

import (
	"errors"
	"testing"
	"time"
)

func minuteIndex(start time.Time, step time.Duration, n int) []time.Time {
	times := make([]time.Time, n)
	for i := range times {
		times[i] = start.Add(time.Duration(i) * step)
	}
	return times
}

func TestInferFrequencyRegular(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	freq, err := InferFrequency(minuteIndex(start, 15*time.Minute, 96))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if freq != 15*time.Minute {
		t.Fatalf("got %v, want 15m", freq)
	}
}

func TestInferFrequencyWithGaps(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	times := minuteIndex(start, time.Hour, 10)
	// One missing sample: a single 2h gap should not disturb inference.
	times = append(times[:5], times[6:]...)
	freq, err := InferFrequency(times)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if freq != time.Hour {
		t.Fatalf("got %v, want 1h", freq)
	}
}

func TestInferFrequencyIrregular(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	times := []time.Time{
		start,
		start.Add(1 * time.Minute),
		start.Add(3 * time.Minute),
		start.Add(8 * time.Minute),
		start.Add(9 * time.Minute),
		start.Add(14 * time.Minute),
	}
	_, err := InferFrequency(times)
	if !errors.Is(err, ErrNoDominantFrequency) {
		t.Fatalf("got %v, want ErrNoDominantFrequency", err)
	}
}

func TestInferFrequencyTooShort(t *testing.T) {
	_, err := InferFrequency([]time.Time{time.Now()})
	if !errors.Is(err, ErrNoDominantFrequency) {
		t.Fatalf("got %v, want ErrNoDominantFrequency", err)
	}
}

func TestInferFrequencyEvenSplit(t *testing.T) {
	// Half the gaps are 1m, half 2m: no strict majority.
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	times := []time.Time{
		start,
		start.Add(1 * time.Minute),
		start.Add(3 * time.Minute),
		start.Add(4 * time.Minute),
		start.Add(6 * time.Minute),
	}
	_, err := InferFrequency(times)
	if !errors.Is(err, ErrNoDominantFrequency) {
		t.Fatalf("got %v, want ErrNoDominantFrequency", err)
	}
}
