package timeseries

import (
	"math"
	"testing"
	"time"
)

func TestRunLengths(t *testing.T) {
	got := RunLengths([]bool{true, false, false, true, true, false})
	want := []int{1, 2, 2, 2, 2, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: got %d, want %d", i, got[i], want[i])
		}
	}
}

func TestRunLengthsEmpty(t *testing.T) {
	if got := RunLengths(nil); len(got) != 0 {
		t.Fatalf("got %v, want empty", got)
	}
}

func TestDays(t *testing.T) {
	start := time.Date(2020, 6, 1, 22, 0, 0, 0, time.UTC)
	times := minuteIndex(start, time.Hour, 6) // 22:00 .. 03:00 next day
	days := Days(times)
	if len(days) != 2 {
		t.Fatalf("got %d days, want 2", len(days))
	}
	if days[0].Start != 0 || days[0].End != 2 {
		t.Fatalf("first day range [%d,%d), want [0,2)", days[0].Start, days[0].End)
	}
	if days[1].Start != 2 || days[1].End != 6 {
		t.Fatalf("second day range [%d,%d), want [2,6)", days[1].Start, days[1].End)
	}
	if !days[1].Date.Equal(time.Date(2020, 6, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("second day date %v", days[1].Date)
	}
}

func TestRollingMedianByMinute(t *testing.T) {
	// Five days, one sample per day at the same minute.
	start := time.Date(2020, 6, 1, 12, 0, 0, 0, time.UTC)
	times := minuteIndex(start, 24*time.Hour, 5)
	values := []float64{1, 2, 3, 4, 100}

	got := RollingMedianByMinute(times, values, 3)
	// Middle sample sees {2, 3, 4}.
	if got[2] != 3 {
		t.Fatalf("center: got %v, want 3", got[2])
	}
	// First sample's window clamps to {1, 2}.
	if got[0] != 1.5 {
		t.Fatalf("edge: got %v, want 1.5", got[0])
	}
}

func TestRollingMedianByMinuteIgnoresNaN(t *testing.T) {
	start := time.Date(2020, 6, 1, 12, 0, 0, 0, time.UTC)
	times := minuteIndex(start, 24*time.Hour, 3)
	values := []float64{1, math.NaN(), 5}
	got := RollingMedianByMinute(times, values, 3)
	if got[1] != 3 {
		t.Fatalf("got %v, want 3", got[1])
	}
}

func TestRollingMeanByMinute(t *testing.T) {
	start := time.Date(2020, 6, 1, 12, 0, 0, 0, time.UTC)
	times := minuteIndex(start, 24*time.Hour, 3)
	values := []float64{1, 2, 9}
	got := RollingMeanByMinute(times, values, 3)
	if got[1] != 4 {
		t.Fatalf("got %v, want 4", got[1])
	}
}

func TestRollingMajorityByMinute(t *testing.T) {
	start := time.Date(2020, 6, 1, 12, 0, 0, 0, time.UTC)
	times := minuteIndex(start, 24*time.Hour, 5)
	values := []bool{true, true, false, true, true}

	got := RollingMajorityByMinute(times, values, 5)
	for i, v := range got {
		if !v {
			t.Fatalf("index %d: got false, want true (4 of 5 are true)", i)
		}
	}
}

func TestRollingMajorityByMinuteTieIsFalse(t *testing.T) {
	start := time.Date(2020, 6, 1, 12, 0, 0, 0, time.UTC)
	times := minuteIndex(start, 24*time.Hour, 2)
	values := []bool{true, false}
	got := RollingMajorityByMinute(times, values, 2)
	// The second sample's full window is {true, false}: an exact tie.
	if got[1] {
		t.Fatal("got true, want false on an exact tie")
	}
}
