package stats

import (
	"math"
	"testing"
)

func TestMedian(t *testing.T) {
	cases := []struct {
		in   []float64
		want float64
	}{
		{[]float64{3, 1, 2}, 2},
		{[]float64{1, 2, 3, 4}, 2.5},
		{[]float64{5}, 5},
		{[]float64{1, math.NaN(), 3}, 2},
	}
	for _, tc := range cases {
		if got := Median(tc.in); got != tc.want {
			t.Errorf("Median(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
	if !math.IsNaN(Median(nil)) {
		t.Error("Median(nil) should be NaN")
	}
	if !math.IsNaN(Median([]float64{math.NaN()})) {
		t.Error("Median of all-NaN should be NaN")
	}
}

func TestMinMaxNormalize(t *testing.T) {
	got := MinMaxNormalize([]float64{10, 20, 30})
	want := []float64{0, 0.5, 1}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("index %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestMinMaxNormalizeConstant(t *testing.T) {
	for _, v := range MinMaxNormalize([]float64{7, 7, 7}) {
		if !math.IsNaN(v) {
			t.Error("constant input should normalize to NaN")
		}
	}
}

func TestMinMaxNormalizeKeepsNaN(t *testing.T) {
	got := MinMaxNormalize([]float64{0, math.NaN(), 10})
	if !math.IsNaN(got[1]) {
		t.Error("NaN input should stay NaN")
	}
	if got[2] != 1 {
		t.Errorf("got %v, want 1", got[2])
	}
}

func TestModeInt(t *testing.T) {
	cases := []struct {
		in   []int
		want int
	}{
		{[]int{1, 2, 2, 3}, 2},
		{[]int{5}, 5},
		{[]int{3, 1, 1, 3}, 3}, // tie resolves to the earliest first occurrence
		{[]int{-60, -60, 0}, -60},
	}
	for _, tc := range cases {
		if got := ModeInt(tc.in); got != tc.want {
			t.Errorf("ModeInt(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestPopStdDev(t *testing.T) {
	got := PopStdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if math.Abs(got-2) > 1e-12 {
		t.Errorf("got %v, want 2", got)
	}
}

func TestQuantileTails(t *testing.T) {
	xs := make([]float64, 100)
	for i := range xs {
		xs[i] = float64(i + 1)
	}
	lo := Quantile(0.01, xs)
	hi := Quantile(0.99, xs)
	if lo > 2 || lo < 1 {
		t.Errorf("1%% quantile %v out of range", lo)
	}
	if hi < 98 || hi > 100 {
		t.Errorf("99%% quantile %v out of range", hi)
	}
}
