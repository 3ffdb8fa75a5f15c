package quality

import (
	"math"
	"time"

	"pv-quality-lab/internal/stats"
	"pv-quality-lab/timeseries"
)

// hampelScale converts a median absolute deviation into an estimate of
// the standard deviation for normally distributed data.
const hampelScale = 1.4826

// TukeyOutliers flags values outside k times the interquartile range
// beyond the first and third quartiles. k = 1.5 is the classic Tukey
// fence. Missing values are never outliers.
func TukeyOutliers(series *timeseries.Series, k float64) *timeseries.Mask {
	q1 := stats.Quantile(0.25, series.Values)
	q3 := stats.Quantile(0.75, series.Values)
	iqr := q3 - q1
	lower := q1 - k*iqr
	upper := q3 + k*iqr

	values := make([]bool, series.Len())
	for i, v := range series.Values {
		values[i] = v < lower || v > upper
	}
	return &timeseries.Mask{Times: copyTimes(series.Times), Values: values}
}

// ZScoreOutliers flags values whose absolute z-score exceeds zmax. The
// mean and standard deviation are computed over the non-missing values.
func ZScoreOutliers(series *timeseries.Series, zmax float64) *timeseries.Mask {
	mean := stats.Mean(series.Values)
	std := stats.PopStdDev(series.Values)

	values := make([]bool, series.Len())
	for i, v := range series.Values {
		values[i] = math.Abs((v-mean)/std) > zmax
	}
	return &timeseries.Mask{Times: copyTimes(series.Times), Values: values}
}

// HampelOutliers flags values deviating from the centered rolling median
// by more than maxDeviation scaled rolling median absolute deviations.
func HampelOutliers(series *timeseries.Series, window int, maxDeviation float64) *timeseries.Mask {
	n := series.Len()
	values := make([]bool, n)
	for i := 0; i < n; i++ {
		lo := i - window/2
		if lo < 0 {
			lo = 0
		}
		hi := i + (window-1)/2
		if hi > n-1 {
			hi = n - 1
		}
		segment := series.Values[lo : hi+1]
		median := stats.Median(segment)
		deviations := make([]float64, len(segment))
		for j, v := range segment {
			deviations[j] = math.Abs(v - median)
		}
		mad := stats.Median(deviations)
		values[i] = math.Abs(series.Values[i]-median) > maxDeviation*hampelScale*mad
	}
	return &timeseries.Mask{Times: copyTimes(series.Times), Values: values}
}

func copyTimes(times []time.Time) []time.Time {
	return append([]time.Time(nil), times...)
}
