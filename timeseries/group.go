package timeseries

import (
	"time"

	"pv-quality-lab/internal/stats"
)

// DayRange identifies one calendar-day bucket of a sorted index as the
// half-open sample range [Start, End). Date is midnight in the zone the
// timestamps carry.
type DayRange struct {
	Date  time.Time
	Start int
	End   int
}

// Days partitions a sorted index into calendar-day buckets. Day boundaries
// follow the timestamps' own location.
func Days(times []time.Time) []DayRange {
	var days []DayRange
	for i := range times {
		d := midnight(times[i])
		if len(days) == 0 || !days[len(days)-1].Date.Equal(d) {
			days = append(days, DayRange{Date: d, Start: i, End: i + 1})
			continue
		}
		days[len(days)-1].End = i + 1
	}
	return days
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// RunLengths returns, for each element, the length of the contiguous run
// of equal values it belongs to.
//
//	RunLengths([true, false, false, true, true, false]) = [1, 2, 2, 2, 2, 1]
func RunLengths(values []bool) []int {
	lengths := make([]int, len(values))
	start := 0
	for i := 1; i <= len(values); i++ {
		if i == len(values) || values[i] != values[start] {
			for j := start; j < i; j++ {
				lengths[j] = i - start
			}
			start = i
		}
	}
	return lengths
}

// MinuteOfDay returns the minute of the day (0..1439) of a timestamp.
func MinuteOfDay(t time.Time) int { return t.Hour()*60 + t.Minute() }

// RollingMedianByMinute computes, for each sample, the median of the
// values sharing the sample's minute of day within a centered window of
// `days` occurrences of that minute. Windows are clamped at the ends of
// the series (minimum one occurrence). NaN values are ignored within each
// window.
func RollingMedianByMinute(times []time.Time, values []float64, days int) []float64 {
	result := make([]float64, len(values))
	forEachMinuteWindow(times, days, func(i int, window []int) {
		vals := make([]float64, 0, len(window))
		for _, j := range window {
			vals = append(vals, values[j])
		}
		result[i] = stats.Median(vals)
	})
	return result
}

// RollingMeanByMinute is RollingMedianByMinute with the mean instead of
// the median.
func RollingMeanByMinute(times []time.Time, values []float64, days int) []float64 {
	result := make([]float64, len(values))
	forEachMinuteWindow(times, days, func(i int, window []int) {
		vals := make([]float64, 0, len(window))
		for _, j := range window {
			vals = append(vals, values[j])
		}
		result[i] = stats.Mean(vals)
	})
	return result
}

// RollingMajorityByMinute computes, for each sample, the strict-majority
// truth value of a boolean series at the sample's minute of day within a
// centered window of `days` occurrences. Exact 50% ties resolve to false.
func RollingMajorityByMinute(times []time.Time, values []bool, days int) []bool {
	result := make([]bool, len(values))
	forEachMinuteWindow(times, days, func(i int, window []int) {
		trues := 0
		for _, j := range window {
			if values[j] {
				trues++
			}
		}
		result[i] = 2*trues > len(window)
	})
	return result
}

// forEachMinuteWindow groups sample indices by minute of day and visits
// each sample with its centered window of surrounding occurrences. For a
// window of w occurrences centered on occurrence i the window covers
// occurrences [i - w/2, i + (w-1)/2], clamped to the group bounds.
func forEachMinuteWindow(times []time.Time, days int, visit func(i int, window []int)) {
	groups := make(map[int][]int)
	for i, t := range times {
		m := MinuteOfDay(t)
		groups[m] = append(groups[m], i)
	}
	for _, group := range groups {
		for k, i := range group {
			lo := k - days/2
			if lo < 0 {
				lo = 0
			}
			hi := k + (days-1)/2
			if hi > len(group)-1 {
				hi = len(group) - 1
			}
			visit(i, group[lo:hi+1])
		}
	}
}
