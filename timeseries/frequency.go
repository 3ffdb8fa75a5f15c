package timeseries

import (
	"fmt"
	"time"
)

// Day is the nominal spacing of a daily-sampled series.
const Day = 24 * time.Hour

// InferFrequency returns the dominant inter-sample gap of a sorted index.
// The dominant gap must account for a strict majority of all gaps;
// otherwise the index is considered irregular and ErrNoDominantFrequency
// is returned. Ties on gap count resolve to the smaller gap.
func InferFrequency(times []time.Time) (time.Duration, error) {
	if len(times) < 2 {
		return 0, fmt.Errorf("need at least two timestamps: %w", ErrNoDominantFrequency)
	}
	counts := make(map[time.Duration]int)
	for i := 1; i < len(times); i++ {
		counts[times[i].Sub(times[i-1])]++
	}
	var best time.Duration
	bestCount := 0
	for gap, count := range counts {
		if count > bestCount || (count == bestCount && gap < best) {
			best = gap
			bestCount = count
		}
	}
	if 2*bestCount <= len(times)-1 {
		return 0, ErrNoDominantFrequency
	}
	return best, nil
}
