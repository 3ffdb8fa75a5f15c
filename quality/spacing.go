package quality

import (
	"time"

	"pv-quality-lab/timeseries"
)

// Spacing returns true where the gap to the preceding timestamp equals
// freq. The first sample has no preceding gap and is always true.
func Spacing(times []time.Time, freq time.Duration) []bool {
	out := make([]bool, len(times))
	if len(times) == 0 {
		return out
	}
	out[0] = true
	for i := 1; i < len(times); i++ {
		out[i] = times[i].Sub(times[i-1]) == freq
	}
	return out
}

// SpacingMask is Spacing fanned into a Mask over the same index.
func SpacingMask(times []time.Time, freq time.Duration) *timeseries.Mask {
	return &timeseries.Mask{Times: copyTimes(times), Values: Spacing(times, freq)}
}
