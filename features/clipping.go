package features

import (
	"math"
	"sort"
	"time"

	"pv-quality-lab/internal/stats"
	"pv-quality-lab/timeseries"
)

// ClippingLevelsConfig tunes Levels.
type ClippingLevelsConfig struct {
	// Window is the number of samples examined for plateau membership.
	Window int

	// FractionInWindow is the fraction of a window that must sit on a
	// plateau for the window to indicate clipping.
	FractionInWindow float64

	// RTol sets the plateau width: a point is on a plateau level M when
	// it falls within the histogram bin of width RTol * max(acPower)
	// containing M.
	RTol float64

	// Levels is how many clipped power levels to consider.
	Levels int
}

// DefaultClippingLevelsConfig returns the tuning for 15-minute AC power.
func DefaultClippingLevelsConfig() ClippingLevelsConfig {
	return ClippingLevelsConfig{
		Window:           4,
		FractionInWindow: 0.75,
		RTol:             5e-3,
		Levels:           2,
	}
}

// Levels labels inverter clipping in AC power data by finding the most
// populated plateau levels of the power histogram and flagging windows
// that dwell on them.
func Levels(acPower *timeseries.Series, cfg ClippingLevelsConfig) *timeseries.Mask {
	numBins := int(math.Ceil(1.0 / cfg.RTol))
	plateaus := detectLevels(acPower.Values, cfg.Levels, numBins)

	flags := make([]bool, acPower.Len())
	for _, plateau := range plateaus {
		onPlateau := make([]bool, acPower.Len())
		for i, v := range acPower.Values {
			onPlateau[i] = v >= plateau.left && v <= plateau.right
		}
		labelClipping(flags, onPlateau, cfg.Window, cfg.FractionInWindow)
	}
	times := make([]time.Time, acPower.Len())
	copy(times, acPower.Times)
	return &timeseries.Mask{Times: times, Values: flags}
}

type plateau struct {
	left, right float64
}

// detectLevels finds the `count` most populated histogram bins, in
// decreasing order of population. Ties resolve to the lower bin.
func detectLevels(values []float64, count, numBins int) []plateau {
	clean := stats.DropNaN(values)
	if len(clean) == 0 || numBins < 1 {
		return nil
	}
	lo, hi := stats.MinMax(clean)
	width := (hi - lo) / float64(numBins)
	if width == 0 {
		return []plateau{{left: lo, right: hi}}
	}
	hist := make([]int, numBins)
	for _, v := range clean {
		bin := int((v - lo) / width)
		if bin == numBins {
			bin = numBins - 1
		}
		hist[bin]++
	}
	order := make([]int, numBins)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return hist[order[i]] > hist[order[j]]
	})
	if count > numBins {
		count = numBins
	}
	plateaus := make([]plateau, 0, count)
	for _, bin := range order[:count] {
		plateaus = append(plateaus, plateau{
			left:  lo + float64(bin)*width,
			right: lo + float64(bin+1)*width,
		})
	}
	return plateaus
}

// labelClipping ORs into flags the samples that sit on the plateau inside
// a trailing window where at least window*frac samples do.
func labelClipping(flags, onPlateau []bool, window int, frac float64) {
	need := float64(window) * frac
	count := 0
	for i := range onPlateau {
		if onPlateau[i] {
			count++
		}
		if i >= window && onPlateau[i-window] {
			count--
		}
		if i >= window-1 && float64(count) >= need && onPlateau[i] {
			flags[i] = true
		}
	}
}

// ClippingThresholdConfig tunes Threshold.
type ClippingThresholdConfig struct {
	// ClipDerivative is the largest per-interval derivative of the
	// normalized daytime power curve that still indicates clipping.
	ClipDerivative float64

	// Freq is the sampling interval. Zero means infer it from the index.
	Freq time.Duration
}

// DefaultClippingThresholdConfig returns the empirically derived tuning.
func DefaultClippingThresholdConfig() ClippingThresholdConfig {
	return ClippingThresholdConfig{ClipDerivative: 0.0035}
}

// Threshold labels clipping from a maximum-power threshold derived from
// the data: the 99.5% quantile of power grouped by minute of day forms a
// daytime power curve, and a sustained flat stretch of that curve (at
// least an hour with near-zero derivative, above 75% of the curve's
// median) marks the clipping level. Power at or above the level is
// clipped. Without such a stretch nothing is flagged.
func Threshold(acPower *timeseries.Series, cfg ClippingThresholdConfig) (*timeseries.Mask, error) {
	freq := cfg.Freq
	if freq == 0 {
		inferred, err := timeseries.InferFrequency(acPower.Times)
		if err != nil {
			return nil, err
		}
		freq = inferred
	}

	level, found := clippingPower(acPower, freq, cfg.ClipDerivative)
	flags := make([]bool, acPower.Len())
	if found {
		for i, v := range acPower.Values {
			flags[i] = v >= level
		}
	}
	times := make([]time.Time, acPower.Len())
	copy(times, acPower.Times)
	return &timeseries.Mask{Times: times, Values: flags}, nil
}

// daytimePowerCurve returns the 99.5% quantile of power for each daytime
// minute of day, in minute order. Daytime minutes are those whose count
// of positive-power samples exceeds the 25th percentile of counts.
func daytimePowerCurve(acPower *timeseries.Series) (minutes []int, curve []float64) {
	byMinute := make(map[int][]float64)
	positive := make(map[int]float64)
	for i, t := range acPower.Times {
		m := timeseries.MinuteOfDay(t)
		byMinute[m] = append(byMinute[m], acPower.Values[i])
		if acPower.Values[i] > 0 {
			positive[m]++
		}
	}
	allMinutes := make([]int, 0, len(byMinute))
	counts := make([]float64, 0, len(byMinute))
	for m := range byMinute {
		allMinutes = append(allMinutes, m)
	}
	sort.Ints(allMinutes)
	for _, m := range allMinutes {
		counts = append(counts, positive[m])
	}
	cutoff := stats.Quantile(0.25, counts)
	for _, m := range allMinutes {
		if positive[m] > cutoff {
			minutes = append(minutes, m)
			curve = append(curve, stats.Quantile(0.995, byMinute[m]))
		}
	}
	return minutes, curve
}

// clippingPower returns the clipping power level, or found=false when the
// flat stretch of the daytime power curve is shorter than an hour.
func clippingPower(acPower *timeseries.Series, freq time.Duration, clipDerivative float64) (float64, bool) {
	minutes, curve := daytimePowerCurve(acPower)
	if len(curve) == 0 {
		return 0, false
	}
	_, max := stats.MinMax(curve)
	median := stats.Median(curve)
	freqMinutes := freq.Minutes()

	// Derivative of the normalized curve per sampling interval.
	best, bestSum := 0, 0.0
	count, sum := 0, 0.0
	for i, power := range curve {
		derivative := math.NaN()
		if i > 0 {
			derivative = (curve[i] - curve[i-1]) / max /
				float64(minutes[i]-minutes[i-1]) * freqMinutes
		}
		if math.Abs(derivative) <= clipDerivative && power > median*0.75 {
			count++
			sum += power
		} else {
			if count > best {
				best = count
				bestSum = sum
			}
			count = 0
			sum = 0.0
		}
	}
	if count > best {
		best = count
		bestSum = sum
	}
	if float64(best)*freqMinutes >= 60 {
		return bestSum / float64(best), true
	}
	return 0, false
}
