package changepoint

import "sort"

// Window is a fixed-width sliding-window search. At each admissible index
// it scores the gain of splitting the surrounding window in two; local
// score maxima become breakpoint candidates and are accepted, best first,
// while splitting the enclosing segment improves the total cost by more
// than the penalty.
type Window struct {
	cost  costModel
	width int
	jump  int

	n      int
	fitted bool
}

// NewWindow builds a sliding-window searcher over the named cost model.
func NewWindow(cost string, width, jump int) (*Window, error) {
	costFn, err := newCost(cost)
	if err != nil {
		return nil, err
	}
	if width < 2 {
		width = 2
	}
	if jump < 1 {
		jump = 1
	}
	return &Window{cost: costFn, width: width, jump: jump}, nil
}

// Fit prepares the searcher for the given signal.
func (w *Window) Fit(signal []float64) error {
	if len(signal) < w.width {
		return ErrSignalTooShort
	}
	w.cost.fit(signal)
	w.n = len(signal)
	w.fitted = true
	return nil
}

// Predict returns the breakpoints for the given penalty.
func (w *Window) Predict(penalty float64) ([]int, error) {
	if !w.fitted {
		return nil, ErrNotFitted
	}
	half := w.width / 2

	// Split gain of the window centered at each admissible index.
	score := make(map[int]float64)
	var order []int
	for t := half; t <= w.n-half; t += w.jump {
		score[t] = w.cost.segment(t-half, t+half) -
			w.cost.segment(t-half, t) - w.cost.segment(t, t+half)
		order = append(order, t)
	}

	// Keep local maxima of the score only: a peak must dominate every
	// admissible index within half a window on either side.
	var peaks []int
	for _, t := range order {
		isPeak := true
		for _, u := range order {
			if u == t || u < t-half || u > t+half {
				continue
			}
			if score[u] > score[t] {
				isPeak = false
				break
			}
		}
		if isPeak {
			peaks = append(peaks, t)
		}
	}

	// Consider peaks in decreasing window-score order (ties to the
	// lowest index) and accept each while splitting its enclosing
	// segment lowers the total cost by more than the penalty.
	sort.SliceStable(peaks, func(i, j int) bool {
		if score[peaks[i]] != score[peaks[j]] {
			return score[peaks[i]] > score[peaks[j]]
		}
		return peaks[i] < peaks[j]
	})
	bounds := []int{0, w.n}
	for _, t := range peaks {
		i := sort.SearchInts(bounds, t)
		if bounds[i] == t || i == 0 {
			continue
		}
		lo, hi := bounds[i-1], bounds[i]
		gain := w.cost.segment(lo, hi) -
			w.cost.segment(lo, t) - w.cost.segment(t, hi)
		if gain > penalty {
			bounds = append(bounds, t)
			sort.Ints(bounds)
		}
	}
	return bounds[1:], nil
}
