package changepoint

// BottomUp is a hierarchical merging search. It starts from a fine
// segmentation with a boundary at every jump-th index and repeatedly
// removes the boundary whose removal increases the total cost the least,
// stopping once every remaining removal would cost more than the penalty.
type BottomUp struct {
	cost    costModel
	minSize int
	jump    int

	n      int
	fitted bool
}

// NewBottomUp builds a BottomUp searcher over the named cost model.
func NewBottomUp(cost string, minSize, jump int) (*BottomUp, error) {
	costFn, err := newCost(cost)
	if err != nil {
		return nil, err
	}
	if minSize < 1 {
		minSize = 1
	}
	if jump < 1 {
		jump = 1
	}
	return &BottomUp{cost: costFn, minSize: minSize, jump: jump}, nil
}

// Fit prepares the searcher for the given signal.
func (b *BottomUp) Fit(signal []float64) error {
	if len(signal) < b.minSize {
		return ErrSignalTooShort
	}
	b.cost.fit(signal)
	b.n = len(signal)
	b.fitted = true
	return nil
}

// Predict returns the breakpoints surviving merges for the given penalty.
func (b *BottomUp) Predict(penalty float64) ([]int, error) {
	if !b.fitted {
		return nil, ErrNotFitted
	}
	// Initial boundaries at every jump-th index, final index as sentinel.
	bounds := []int{0}
	for t := b.jump; t < b.n; t += b.jump {
		if t-bounds[len(bounds)-1] >= b.minSize && b.n-t >= b.minSize {
			bounds = append(bounds, t)
		}
	}
	bounds = append(bounds, b.n)

	for len(bounds) > 2 {
		// Find the interior boundary with the cheapest removal. Ties
		// resolve to the lowest index.
		argmin := -1
		min := 0.0
		for i := 1; i < len(bounds)-1; i++ {
			gain := b.cost.segment(bounds[i-1], bounds[i+1]) -
				b.cost.segment(bounds[i-1], bounds[i]) -
				b.cost.segment(bounds[i], bounds[i+1])
			if argmin == -1 || gain < min {
				min = gain
				argmin = i
			}
		}
		if min > penalty {
			break
		}
		bounds = append(bounds[:argmin], bounds[argmin+1:]...)
	}
	return bounds[1:], nil
}
