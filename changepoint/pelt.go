package changepoint

// Pelt is the exact penalized changepoint search (Pruned Exact Linear
// Time). It minimizes the total segment cost plus a per-breakpoint
// penalty, pruning candidate segment starts that can no longer lead to an
// optimal partition.
type Pelt struct {
	cost    costModel
	minSize int
	jump    int

	n      int
	fitted bool
}

// NewPelt builds a Pelt searcher over the named cost model.
func NewPelt(cost string, minSize, jump int) (*Pelt, error) {
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
	return &Pelt{cost: costFn, minSize: minSize, jump: jump}, nil
}

// Fit prepares the searcher for the given signal.
func (p *Pelt) Fit(signal []float64) error {
	if len(signal) < p.minSize {
		return ErrSignalTooShort
	}
	p.cost.fit(signal)
	p.n = len(signal)
	p.fitted = true
	return nil
}

// Predict returns the optimal breakpoints for the given penalty.
func (p *Pelt) Predict(penalty float64) ([]int, error) {
	if !p.fitted {
		return nil, ErrNotFitted
	}
	// ends holds the admissible partition end positions: multiples of
	// jump plus the final index.
	ends := p.admissible()

	best := map[int]float64{0: -penalty}
	prev := make(map[int]int)
	// candidates are the unpruned segment-start positions.
	candidates := []int{0}

	for _, t := range ends {
		argmin := -1
		min := 0.0
		for _, s := range candidates {
			if t-s < p.minSize {
				continue
			}
			v := best[s] + p.cost.segment(s, t) + penalty
			if argmin == -1 || v < min {
				min = v
				argmin = s
			}
		}
		if argmin == -1 {
			continue
		}
		best[t] = min
		prev[t] = argmin

		// Prune starts that can never beat the current optimum.
		kept := candidates[:0]
		for _, s := range candidates {
			if t-s < p.minSize || best[s]+p.cost.segment(s, t) <= min {
				kept = append(kept, s)
			}
		}
		candidates = append(kept, t)
	}

	// Backtrack from the final index.
	var breakpoints []int
	for t := p.n; t != 0; t = prev[t] {
		breakpoints = append(breakpoints, t)
	}
	reverse(breakpoints)
	return breakpoints, nil
}

func (p *Pelt) admissible() []int {
	var ends []int
	for t := p.jump; t < p.n; t += p.jump {
		if t >= p.minSize {
			ends = append(ends, t)
		}
	}
	return append(ends, p.n)
}

func reverse(xs []int) {
	for i, j := 0, len(xs)-1; i < j; i, j = i+1, j-1 {
		xs[i], xs[j] = xs[j], xs[i]
	}
}
