// Package changepoint implements penalized changepoint search over 1-D
// numeric signals. Three search strategies are provided: exact penalized
// search (Pelt), hierarchical bottom-up merging (BottomUp), and a
// fixed-width sliding window (Window). Each runs over a pluggable
// segment cost model (RBF kernel or L2).
//
// All searchers share one breakpoint convention: Predict returns strictly
// increasing right-edge segment indices into the fitted signal, always
// ending with len(signal) as a sentinel.
package changepoint

import (
	"errors"
	"fmt"
)

// Errors returned by the factory and searchers.
var (
	// ErrUnknownMethod is returned for an unrecognized search method name.
	ErrUnknownMethod = errors.New("unknown changepoint search method")

	// ErrUnknownCost is returned for an unrecognized cost model name.
	ErrUnknownCost = errors.New("unknown changepoint cost model")

	// ErrNotFitted is returned when Predict is called before Fit.
	ErrNotFitted = errors.New("searcher has not been fitted to a signal")

	// ErrSignalTooShort is returned when the signal cannot hold a single
	// segment of the configured minimum size.
	ErrSignalTooShort = errors.New("signal shorter than minimum segment size")
)

// Searcher is the capability interface exposed to callers: fit a signal
// once, then extract breakpoints for a given penalty.
type Searcher interface {
	// Fit prepares the searcher for the given signal. The signal is
	// copied; later mutation by the caller has no effect.
	Fit(signal []float64) error

	// Predict returns the breakpoints for the given penalty, sorted
	// ascending and ending with len(signal) as a sentinel.
	Predict(penalty float64) ([]int, error)
}

// Method names a search strategy accepted by New.
type Method string

// Supported search strategies.
const (
	MethodPelt     Method = "pelt"
	MethodBottomUp Method = "bottomup"
	MethodWindow   Method = "window"
)

// Cost model names accepted by New.
const (
	CostRBF = "rbf"
	CostL2  = "l2"
)

// Options tunes a searcher constructed by New. Zero values select the
// defaults documented on each field.
type Options struct {
	// MinSize is the minimum segment length. Default 2.
	MinSize int

	// Jump restricts admissible breakpoints to multiples of Jump.
	// Default 5.
	Jump int

	// Width is the sliding-window width for MethodWindow. Default 100.
	Width int
}

func (o Options) withDefaults() Options {
	if o.MinSize == 0 {
		o.MinSize = 2
	}
	if o.Jump == 0 {
		o.Jump = 5
	}
	if o.Width == 0 {
		o.Width = 100
	}
	return o
}

// New builds a searcher for the given method and cost model. Unknown
// method or cost names fail immediately rather than at search time.
func New(method Method, cost string, opts Options) (Searcher, error) {
	costFn, err := newCost(cost)
	if err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	switch method {
	case MethodPelt:
		return &Pelt{cost: costFn, minSize: opts.MinSize, jump: opts.Jump}, nil
	case MethodBottomUp:
		return &BottomUp{cost: costFn, minSize: opts.MinSize, jump: opts.Jump}, nil
	case MethodWindow:
		return &Window{cost: costFn, width: opts.Width, jump: opts.Jump}, nil
	default:
		return nil, fmt.Errorf("%q: %w", method, ErrUnknownMethod)
	}
}
