package changepoint

import (
	"fmt"
	"math"
	"sort"
)

// costModel scores the homogeneity of signal segments. Lower is more
// homogeneous. Segments are half-open index ranges [start, end).
type costModel interface {
	fit(signal []float64)
	segment(start, end int) float64
}

func newCost(name string) (costModel, error) {
	switch name {
	case CostRBF:
		return &costRBF{}, nil
	case CostL2:
		return &costL2{}, nil
	default:
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownCost)
	}
}

// costL2 scores a segment by its summed squared deviation from the
// segment mean, via prefix sums.
type costL2 struct {
	sum   []float64 // sum[i] = sum of signal[:i]
	sumSq []float64
}

func (c *costL2) fit(signal []float64) {
	n := len(signal)
	c.sum = make([]float64, n+1)
	c.sumSq = make([]float64, n+1)
	for i, v := range signal {
		c.sum[i+1] = c.sum[i] + v
		c.sumSq[i+1] = c.sumSq[i] + v*v
	}
}

func (c *costL2) segment(start, end int) float64 {
	n := float64(end - start)
	if n <= 0 {
		return 0
	}
	s := c.sum[end] - c.sum[start]
	sq := c.sumSq[end] - c.sumSq[start]
	return sq - s*s/n
}

// costRBF scores a segment with a Gaussian-kernel variance criterion:
//
//	c(a, b) = (b - a) - (1 / (b - a)) * sum_{i,j in [a,b)} K(i, j)
//
// where K(i, j) = exp(-gamma * (x_i - x_j)^2) and gamma is chosen by the
// median heuristic over pairwise squared distances. A 2-D prefix sum over
// the Gram matrix makes each segment evaluation O(1) after an O(n^2) fit.
type costRBF struct {
	n      int
	prefix []float64 // (n+1) x (n+1) prefix sums of the Gram matrix
}

func (c *costRBF) fit(signal []float64) {
	n := len(signal)
	c.n = n
	gamma := rbfBandwidth(signal)
	c.prefix = make([]float64, (n+1)*(n+1))
	w := n + 1
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			d := signal[i] - signal[j]
			k := math.Exp(-gamma * d * d)
			c.prefix[(i+1)*w+j+1] = k +
				c.prefix[i*w+j+1] + c.prefix[(i+1)*w+j] - c.prefix[i*w+j]
		}
	}
}

// rbfBandwidth returns 1/median of the pairwise squared distances, or 1
// when the median is zero (constant signal).
func rbfBandwidth(signal []float64) float64 {
	n := len(signal)
	if n < 2 {
		return 1
	}
	dists := make([]float64, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := signal[i] - signal[j]
			dists = append(dists, d*d)
		}
	}
	sort.Float64s(dists)
	median := dists[len(dists)/2]
	if median == 0 {
		return 1
	}
	return 1 / median
}

func (c *costRBF) segment(start, end int) float64 {
	n := float64(end - start)
	if n <= 0 {
		return 0
	}
	w := c.n + 1
	gram := c.prefix[end*w+end] - c.prefix[start*w+end] -
		c.prefix[end*w+start] + c.prefix[start*w+start]
	return n - gram/n
}
