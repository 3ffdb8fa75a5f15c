package features

import (
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"pv-quality-lab/timeseries"
)

// SunnyDays returns true for samples on days that look sunny: the
// coefficient of determination of a quadratic fit to the day's daytime
// power (against minute of day) exceeds correlationMin. Tracking systems
// produce a flat-topped curve, so for them a quartic is fitted instead.
//
// The daytime mask should exclude early morning and evening as well as
// night; shadows at the edges of the day interfere with the fit without
// meaning the day was cloudy.
func SunnyDays(power *timeseries.Series, daytime *timeseries.Mask, correlationMin float64, tracking bool) (*timeseries.Mask, error) {
	if daytime.Len() != power.Len() {
		return nil, ErrMaskMismatch
	}
	degree := 2
	if tracking {
		degree = 4
	}

	flags := make([]bool, power.Len())
	for _, dr := range timeseries.Days(power.Times) {
		var xs, ys []float64
		for i := dr.Start; i < dr.End; i++ {
			if daytime.Values[i] && !math.IsNaN(power.Values[i]) {
				xs = append(xs, float64(timeseries.MinuteOfDay(power.Times[i])))
				ys = append(ys, power.Values[i])
			}
		}
		sunny := polyfitRSquared(xs, ys, degree) > correlationMin
		for i := dr.Start; i < dr.End; i++ {
			flags[i] = sunny
		}
	}
	times := make([]time.Time, power.Len())
	copy(times, power.Times)
	return &timeseries.Mask{Times: times, Values: flags}, nil
}

// polyfitRSquared fits a polynomial of the given degree by least squares
// and returns its r². Returns NaN when there are too few points or the
// response has no variance, so the comparison against correlationMin
// fails closed.
func polyfitRSquared(xs, ys []float64, degree int) float64 {
	n := len(xs)
	if n < degree+1 {
		return math.NaN()
	}
	// Vandermonde design matrix, scaled to [0, 1] for conditioning.
	lo, hi := xs[0], xs[0]
	for _, x := range xs {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	span := hi - lo
	if span == 0 {
		return math.NaN()
	}
	a := mat.NewDense(n, degree+1, nil)
	for i, x := range xs {
		t := (x - lo) / span
		v := 1.0
		for j := 0; j <= degree; j++ {
			a.Set(i, j, v)
			v *= t
		}
	}
	b := mat.NewVecDense(n, ys)

	var qr mat.QR
	qr.Factorize(a)
	var coef mat.VecDense
	if err := qr.SolveVecTo(&coef, false, b); err != nil {
		return math.NaN()
	}

	mean := stat.Mean(ys, nil)
	ssTot, ssRes := 0.0, 0.0
	for i, y := range ys {
		fit := 0.0
		t := (xs[i] - lo) / span
		v := 1.0
		for j := 0; j <= degree; j++ {
			fit += coef.AtVec(j) * v
			v *= t
		}
		ssRes += (y - fit) * (y - fit)
		ssTot += (y - mean) * (y - mean)
	}
	if ssTot == 0 {
		return math.NaN()
	}
	return 1 - ssRes/ssTot
}
