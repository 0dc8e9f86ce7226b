package hrv

import "math"

const outlierZThreshold = 3.0

// Clean removes RR outliers beyond three standard deviations from the mean
// and fills the removed positions by linear interpolation over the
// surviving neighbours, extrapolating at the edges. The returned slice has
// the same length as the input; the input is never mutated.
func Clean(rr []float64) []float64 {
	out := append([]float64(nil), rr...)
	if len(rr) < 3 {
		return out
	}

	var sum float64
	for _, v := range rr {
		sum += v
	}
	mean := sum / float64(len(rr))
	var ss float64
	for _, v := range rr {
		d := v - mean
		ss += d * d
	}
	std := math.Sqrt(ss / float64(len(rr)))
	if std == 0 {
		return out
	}

	keep := make([]bool, len(rr))
	kept := 0
	for i, v := range rr {
		if math.Abs(v-mean)/std < outlierZThreshold {
			keep[i] = true
			kept++
		}
	}
	if kept == len(rr) || kept < 2 {
		return out
	}

	// Collect surviving points as (index, value) knots.
	xs := make([]float64, 0, kept)
	ys := make([]float64, 0, kept)
	for i, ok := range keep {
		if ok {
			xs = append(xs, float64(i))
			ys = append(ys, rr[i])
		}
	}

	for i := range out {
		if keep[i] {
			continue
		}
		out[i] = interpolate(xs, ys, float64(i))
	}
	return out
}

// interpolate evaluates the piecewise-linear function through the knots at
// x, extending the first and last segments beyond the knot range.
func interpolate(xs, ys []float64, x float64) float64 {
	hi := 1
	for hi < len(xs)-1 && xs[hi] < x {
		hi++
	}
	lo := hi - 1
	t := (x - xs[lo]) / (xs[hi] - xs[lo])
	return ys[lo] + t*(ys[hi]-ys[lo])
}
