package core

import "math"

// NeumaierAdd adds x to the running pair (sum, comp) using Neumaier's
// variant of Kahan summation and returns the updated pair. The compensated
// total is sum+comp.
//
// An infinite total is returned with comp unchanged so that sum+comp stays
// infinite instead of turning into NaN.
//
// Unlike plain Kahan summation the update stays exact when |x| exceeds
// |sum|, which happens whenever a running total changes sign.
func NeumaierAdd(sum, comp, x float64) (float64, float64) {
	t := sum + x
	if math.IsInf(t, 0) {
		// Overflowed or infinite input: the correction term would be NaN.
		return t, comp
	}
	if math.Abs(sum) >= math.Abs(x) {
		comp += (sum - t) + x
	} else {
		comp += (x - t) + sum
	}
	return t, comp
}
