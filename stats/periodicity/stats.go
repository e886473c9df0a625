// Package periodicity summarises a comb output vector: where its maximum
// sits and how far that maximum rises above the other taps.
package periodicity

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidArgument is returned when minDelay leaves no taps to inspect.
var ErrInvalidArgument = errors.New("periodicity: invalid argument")

// Stats holds statistics over the taps v[minDelay:] of a comb vector.
//
//nolint:revive
type Stats struct {
	Taps        int // number of taps inspected
	Mean        float64
	RMS         float64
	Variance    float64
	Max         float64
	MaxPos      int // index into the full vector
	Min         float64
	MinPos      int
	Salience    float64 // max / mean, 0 when mean <= 0
	Salience_dB float64
	Contrast    float64 // (max - mean) / stddev, 0 for a flat vector
}

// ratioTodB converts a linear ratio to decibels: 20 * log10(value).
// Returns -Inf for zero values.
func ratioTodB(value float64) float64 {
	if value <= 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(value)
}

// Calculate computes the statistics of v[minDelay:] in a single pass using
// Welford's online algorithm for the mean and variance.
func Calculate(v []float64, minDelay int) (Stats, error) {
	if minDelay < 0 || minDelay >= len(v) {
		return Stats{}, fmt.Errorf("%w: min delay %d outside [0, %d)", ErrInvalidArgument, minDelay, len(v))
	}

	var (
		mean, m2 float64
		sumSq    float64
		maxVal   = v[minDelay]
		maxPos   = minDelay
		minVal   = v[minDelay]
		minPos   = minDelay
	)

	for i, x := range v[minDelay:] {
		ni := float64(i + 1)
		delta := x - mean
		mean += delta / ni
		m2 += delta * (x - mean)

		sumSq += x * x

		if x > maxVal {
			maxVal, maxPos = x, minDelay+i
		}

		if x < minVal {
			minVal, minPos = x, minDelay+i
		}
	}

	n := len(v) - minDelay
	nf := float64(n)
	variance := m2 / nf

	s := Stats{
		Taps:        n,
		Mean:        mean,
		RMS:         math.Sqrt(sumSq / nf),
		Variance:    variance,
		Max:         maxVal,
		MaxPos:      maxPos,
		Min:         minVal,
		MinPos:      minPos,
		Salience_dB: math.Inf(-1),
	}

	if mean > 0 {
		s.Salience = maxVal / mean
		s.Salience_dB = ratioTodB(s.Salience)
	}

	if variance > 0 {
		s.Contrast = (maxVal - mean) / math.Sqrt(variance)
	}

	return s, nil
}

// Salience returns max / mean over v[minDelay:], or 0 when the mean is not
// positive or the range is empty.
func Salience(v []float64, minDelay int) float64 {
	s, err := Calculate(v, minDelay)
	if err != nil {
		return 0
	}

	return s.Salience
}
