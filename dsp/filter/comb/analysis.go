package comb

import (
	"fmt"

	"github.com/cwbudde/algo-comb/dsp/core"
	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/floats"
)

// Normalized writes the accumulator vector divided by Accumulated into dst
// and returns it. Before the first accumulation every entry is 0.
func (b *Bank) Normalized(dst []float64) []float64 {
	dst = core.EnsureLen(dst, len(b.out))
	if b.accumulated == 0 {
		core.Zero(dst)
		return dst
	}
	vecmath.ScaleBlock(dst, b.out, 1/float64(b.accumulated))
	return dst
}

// Smooth writes a centred moving average of src with the given odd window
// width into dst and returns it. Near the edges only in-range taps are
// averaged. dst must not share storage with src.
func Smooth(dst, src []float64, width int) ([]float64, error) {
	if width < 1 || width%2 == 0 {
		return nil, fmt.Errorf("comb: smoothing width must be odd and >= 1, got %d: %w", width, ErrInvalidArgument)
	}

	n := len(src)
	dst = core.EnsureLen(dst, n)
	if n == 0 {
		return dst, nil
	}

	half := width / 2
	lo, hi := 0, min(half, n-1)
	sum := floats.Sum(src[lo : hi+1])

	for i := 0; i < n; i++ {
		dst[i] = sum / float64(hi-lo+1)

		if next := i + 1 + half; next < n {
			sum += src[next]
			hi = next
		}
		if old := i - half; old >= 0 {
			sum -= src[old]
			lo = old + 1
		}
	}

	return dst, nil
}

// Peak returns the index of the largest value in v at or after minDelay.
// Ties resolve to the smallest index.
func Peak(v []float64, minDelay int) (int, error) {
	if minDelay < 0 || minDelay >= len(v) {
		return 0, fmt.Errorf("comb: min delay %d outside [0, %d): %w", minDelay, len(v), ErrInvalidArgument)
	}
	return minDelay + floats.MaxIdx(v[minDelay:]), nil
}

// PeriodSeconds converts a tap offset counted in frames of hop samples into
// seconds.
func PeriodSeconds(delay, hop int, sampleRate float64) float64 {
	if delay <= 0 || hop <= 0 || sampleRate <= 0 {
		return 0
	}
	return float64(delay) * float64(hop) / sampleRate
}

// BPM converts a tap offset counted in frames of hop samples into beats per
// minute, treating the offset as one beat period. It returns 0 when the
// period is undefined.
func BPM(delay, hop int, sampleRate float64) float64 {
	period := PeriodSeconds(delay, hop, sampleRate)
	if period == 0 {
		return 0
	}
	return 60 / period
}
