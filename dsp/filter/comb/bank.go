package comb

import (
	"fmt"

	"github.com/cwbudde/algo-comb/dsp/core"
	"github.com/cwbudde/algo-comb/dsp/delay"
	"github.com/cwbudde/algo-vecmath"
)

// ErrInvalidArgument is returned for invalid construction or analysis
// parameters. It is the same value as delay.ErrInvalidArgument.
var ErrInvalidArgument = delay.ErrInvalidArgument

// Bank is a bank of cumulative comb accumulators over one delay line.
type Bank struct {
	line *delay.Line
	sum  []float64
	comp []float64
	out  []float64

	accumulation Accumulation
	gate         Gate
	accumulated  uint64
}

// New returns a bank with taps 0..maxDelay.
func New(maxDelay int, opts ...Option) (*Bank, error) {
	if maxDelay < 1 {
		return nil, fmt.Errorf("comb: max delay must be >= 1, got %d: %w", maxDelay, ErrInvalidArgument)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	line, err := delay.New(maxDelay)
	if err != nil {
		return nil, fmt.Errorf("comb: %w", err)
	}

	taps := maxDelay + 1
	b := &Bank{
		line:         line,
		sum:          make([]float64, taps),
		accumulation: cfg.accumulation,
		gate:         cfg.gate,
	}

	if cfg.accumulation == Compensated {
		b.comp = make([]float64, taps)
		b.out = make([]float64, taps)
	} else {
		// Plain sums are the outputs.
		b.out = b.sum
	}

	return b, nil
}

// MaxDelay returns the largest tap offset.
func (b *Bank) MaxDelay() int {
	return b.line.Capacity()
}

// Taps returns the number of accumulators (MaxDelay()+1).
func (b *Bank) Taps() int {
	return len(b.sum)
}

// Accumulation returns the configured accumulation mode.
func (b *Bank) Accumulation() Accumulation {
	return b.accumulation
}

// Count returns the number of samples processed.
func (b *Bank) Count() uint64 {
	return b.line.Count()
}

// Accumulated returns the number of samples that advanced the
// accumulators. Without a gate it equals Count.
func (b *Bank) Accumulated() uint64 {
	return b.accumulated
}

// Process pushes one sample and returns the updated accumulator vector,
// ordered by tap offset. The slice is owned by the bank and overwritten by
// the next call; use OutputsInto to keep a copy.
func (b *Bank) Process(sample float64) []float64 {
	b.line.Write(sample)

	if b.gate != nil && !b.gate(sample) {
		return b.out
	}
	b.accumulated++

	head, tail := b.line.Segments()
	n := len(head)

	if b.accumulation == Plain {
		vecmath.AddBlockInPlace(b.sum[:n], head)
		if len(tail) > 0 {
			vecmath.AddBlockInPlace(b.sum[n:], tail)
		}
		return b.out
	}

	b.addCompensated(0, head)
	b.addCompensated(n, tail)
	return b.out
}

func (b *Bank) addCompensated(offset int, values []float64) {
	sum := b.sum[offset : offset+len(values)]
	comp := b.comp[offset : offset+len(values)]
	out := b.out[offset : offset+len(values)]

	for i, x := range values {
		s, c := core.NeumaierAdd(sum[i], comp[i], x)
		sum[i] = s
		comp[i] = c
		out[i] = s + c
	}
}

// ProcessBlock processes samples in order and returns the vector after the
// last one. An empty block returns the current outputs.
func (b *Bank) ProcessBlock(samples []float64) []float64 {
	for _, x := range samples {
		b.Process(x)
	}
	return b.out
}

// ProcessFloat32 is ProcessBlock for single-precision producers.
func (b *Bank) ProcessFloat32(samples []float32) []float64 {
	for _, x := range samples {
		b.Process(float64(x))
	}
	return b.out
}

// Outputs returns the last computed accumulator vector. The slice is owned
// by the bank.
func (b *Bank) Outputs() []float64 {
	return b.out
}

// OutputsInto copies the accumulator vector into dst, reusing its capacity
// when possible, and returns the result.
func (b *Bank) OutputsInto(dst []float64) []float64 {
	dst = core.EnsureLen(dst, len(b.out))
	copy(dst, b.out)
	return dst
}

// Reset clears the delay line and all accumulators.
func (b *Bank) Reset() {
	b.line.Reset()
	core.Zero(b.sum)
	core.Zero(b.comp)
	core.Zero(b.out)
	b.accumulated = 0
}
