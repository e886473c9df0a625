package comb

import "fmt"

// Accumulation selects how per-tap running sums are updated.
type Accumulation int

const (
	// Compensated uses Neumaier compensated summation per tap.
	Compensated Accumulation = iota
	// Plain uses ordinary float64 addition, matching the literal recurrence
	// bit for bit.
	Plain
)

// String returns the mode name.
func (a Accumulation) String() string {
	switch a {
	case Compensated:
		return "compensated"
	case Plain:
		return "plain"
	default:
		return fmt.Sprintf("Accumulation(%d)", int(a))
	}
}

// Gate decides per sample whether the accumulators advance.
type Gate func(sample float64) bool

// PositiveGate accumulates only for samples greater than zero. It suits
// onset streams where a frame without an onset should not count.
func PositiveGate(sample float64) bool {
	return sample > 0
}

type config struct {
	accumulation Accumulation
	gate         Gate
}

func defaultConfig() config {
	return config{accumulation: Compensated}
}

// Option configures a Bank.
type Option func(*config)

// WithAccumulation selects the accumulation mode. Unknown modes are ignored.
func WithAccumulation(a Accumulation) Option {
	return func(cfg *config) {
		if a == Compensated || a == Plain {
			cfg.accumulation = a
		}
	}
}

// WithGate installs a gate. The delay line records every sample; the
// accumulators only advance when gate returns true. A nil gate accumulates
// every sample.
func WithGate(gate Gate) Option {
	return func(cfg *config) {
		cfg.gate = gate
	}
}
