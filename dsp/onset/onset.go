package onset

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-comb/dsp/core"
	"github.com/cwbudde/algo-vecmath"
)

// ErrInvalidArgument is returned for a non-positive hop size, a negative
// threshold or an unknown method.
var ErrInvalidArgument = errors.New("onset: invalid argument")

type config struct {
	method    Method
	binary    bool
	threshold float64
}

// Option configures a Detector.
type Option func(*config)

// WithBinary emits 1 for frames whose strength exceeds threshold and 0
// otherwise.
func WithBinary(threshold float64) Option {
	return func(cfg *config) {
		cfg.binary = true
		cfg.threshold = threshold
	}
}

// WithMethod selects the detection function. The default is Energy.
func WithMethod(m Method) Option {
	return func(cfg *config) {
		cfg.method = m
	}
}

// Detector computes per-frame onset strength. It is not safe for
// concurrent use.
type Detector struct {
	hop        int
	sampleRate float64
	method     Method
	frame      []float64
	fill       int
	prev       float64
	binary     bool
	threshold  float64
	frames     uint64
	spec       *spectral
}

// New returns a detector framing input by cfg.HopSize.
func New(cfg core.ProcessorConfig, opts ...Option) (*Detector, error) {
	if cfg.HopSize < 1 {
		return nil, fmt.Errorf("%w: hop size must be >= 1, got %d", ErrInvalidArgument, cfg.HopSize)
	}

	var c config
	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}

	if c.binary && (c.threshold < 0 || math.IsNaN(c.threshold)) {
		return nil, fmt.Errorf("%w: threshold must be >= 0, got %v", ErrInvalidArgument, c.threshold)
	}

	d := &Detector{
		hop:        cfg.HopSize,
		sampleRate: cfg.SampleRate,
		method:     c.method,
		frame:      make([]float64, cfg.HopSize),
		binary:     c.binary,
		threshold:  c.threshold,
	}

	switch c.method {
	case Energy:
	case SpectralFlux, HFC:
		spec, err := newSpectral(cfg.HopSize)
		if err != nil {
			return nil, err
		}
		d.spec = spec
	default:
		return nil, fmt.Errorf("%w: unknown method %v", ErrInvalidArgument, c.method)
	}

	return d, nil
}

// HopSize returns the frame length in samples.
func (d *Detector) HopSize() int {
	return d.hop
}

// Method returns the detection function.
func (d *Detector) Method() Method {
	return d.method
}

// Frames returns the number of frames emitted so far.
func (d *Detector) Frames() uint64 {
	return d.frames
}

// FrameTime returns the start time in seconds of the given frame, or 0
// without a sample rate.
func (d *Detector) FrameTime(frame uint64) float64 {
	if d.sampleRate <= 0 {
		return 0
	}
	return float64(frame) * float64(d.hop) / d.sampleRate
}

// Write buffers samples and calls emit once per completed frame, in order.
// A trailing partial frame is kept for the next call.
func (d *Detector) Write(samples []float64, emit func(strength float64)) error {
	for len(samples) > 0 {
		n := copy(d.frame[d.fill:], samples)
		d.fill += n
		samples = samples[n:]

		if d.fill < d.hop {
			return nil
		}
		d.fill = 0

		strength, err := d.strength()
		if err != nil {
			return err
		}
		emit(strength)
	}
	return nil
}

func (d *Detector) strength() (float64, error) {
	var flux float64

	switch d.method {
	case SpectralFlux:
		if err := d.spec.analyze(d.frame); err != nil {
			return 0, err
		}
		flux = d.spec.flux()
	case HFC:
		if err := d.spec.analyze(d.frame); err != nil {
			return 0, err
		}
		flux = d.rise(d.spec.hfc())
	default:
		flux = d.rise(vecmath.DotProduct(d.frame, d.frame) / float64(d.hop))
	}
	d.frames++

	if !d.binary {
		return flux, nil
	}
	if flux > d.threshold {
		return 1, nil
	}
	return 0, nil
}

// rise returns the half-wave rectified increase of v over the previous
// frame and remembers v.
func (d *Detector) rise(v float64) float64 {
	diff := v - d.prev
	d.prev = v
	if diff < 0 {
		return 0
	}
	return diff
}

// Reset discards buffered samples and the detection history.
func (d *Detector) Reset() {
	core.Zero(d.frame)
	d.fill = 0
	d.prev = 0
	d.frames = 0
	if d.spec != nil {
		d.spec.reset()
	}
}
