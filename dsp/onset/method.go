package onset

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-comb/dsp/core"
	algofft "github.com/cwbudde/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

// Method selects the onset detection function.
type Method int

const (
	// Energy uses the rectified increase of the mean frame energy.
	Energy Method = iota
	// SpectralFlux sums the rectified magnitude increase per FFT bin.
	SpectralFlux
	// HFC uses the rectified increase of the frequency-weighted magnitude
	// sum (high-frequency content).
	HFC
)

var methodNames = map[Method]string{
	Energy:       "energy",
	SpectralFlux: "specflux",
	HFC:          "hfc",
}

// String returns the method name as accepted by ParseMethod.
func (m Method) String() string {
	if name, ok := methodNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// ParseMethod returns the method with the given name. "default" selects
// Energy.
func ParseMethod(name string) (Method, error) {
	if name == "default" {
		return Energy, nil
	}
	for m, n := range methodNames {
		if n == name {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown method %q", ErrInvalidArgument, name)
}

// spectral holds the sliding analysis window and FFT state of the
// spectral methods. The window spans the next power of two at or above
// two hops.
type spectral struct {
	plan     *algofft.Plan[complex128]
	history  []float64
	window   []float64
	windowed []float64
	spectrum []complex128
	re, im   []float64
	mag      []float64
	prevMag  []float64
}

func newSpectral(hop int) (*spectral, error) {
	size := nextPowerOfTwo(2 * hop)

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("onset: failed to create FFT plan: %w", err)
	}

	bins := size/2 + 1
	return &spectral{
		plan:     plan,
		history:  make([]float64, size),
		window:   periodicHann(size),
		windowed: make([]float64, size),
		spectrum: make([]complex128, size),
		re:       make([]float64, bins),
		im:       make([]float64, bins),
		mag:      make([]float64, bins),
		prevMag:  make([]float64, bins),
	}, nil
}

// analyze shifts frame into the window and updates the magnitude spectrum.
// prevMag keeps the spectrum of the previous call.
func (s *spectral) analyze(frame []float64) error {
	n := len(s.history)
	copy(s.history, s.history[len(frame):])
	copy(s.history[n-len(frame):], frame)

	vecmath.MulBlock(s.windowed, s.history, s.window)
	for i, x := range s.windowed {
		s.spectrum[i] = complex(x, 0)
	}

	if err := s.plan.Forward(s.spectrum, s.spectrum); err != nil {
		return fmt.Errorf("onset: forward FFT failed: %w", err)
	}

	for k := range s.re {
		s.re[k] = real(s.spectrum[k])
		s.im[k] = imag(s.spectrum[k])
	}

	s.mag, s.prevMag = s.prevMag, s.mag
	vecmath.Magnitude(s.mag, s.re, s.im)
	return nil
}

// flux returns the mean rectified magnitude increase per bin.
func (s *spectral) flux() float64 {
	var sum float64
	for k, m := range s.mag {
		if d := m - s.prevMag[k]; d > 0 {
			sum += d
		}
	}
	return sum / float64(len(s.mag))
}

// hfc returns the bin-weighted magnitude sum per bin.
func (s *spectral) hfc() float64 {
	var sum float64
	for k, m := range s.mag {
		sum += float64(k) * m
	}
	return sum / float64(len(s.mag))
}

func (s *spectral) reset() {
	core.Zero(s.history)
	core.Zero(s.mag)
	core.Zero(s.prevMag)
}

func periodicHann(size int) []float64 {
	w := make([]float64, size)
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(size))
	}
	return w
}

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
