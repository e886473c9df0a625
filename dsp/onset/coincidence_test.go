package onset

import (
	"errors"
	"math"
	"testing"
)

func TestNewCoincidenceValidation(t *testing.T) {
	for _, w := range [][2]float64{{-0.01, 0.04}, {0.04, 0.04}, {0.05, 0.01}, {math.NaN(), 0.04}} {
		if _, err := NewCoincidence(w[0], w[1]); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("window %v: expected ErrInvalidArgument, got %v", w, err)
		}
	}
}

func TestCoincidenceWindow(t *testing.T) {
	c, err := NewCoincidence(0.010, 0.040)
	if err != nil {
		t.Fatal(err)
	}

	steps := []struct {
		onset    [2]bool
		at       [2]float64
		windowed bool
	}{
		{[2]bool{false, false}, [2]float64{0.00, 0.00}, false}, // no onset, not counted
		{[2]bool{true, false}, [2]float64{0.10, 0.00}, false},  // 100 ms apart
		{[2]bool{false, true}, [2]float64{0.00, 0.12}, true},   // 20 ms late
		{[2]bool{true, true}, [2]float64{0.50, 0.50}, false},   // together
		{[2]bool{true, false}, [2]float64{0.545, 0.00}, false}, // 45 ms, outside
		{[2]bool{false, true}, [2]float64{0.00, 0.515}, true},  // 30 ms early
	}

	for i, step := range steps {
		m, ok := c.Observe(step.onset, step.at)
		if ok != step.windowed {
			t.Fatalf("step %d: windowed = %v, want %v (match %+v)", i, ok, step.windowed, m)
		}
	}

	if c.Total() != 5 {
		t.Fatalf("Total = %d, want 5", c.Total())
	}
	if c.Windowed() != 2 {
		t.Fatalf("Windowed = %d, want 2", c.Windowed())
	}
	if got := c.Percent(); math.Abs(got-40) > 1e-12 {
		t.Fatalf("Percent = %v, want 40", got)
	}
}

func TestCoincidenceMatch(t *testing.T) {
	c, err := NewCoincidence(0.010, 0.040)
	if err != nil {
		t.Fatal(err)
	}

	c.Observe([2]bool{true, false}, [2]float64{1.0, 0})
	m, ok := c.Observe([2]bool{false, true}, [2]float64{0, 1.02})
	if !ok {
		t.Fatal("expected a windowed match")
	}
	if m.MostRecent != 1.02 || m.Onsets != 1 || math.Abs(m.Diff+0.02) > 1e-12 {
		t.Fatalf("match = %+v", m)
	}

	m, ok = c.Observe([2]bool{true, false}, [2]float64{1.065, 0})
	if ok {
		t.Fatalf("45 ms should be outside the window: %+v", m)
	}
	if m.Onsets != 1 || math.Abs(m.Diff-0.045) > 1e-12 {
		t.Fatalf("match = %+v", m)
	}
}

func TestCoincidenceReset(t *testing.T) {
	c, err := NewCoincidence(0.010, 0.040)
	if err != nil {
		t.Fatal(err)
	}

	c.Observe([2]bool{true, true}, [2]float64{0.3, 0.32})
	c.Reset()

	if c.Total() != 0 || c.Windowed() != 0 || c.Percent() != 0 {
		t.Fatalf("after reset: total %d windowed %d", c.Total(), c.Windowed())
	}
}
