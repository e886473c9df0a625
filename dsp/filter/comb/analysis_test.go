package comb

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-comb/internal/testutil"
)

func TestNormalized(t *testing.T) {
	b := newBank(t, 2)

	got := b.Normalized(nil)
	testutil.RequireSliceNearlyEqual(t, got, []float64{0, 0, 0}, 0)

	b.ProcessBlock([]float64{1, 2, 3})
	got = b.Normalized(got)
	testutil.RequireSliceNearlyEqual(t, got, []float64{2, 1, 1.0 / 3}, 1e-15)
}

func TestNormalizedUsesAccumulatedCount(t *testing.T) {
	b := newBank(t, 4, WithGate(PositiveGate))
	// Pulse train with period 4: only the pulses accumulate.
	b.ProcessBlock(testutil.PulseTrain(40, 4, 0))

	if b.Accumulated() != 10 {
		t.Fatalf("Accumulated: got %d want 10", b.Accumulated())
	}

	got := b.Normalized(nil)
	// Every pulse sees itself at tap 0 and its predecessor at tap 4,
	// except the first one.
	testutil.RequireSliceNearlyEqual(t, got, []float64{1, 0, 0, 0, 0.9}, 1e-15)
}

func TestSmoothValidation(t *testing.T) {
	for _, width := range []int{0, -3, 2, 10} {
		if _, err := Smooth(nil, []float64{1, 2, 3}, width); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("width %d: expected ErrInvalidArgument, got %v", width, err)
		}
	}
}

func TestSmoothIdentity(t *testing.T) {
	src := []float64{3, -1, 4, 1, -5}
	got, err := Smooth(nil, src, 1)
	if err != nil {
		t.Fatal(err)
	}
	testutil.RequireSliceNearlyEqual(t, got, src, 0)
}

func TestSmoothMovingAverage(t *testing.T) {
	src := []float64{0, 3, 6, 9, 12}
	got, err := Smooth(make([]float64, 1), src, 3)
	if err != nil {
		t.Fatal(err)
	}
	// Edges average the two in-range taps.
	want := []float64{1.5, 3, 6, 9, 10.5}
	testutil.RequireSliceNearlyEqual(t, got, want, 1e-12)
}

func TestSmoothWideWindow(t *testing.T) {
	src := []float64{1, 2, 3}
	got, err := Smooth(nil, src, 11)
	if err != nil {
		t.Fatal(err)
	}
	testutil.RequireSliceNearlyEqual(t, got, []float64{2, 2, 2}, 1e-12)
}

func TestSmoothEmpty(t *testing.T) {
	got, err := Smooth(nil, nil, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("len = %d, want 0", len(got))
	}
}

func TestPeak(t *testing.T) {
	v := []float64{100, 1, 7, 3, 7, 2}

	idx, err := Peak(v, 0)
	if err != nil {
		t.Fatal(err)
	}
	if idx != 0 {
		t.Fatalf("Peak(v, 0) = %d, want 0", idx)
	}

	idx, err = Peak(v, 1)
	if err != nil {
		t.Fatal(err)
	}
	if idx != 2 {
		t.Fatalf("Peak(v, 1) = %d, want 2 (first of ties)", idx)
	}

	for _, minDelay := range []int{-1, 6} {
		if _, err := Peak(v, minDelay); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("Peak(v, %d): expected ErrInvalidArgument, got %v", minDelay, err)
		}
	}
}

func TestPeakFindsPulsePeriod(t *testing.T) {
	const period = 12

	b := newBank(t, 40, WithGate(PositiveGate))
	b.ProcessBlock(testutil.PulseTrain(600, period, 3))

	idx, err := Peak(b.Outputs(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if idx != period {
		t.Fatalf("peak delay = %d, want %d", idx, period)
	}
}

func TestPeriodAndBPM(t *testing.T) {
	// 187 frames of 256 samples at 48 kHz is just under one second.
	period := PeriodSeconds(187, 256, 48000)
	if math.Abs(period-0.9973333333333333) > 1e-12 {
		t.Fatalf("PeriodSeconds = %v", period)
	}

	if got := BPM(100, 480, 48000); math.Abs(got-60) > 1e-12 {
		t.Fatalf("BPM = %v, want 60", got)
	}

	if PeriodSeconds(0, 256, 48000) != 0 || BPM(10, 0, 48000) != 0 || BPM(10, 256, 0) != 0 {
		t.Fatal("expected 0 for undefined periods")
	}
}
