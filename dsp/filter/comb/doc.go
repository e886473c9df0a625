// Package comb provides a streaming bank of cumulative comb accumulators.
//
// A [Bank] with maximum delay D owns a [delay.Line] of capacity D and D+1
// accumulators, one per tap offset 0..D. Every processed sample is written
// to the delay line and then each tap adds the value it sees i samples in
// the past:
//
//	acc[i] += x[n-i]    (x[n-i] = 0 while n < i)
//
// After T samples acc[i] therefore equals the sum over all steps of the
// sample that was i steps old at that step. Strongly periodic input
// (for example a train of onsets) produces large accumulators at taps that
// are multiples of the period, which is what the analysis helpers
// [Bank.Normalized], [Smooth] and [Peak] exploit.
//
// Work per sample is O(D) and memory is O(D) regardless of stream length.
//
// Accumulation runs in one of two modes:
//
//   - [Compensated] (default) keeps a Neumaier compensation term per tap so
//     hours of audio do not lose precision in large running totals.
//   - [Plain] performs the literal float64 recurrence using vectorised
//     block additions over the delay line.
//
// Basic usage:
//
//	b, err := comb.New(2)
//	if err != nil {
//	    return err
//	}
//	for _, x := range []float64{1, 2, 3} {
//	    out := b.Process(x)
//	    fmt.Println(out) // [1 0 0], [3 1 0], [6 3 1]
//	}
//
// A Bank is not safe for concurrent use. Producers running on several
// goroutines should hand their samples to a single owner, see package
// dsp/stream.
package comb
