// Package onset reduces a sample stream to one onset-strength value per
// hop frame.
//
// A [Detector] frames the input in hops of [core.ProcessorConfig.HopSize]
// samples and evaluates a detection function per frame:
//
//   - [Energy]: rectified increase of the mean frame energy.
//   - [SpectralFlux]: rectified magnitude increase summed over the bins of
//     a Hann-windowed FFT spanning two hops.
//   - [HFC]: rectified increase of the bin-weighted magnitude sum.
//
// With [WithBinary] the strength is compared against a threshold and
// emitted as 1 (onset) or 0, giving the per-frame onset count a comb bank
// expects for rhythm analysis.
//
// [Coincidence] compares the onset timing of two sources and counts onsets
// whose inter-source difference falls inside a window.
package onset
