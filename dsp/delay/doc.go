// Package delay provides a fixed-capacity circular delay line.
//
// A [Line] of capacity N keeps the last N+1 samples and answers "what was
// the value k samples ago" for 0 <= k <= N in constant time. Memory stays
// O(N) no matter how long the stream runs; older samples are overwritten.
//
//	d, _ := delay.New(3)
//	d.Write(1)
//	d.Write(2)
//	d.At(0) // 2
//	d.At(1) // 1
//	d.At(3) // 0 (not reached yet)
package delay
