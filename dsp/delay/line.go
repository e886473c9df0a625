package delay

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is returned for a non-positive capacity or an offset
// outside [0, capacity].
var ErrInvalidArgument = errors.New("delay: invalid argument")

// Line is a fixed-capacity circular delay line addressed by offset from the
// newest sample. Offset 0 is the most recent Write; offsets that the stream
// has not reached yet read as 0.
//
// The ring is written backwards so that offsets 0..capacity are contiguous
// in memory modulo one wrap, see Segments.
//
// A Line is not safe for concurrent use.
type Line struct {
	buffer []float64
	head   int
	count  uint64
}

// New returns a delay line that keeps offsets 0..capacity addressable.
func New(capacity int) (*Line, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("%w: capacity must be >= 1, got %d", ErrInvalidArgument, capacity)
	}
	return &Line{buffer: make([]float64, capacity+1)}, nil
}

// Capacity returns the largest addressable offset.
func (d *Line) Capacity() int {
	return len(d.buffer) - 1
}

// Len returns internal buffer size (Capacity()+1).
func (d *Line) Len() int {
	return len(d.buffer)
}

// Count returns the number of samples written since construction or the
// last Reset.
func (d *Line) Count() uint64 {
	return d.count
}

// Write records sample as the newest value.
func (d *Line) Write(sample float64) {
	d.head--
	if d.head < 0 {
		d.head = len(d.buffer) - 1
	}
	d.buffer[d.head] = sample
	d.count++
}

// Read returns the sample written offset steps before the newest one.
func (d *Line) Read(offset int) (float64, error) {
	if offset < 0 || offset >= len(d.buffer) {
		return 0, fmt.Errorf("%w: offset %d outside [0, %d]", ErrInvalidArgument, offset, d.Capacity())
	}
	return d.At(offset), nil
}

// At is Read without the range check. It panics for offsets outside
// [0, Capacity()].
func (d *Line) At(offset int) float64 {
	idx := d.head + offset
	if idx >= len(d.buffer) {
		idx -= len(d.buffer)
	}
	return d.buffer[idx]
}

// Segments returns two views of the ring whose concatenation holds offsets
// 0..Capacity() in order. The views alias internal storage and are only
// valid until the next Write.
func (d *Line) Segments() (head, tail []float64) {
	return d.buffer[d.head:], d.buffer[:d.head]
}

// Reset clears line state.
func (d *Line) Reset() {
	for i := range d.buffer {
		d.buffer[i] = 0
	}
	d.head = 0
	d.count = 0
}
