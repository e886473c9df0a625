package onset

import (
	"fmt"
	"math"
)

// Match describes a frame whose onsets from two sources fell inside the
// coincidence window.
type Match struct {
	// MostRecent is the later of the two latest onset times, in seconds.
	MostRecent float64
	// Diff is the latest onset time of source 0 minus that of source 1.
	Diff float64
	// Onsets is the number of sources with an onset in the frame.
	Onsets int
}

// Coincidence compares the onset timing of two sources frame by frame. It
// remembers the latest onset time of each source and, for every frame in
// which at least one source has an onset, checks whether the difference
// between the two latest onsets lies strictly inside (min, max).
//
// A Coincidence is not safe for concurrent use.
type Coincidence struct {
	min, max float64
	recent   [2]float64
	total    uint64
	windowed uint64
}

// NewCoincidence returns a tracker for the window (minWindow, maxWindow)
// in seconds.
func NewCoincidence(minWindow, maxWindow float64) (*Coincidence, error) {
	if minWindow < 0 || maxWindow <= minWindow || math.IsNaN(minWindow) || math.IsNaN(maxWindow) {
		return nil, fmt.Errorf("%w: coincidence window (%v, %v)", ErrInvalidArgument, minWindow, maxWindow)
	}
	return &Coincidence{min: minWindow, max: maxWindow}, nil
}

// Observe records one frame. onset reports which sources fired and at
// holds their onset times in seconds; times of sources without an onset
// are ignored. The second result is true when the frame counts as
// windowed.
func (c *Coincidence) Observe(onset [2]bool, at [2]float64) (Match, bool) {
	n := 0
	for i := range onset {
		if onset[i] {
			c.recent[i] = at[i]
			n++
		}
	}
	if n == 0 {
		return Match{}, false
	}
	c.total++

	diff := c.recent[0] - c.recent[1]
	m := Match{Diff: diff, Onsets: n}

	abs := math.Abs(diff)
	if abs <= c.min || abs >= c.max {
		return m, false
	}
	c.windowed++

	m.MostRecent = c.recent[0]
	if diff < 0 {
		m.MostRecent = c.recent[1]
	}
	return m, true
}

// Total returns the number of frames with at least one onset.
func (c *Coincidence) Total() uint64 {
	return c.total
}

// Windowed returns the number of frames counted as windowed.
func (c *Coincidence) Windowed() uint64 {
	return c.windowed
}

// Percent returns Windowed as a percentage of Total, or 0 before the first
// onset.
func (c *Coincidence) Percent() float64 {
	if c.total == 0 {
		return 0
	}
	return 100 * float64(c.windowed) / float64(c.total)
}

// Reset forgets all onsets.
func (c *Coincidence) Reset() {
	c.recent = [2]float64{}
	c.total = 0
	c.windowed = 0
}
