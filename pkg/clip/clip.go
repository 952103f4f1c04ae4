// Package clip places clip-local notes on the absolute arrangement timeline
package clip

import (
	"fmt"
	"math"
)

// Note is a single MIDI note. Start is clip-local inside a Clip and absolute
// once expanded.
type Note struct {
	Pitch    uint8 // MIDI note number (0-127)
	Start    float64
	Duration float64
	Velocity uint8 // Velocity (0-127)
	Enabled  bool
}

// Clip holds the geometry of an arrangement clip and its stored notes
type Clip struct {
	ID            string
	Start         float64 // arrangement position of the clip start
	End           float64 // arrangement position of the clip end
	LoopStart     float64
	LoopEnd       float64
	StartRelative float64 // start marker offset inside the loop
	LoopEnabled   bool
	Notes         []Note
}

// LoopLength returns the length of the loop window
func (c Clip) LoopLength() float64 {
	return c.LoopEnd - c.LoopStart
}

// Length returns the rendered length on the arrangement
func (c Clip) Length() float64 {
	return c.End - c.Start
}

// GeometryError reports a clip whose bounds cannot be expanded
type GeometryError struct {
	ClipID string
	Reason string
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("clip %q: invalid geometry: %s", e.ClipID, e.Reason)
}

// MaxLoopRepeats bounds how many times a looping clip may repeat its loop window
const MaxLoopRepeats = 1 << 16

// Validate checks the clip bounds
func (c Clip) Validate() error {
	fail := func(format string, args ...any) error {
		return &GeometryError{ClipID: c.ID, Reason: fmt.Sprintf(format, args...)}
	}

	bounds := []struct {
		name string
		v    float64
	}{
		{"start", c.Start},
		{"end", c.End},
		{"loop start", c.LoopStart},
		{"loop end", c.LoopEnd},
		{"start offset", c.StartRelative},
	}
	for _, b := range bounds {
		if math.IsNaN(b.v) || math.IsInf(b.v, 0) {
			return fail("%s is not finite (%v)", b.name, b.v)
		}
	}
	if !(c.End > c.Start) {
		return fail("end %v not after start %v", c.End, c.Start)
	}
	if c.LoopEnabled {
		if !(c.LoopEnd > c.LoopStart) {
			return fail("loop end %v not after loop start %v", c.LoopEnd, c.LoopStart)
		}
		if c.repeats() > MaxLoopRepeats {
			return fail("loop of %v beats repeats more than %d times", c.LoopLength(), MaxLoopRepeats)
		}
	}
	for i, n := range c.Notes {
		if math.IsNaN(n.Start) || math.IsInf(n.Start, 0) || math.IsNaN(n.Duration) || math.IsInf(n.Duration, 0) {
			return fail("note %d: start %v or duration %v is not finite", i, n.Start, n.Duration)
		}
	}
	return nil
}

// repeats returns an upper bound on the loop occurrences inside [Start, End)
func (c Clip) repeats() float64 {
	return math.Ceil(c.Length()/c.LoopLength()) + 1
}
