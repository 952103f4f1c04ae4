// Package converter turns Ableton Live sets into Standard MIDI Files
package converter

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/james-see/als2midi/pkg/automation"
	"github.com/james-see/als2midi/pkg/clip"
	"github.com/james-see/als2midi/pkg/liveset"
)

// Options controls how a set is rendered
type Options struct {
	Quantum          float64 // beats between generated automation samples
	TicksPerQuarter  uint16
	SeparateChannels bool // track i plays on channel i mod 16
	ExportVolume     bool // write mixer volume automation as CC 7
	ExportPan        bool // write mixer pan automation as CC 10
	IncludeDisabled  bool // keep notes that are muted in the clip
	Workers          int  // tracks rendered concurrently, 0 means GOMAXPROCS
}

// DefaultOptions returns the settings used by the CLI and API
func DefaultOptions() Options {
	return Options{
		Quantum:          1.0 / 64,
		TicksPerQuarter:  480,
		SeparateChannels: true,
		ExportVolume:     true,
		ExportPan:        true,
	}
}

// Validate checks the options
func (o Options) Validate() error {
	if !(o.Quantum > 0) {
		return fmt.Errorf("quantum must be positive, got %v", o.Quantum)
	}
	if o.TicksPerQuarter == 0 {
		return errors.New("ticks per quarter must be positive")
	}
	if o.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", o.Workers)
	}
	return nil
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// Stream is a dense automation curve tagged with its MIDI destination.
// Values are already rescaled and clamped to the target's range.
type Stream struct {
	Target liveset.Target
	Points []automation.SampledPoint
}

// TrackResult is everything rendered for one Live track
type TrackResult struct {
	Name    string
	Channel uint8
	Notes   []clip.Note
	Streams []Stream
}

// Events returns the number of automation samples in the track
func (t TrackResult) Events() int {
	n := 0
	for _, s := range t.Streams {
		n += len(s.Points)
	}
	return n
}

// ConversionResult holds the result of a conversion
type ConversionResult struct {
	Data   []byte
	Format Format
	Tracks int
	Notes  int
	Events int // automation and tempo samples written
}

// Converter handles Live set to MIDI conversion
type Converter struct {
	opts Options
}

// New creates a new Converter with the given options
func New(opts Options) (*Converter, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return &Converter{opts: opts}, nil
}

// Options returns the converter settings
func (c *Converter) Options() Options {
	return c.opts
}
