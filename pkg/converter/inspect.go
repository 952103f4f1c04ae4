package converter

import (
	"fmt"

	"github.com/james-see/als2midi/pkg/automation"
	"github.com/james-see/als2midi/pkg/clip"
	"github.com/james-see/als2midi/pkg/liveset"
)

// SetSummary describes a Live set without encoding it
type SetSummary struct {
	Name   string         `json:"name"`
	Tempo  float64        `json:"tempo"`
	Curves []CurveSummary `json:"curves"`
	Tracks []TrackSummary `json:"tracks"`
}

// TrackSummary describes one Live track
type TrackSummary struct {
	Name        string         `json:"name"`
	Clips       int            `json:"clips"`
	StoredNotes int            `json:"stored_notes"`
	Notes       int            `json:"notes"`
	Curves      []CurveSummary `json:"curves"`
	Errors      []string       `json:"errors,omitempty"`
}

// CurveSummary describes one automation curve and how it resamples
type CurveSummary struct {
	Target    string         `json:"target"`
	Keyframes int            `json:"keyframes"`
	Segments  map[string]int `json:"segments"`
	Samples   int            `json:"samples"`
	Error     string         `json:"error,omitempty"`
}

// Describe summarizes the set at the converter's quantum. Invalid clips and
// curves are reported per track instead of failing the whole summary.
func (c *Converter) Describe(set *liveset.LiveSet) SetSummary {
	sum := SetSummary{Name: set.Name, Tempo: set.Tempo}
	if set.TempoMap.Len() > 0 {
		sum.Curves = append(sum.Curves, c.describeCurve("Tempo", set.TempoMap))
	}

	for _, t := range set.Tracks {
		ts := TrackSummary{Name: t.Name, Clips: len(t.Clips), StoredNotes: t.NoteCount()}
		for _, lc := range t.Clips {
			notes, err := clip.Expand(lc.Clip)
			if err != nil {
				ts.Errors = append(ts.Errors, err.Error())
				continue
			}
			ts.Notes += len(notes)
			for _, env := range lc.Envelopes {
				ts.Curves = append(ts.Curves, c.describeCurve(fmt.Sprintf("%s: %s", lc.Name, env.Target), env.Keyframes))
			}
		}
		if t.Volume.Len() > 0 {
			ts.Curves = append(ts.Curves, c.describeCurve("Volume", t.Volume))
		}
		if t.Pan.Len() > 0 {
			ts.Curves = append(ts.Curves, c.describeCurve("Pan", t.Pan))
		}
		for _, cs := range ts.Curves {
			if cs.Error != "" {
				ts.Errors = append(ts.Errors, cs.Error)
			}
		}
		sum.Tracks = append(sum.Tracks, ts)
	}
	return sum
}

func (c *Converter) describeCurve(name string, track automation.Track) CurveSummary {
	cs := CurveSummary{Target: name, Keyframes: track.Len(), Segments: map[string]int{}}
	for _, k := range automation.Classify(track) {
		cs.Segments[k.String()]++
	}
	err := automation.Validate(track)
	if err == nil {
		err = automation.ValidateQuantum(track, c.opts.Quantum)
	}
	if err != nil {
		cs.Error = err.Error()
		return cs
	}
	cs.Samples = len(automation.Resample(track, c.opts.Quantum))
	return cs
}
