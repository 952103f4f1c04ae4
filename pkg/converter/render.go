package converter

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/james-see/als2midi/pkg/automation"
	"github.com/james-see/als2midi/pkg/clip"
	"github.com/james-see/als2midi/pkg/liveset"
)

var tempoTarget = liveset.Target{Kind: liveset.TargetTempo}

// Render expands notes and resamples automation for every track of the set.
// Tracks are independent and rendered concurrently; results keep track order.
func (c *Converter) Render(ctx context.Context, set *liveset.LiveSet) (Stream, []TrackResult, error) {
	tempo, err := c.renderTempo(set)
	if err != nil {
		return Stream{}, nil, err
	}

	results := make([]TrackResult, len(set.Tracks))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.workers())
	for i := range set.Tracks {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := c.renderTrack(i, &set.Tracks[i])
			if err != nil {
				return fmt.Errorf("track %q: %w", set.Tracks[i].Name, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Stream{}, nil, err
	}
	return tempo, results, nil
}

func (c *Converter) renderTempo(set *liveset.LiveSet) (Stream, error) {
	track := set.TempoMap
	if track.Len() == 0 && set.Tempo > 0 {
		track = automation.Track{ID: "Tempo", Keyframes: []automation.Keyframe{automation.Point(0, set.Tempo)}}
	}
	s, err := renderStream(tempoTarget, track, c.opts.Quantum, 0)
	if err != nil {
		return Stream{}, fmt.Errorf("tempo map: %w", err)
	}
	return s, nil
}

func (c *Converter) renderTrack(index int, t *liveset.Track) (TrackResult, error) {
	res := TrackResult{Name: t.Name}
	if c.opts.SeparateChannels {
		res.Channel = uint8(index % 16)
	}

	for _, lc := range t.Clips {
		notes, err := clip.Expand(lc.Clip)
		if err != nil {
			return res, err
		}
		for _, n := range notes {
			if n.Enabled || c.opts.IncludeDisabled {
				res.Notes = append(res.Notes, n)
			}
		}
	}

	for _, lc := range t.Clips {
		offset := lc.Start - lc.LoopStart
		for _, env := range lc.Envelopes {
			if !c.exportEnvelope(env.Target) {
				continue
			}
			if err := res.addStream(env.Target, env.Keyframes, c.opts.Quantum, offset); err != nil {
				return res, err
			}
		}
	}

	if c.opts.ExportVolume {
		if err := res.addStream(liveset.Target{Kind: liveset.TargetVolume}, t.Volume, c.opts.Quantum, 0); err != nil {
			return res, err
		}
	}
	if c.opts.ExportPan {
		if err := res.addStream(liveset.Target{Kind: liveset.TargetPan}, t.Pan, c.opts.Quantum, 0); err != nil {
			return res, err
		}
	}
	return res, nil
}

func (t *TrackResult) addStream(target liveset.Target, track automation.Track, q, offset float64) error {
	s, err := renderStream(target, track, q, offset)
	if err != nil {
		return err
	}
	if len(s.Points) > 0 {
		t.Streams = append(t.Streams, s)
	}
	return nil
}

// exportEnvelope drops clip envelopes the sink cannot encode and CC 7/10
// envelopes that would fight the track's own volume/pan stream.
func (c *Converter) exportEnvelope(t liveset.Target) bool {
	switch t.Kind {
	case liveset.TargetPitchBend, liveset.TargetChannelPressure:
		return true
	case liveset.TargetController:
		switch t.Controller {
		case liveset.CCVolume:
			return !c.opts.ExportVolume
		case liveset.CCPan:
			return !c.opts.ExportPan
		}
		return true
	default:
		return false
	}
}
