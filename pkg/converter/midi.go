package converter

import (
	"bytes"
	"fmt"
	"math"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/james-see/als2midi/pkg/liveset"
)

// MIDIWriter encodes rendered tracks as a format 1 Standard MIDI File
type MIDIWriter struct {
	ticksPerQuarter uint16
}

// NewMIDIWriter creates a writer with the given resolution
func NewMIDIWriter(ticksPerQuarter uint16) *MIDIWriter {
	if ticksPerQuarter == 0 {
		ticksPerQuarter = 480
	}
	return &MIDIWriter{ticksPerQuarter: ticksPerQuarter}
}

// Event ordering within a tick: note-offs release before anything else and
// note-ons come last so controllers apply to the new note.
const (
	orderNoteOff = iota
	orderMeta
	orderControl
	orderNoteOn
)

type timedEvent struct {
	tick  uint32
	order int
	msg   []byte
}

// GenerateMIDI writes the tempo stream into the first track and one MIDI
// track per rendered track.
func (m *MIDIWriter) GenerateMIDI(tempo Stream, tracks []TrackResult) ([]byte, error) {
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(m.ticksPerQuarter)

	if len(tracks) == 0 {
		tracks = []TrackResult{{Name: "Tempo"}}
	}

	for i, tr := range tracks {
		var events []timedEvent
		if i == 0 {
			for _, p := range tempo.Points {
				events = append(events, timedEvent{m.tick(p.Time), orderMeta, smf.MetaTempo(float64(p.Value))})
			}
		}
		events = append(events, m.noteEvents(tr)...)
		for _, st := range tr.Streams {
			for _, p := range st.Points {
				msg := controlMessage(tr.Channel, st.Target, p.Value)
				if msg == nil {
					continue
				}
				events = append(events, timedEvent{m.tick(p.Time), orderControl, msg})
			}
		}

		sort.SliceStable(events, func(a, b int) bool {
			if events[a].tick != events[b].tick {
				return events[a].tick < events[b].tick
			}
			return events[a].order < events[b].order
		})

		var track smf.Track
		track.Add(0, smf.MetaTrackSequenceName(tr.Name))
		var currentTick uint32
		for _, ev := range events {
			track.Add(ev.tick-currentTick, ev.msg)
			currentTick = ev.tick
		}
		track.Close(0)

		if err := s.Add(track); err != nil {
			return nil, fmt.Errorf("failed to add track %q: %w", tr.Name, err)
		}
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write MIDI: %w", err)
	}
	return buf.Bytes(), nil
}

func (m *MIDIWriter) noteEvents(tr TrackResult) []timedEvent {
	events := make([]timedEvent, 0, 2*len(tr.Notes))
	for _, n := range tr.Notes {
		on := m.tick(n.Start)
		off := m.tick(n.Start + n.Duration)
		if off <= on {
			off = on + 1
		}
		events = append(events,
			timedEvent{on, orderNoteOn, midi.NoteOn(tr.Channel, n.Pitch, n.Velocity)},
			timedEvent{off, orderNoteOff, midi.NoteOff(tr.Channel, n.Pitch)},
		)
	}
	return events
}

// tick converts beats to ticks; events before the origin are pinned to it
func (m *MIDIWriter) tick(beats float64) uint32 {
	return uint32(math.Round(max(beats, 0) * float64(m.ticksPerQuarter)))
}

func controlMessage(ch uint8, t liveset.Target, v int) []byte {
	switch t.Kind {
	case liveset.TargetVolume:
		return midi.ControlChange(ch, liveset.CCVolume, uint8(v))
	case liveset.TargetPan:
		return midi.ControlChange(ch, liveset.CCPan, uint8(v))
	case liveset.TargetController:
		return midi.ControlChange(ch, t.Controller, uint8(v))
	case liveset.TargetPitchBend:
		return midi.Pitchbend(ch, int16(v))
	case liveset.TargetChannelPressure:
		return midi.AfterTouch(ch, uint8(v))
	default:
		return nil
	}
}

// MIDISummary describes an encoded MIDI file
type MIDISummary struct {
	Format          uint16
	TicksPerQuarter uint16
	Tracks          []MIDITrackSummary
	TempoChanges    int
}

// MIDITrackSummary counts the events of one MIDI track
type MIDITrackSummary struct {
	Name        string
	Notes       int
	Controllers int
	PitchBends  int
	Pressure    int
}

// SummarizeMIDI parses MIDI data and counts its events
func SummarizeMIDI(data []byte) (*MIDISummary, error) {
	s, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse MIDI: %w", err)
	}

	sum := &MIDISummary{Format: s.Format()}
	if mt, ok := s.TimeFormat.(smf.MetricTicks); ok {
		sum.TicksPerQuarter = mt.Resolution()
	}

	for _, track := range s.Tracks {
		var ts MIDITrackSummary
		for _, ev := range track {
			msg := midi.Message(ev.Message)
			var ch, key, vel, cc, val uint8
			var rel int16
			var abs uint16
			var bpm float64
			var text string
			switch {
			case msg.GetNoteStart(&ch, &key, &vel):
				ts.Notes++
			case msg.GetControlChange(&ch, &cc, &val):
				ts.Controllers++
			case msg.GetPitchBend(&ch, &rel, &abs):
				ts.PitchBends++
			case msg.GetAfterTouch(&ch, &val):
				ts.Pressure++
			case ev.Message.GetMetaTempo(&bpm):
				sum.TempoChanges++
			case ev.Message.GetMetaTrackName(&text):
				ts.Name = text
			}
		}
		sum.Tracks = append(sum.Tracks, ts)
	}
	return sum, nil
}
