package liveset

import (
	"bufio"
	"compress/gzip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/james-see/als2midi/pkg/automation"
	"github.com/james-see/als2midi/pkg/clip"
)

var gzipMagic = []byte{0x1f, 0x8b}

// Open reads a Live set from disk
func Open(path string) (*LiveSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open live set: %w", err)
	}
	defer func() { _ = f.Close() }()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Read(f, name)
}

// Read parses a Live set from r. The data may be the gzip container Live
// writes or the bare XML document.
func Read(r io.Reader, name string) (*LiveSet, error) {
	xr, err := Decompress(r)
	if err != nil {
		return nil, err
	}

	dec := xml.NewDecoder(xr)
	dec.CharsetReader = charset.NewReaderLabel

	var doc documentXML
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse live set XML: %w", err)
	}
	return build(&doc.LiveSet, name)
}

// Decompress returns a reader over the XML document, unwrapping gzip when present
func Decompress(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(len(gzipMagic))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read live set: %w", err)
	}
	if len(head) < len(gzipMagic) || head[0] != gzipMagic[0] || head[1] != gzipMagic[1] {
		return br, nil
	}

	zr, err := gzip.NewReader(br)
	if err != nil {
		return nil, fmt.Errorf("failed to open gzip container: %w", err)
	}
	return zr, nil
}

// IsGzip reports whether data starts with the gzip signature
func IsGzip(data []byte) bool {
	return len(data) >= 2 && data[0] == gzipMagic[0] && data[1] == gzipMagic[1]
}

func build(x *liveSetXML, name string) (*LiveSet, error) {
	set := &LiveSet{Name: name}

	var err error
	if x.Tempo.Manual.Value != "" {
		if set.Tempo, err = parseFloat(x.Tempo.Manual.Value); err != nil {
			return nil, fmt.Errorf("tempo: %w", err)
		}
	}
	if set.TempoMap, err = parseEvents("Tempo", x.Tempo.Events); err != nil {
		return nil, err
	}

	for i := range x.Tracks {
		track, err := buildTrack(&x.Tracks[i])
		if err != nil {
			return nil, err
		}
		set.Tracks = append(set.Tracks, track)
	}
	return set, nil
}

func buildTrack(x *midiTrackXML) (Track, error) {
	t := Track{
		ID:          x.ID,
		Name:        x.Name.Value,
		Controllers: controllerMap(x.Controllers.Targets),
	}

	var err error
	if t.Volume, err = parseEvents(t.Name+"/Volume", x.Volume.Events); err != nil {
		return t, err
	}
	if t.Pan, err = parseEvents(t.Name+"/Pan", x.Pan.Events); err != nil {
		return t, err
	}

	for i := range x.Clips {
		c, err := buildClip(&t, &x.Clips[i])
		if err != nil {
			return t, fmt.Errorf("track %q: %w", t.Name, err)
		}
		t.Clips = append(t.Clips, c)
	}
	return t, nil
}

// controllerMap assigns Pitch Bend and Channel Pressure to the first two
// controller slots and CC numbers to the rest.
func controllerMap(targets []controllerXML) map[int]Target {
	m := make(map[int]Target, len(targets))
	for i, ct := range targets {
		id, err := strconv.Atoi(ct.ID)
		if err != nil {
			continue
		}
		switch {
		case i == 0:
			m[id] = Target{Kind: TargetPitchBend}
		case i == 1:
			m[id] = Target{Kind: TargetChannelPressure}
		case i-2 <= 127:
			m[id] = Target{Kind: TargetController, Controller: uint8(i - 2)}
		}
	}
	return m
}

func buildClip(t *Track, x *midiClipXML) (Clip, error) {
	c := Clip{Name: x.Name.Value}
	c.ID = x.ID
	if c.Name != "" {
		c.ID = fmt.Sprintf("%s#%s", c.Name, x.ID)
	}

	fields := []struct {
		name string
		raw  string
		dst  *float64
	}{
		{"CurrentStart", x.CurrentStart.Value, &c.Start},
		{"CurrentEnd", x.CurrentEnd.Value, &c.End},
		{"LoopStart", x.Loop.LoopStart.Value, &c.LoopStart},
		{"LoopEnd", x.Loop.LoopEnd.Value, &c.LoopEnd},
		{"StartRelative", x.Loop.StartRelative.Value, &c.StartRelative},
	}
	for _, f := range fields {
		v, err := parseFloat(f.raw)
		if err != nil {
			return c, fmt.Errorf("clip %q: %s: %w", c.ID, f.name, err)
		}
		*f.dst = v
	}
	c.LoopEnabled = x.Loop.LoopOn.Value == "true"

	for _, kt := range x.KeyTracks {
		pitch, err := strconv.Atoi(kt.MidiKey.Value)
		if err != nil || pitch < 0 || pitch > 127 {
			return c, fmt.Errorf("clip %q: invalid MidiKey %q", c.ID, kt.MidiKey.Value)
		}
		for _, nx := range kt.Notes {
			n, err := parseNote(uint8(pitch), nx)
			if err != nil {
				return c, fmt.Errorf("clip %q: %w", c.ID, err)
			}
			c.Notes = append(c.Notes, n)
		}
	}

	for _, ex := range x.Envelopes {
		pointee, err := strconv.Atoi(ex.PointeeID.Value)
		if err != nil {
			return c, fmt.Errorf("clip %q: invalid envelope target %q", c.ID, ex.PointeeID.Value)
		}
		target := t.Controllers[pointee]
		kfs, err := parseEvents(fmt.Sprintf("%s/%s/%s", t.Name, c.ID, target), ex.Events)
		if err != nil {
			return c, err
		}
		c.Envelopes = append(c.Envelopes, Envelope{PointeeID: pointee, Target: target, Keyframes: kfs})
	}
	return c, nil
}

func parseNote(pitch uint8, x noteXML) (clip.Note, error) {
	start, err := parseFloat(x.Time)
	if err != nil {
		return clip.Note{}, fmt.Errorf("note time: %w", err)
	}
	duration, err := parseFloat(x.Duration)
	if err != nil {
		return clip.Note{}, fmt.Errorf("note duration: %w", err)
	}
	velocity, err := parseFloat(x.Velocity)
	if err != nil {
		return clip.Note{}, fmt.Errorf("note velocity: %w", err)
	}
	return clip.Note{
		Pitch:    pitch,
		Start:    start,
		Duration: duration,
		Velocity: uint8(min(max(velocity, 0), 127)),
		Enabled:  x.IsEnabled != "false",
	}, nil
}

// parseEvents converts FloatEvents into keyframes. Live stores the
// parameter's default value at a huge negative time; it is pinned to 0.
func parseEvents(id string, events []floatEventXML) (automation.Track, error) {
	track := automation.Track{ID: id}
	for i, ev := range events {
		t, err := parseFloat(ev.Time)
		if err != nil {
			return track, fmt.Errorf("%s: event %d: time: %w", id, i, err)
		}
		v, err := parseFloat(ev.Value)
		if err != nil {
			return track, fmt.Errorf("%s: event %d: value: %w", id, i, err)
		}
		k := automation.Point(max(t, 0), v)
		if ev.CurveControlX != "" && ev.CurveControlY != "" {
			cx, errX := parseFloat(ev.CurveControlX)
			cy, errY := parseFloat(ev.CurveControlY)
			if err := errors.Join(errX, errY); err != nil {
				return track, fmt.Errorf("%s: event %d: curve control: %w", id, i, err)
			}
			k = automation.Curve(k.Time, v, cx, cy)
		}
		track.Keyframes = append(track.Keyframes, k)
	}
	return track, nil
}

func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return v, nil
}
