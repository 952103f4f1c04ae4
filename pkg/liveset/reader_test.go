package liveset

import (
	"bytes"
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/james-see/als2midi/pkg/automation"
	"github.com/james-see/als2midi/pkg/clip"
)

const testSet = `<?xml version="1.0" encoding="UTF-8"?>
<Ableton MajorVersion="5" Creator="Ableton Live 10.1">
  <LiveSet>
    <Tracks>
      <MidiTrack Id="12">
        <Name><EffectiveName Value="Bass" /></Name>
        <DeviceChain>
          <Mixer>
            <Volume>
              <Manual Value="0.85" />
              <ArrangerAutomation><Events>
                <FloatEvent Id="1" Time="-63072000" Value="0.85" />
                <FloatEvent Id="2" Time="4" Value="0.5" />
              </Events></ArrangerAutomation>
            </Volume>
            <Pan>
              <Manual Value="0" />
              <ArrangerAutomation><Events /></ArrangerAutomation>
            </Pan>
          </Mixer>
          <MainSequencer>
            <ClipTimeable><ArrangerAutomation><Events>
              <MidiClip Id="3" Time="0">
                <Name Value="Riff" />
                <CurrentStart Value="0" />
                <CurrentEnd Value="8" />
                <Loop>
                  <LoopStart Value="0" />
                  <LoopEnd Value="4" />
                  <StartRelative Value="0" />
                  <LoopOn Value="true" />
                </Loop>
                <Notes><KeyTracks>
                  <KeyTrack Id="0">
                    <Notes>
                      <MidiNoteEvent Time="1" Duration="1" Velocity="100" IsEnabled="true" />
                      <MidiNoteEvent Time="2" Duration="0.5" Velocity="140.5" IsEnabled="false" />
                    </Notes>
                    <MidiKey Value="36" />
                  </KeyTrack>
                </KeyTracks></Notes>
                <Envelopes><Envelopes>
                  <ClipEnvelope Id="0">
                    <EnvelopeTarget><PointeeId Value="501" /></EnvelopeTarget>
                    <Automation><Events>
                      <FloatEvent Id="4" Time="0" Value="0" />
                      <FloatEvent Id="5" Time="1" Value="64" CurveControl1X="0.25" CurveControl1Y="0.75" />
                      <FloatEvent Id="6" Time="2" Value="127" />
                    </Events></Automation>
                  </ClipEnvelope>
                </Envelopes></Envelopes>
              </MidiClip>
            </Events></ArrangerAutomation></ClipTimeable>
            <MidiControllers>
              <ControllerTargets.0 Id="499"><LockEnvelope Value="0" /></ControllerTargets.0>
              <ControllerTargets.1 Id="500"><LockEnvelope Value="0" /></ControllerTargets.1>
              <ControllerTargets.2 Id="501"><LockEnvelope Value="0" /></ControllerTargets.2>
              <ControllerTargets.3 Id="502"><LockEnvelope Value="0" /></ControllerTargets.3>
            </MidiControllers>
          </MainSequencer>
        </DeviceChain>
      </MidiTrack>
    </Tracks>
    <MasterTrack>
      <DeviceChain><Mixer><Tempo>
        <Manual Value="128" />
        <ArrangerAutomation><Events>
          <FloatEvent Id="7" Time="-63072000" Value="128" />
          <FloatEvent Id="8" Time="8" Value="140" />
        </Events></ArrangerAutomation>
      </Tempo></Mixer></DeviceChain>
    </MasterTrack>
  </LiveSet>
</Ableton>`

func gzipped(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(s)); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	return buf.Bytes()
}

func TestReadGzip(t *testing.T) {
	set, err := Read(bytes.NewReader(gzipped(t, testSet)), "demo")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if set.Name != "demo" {
		t.Errorf("Name = %q, want %q", set.Name, "demo")
	}
	if set.Tempo != 128 {
		t.Errorf("Tempo = %v, want 128", set.Tempo)
	}
	if set.TempoMap.Len() != 2 || set.TempoMap.Keyframes[0].Time != 0 || set.TempoMap.Keyframes[1].Value != 140 {
		t.Errorf("TempoMap = %+v", set.TempoMap)
	}
	if len(set.Tracks) != 1 {
		t.Fatalf("Tracks = %d, want 1", len(set.Tracks))
	}

	tr := set.Tracks[0]
	if tr.Name != "Bass" || tr.ID != "12" {
		t.Errorf("track = %q (%s), want Bass (12)", tr.Name, tr.ID)
	}
	if tr.Volume.Len() != 2 || tr.Volume.Keyframes[0].Time != 0 {
		t.Errorf("Volume = %+v", tr.Volume)
	}
	if tr.Pan.Len() != 0 {
		t.Errorf("Pan = %+v, want empty", tr.Pan)
	}
	if tr.NoteCount() != 2 {
		t.Errorf("NoteCount() = %d, want 2", tr.NoteCount())
	}

	wantTargets := map[int]Target{
		499: {Kind: TargetPitchBend},
		500: {Kind: TargetChannelPressure},
		501: {Kind: TargetController, Controller: 0},
		502: {Kind: TargetController, Controller: 1},
	}
	for id, want := range wantTargets {
		if got := tr.Controllers[id]; got != want {
			t.Errorf("Controllers[%d] = %v, want %v", id, got, want)
		}
	}

	c := tr.Clips[0]
	if c.ID != "Riff#3" || c.Start != 0 || c.End != 8 || c.LoopEnd != 4 || !c.LoopEnabled {
		t.Errorf("clip = %+v", c.Clip)
	}
	want := []clip.Note{
		{Pitch: 36, Start: 1, Duration: 1, Velocity: 100, Enabled: true},
		{Pitch: 36, Start: 2, Duration: 0.5, Velocity: 127, Enabled: false},
	}
	for i, n := range c.Notes {
		if n != want[i] {
			t.Errorf("Notes[%d] = %+v, want %+v", i, n, want[i])
		}
	}

	if len(c.Envelopes) != 1 {
		t.Fatalf("Envelopes = %d, want 1", len(c.Envelopes))
	}
	env := c.Envelopes[0]
	if env.PointeeID != 501 || env.Target != (Target{Kind: TargetController, Controller: 0}) {
		t.Errorf("envelope target = %d %v", env.PointeeID, env.Target)
	}
	kinds := automation.Classify(env.Keyframes)
	wantKinds := []automation.SegmentKind{automation.Init, automation.BezierCurve, automation.EndCurve}
	for i := range wantKinds {
		if kinds[i] != wantKinds[i] {
			t.Errorf("kinds[%d] = %v, want %v", i, kinds[i], wantKinds[i])
		}
	}
}

func TestReadPlainXML(t *testing.T) {
	set, err := Read(strings.NewReader(testSet), "plain")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(set.Tracks) != 1 {
		t.Errorf("Tracks = %d, want 1", len(set.Tracks))
	}
}

func TestReadCharset(t *testing.T) {
	doc := strings.Replace(testSet, `encoding="UTF-8"`, `encoding="ISO-8859-1"`, 1)
	doc = strings.Replace(doc, `Value="Bass"`, "Value=\"Basse \xe9l\xe9ctrique\"", 1)

	set, err := Read(strings.NewReader(doc), "latin1")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got := set.Tracks[0].Name; got != "Basse éléctrique" {
		t.Errorf("track name = %q", got)
	}
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"not xml", "hello"},
		{"bad clip number", strings.Replace(testSet, `<CurrentEnd Value="8" />`, `<CurrentEnd Value="eight" />`, 1)},
		{"bad key", strings.Replace(testSet, `<MidiKey Value="36" />`, `<MidiKey Value="200" />`, 1)},
		{"bad event", strings.Replace(testSet, `Time="4" Value="0.5"`, `Time="x" Value="0.5"`, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Read(strings.NewReader(tt.data), "broken"); err == nil {
				t.Error("Read() expected error")
			}
		})
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "My Song.als")
	if err := os.WriteFile(path, gzipped(t, testSet), 0644); err != nil {
		t.Fatal(err)
	}

	set, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if set.Name != "My Song" {
		t.Errorf("Name = %q, want %q", set.Name, "My Song")
	}

	if _, err := Open(filepath.Join(dir, "missing.als")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Open() missing file error = %v, want os.ErrNotExist", err)
	}
}

func TestIsGzip(t *testing.T) {
	if !IsGzip(gzipped(t, "x")) {
		t.Error("IsGzip() = false for gzip data")
	}
	if IsGzip([]byte("<?xml")) {
		t.Error("IsGzip() = true for XML")
	}
}

func TestTargetString(t *testing.T) {
	tests := []struct {
		target Target
		want   string
	}{
		{Target{Kind: TargetPitchBend}, "Pitch Bend"},
		{Target{Kind: TargetController, Controller: 1}, "CC 1 (Modulation)"},
		{Target{Kind: TargetController, Controller: 20}, "CC 20"},
		{Target{}, "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.target.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
