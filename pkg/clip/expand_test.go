package clip

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"
)

func starts(notes []Note) []float64 {
	out := make([]float64, len(notes))
	for i, n := range notes {
		out[i] = n.Start
	}
	return out
}

func TestExpandLoopingClip(t *testing.T) {
	c := Clip{
		ID:          "bass",
		Start:       0,
		End:         8,
		LoopStart:   0,
		LoopEnd:     4,
		LoopEnabled: true,
		Notes:       []Note{{Pitch: 36, Start: 1, Duration: 1, Velocity: 100, Enabled: true}},
	}

	notes, err := Expand(c)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}

	expected := []Note{
		{Pitch: 36, Start: 1, Duration: 1, Velocity: 100, Enabled: true},
		{Pitch: 36, Start: 5, Duration: 1, Velocity: 100, Enabled: true},
	}
	if !reflect.DeepEqual(notes, expected) {
		t.Errorf("Expand() = %+v, want %+v", notes, expected)
	}
	if c.Notes[0].Start != 1 {
		t.Error("Expand() mutated the stored notes")
	}
}

func TestExpandNonLooping(t *testing.T) {
	c := Clip{
		ID:        "lead",
		Start:     16,
		End:       20,
		LoopStart: 0,
		LoopEnd:   2,
		Notes: []Note{
			{Pitch: 60, Start: 0, Duration: 0.5, Velocity: 90},
			{Pitch: 62, Start: 3.5, Duration: 0.5, Velocity: 90},
			{Pitch: 64, Start: 4, Duration: 0.5, Velocity: 90},
			{Pitch: 65, Start: -1, Duration: 0.5, Velocity: 90},
		},
	}

	notes, err := Expand(c)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}

	if got, want := starts(notes), []float64{16, 19.5}; !reflect.DeepEqual(got, want) {
		t.Errorf("Expand() starts = %v, want %v", got, want)
	}
	if notes[1].Pitch != 62 {
		t.Errorf("second note pitch = %d, want 62", notes[1].Pitch)
	}
}

func TestExpandLoopOffsets(t *testing.T) {
	tests := []struct {
		name     string
		clip     Clip
		expected []float64
	}{
		{
			name: "partial final loop",
			clip: Clip{Start: 4, End: 10, LoopStart: 0, LoopEnd: 4, LoopEnabled: true,
				Notes: []Note{{Pitch: 60, Start: 1}, {Pitch: 62, Start: 3}}},
			// tiles at 4 and 8; the second tile is cut at 10
			expected: []float64{5, 9, 7},
		},
		{
			name: "loop window inside clip content",
			clip: Clip{Start: 0, End: 4, LoopStart: 2, LoopEnd: 4, LoopEnabled: true,
				Notes: []Note{{Pitch: 60, Start: 2.5}, {Pitch: 62, Start: 1}}},
			// the note before the loop window falls before the clip start
			expected: []float64{0.5, 2.5},
		},
		{
			name: "note before start marker",
			clip: Clip{Start: 0, End: 8, LoopStart: 0, LoopEnd: 4, StartRelative: 2, LoopEnabled: true,
				Notes: []Note{{Pitch: 60, Start: 1}, {Pitch: 62, Start: 3}}},
			// 1 maps to -1 and is heard one loop later
			expected: []float64{3, 7, 1, 5},
		},
		{
			name: "clip shorter than one loop",
			clip: Clip{Start: 0, End: 2, LoopStart: 0, LoopEnd: 4, LoopEnabled: true,
				Notes: []Note{{Pitch: 60, Start: 1}, {Pitch: 62, Start: 3}}},
			expected: []float64{1},
		},
		{
			name: "note outside loop window while looping",
			clip: Clip{Start: 0, End: 12, LoopStart: 0, LoopEnd: 4, LoopEnabled: true,
				Notes: []Note{{Pitch: 60, Start: 5}}},
			expected: []float64{5},
		},
		{
			name:     "no notes",
			clip:     Clip{Start: 0, End: 4, LoopStart: 0, LoopEnd: 4, LoopEnabled: true},
			expected: []float64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notes, err := Expand(tt.clip)
			if err != nil {
				t.Fatalf("Expand() error = %v", err)
			}
			if got := starts(notes); !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Expand() starts = %v, want %v", got, tt.expected)
			}
			for _, n := range notes {
				if n.Start < tt.clip.Start || n.Start >= tt.clip.End {
					t.Errorf("note at %v outside [%v, %v)", n.Start, tt.clip.Start, tt.clip.End)
				}
			}
		})
	}
}

func TestExpandCopiesNoteFields(t *testing.T) {
	c := Clip{Start: 0, End: 4, LoopStart: 0, LoopEnd: 1, LoopEnabled: true,
		Notes: []Note{{Pitch: 42, Start: 0.5, Duration: 0.25, Velocity: 77, Enabled: false}}}

	notes, err := Expand(c)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if len(notes) != 4 {
		t.Fatalf("Expand() returned %d notes, want 4", len(notes))
	}
	for i, n := range notes {
		if n.Pitch != 42 || n.Duration != 0.25 || n.Velocity != 77 || n.Enabled {
			t.Errorf("notes[%d] = %+v, fields not copied", i, n)
		}
		if n.Start != 0.5+float64(i) {
			t.Errorf("notes[%d].Start = %v, want %v", i, n.Start, 0.5+float64(i))
		}
	}
}

func TestExpandInvalidGeometry(t *testing.T) {
	tests := []struct {
		name string
		clip Clip
	}{
		{"empty span", Clip{ID: "a", Start: 4, End: 4}},
		{"reversed span", Clip{ID: "b", Start: 4, End: 2}},
		{"empty loop", Clip{ID: "c", Start: 0, End: 4, LoopStart: 2, LoopEnd: 2, LoopEnabled: true}},
		{"infinite end", Clip{ID: "d", Start: 0, End: math.Inf(1), LoopStart: 0, LoopEnd: 4, LoopEnabled: true,
			Notes: []Note{{Pitch: 60, Start: 1}}}},
		{"nan loop start", Clip{ID: "e", Start: 0, End: 4, LoopStart: math.NaN(), LoopEnd: 4, LoopEnabled: true}},
		{"infinite start offset", Clip{ID: "f", Start: 0, End: 4, LoopEnd: 4, StartRelative: math.Inf(-1)}},
		{"too many repeats", Clip{ID: "g", Start: 0, End: 1e6, LoopStart: 0, LoopEnd: 1e-3, LoopEnabled: true}},
		{"infinite note duration", Clip{ID: "h", Start: 0, End: 4, Notes: []Note{{Pitch: 60, Start: 1, Duration: math.Inf(1)}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notes, err := Expand(tt.clip)
			if err == nil {
				t.Fatalf("Expand() = %v, want error", notes)
			}
			var gerr *GeometryError
			if !errors.As(err, &gerr) {
				t.Fatalf("Expand() error type = %T, want *GeometryError", err)
			}
			if gerr.ClipID != tt.clip.ID {
				t.Errorf("GeometryError.ClipID = %q, want %q", gerr.ClipID, tt.clip.ID)
			}
		})
	}
}

func TestExpandFarFromOrigin(t *testing.T) {
	// at this magnitude adding one loop length at a time no longer advances
	c := Clip{ID: "far", Start: 1e17, End: 1e17 + 64, LoopStart: 0, LoopEnd: 1, LoopEnabled: true,
		Notes: []Note{{Pitch: 60, Start: 0.5}}}

	done := make(chan []Note, 1)
	go func() {
		notes, err := Expand(c)
		if err != nil {
			t.Errorf("Expand() error = %v", err)
		}
		done <- notes
	}()

	select {
	case notes := <-done:
		if limit := int(c.repeats()) + 1; len(notes) > limit {
			t.Errorf("Expand() returned %d notes, want at most %d", len(notes), limit)
		}
		for _, n := range notes {
			if n.Start < c.Start || n.Start >= c.End {
				t.Errorf("note at %v outside [%v, %v)", n.Start, c.Start, c.End)
			}
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Expand() did not return")
	}
}

func TestExpandLargeStartOffset(t *testing.T) {
	// start marker many loops into the clip content
	c := Clip{Start: 0, End: 8, LoopStart: 0, LoopEnd: 4, StartRelative: 4000, LoopEnabled: true,
		Notes: []Note{{Pitch: 60, Start: 1}}}

	notes, err := Expand(c)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if got := starts(notes); !reflect.DeepEqual(got, []float64{1, 5}) {
		t.Errorf("Expand() starts = %v, want [1 5]", got)
	}
}

func TestExpandLoopBoundsIgnoredWhenNotLooping(t *testing.T) {
	c := Clip{Start: 0, End: 4, LoopStart: 2, LoopEnd: 2, Notes: []Note{{Pitch: 60, Start: 3}}}

	notes, err := Expand(c)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if got := starts(notes); !reflect.DeepEqual(got, []float64{1}) {
		t.Errorf("Expand() starts = %v, want [1]", got)
	}
}
