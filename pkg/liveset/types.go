// Package liveset reads Ableton Live sets into keyframe tracks and clips
package liveset

import (
	"fmt"

	"github.com/james-see/als2midi/pkg/automation"
	"github.com/james-see/als2midi/pkg/clip"
)

// TargetKind identifies what an automation stream drives in MIDI terms
type TargetKind int

const (
	TargetUnknown TargetKind = iota
	TargetTempo
	TargetController
	TargetPitchBend
	TargetChannelPressure
	TargetVolume
	TargetPan
)

// Target is the semantic destination of an automation stream
type Target struct {
	Kind       TargetKind
	Controller uint8 // CC number, only for TargetController
}

// Well-known controller numbers
const (
	CCVolume = 7
	CCPan    = 10
)

var controllerNames = map[uint8]string{
	0:   "Bank Select",
	1:   "Modulation",
	2:   "Breath",
	4:   "Foot Pedal",
	5:   "Portamento Time",
	6:   "Data Entry",
	7:   "Volume",
	8:   "Balance",
	10:  "Pan",
	11:  "Expression",
	12:  "Effect Control 1",
	13:  "Effect Control 2",
	64:  "Hold Pedal",
	65:  "Portamento On/Off",
	66:  "Sostenuto Pedal",
	67:  "Soft Pedal",
	68:  "Legato Pedal",
	69:  "Hold Pedal 2",
	96:  "Data Entry Increment",
	97:  "Data Entry Decrement",
	98:  "NRPN LSB",
	99:  "NRPN MSB",
	100: "RPN LSB",
	101: "RPN MSB",
}

func (t Target) String() string {
	switch t.Kind {
	case TargetTempo:
		return "Tempo"
	case TargetPitchBend:
		return "Pitch Bend"
	case TargetChannelPressure:
		return "Channel Pressure"
	case TargetVolume:
		return "Volume"
	case TargetPan:
		return "Pan"
	case TargetController:
		if name, ok := controllerNames[t.Controller]; ok {
			return fmt.Sprintf("CC %d (%s)", t.Controller, name)
		}
		return fmt.Sprintf("CC %d", t.Controller)
	default:
		return "Unknown"
	}
}

// LiveSet is a parsed Live project
type LiveSet struct {
	Name     string
	Tempo    float64 // static tempo in BPM
	TempoMap automation.Track
	Tracks   []Track
}

// Track is a MIDI track of the arrangement
type Track struct {
	ID          string
	Name        string
	Volume      automation.Track
	Pan         automation.Track
	Clips       []Clip
	Controllers map[int]Target // pointee id -> target
}

// Clip is an arrangement clip with its clip envelopes
type Clip struct {
	clip.Clip
	Name      string
	Envelopes []Envelope
}

// Envelope is a clip automation envelope
type Envelope struct {
	PointeeID int
	Target    Target
	Keyframes automation.Track
}

// NoteCount returns the number of stored notes across all clips
func (t Track) NoteCount() int {
	n := 0
	for _, c := range t.Clips {
		n += len(c.Notes)
	}
	return n
}
