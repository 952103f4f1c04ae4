// Package automation rebuilds dense parameter curves from sparse keyframes
package automation

import "fmt"

// Keyframe is one authored point on a parameter curve.
// ControlX/ControlY locate a symmetric Bezier handle between this keyframe
// and the next, as fractions of the segment's time and value span.
type Keyframe struct {
	Time     float64
	Value    float64
	ControlX *float64
	ControlY *float64
}

// Point returns a keyframe without curve handles
func Point(time, value float64) Keyframe {
	return Keyframe{Time: time, Value: value}
}

// Curve returns a keyframe whose outgoing segment is a Bezier curve
func Curve(time, value, cx, cy float64) Keyframe {
	return Keyframe{Time: time, Value: value, ControlX: &cx, ControlY: &cy}
}

// HasControl reports whether both handle offsets are present
func (k Keyframe) HasControl() bool {
	return k.ControlX != nil && k.ControlY != nil
}

// Track is an ordered keyframe sequence for a single automated parameter
type Track struct {
	ID        string
	Keyframes []Keyframe
}

// Len returns the number of keyframes
func (t Track) Len() int {
	return len(t.Keyframes)
}

// SegmentKind labels how the transition at a keyframe is rendered
type SegmentKind int

const (
	None SegmentKind = iota
	Init
	Break
	Affine
	BezierCurve
	EndCurve
)

func (k SegmentKind) String() string {
	switch k {
	case None:
		return "none"
	case Init:
		return "init"
	case Break:
		return "break"
	case Affine:
		return "affine"
	case BezierCurve:
		return "bezier"
	case EndCurve:
		return "end-curve"
	default:
		return fmt.Sprintf("SegmentKind(%d)", int(k))
	}
}

// SampledPoint is one densely sampled output event
type SampledPoint struct {
	Time  float64
	Value int
}
