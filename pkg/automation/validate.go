package automation

import (
	"fmt"
	"math"
)

// KeyframeError reports a keyframe that cannot be resampled
type KeyframeError struct {
	Track  string
	Index  int
	Reason string
}

func (e *KeyframeError) Error() string {
	return fmt.Sprintf("track %q: keyframe %d: %s", e.Track, e.Index, e.Reason)
}

// Validate checks that the track can be resampled without producing garbage.
// An empty track is valid.
func Validate(track Track) error {
	for i, k := range track.Keyframes {
		fail := func(format string, args ...any) error {
			return &KeyframeError{Track: track.ID, Index: i, Reason: fmt.Sprintf(format, args...)}
		}

		if !finite(k.Time) || !finite(k.Value) {
			return fail("non-finite time or value (%v, %v)", k.Time, k.Value)
		}
		if k.Time < 0 {
			return fail("negative time %v", k.Time)
		}
		if (k.ControlX == nil) != (k.ControlY == nil) {
			return fail("curve handle needs both x and y offsets")
		}
		if k.HasControl() && (!finite(*k.ControlX) || !finite(*k.ControlY)) {
			return fail("non-finite curve handle")
		}
		if i > 0 && k.Time < track.Keyframes[i-1].Time {
			return fail("time %v before previous keyframe at %v", k.Time, track.Keyframes[i-1].Time)
		}
	}
	return nil
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// ValidateQuantum checks that resampling the track at quantum q stays within
// MaxSamples. The track is expected to have passed Validate.
func ValidateQuantum(track Track, q float64) error {
	if !(q > 0) || math.IsInf(q, 0) {
		return fmt.Errorf("quantum must be positive and finite, got %v", q)
	}

	var total float64
	for i := 1; i < len(track.Keyframes); i++ {
		prev, k := track.Keyframes[i-1], track.Keyframes[i]
		total += segmentRatio(prev.Time, k.Time, q)
		if total > MaxSamples {
			return &KeyframeError{
				Track:  track.ID,
				Index:  i,
				Reason: fmt.Sprintf("time %v needs more than %d samples at quantum %v", k.Time, MaxSamples, q),
			}
		}
	}
	return nil
}
