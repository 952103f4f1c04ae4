package converter

import (
	"github.com/james-see/als2midi/pkg/automation"
	"github.com/james-see/als2midi/pkg/liveset"
)

const (
	pitchBendMin = -8192
	pitchBendMax = 8191
)

// VolumeToCC maps Live's mixer gain, [0,1] -> [0,100] and [1,2] -> [100,127]
func VolumeToCC(v float64) float64 {
	if v <= 1 {
		return v * 100
	}
	return 100 + (v-1)*27
}

// PanToCC maps Live's pan, [-1,1] -> [0,127]
func PanToCC(v float64) float64 {
	return (v + 1) * 127 / 2
}

// scaler returns the sample value mapping for a target, nil when values pass through
func scaler(t liveset.Target) func(float64) float64 {
	switch t.Kind {
	case liveset.TargetVolume:
		return VolumeToCC
	case liveset.TargetPan:
		return PanToCC
	default:
		return nil
	}
}

// Clamp limits a sampled value to the range its MIDI message can carry
func Clamp(t liveset.Target, v int) int {
	switch t.Kind {
	case liveset.TargetPitchBend:
		return min(max(v, pitchBendMin), pitchBendMax)
	case liveset.TargetTempo:
		return max(v, 1)
	default:
		return min(max(v, 0), 127)
	}
}

// renderStream resamples one automation track, then rescales and clamps
// every sample for its target
func renderStream(target liveset.Target, track automation.Track, q, offset float64) (Stream, error) {
	if err := automation.Validate(track); err != nil {
		return Stream{}, err
	}
	if err := automation.ValidateQuantum(track, q); err != nil {
		return Stream{}, err
	}

	points := automation.ResampleScaled(track, q, scaler(target))
	for i := range points {
		points[i].Time += offset
		points[i].Value = Clamp(target, points[i].Value)
	}
	return Stream{Target: target, Points: points}, nil
}
