package automation

// Resample turns the track into a dense, time-ordered sample list using
// quantum q. Output order follows keyframe order, so it is monotonic as long
// as the keyframes are. An empty track yields no samples.
func Resample(track Track, q float64) []SampledPoint {
	return ResampleScaled(track, q, nil)
}

// ResampleScaled is Resample with scale applied to every sampled value
// before rounding. Interpolation runs on the raw keyframe values, so a
// non-linear scale is honored at each sample rather than only at keyframes.
func ResampleScaled(track Track, q float64, scale func(float64) float64) []SampledPoint {
	kfs := track.Keyframes
	if len(kfs) == 0 {
		return nil
	}

	kinds := Classify(track)
	points := make([]point, 0, len(kfs))
	for i, k := range kfs {
		switch kinds[i] {
		case Affine:
			p := kfs[i-1]
			points = append(points, affine(p.Time, p.Value, k.Time, k.Value, q)...)
		case BezierCurve:
			if i+1 >= len(kfs) {
				continue
			}
			next := kfs[i+1]
			points = append(points, bezier(k.Time, k.Value, next.Time, next.Value, *k.ControlX, *k.ControlY, q)...)
		default:
			points = append(points, point{k.Time, k.Value})
		}
	}
	return roundPoints(points, scale)
}
