package automation

// Classify labels every keyframe of the track with the segment kind that
// decides how it is rendered. Labels depend only on the keyframe and its
// predecessor.
func Classify(track Track) []SegmentKind {
	kinds := make([]SegmentKind, len(track.Keyframes))
	for i, k := range track.Keyframes {
		if i == 0 {
			kinds[i] = Init
			continue
		}
		kinds[i] = classifyPair(track.Keyframes[i-1], k)
	}
	return kinds
}

func classifyPair(p, k Keyframe) SegmentKind {
	switch {
	case k.HasControl():
		// the curve runs from k to its successor
		return BezierCurve
	case p.Time == k.Time:
		return Break
	case !p.HasControl() && p.Value != k.Value:
		return Affine
	case p.HasControl():
		return EndCurve
	default:
		return None
	}
}
