package automation

import "math"

// MaxSamples bounds the samples generated for a track, and for any single
// segment. Longer segments are not expanded; ValidateQuantum reports them.
const MaxSamples = 1 << 22

// ratioEpsilon absorbs floating point error when dt/q lands just below an integer
const ratioEpsilon = 1e-9

// point is a sample before rounding
type point struct {
	t, v float64
}

// AffineSample linearly interpolates from (t1, v1) to (t2, v2), emitting
// floor((t2-t1)/q) evenly spaced points. The point at t1 is not emitted; the
// last point lands on t2.
func AffineSample(t1, v1, t2, v2, q float64) []SampledPoint {
	return roundPoints(affine(t1, v1, t2, v2, q), nil)
}

// BezierSample evaluates the single-handle cubic curve from (t1, v1) to
// (t2, v2). Both interior control points sit at (t1+cx*dt, v1+cy*dv). The
// curve parameter runs over i/n for i in [0, n), so the first sample is
// (t1, v1) and the end point is never reached.
func BezierSample(t1, v1, t2, v2, cx, cy, q float64) []SampledPoint {
	return roundPoints(bezier(t1, v1, t2, v2, cx, cy, q), nil)
}

func affine(t1, v1, t2, v2, q float64) []point {
	n := sampleCount(t1, t2, q)
	if n == 0 {
		return nil
	}

	a := (v2 - v1) / (t2 - t1)
	b := v1 - a*t1
	step := (t2 - t1) / float64(n)

	points := make([]point, 0, n)
	for i := 1; i <= n; i++ {
		t := t1 + float64(i)*step
		points = append(points, point{t, a*t + b})
	}
	return points
}

func bezier(t1, v1, t2, v2, cx, cy, q float64) []point {
	n := sampleCount(t1, t2, q)
	if n == 0 {
		return nil
	}

	dt := t2 - t1
	dv := v2 - v1
	handle := [2]float64{t1 + cx*dt, v1 + cy*dv}
	ctrl := [4][2]float64{{t1, v1}, handle, handle, {t2, v2}}

	points := make([]point, 0, n)
	for i := 0; i < n; i++ {
		p := deCasteljau(ctrl, float64(i)/float64(n))
		points = append(points, point{p[0], p[1]})
	}
	return points
}

// deCasteljau blends adjacent control points in place until one remains
func deCasteljau(ctrl [4][2]float64, u float64) [2]float64 {
	for k := len(ctrl) - 1; k > 0; k-- {
		for i := 0; i < k; i++ {
			ctrl[i][0] = (1-u)*ctrl[i][0] + u*ctrl[i+1][0]
			ctrl[i][1] = (1-u)*ctrl[i][1] + u*ctrl[i+1][1]
		}
	}
	return ctrl[0]
}

// segmentRatio returns (t2-t1)/q, snapped up to the next integer when it
// falls short of it only by rounding error.
func segmentRatio(t1, t2, q float64) float64 {
	r := (t2 - t1) / q
	if next := math.Ceil(r); next-r <= ratioEpsilon*next {
		return next
	}
	return r
}

func sampleCount(t1, t2, q float64) int {
	if q <= 0 || !(t2 > t1) || math.IsInf(t2-t1, 0) {
		return 0
	}
	r := segmentRatio(t1, t2, q)
	if r > MaxSamples {
		return 0
	}
	return int(math.Floor(r))
}

// roundPoints maps each value through scale, when set, and rounds it
func roundPoints(points []point, scale func(float64) float64) []SampledPoint {
	if len(points) == 0 {
		return nil
	}
	out := make([]SampledPoint, len(points))
	for i, p := range points {
		v := p.v
		if scale != nil {
			v = scale(v)
		}
		out[i] = SampledPoint{Time: p.t, Value: Round(v)}
	}
	return out
}

// Round rounds to the nearest integer, ties toward zero
func Round(x float64) int {
	if x >= 0 {
		return int(math.Ceil(x - 0.5))
	}
	return int(math.Floor(x + 0.5))
}
