package planning

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"
)

// ReferencePoint is one sample on a smoothed reference line.
type ReferencePoint struct {
	Pos     r2.Vec
	Heading float64
	Kappa   float64
	// S is the station on the line, accumulated arc length in meters.
	S float64
}

// SLPoint locates a position relative to a reference line: S is the station
// of the projection, L the signed lateral offset (left of travel positive).
type SLPoint struct {
	S float64
	L float64
}

// ReferenceLine is an immutable smoothed centerline. Instances are produced
// by a Smoother and shared read-only between the frame, its candidates and
// the diagnostics monitor.
type ReferenceLine struct {
	points []ReferencePoint
	length float64
}

// NewReferenceLine builds a line from points ordered by increasing station.
func NewReferenceLine(points []ReferencePoint) *ReferenceLine {
	pts := make([]ReferencePoint, len(points))
	copy(pts, points)
	rl := &ReferenceLine{points: pts}
	if n := len(pts); n > 0 {
		rl.length = pts[n-1].S
	}
	return rl
}

// Len returns the number of points on the line.
func (rl *ReferenceLine) Len() int { return len(rl.points) }

// Length returns the line's total arc length in meters.
func (rl *ReferenceLine) Length() float64 { return rl.length }

// Points returns a copy of the line's points.
func (rl *ReferenceLine) Points() []ReferencePoint {
	out := make([]ReferencePoint, len(rl.points))
	copy(out, rl.points)
	return out
}

// PointAt returns the interpolated point at station s, clamped to the
// line's extent.
func (rl *ReferenceLine) PointAt(s float64) ReferencePoint {
	n := len(rl.points)
	if n == 0 {
		return ReferencePoint{}
	}
	if s <= rl.points[0].S {
		return rl.points[0]
	}
	if s >= rl.points[n-1].S {
		return rl.points[n-1]
	}

	// First point with station >= s; its predecessor starts the segment.
	i := sort.Search(n, func(k int) bool { return rl.points[k].S >= s })
	a, b := rl.points[i-1], rl.points[i]
	ds := b.S - a.S
	if ds <= 0 {
		return a
	}
	t := (s - a.S) / ds
	return ReferencePoint{
		Pos:     r2.Add(a.Pos, r2.Scale(t, r2.Sub(b.Pos, a.Pos))),
		Heading: a.Heading + t*normalizeAngle(b.Heading-a.Heading),
		Kappa:   a.Kappa + t*(b.Kappa-a.Kappa),
		S:       s,
	}
}

// XYToSL projects pos onto the line and returns its station and signed
// lateral offset. The projection clamps to the line's endpoints.
func (rl *ReferenceLine) XYToSL(pos r2.Vec) SLPoint {
	n := len(rl.points)
	if n == 0 {
		return SLPoint{}
	}
	if n == 1 {
		return SLPoint{
			S: rl.points[0].S,
			L: r2.Norm(r2.Sub(pos, rl.points[0].Pos)),
		}
	}

	best := SLPoint{}
	bestDist := math.Inf(1)
	for i := 0; i < n-1; i++ {
		a := rl.points[i]
		b := rl.points[i+1]
		d := r2.Sub(b.Pos, a.Pos)
		segLen2 := r2.Norm2(d)
		if segLen2 == 0 {
			continue
		}
		t := r2.Dot(r2.Sub(pos, a.Pos), d) / segLen2
		t = math.Max(0, math.Min(1, t))
		proj := r2.Add(a.Pos, r2.Scale(t, d))
		off := r2.Sub(pos, proj)
		dist := r2.Norm(off)
		if dist < bestDist {
			bestDist = dist
			l := dist
			if r2.Cross(d, off) < 0 {
				l = -l
			}
			best = SLPoint{S: a.S + t*math.Sqrt(segLen2), L: l}
		}
	}
	return best
}

// normalizeAngle wraps an angle to (-pi, pi].
func normalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}
