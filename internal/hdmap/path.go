// Package hdmap provides the road map geometry the planner consumes: lane
// centerline paths and a provider that cuts a drivable window out of a
// routing response around the vehicle position.
package hdmap

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"
)

// PathPoint is a single sampled point on a lane centerline path.
type PathPoint struct {
	Pos     r2.Vec
	Heading float64
	// S is the accumulated arc length from the start of the path, in meters.
	S      float64
	LaneID string
}

// Path is an ordered polyline of centerline points with accumulated
// station values. Paths are immutable once built.
type Path struct {
	points []PathPoint
}

// NewPath builds a path from points, recomputing heading and station from
// the geometry. Consecutive duplicate positions are collapsed.
func NewPath(points []PathPoint) *Path {
	pts := make([]PathPoint, 0, len(points))
	for _, p := range points {
		if n := len(pts); n > 0 && r2.Norm(r2.Sub(p.Pos, pts[n-1].Pos)) < 1e-9 {
			continue
		}
		pts = append(pts, p)
	}
	if len(pts) == 0 {
		return &Path{}
	}

	segs := make([]float64, len(pts))
	for i := 1; i < len(pts); i++ {
		segs[i] = r2.Norm(r2.Sub(pts[i].Pos, pts[i-1].Pos))
	}
	floats.CumSum(segs, segs)
	for i := range pts {
		pts[i].S = segs[i]
	}

	for i := 0; i < len(pts)-1; i++ {
		d := r2.Sub(pts[i+1].Pos, pts[i].Pos)
		pts[i].Heading = math.Atan2(d.Y, d.X)
	}
	if n := len(pts); n > 1 {
		pts[n-1].Heading = pts[n-2].Heading
	}

	return &Path{points: pts}
}

// Len returns the number of points on the path.
func (p *Path) Len() int { return len(p.points) }

// Points returns the path's points. Callers must not modify the slice.
func (p *Path) Points() []PathPoint { return p.points }

// Length returns the total arc length of the path in meters.
func (p *Path) Length() float64 {
	if len(p.points) == 0 {
		return 0
	}
	return p.points[len(p.points)-1].S
}

// NearestIndex returns the index of the path point closest to pos and the
// distance to it. An empty path returns -1 and +Inf.
func (p *Path) NearestIndex(pos r2.Vec) (int, float64) {
	best := -1
	bestDist := math.Inf(1)
	for i, pt := range p.points {
		if d := r2.Norm(r2.Sub(pos, pt.Pos)); d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best, bestDist
}
