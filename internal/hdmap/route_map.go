package hdmap

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/M-Vagrant/apollo/internal/msg"
)

// DefaultSnapMaxM is the snap tolerance used when none is configured.
const DefaultSnapMaxM = 10.0

// RouteMap is an in-memory PathProvider backed by registered lane
// centerlines. Lanes are stitched in routing order and the result is
// clipped to the requested window around the vehicle.
type RouteMap struct {
	snapMax float64
	lanes   map[string][]r2.Vec
}

// NewRouteMap creates an empty route map. snapMaxM is the largest distance
// the vehicle may be from the routed centerline before path creation fails;
// values <= 0 fall back to DefaultSnapMaxM.
func NewRouteMap(snapMaxM float64) *RouteMap {
	if snapMaxM <= 0 {
		snapMaxM = DefaultSnapMaxM
	}
	return &RouteMap{
		snapMax: snapMaxM,
		lanes:   make(map[string][]r2.Vec),
	}
}

// AddLane registers a lane centerline under id, replacing any previous
// centerline with the same id. A centerline needs at least two points.
func (m *RouteMap) AddLane(id string, centerline []r2.Vec) error {
	if len(centerline) < 2 {
		return fmt.Errorf("hdmap: lane %q has %d points, need at least 2", id, len(centerline))
	}
	line := make([]r2.Vec, len(centerline))
	copy(line, centerline)
	m.lanes[id] = line
	return nil
}

// LaneCount returns the number of registered lanes.
func (m *RouteMap) LaneCount() int { return len(m.lanes) }

// CreatePathFromRouting implements PathProvider. It concatenates the routed
// lane centerlines, locates the vertex nearest pos, and clips the path to
// [s-lookBackward, s+lookForward]. Station on the returned path restarts
// at zero.
func (m *RouteMap) CreatePathFromRouting(routing msg.RoutingResponse, pos r2.Vec, lookBackward, lookForward float64) (*Path, error) {
	if len(routing.Lanes) == 0 {
		return nil, ErrEmptyRouting
	}

	var pts []PathPoint
	for _, seg := range routing.Lanes {
		line, ok := m.lanes[seg.ID]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownLane, seg.ID)
		}
		for _, v := range line {
			pts = append(pts, PathPoint{Pos: v, LaneID: seg.ID})
		}
	}

	full := NewPath(pts)
	idx, dist := full.NearestIndex(pos)
	if idx < 0 || dist > m.snapMax {
		return nil, fmt.Errorf("%w: nearest vertex %.2fm away, tolerance %.2fm", ErrOffRoute, dist, m.snapMax)
	}

	s0 := full.Points()[idx].S
	lo := s0 - lookBackward
	hi := s0 + lookForward
	var window []PathPoint
	for _, p := range full.Points() {
		if p.S >= lo-1e-9 && p.S <= hi+1e-9 {
			window = append(window, p)
		}
	}
	return NewPath(window), nil
}
