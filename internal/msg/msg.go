// Package msg defines the canonical in-process model of the upstream
// messages the planner consumes each cycle: a localization estimate, a
// routing response, and a set of predicted obstacle trajectories. All
// downstream packages (map path extraction, frame assembly, recording)
// consume this model rather than the upstream wire encodings.
package msg

import "gonum.org/v1/gonum/spatial/r2"

// Header carries the metadata every upstream message arrives with. Each
// producing pipeline stamps its own clock, so timestamps from different
// headers are not directly comparable without rebasing.
type Header struct {
	// TimestampSec is the producing module's publish time in seconds.
	TimestampSec float64
	// Module names the producing pipeline, e.g. "localization".
	Module string
	// Sequence is the producer's own message counter.
	Sequence uint32
}

// PointENU is a position in the local east-north-up frame, metres.
type PointENU struct {
	X float64
	Y float64
	Z float64
}

// Vec2 returns the planar (east, north) components as an r2 vector.
func (p PointENU) Vec2() r2.Vec {
	return r2.Vec{X: p.X, Y: p.Y}
}

// Pose is the vehicle state reported by localization.
type Pose struct {
	Position PointENU
	// Heading is measured counter-clockwise from east, radians.
	Heading float64
	// LinearVelocity is the planar velocity, m/s.
	LinearVelocity r2.Vec
}

// LocalizationEstimate is one localization message.
type LocalizationEstimate struct {
	Header Header
	Pose   Pose
}

// TrajectoryPoint is a single sample on a planned or predicted path.
type TrajectoryPoint struct {
	// Position in the local frame, metres.
	Position r2.Vec
	// Theta is the heading at this point, radians.
	Theta float64
	// Kappa is the path curvature, 1/m.
	Kappa float64
	// S is the accumulated distance along the path, metres.
	S float64
	// V is the speed at this point, m/s.
	V float64
	// A is the acceleration at this point, m/s^2.
	A float64
	// RelativeTime is the offset from the owning message's header
	// timestamp, seconds. It is NOT wall-clock time.
	RelativeTime float64
}

// LaneSegment identifies one lane of the road-level route.
type LaneSegment struct {
	ID string
}

// RoutingResponse is the road-level route produced by the routing module.
// The planner derives map paths from it; it carries no geometry itself.
type RoutingResponse struct {
	Header Header
	Lanes  []LaneSegment
}

// PredictedTrajectory is one hypothesis for an agent's future motion.
type PredictedTrajectory struct {
	Probability float64
	Points      []TrajectoryPoint
}

// PredictionObstacle is one forecast agent from the prediction module.
type PredictionObstacle struct {
	// ID is assigned by perception and stable across this message only.
	ID       string
	Position PointENU
	Heading  float64
	Velocity r2.Vec
	// Length and Width describe the agent's bounding box, metres.
	Length float64
	Width  float64
	// Trajectories holds zero or more motion hypotheses. Their points'
	// RelativeTime values are offsets from this message's header.
	Trajectories []PredictedTrajectory
}

// PredictionObstacles is one prediction message: all forecast agents
// sharing a single time base.
type PredictionObstacles struct {
	Header    Header
	Obstacles []PredictionObstacle
}

// ADCTrajectory is the planner's output record for one cycle. Frame
// assembly leaves it empty; downstream trajectory generation fills it.
type ADCTrajectory struct {
	Header          Header
	TotalPathLength float64
	TotalTime       float64
	Points          []TrajectoryPoint
	// Gear is the requested gear position, e.g. "DRIVE".
	Gear string
}
