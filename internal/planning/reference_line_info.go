package planning

import (
	"fmt"
	"math"
)

// Thresholds for the initial per-obstacle intent. Downstream tasks refine
// these; frame assembly only needs a deterministic first classification.
const (
	// corridorHalfWidthM bounds the lateral window an obstacle must intrude
	// into to be considered at all.
	corridorHalfWidthM = 5.0
	// blockingLateralM bounds the lateral offset under which an obstacle
	// blocks the corridor rather than merely intruding.
	blockingLateralM = 1.2
	// movingSpeedMS separates moving obstacles from effectively static ones.
	movingSpeedMS = 0.5
)

// ReferenceLineInfo pairs one reference line candidate with its decision
// registry. The frame keeps one per candidate; the first candidate is the
// primary.
type ReferenceLineInfo struct {
	line     *ReferenceLine
	decision *PathDecision
}

// NewReferenceLineInfo wraps a reference line candidate with an empty
// decision registry.
func NewReferenceLineInfo(line *ReferenceLine) *ReferenceLineInfo {
	return &ReferenceLineInfo{line: line, decision: NewPathDecision()}
}

// Line returns the candidate's reference line.
func (ri *ReferenceLineInfo) Line() *ReferenceLine { return ri.line }

// Decision returns the candidate's decision registry.
func (ri *ReferenceLineInfo) Decision() *PathDecision { return ri.decision }

// AddObstacles projects each obstacle onto the candidate's line and
// registers its initial decision. It fails on a nil obstacle, a non-finite
// obstacle position, or a degenerate line, leaving no guarantee about
// decisions registered before the failure; callers discard the candidate.
func (ri *ReferenceLineInfo) AddObstacles(items []*Obstacle) error {
	if ri.line == nil {
		return fmt.Errorf("reference line is nil")
	}
	if ri.line.Len() < 2 {
		return fmt.Errorf("reference line has %d points, need at least 2", ri.line.Len())
	}
	for i, o := range items {
		if o == nil {
			return fmt.Errorf("obstacle %d is nil", i)
		}
		if math.IsNaN(o.Position.X) || math.IsNaN(o.Position.Y) {
			return fmt.Errorf("obstacle %s has NaN position", o.ID)
		}
		sl := ri.line.XYToSL(o.Position)
		ri.decision.Set(ObstacleDecision{
			ObstacleID:   o.ID,
			SL:           sl,
			Longitudinal: initialLongitudinal(sl, o),
			Lateral:      initialLateral(sl),
		})
	}
	return nil
}

// Projection clamps at the line's endpoints, so an obstacle beyond either
// end shows up with a large lateral offset; the corridor gate covers both
// the beside-the-line and the beyond-the-window cases.

// initialLongitudinal classifies the obstacle along the line: ignore
// anything not blocking the corridor, follow a moving blocker, yield to a
// static one.
func initialLongitudinal(sl SLPoint, o *Obstacle) DecisionType {
	if math.Abs(sl.L) >= blockingLateralM {
		return DecisionIgnore
	}
	if o.Speed() >= movingSpeedMS {
		return DecisionFollow
	}
	return DecisionYield
}

// initialLateral classifies the obstacle across the line: nudge anything
// inside the corridor that does not block it outright.
func initialLateral(sl SLPoint) DecisionType {
	if math.Abs(sl.L) > corridorHalfWidthM {
		return DecisionIgnore
	}
	if math.Abs(sl.L) >= blockingLateralM {
		return DecisionNudge
	}
	return DecisionIgnore
}
