package planning

import (
	"fmt"
	"math"

	"github.com/M-Vagrant/apollo/internal/msg"
)

// Frame holds everything one planning cycle works on: the cycle's inputs,
// the synthesized reference line candidates, the obstacle index and the
// output trajectory record. A frame is built, initialized and consumed
// within a single cycle; only FrameHistory shares it afterwards, read-only.
type Frame struct {
	seq uint32

	localization  msg.LocalizationEstimate
	routing       msg.RoutingResponse
	prediction    msg.PredictionObstacles
	planningStart msg.TrajectoryPoint
	aligned       bool

	trajectory msg.ADCTrajectory

	initialized  bool
	smootherCfg  SmootherConfig
	lines        []*ReferenceLine
	infos        []*ReferenceLineInfo
	obstacles    *IndexedObstacles
	pathDecision *PathDecision
}

// InitDeps carries the collaborators and flags Init needs. The provider is
// injected per cycle; frames never reach for globals.
type InitDeps struct {
	Provider         LineProvider
	EnablePrediction bool
}

// NewFrame creates an uninitialized frame. The sequence number is fixed for
// the frame's lifetime.
func NewFrame(seq uint32) *Frame {
	return &Frame{seq: seq}
}

// SetLocalization attaches the cycle's pose estimate.
func (f *Frame) SetLocalization(loc msg.LocalizationEstimate) { f.localization = loc }

// SetRouting attaches the cycle's routing response.
func (f *Frame) SetRouting(routing msg.RoutingResponse) { f.routing = routing }

// SetPrediction attaches the cycle's prediction message. The message is
// still on the prediction time base until AlignPredictionTime runs.
func (f *Frame) SetPrediction(pred msg.PredictionObstacles) {
	f.prediction = pred
	f.aligned = false
}

// SetPlanningStartPoint attaches the stitching point the next trajectory
// starts from.
func (f *Frame) SetPlanningStartPoint(tp msg.TrajectoryPoint) { f.planningStart = tp }

// AlignPredictionTime rebases the attached prediction's relative times onto
// planningHeaderTime. The rebase happens exactly once per attached message;
// repeated calls are no-ops.
func (f *Frame) AlignPredictionTime(planningHeaderTime float64) {
	if f.aligned {
		return
	}
	AlignPredictionTime(&f.prediction, planningHeaderTime)
	f.aligned = true
}

// Init runs the frame initialization pipeline in order: provider wired,
// pose valid, smoother config captured, reference lines synthesized,
// obstacles materialized when prediction is enabled, obstacles attached to
// every candidate, primary selected. It fails fast with a classified error
// and commits at the end, so a failed frame exposes no partial state.
func (f *Frame) Init(deps InitDeps) error {
	const op = "frame.Init"

	if deps.Provider == nil || !deps.Provider.Ready() {
		return newError(KindConfiguration, op, "reference line provider not wired")
	}

	pos := f.localization.Pose.Position
	if math.IsNaN(pos.X) || math.IsNaN(pos.Y) {
		return newError(KindInvalidInput, op, "pose position is NaN: x=%v y=%v", pos.X, pos.Y)
	}

	smootherCfg := deps.Provider.SmootherConfig()

	lines, err := deps.Provider.CreateFromRouting(pos.Vec2(), f.routing)
	if err != nil {
		return wrapError(KindReferenceLine, op, err)
	}
	if len(lines) == 0 {
		return newError(KindReferenceLine, op, "provider returned no reference line")
	}

	obstacles := NewIndexedObstacles()
	if deps.EnablePrediction {
		for _, o := range CreateObstacles(f.prediction) {
			obstacles.Add(o)
		}
	}

	infos := make([]*ReferenceLineInfo, 0, len(lines))
	for i, line := range lines {
		info := NewReferenceLineInfo(line)
		if err := info.AddObstacles(obstacles.Items()); err != nil {
			return wrapError(KindObstacleAttach, op, fmt.Errorf("candidate %d: %w", i, err))
		}
		infos = append(infos, info)
	}

	f.smootherCfg = smootherCfg
	f.lines = lines
	f.infos = infos
	f.obstacles = obstacles
	f.pathDecision = infos[0].Decision()
	f.initialized = true
	return nil
}

// Initialized reports whether Init completed successfully.
func (f *Frame) Initialized() bool { return f.initialized }

// SequenceNum returns the frame's cycle sequence number.
func (f *Frame) SequenceNum() uint32 { return f.seq }

// Localization returns the attached pose estimate.
func (f *Frame) Localization() msg.LocalizationEstimate { return f.localization }

// Prediction returns the attached prediction message, aligned if
// AlignPredictionTime has run.
func (f *Frame) Prediction() msg.PredictionObstacles { return f.prediction }

// PlanningStartPoint returns the attached stitching point.
func (f *Frame) PlanningStartPoint() msg.TrajectoryPoint { return f.planningStart }

// ReferenceLine returns the primary reference line, nil before a
// successful Init.
func (f *Frame) ReferenceLine() *ReferenceLine {
	if !f.initialized {
		return nil
	}
	return f.lines[0]
}

// ReferenceLineInfos returns the candidates in provider order, nil before
// a successful Init.
func (f *Frame) ReferenceLineInfos() []*ReferenceLineInfo {
	if !f.initialized {
		return nil
	}
	out := make([]*ReferenceLineInfo, len(f.infos))
	copy(out, f.infos)
	return out
}

// PathDecision returns the primary candidate's decision registry, nil
// before a successful Init. The registry is shared with the candidate, not
// copied.
func (f *Frame) PathDecision() *PathDecision {
	if !f.initialized {
		return nil
	}
	return f.pathDecision
}

// Obstacles returns the frame's obstacle index, nil before a successful
// Init.
func (f *Frame) Obstacles() *IndexedObstacles {
	if !f.initialized {
		return nil
	}
	return f.obstacles
}

// SmootherConfig returns the smoother configuration captured by Init.
func (f *Frame) SmootherConfig() SmootherConfig { return f.smootherCfg }

// MutableTrajectory returns the frame's output record for downstream
// stages to fill.
func (f *Frame) MutableTrajectory() *msg.ADCTrajectory { return &f.trajectory }

// Trajectory returns the current output record.
func (f *Frame) Trajectory() msg.ADCTrajectory { return f.trajectory }

// DebugString identifies the frame in logs and diagnostics.
func (f *Frame) DebugString() string {
	return fmt.Sprintf("Frame: %d", f.seq)
}
