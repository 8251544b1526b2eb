package planning

import (
	"context"
	"encoding/json"
	"time"

	"github.com/M-Vagrant/apollo/internal/monitoring"
	"github.com/M-Vagrant/apollo/internal/msg"
	"github.com/M-Vagrant/apollo/internal/timeutil"
)

// Cycle statuses recorded for each RunCycle call.
const (
	CycleStatusOK     = "ok"
	CycleStatusFailed = "failed"
)

// CycleInput bundles the upstream messages one cycle consumes. HeaderTime
// is the planning cycle's time base in seconds; prediction relative times
// are rebased onto it before initialization.
type CycleInput struct {
	HeaderTime    float64
	Localization  msg.LocalizationEstimate
	Routing       msg.RoutingResponse
	Prediction    msg.PredictionObstacles
	PlanningStart msg.TrajectoryPoint
}

// CycleRecord summarizes one planning cycle for persistence and
// diagnostics. Inputs holds a JSON snapshot of the cycle's input messages
// and stays nil unless input recording is enabled.
type CycleRecord struct {
	RunID            string
	Seq              uint32
	Status           string
	ErrorKind        string
	Error            string
	StartedAt        time.Time
	CompletedAt      time.Time
	DurationMS       float64
	PoseX            float64
	PoseY            float64
	PoseHeading      float64
	ObstacleCount    int
	ReferenceLines   int
	PrimaryLengthM   float64
	TrajectoryPoints int
	Inputs           []byte
}

// CycleRecorder persists cycle records. Recording failures never fail the
// cycle; the planner logs them and moves on.
type CycleRecorder interface {
	RecordCycle(ctx context.Context, rec CycleRecord) error
}

// PlannerOptions configure a Planner.
type PlannerOptions struct {
	// RunID groups the cycle records of one planner process.
	RunID string
	// EnablePrediction materializes obstacles from the prediction input.
	// When false the obstacle index stays empty and prediction times are
	// left untouched.
	EnablePrediction bool
	// RecordInputs snapshots each cycle's input messages into its record.
	RecordInputs bool
	// HistoryCapacity bounds the frame history; below 1 uses the default.
	HistoryCapacity int
	// Downstream, when set, runs over each successfully initialized frame
	// before it is retained, typically to fill the output trajectory. Its
	// error fails the cycle.
	Downstream func(*Frame) error
	// Clock stamps cycle records; nil uses the real clock.
	Clock timeutil.Clock
}

// Planner drives planning cycles: build a frame, attach the inputs, align
// prediction time, initialize, retain on success. Cycles run one at a time
// on the caller's goroutine; only the history is safe to read concurrently.
type Planner struct {
	provider LineProvider
	history  *FrameHistory
	recorder CycleRecorder
	clock    timeutil.Clock
	opts     PlannerOptions
	seq      uint32
}

// NewPlanner wires a planner. recorder may be nil to disable persistence.
func NewPlanner(provider LineProvider, recorder CycleRecorder, opts PlannerOptions) *Planner {
	clock := opts.Clock
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Planner{
		provider: provider,
		history:  NewFrameHistory(opts.HistoryCapacity),
		recorder: recorder,
		clock:    clock,
		opts:     opts,
	}
}

// History returns the planner's frame history.
func (p *Planner) History() *FrameHistory { return p.history }

// RunID returns the identifier grouping this planner's cycle records.
func (p *Planner) RunID() string { return p.opts.RunID }

// SequenceNum returns the sequence number of the most recent cycle.
func (p *Planner) SequenceNum() uint32 { return p.seq }

// RunCycle executes one planning cycle over in. A failed cycle is recorded
// and its frame discarded; only successfully initialized frames reach the
// history.
func (p *Planner) RunCycle(ctx context.Context, in CycleInput) (*Frame, error) {
	started := p.clock.Now()
	p.seq++

	frame := NewFrame(p.seq)
	frame.SetLocalization(in.Localization)
	frame.SetRouting(in.Routing)
	frame.SetPrediction(in.Prediction)
	frame.SetPlanningStartPoint(in.PlanningStart)
	if p.opts.EnablePrediction {
		frame.AlignPredictionTime(in.HeaderTime)
	}

	err := frame.Init(InitDeps{
		Provider:         p.provider,
		EnablePrediction: p.opts.EnablePrediction,
	})
	if err == nil && p.opts.Downstream != nil {
		err = p.opts.Downstream(frame)
	}

	completed := p.clock.Now()
	rec := CycleRecord{
		RunID:       p.opts.RunID,
		Seq:         p.seq,
		StartedAt:   started,
		CompletedAt: completed,
		DurationMS:  float64(completed.Sub(started)) / float64(time.Millisecond),
		PoseX:       in.Localization.Pose.Position.X,
		PoseY:       in.Localization.Pose.Position.Y,
		PoseHeading: in.Localization.Pose.Heading,
	}
	if p.opts.RecordInputs {
		if blob, merr := json.Marshal(in); merr != nil {
			monitoring.Logf("planning: marshal cycle %d inputs: %v", p.seq, merr)
		} else {
			rec.Inputs = blob
		}
	}

	if err != nil {
		rec.Status = CycleStatusFailed
		rec.ErrorKind = cycleErrorKind(err)
		rec.Error = err.Error()
		p.record(ctx, rec)
		return nil, err
	}

	p.history.Add(frame)

	rec.Status = CycleStatusOK
	rec.ObstacleCount = frame.Obstacles().Len()
	rec.ReferenceLines = len(frame.ReferenceLineInfos())
	rec.PrimaryLengthM = frame.ReferenceLine().Length()
	rec.TrajectoryPoints = len(frame.Trajectory().Points)
	p.record(ctx, rec)
	return frame, nil
}

func (p *Planner) record(ctx context.Context, rec CycleRecord) {
	if p.recorder == nil {
		return
	}
	if err := p.recorder.RecordCycle(ctx, rec); err != nil {
		monitoring.Logf("planning: record cycle %d: %v", rec.Seq, err)
	}
}

func cycleErrorKind(err error) string {
	if k := KindOf(err); k != "" {
		return string(k)
	}
	return "internal"
}
