package planning

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/M-Vagrant/apollo/internal/msg"
)

// fakeProvider implements LineProvider for pipeline tests and counts how
// often synthesis is invoked.
type fakeProvider struct {
	ready bool
	cfg   SmootherConfig
	lines []*ReferenceLine
	err   error
	calls int
}

func (f *fakeProvider) Ready() bool { return f.ready }

func (f *fakeProvider) SmootherConfig() SmootherConfig { return f.cfg }

func (f *fakeProvider) CreateFromRouting(pos r2.Vec, routing msg.RoutingResponse) ([]*ReferenceLine, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.lines, nil
}

func validLocalization() msg.LocalizationEstimate {
	return msg.LocalizationEstimate{
		Header: msg.Header{TimestampSec: 100, Module: "localization"},
		Pose:   msg.Pose{Position: msg.PointENU{X: 5, Y: 0.1}, Heading: 0},
	}
}

func twoAgentPrediction() msg.PredictionObstacles {
	return msg.PredictionObstacles{
		Header: msg.Header{TimestampSec: 99.9, Module: "prediction"},
		Obstacles: []msg.PredictionObstacle{
			{ID: "a1", Position: msg.PointENU{X: 30, Y: 0.5}, Velocity: r2.Vec{X: 4}},
			{ID: "a2", Position: msg.PointENU{X: 50, Y: 7}},
		},
	}
}

func TestFrame_InitSuccess(t *testing.T) {
	provider := &fakeProvider{
		ready: true,
		cfg:   SmootherConfig{AnchorSpacingM: 5, OutputResolutionM: 1, MaxDeviationM: 3},
		lines: []*ReferenceLine{straightRefLine(11)},
	}

	f := NewFrame(42)
	f.SetLocalization(validLocalization())
	f.SetPrediction(twoAgentPrediction())
	if err := f.Init(InitDeps{Provider: provider, EnablePrediction: true}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	if !f.Initialized() {
		t.Error("Initialized = false after successful Init")
	}
	if f.SequenceNum() != 42 {
		t.Errorf("SequenceNum = %d, want 42", f.SequenceNum())
	}
	if f.DebugString() != "Frame: 42" {
		t.Errorf("DebugString = %q, want \"Frame: 42\"", f.DebugString())
	}
	if f.ReferenceLine() != provider.lines[0] {
		t.Error("primary reference line is not the provider's first candidate")
	}
	if got := f.Obstacles().Len(); got != 2 {
		t.Errorf("obstacle index size = %d, want 2", got)
	}
	if cfg := f.SmootherConfig(); cfg.AnchorSpacingM != 5 {
		t.Errorf("captured smoother config = %+v", cfg)
	}

	// The frame's decision handle aliases the first candidate's registry.
	infos := f.ReferenceLineInfos()
	if len(infos) != 1 {
		t.Fatalf("candidates = %d, want 1", len(infos))
	}
	if f.PathDecision() != infos[0].Decision() {
		t.Error("PathDecision does not alias the first candidate's registry")
	}
}

func TestFrame_InitNaNPoseFailsBeforeSynthesis(t *testing.T) {
	provider := &fakeProvider{ready: true, lines: []*ReferenceLine{straightRefLine(3)}}

	f := NewFrame(1)
	loc := validLocalization()
	loc.Pose.Position.Y = math.NaN()
	f.SetLocalization(loc)

	err := f.Init(InitDeps{Provider: provider, EnablePrediction: true})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("Init error = %v, want ErrInvalidInput", err)
	}
	if provider.calls != 0 {
		t.Errorf("provider called %d times for a NaN pose, want 0", provider.calls)
	}
	assertNoExposure(t, f)
}

func TestFrame_InitUnwiredProvider(t *testing.T) {
	f := NewFrame(1)
	f.SetLocalization(validLocalization())

	if err := f.Init(InitDeps{}); !errors.Is(err, ErrConfiguration) {
		t.Errorf("nil provider error = %v, want ErrConfiguration", err)
	}

	notReady := &fakeProvider{ready: false}
	if err := f.Init(InitDeps{Provider: notReady}); !errors.Is(err, ErrConfiguration) {
		t.Errorf("unready provider error = %v, want ErrConfiguration", err)
	}
	if notReady.calls != 0 {
		t.Errorf("unready provider was still called %d times", notReady.calls)
	}
	assertNoExposure(t, f)
}

func TestFrame_InitSynthesisFailure(t *testing.T) {
	cause := errors.New("position too far from route")
	provider := &fakeProvider{ready: true, err: cause}

	f := NewFrame(1)
	f.SetLocalization(validLocalization())

	err := f.Init(InitDeps{Provider: provider})
	if !errors.Is(err, ErrReferenceLine) {
		t.Fatalf("Init error = %v, want ErrReferenceLine", err)
	}
	if !errors.Is(err, cause) {
		t.Error("collaborator cause lost in wrapping")
	}
	assertNoExposure(t, f)

	// A provider returning no candidates is also a synthesis failure.
	empty := &fakeProvider{ready: true}
	f2 := NewFrame(2)
	f2.SetLocalization(validLocalization())
	if err := f2.Init(InitDeps{Provider: empty}); !errors.Is(err, ErrReferenceLine) {
		t.Errorf("empty candidates error = %v, want ErrReferenceLine", err)
	}
}

func TestFrame_InitSecondCandidateAttachFailure(t *testing.T) {
	provider := &fakeProvider{
		ready: true,
		lines: []*ReferenceLine{
			straightRefLine(11),
			NewReferenceLine([]ReferencePoint{{}}), // degenerate second candidate
		},
	}

	f := NewFrame(9)
	f.SetLocalization(validLocalization())
	f.SetPrediction(twoAgentPrediction())

	err := f.Init(InitDeps{Provider: provider, EnablePrediction: true})
	if !errors.Is(err, ErrObstacleAttach) {
		t.Fatalf("Init error = %v, want ErrObstacleAttach", err)
	}
	assertNoExposure(t, f)
}

func TestFrame_InitPredictionDisabled(t *testing.T) {
	provider := &fakeProvider{ready: true, lines: []*ReferenceLine{straightRefLine(3)}}

	f := NewFrame(1)
	f.SetLocalization(validLocalization())
	f.SetPrediction(twoAgentPrediction())
	if err := f.Init(InitDeps{Provider: provider, EnablePrediction: false}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	if got := f.Obstacles().Len(); got != 0 {
		t.Errorf("obstacle index size = %d with prediction disabled, want 0", got)
	}
	if f.PathDecision().Len() != 0 {
		t.Errorf("decisions registered with prediction disabled")
	}
}

func TestFrame_InitDuplicatePredictionIDs(t *testing.T) {
	provider := &fakeProvider{ready: true, lines: []*ReferenceLine{straightRefLine(3)}}

	f := NewFrame(1)
	f.SetLocalization(validLocalization())
	f.SetPrediction(msg.PredictionObstacles{
		Obstacles: []msg.PredictionObstacle{
			{ID: "dup", Position: msg.PointENU{X: 10, Y: 1}, Length: 1},
			{ID: "dup", Position: msg.PointENU{X: 12, Y: 1}, Length: 2},
		},
	})
	if err := f.Init(InitDeps{Provider: provider, EnablePrediction: true}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	if got := f.Obstacles().Len(); got != 1 {
		t.Fatalf("obstacle index size = %d, want 1 after overwrite", got)
	}
	if o := f.Obstacles().Get("dup"); o.Length != 2 {
		t.Errorf("kept obstacle Length = %v, want the later entry's 2", o.Length)
	}
}

// assertNoExposure checks that a failed Init left no derived state visible.
func assertNoExposure(t *testing.T, f *Frame) {
	t.Helper()
	if f.Initialized() {
		t.Error("Initialized = true after failed Init")
	}
	if f.ReferenceLine() != nil {
		t.Error("ReferenceLine exposed after failed Init")
	}
	if f.ReferenceLineInfos() != nil {
		t.Error("ReferenceLineInfos exposed after failed Init")
	}
	if f.PathDecision() != nil {
		t.Error("PathDecision exposed after failed Init")
	}
	if f.Obstacles() != nil {
		t.Error("Obstacles exposed after failed Init")
	}
}
