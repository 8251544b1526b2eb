package planning

import (
	"math"
	"testing"

	"github.com/M-Vagrant/apollo/internal/msg"
)

func predictionWithTimes(headerTime float64, relTimes ...float64) msg.PredictionObstacles {
	points := make([]msg.TrajectoryPoint, len(relTimes))
	for i, rt := range relTimes {
		points[i] = msg.TrajectoryPoint{RelativeTime: rt}
	}
	return msg.PredictionObstacles{
		Header: msg.Header{TimestampSec: headerTime, Module: "prediction"},
		Obstacles: []msg.PredictionObstacle{
			{ID: "a", Trajectories: []msg.PredictedTrajectory{{Points: points}}},
		},
	}
}

func TestAlignPredictionTime_Rebase(t *testing.T) {
	// Prediction stamped at 100, point 5s in. Planning runs at 98, so the
	// point is 7s from the planning time base.
	pred := predictionWithTimes(100.0, 5.0)
	AlignPredictionTime(&pred, 98.0)

	got := pred.Obstacles[0].Trajectories[0].Points[0].RelativeTime
	if math.Abs(got-7.0) > 1e-12 {
		t.Errorf("relative time = %v, want 7", got)
	}
}

func TestAlignPredictionTime_IdentityWhenBasesMatch(t *testing.T) {
	pred := predictionWithTimes(50.0, 0.0, 0.5, 1.0)
	AlignPredictionTime(&pred, 50.0)

	want := []float64{0.0, 0.5, 1.0}
	for i, p := range pred.Obstacles[0].Trajectories[0].Points {
		if math.Abs(p.RelativeTime-want[i]) > 1e-12 {
			t.Errorf("point %d relative time = %v, want %v", i, p.RelativeTime, want[i])
		}
	}
}

func TestAlignPredictionTime_LinearInPlanningTime(t *testing.T) {
	// Moving the planning base later by d shifts every relative time by -d.
	a := predictionWithTimes(100.0, 1.0, 2.0)
	b := predictionWithTimes(100.0, 1.0, 2.0)
	AlignPredictionTime(&a, 99.0)
	AlignPredictionTime(&b, 99.5)

	for i := range a.Obstacles[0].Trajectories[0].Points {
		ra := a.Obstacles[0].Trajectories[0].Points[i].RelativeTime
		rb := b.Obstacles[0].Trajectories[0].Points[i].RelativeTime
		if math.Abs((ra-rb)-0.5) > 1e-12 {
			t.Errorf("point %d shift = %v, want 0.5", i, ra-rb)
		}
	}
}

func TestAlignPredictionTime_AllObstaclesAllTrajectories(t *testing.T) {
	pred := msg.PredictionObstacles{
		Header: msg.Header{TimestampSec: 10.0},
		Obstacles: []msg.PredictionObstacle{
			{ID: "a", Trajectories: []msg.PredictedTrajectory{
				{Points: []msg.TrajectoryPoint{{RelativeTime: 0}, {RelativeTime: 1}}},
				{Points: []msg.TrajectoryPoint{{RelativeTime: 2}}},
			}},
			{ID: "b", Trajectories: []msg.PredictedTrajectory{
				{Points: []msg.TrajectoryPoint{{RelativeTime: 3}}},
			}},
		},
	}
	AlignPredictionTime(&pred, 9.0)

	wantIDs := []string{"a", "b"}
	for i, o := range pred.Obstacles {
		if o.ID != wantIDs[i] {
			t.Errorf("obstacle %d id = %q, want %q (order must not change)", i, o.ID, wantIDs[i])
		}
	}
	got := []float64{
		pred.Obstacles[0].Trajectories[0].Points[0].RelativeTime,
		pred.Obstacles[0].Trajectories[0].Points[1].RelativeTime,
		pred.Obstacles[0].Trajectories[1].Points[0].RelativeTime,
		pred.Obstacles[1].Trajectories[0].Points[0].RelativeTime,
	}
	want := []float64{1, 2, 3, 4}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("rewritten time %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestAlignPredictionTime_NilSafe(t *testing.T) {
	AlignPredictionTime(nil, 1.0) // must not panic
}

func TestFrame_AlignPredictionTimeOnce(t *testing.T) {
	f := NewFrame(1)
	f.SetPrediction(predictionWithTimes(100.0, 5.0))

	f.AlignPredictionTime(98.0)
	f.AlignPredictionTime(98.0) // second call must not shift again

	got := f.Prediction().Obstacles[0].Trajectories[0].Points[0].RelativeTime
	if math.Abs(got-7.0) > 1e-12 {
		t.Errorf("relative time after repeated align = %v, want 7", got)
	}
}
