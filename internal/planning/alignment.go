package planning

import (
	"github.com/M-Vagrant/apollo/internal/msg"
)

// AlignPredictionTime rebases every predicted trajectory point's relative
// time onto planningHeaderTime, in place:
//
//	new = prediction_header_time + old - planning_header_time
//
// Prediction and planning stamp their messages at different times; after
// alignment a point's relative time is its offset from the planning
// cycle's time base, so downstream consumers never mix bases. Obstacle and
// trajectory order is preserved.
func AlignPredictionTime(pred *msg.PredictionObstacles, planningHeaderTime float64) {
	if pred == nil {
		return
	}
	offset := pred.Header.TimestampSec - planningHeaderTime
	for oi := range pred.Obstacles {
		trajectories := pred.Obstacles[oi].Trajectories
		for ti := range trajectories {
			points := trajectories[ti].Points
			for pi := range points {
				points[pi].RelativeTime += offset
			}
		}
	}
}
