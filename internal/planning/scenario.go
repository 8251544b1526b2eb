package planning

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/M-Vagrant/apollo/internal/hdmap"
	"github.com/M-Vagrant/apollo/internal/msg"
)

// ScenarioGenerator produces a synthetic input feed for demos and tests:
// the ego vehicle advances along a gently curving demo route while
// simulated agents ahead of it carry straight-line predicted trajectories
// stamped on their own, lagging time base.
type ScenarioGenerator struct {
	// Configuration
	RouteLanes       int     // lanes chained on the demo route
	LaneLengthM      float64 // length of each lane
	LaneStepM        float64 // centerline vertex spacing
	AgentCount       int     // simulated agents
	EgoSpeedMPS      float64 // ego speed along the route
	AgentSpeedMPS    float64 // speed of the moving agents
	CyclePeriodSec   float64 // simulated time per cycle
	PredictionLagSec float64 // prediction header lag behind planning time
	HorizonSec       float64 // predicted trajectory horizon
	StepSec          float64 // predicted trajectory point spacing

	// Internal state
	rng   *rand.Rand
	clock float64 // simulated time, seconds
	egoS  float64 // ego station along the route
	seq   uint32
}

// NewScenarioGenerator creates a generator with demo defaults. The seed
// fixes the noise sequence so runs are reproducible.
func NewScenarioGenerator(seed int64) *ScenarioGenerator {
	return &ScenarioGenerator{
		RouteLanes:       3,
		LaneLengthM:      400.0,
		LaneStepM:        5.0,
		AgentCount:       6,
		EgoSpeedMPS:      10.0,
		AgentSpeedMPS:    8.0,
		CyclePeriodSec:   0.1,
		PredictionLagSec: 0.04,
		HorizonSec:       3.0,
		StepSec:          0.2,
		rng:              rand.New(rand.NewSource(seed)),
	}
}

// routeY is the demo route's centerline lateral profile: a long shallow
// curve that keeps the smoother honest without stressing it.
func routeY(x float64) float64 {
	return 2.0 * math.Sin(x/80.0)
}

// RouteLength returns the total demo route length along x.
func (g *ScenarioGenerator) RouteLength() float64 {
	return float64(g.RouteLanes) * g.LaneLengthM
}

// BuildRouteMap registers the demo lanes on a fresh route map and returns
// it with the routing response that chains them.
func (g *ScenarioGenerator) BuildRouteMap(snapMaxM float64) (*hdmap.RouteMap, msg.RoutingResponse, error) {
	m := hdmap.NewRouteMap(snapMaxM)
	routing := msg.RoutingResponse{
		Header: msg.Header{Module: "routing", Sequence: 1},
	}
	for lane := 0; lane < g.RouteLanes; lane++ {
		id := fmt.Sprintf("demo-lane-%02d", lane+1)
		start := float64(lane) * g.LaneLengthM
		var line []r2.Vec
		for x := start; x <= start+g.LaneLengthM+1e-9; x += g.LaneStepM {
			line = append(line, r2.Vec{X: x, Y: routeY(x)})
		}
		if err := m.AddLane(id, line); err != nil {
			return nil, msg.RoutingResponse{}, err
		}
		routing.Lanes = append(routing.Lanes, msg.LaneSegment{ID: id})
	}
	return m, routing, nil
}

// NextInput advances the simulated clock by one cycle period and returns
// that cycle's input messages. The ego stops short of the route end so the
// map window never runs off the route.
func (g *ScenarioGenerator) NextInput() CycleInput {
	g.seq++
	g.clock += g.CyclePeriodSec
	g.egoS += g.EgoSpeedMPS * g.CyclePeriodSec
	if limit := g.RouteLength() - 2*g.LaneStepM; g.egoS > limit {
		g.egoS = limit
	}

	egoX := g.egoS
	egoY := routeY(egoX) + g.rng.Float64()*0.2 - 0.1
	heading := math.Atan2(routeY(egoX+1)-routeY(egoX), 1)

	loc := msg.LocalizationEstimate{
		Header: msg.Header{TimestampSec: g.clock, Module: "localization", Sequence: g.seq},
		Pose: msg.Pose{
			Position: msg.PointENU{X: egoX, Y: egoY},
			Heading:  heading,
			LinearVelocity: r2.Vec{
				X: g.EgoSpeedMPS * math.Cos(heading),
				Y: g.EgoSpeedMPS * math.Sin(heading),
			},
		},
	}

	routing := msg.RoutingResponse{
		Header: msg.Header{TimestampSec: g.clock, Module: "routing", Sequence: 1},
	}
	for lane := 0; lane < g.RouteLanes; lane++ {
		routing.Lanes = append(routing.Lanes, msg.LaneSegment{ID: fmt.Sprintf("demo-lane-%02d", lane+1)})
	}

	return CycleInput{
		HeaderTime:   g.clock,
		Localization: loc,
		Routing:      routing,
		Prediction:   g.nextPrediction(egoX),
		PlanningStart: msg.TrajectoryPoint{
			Position:     r2.Vec{X: egoX, Y: egoY},
			Theta:        heading,
			V:            g.EgoSpeedMPS,
			RelativeTime: 0,
		},
	}
}

// nextPrediction places the agents ahead of the ego at staggered stations
// and lateral offsets, so the initial decisions exercise every class:
// blockers in lane, intruders beside it, traffic clear of the corridor.
func (g *ScenarioGenerator) nextPrediction(egoX float64) msg.PredictionObstacles {
	pred := msg.PredictionObstacles{
		Header: msg.Header{
			TimestampSec: g.clock - g.PredictionLagSec,
			Module:       "prediction",
			Sequence:     g.seq,
		},
	}

	offsets := []float64{0.4, 2.5, 8.0}
	for i := 0; i < g.AgentCount; i++ {
		x := egoX + 20 + float64(i)*15
		lateral := offsets[i%len(offsets)]
		if i%2 == 1 {
			lateral = -lateral
		}
		speed := g.AgentSpeedMPS
		if i%3 == 2 {
			speed = 0 // parked agent
		}

		pos := msg.PointENU{X: x, Y: routeY(x) + lateral}
		vel := r2.Vec{X: speed, Y: 0}
		agent := msg.PredictionObstacle{
			ID:       fmt.Sprintf("agent-%03d", i+1),
			Position: pos,
			Heading:  0,
			Velocity: vel,
			Length:   4.5,
			Width:    1.9,
		}

		traj := msg.PredictedTrajectory{Probability: 0.9}
		for t := 0.0; t <= g.HorizonSec+1e-9; t += g.StepSec {
			traj.Points = append(traj.Points, msg.TrajectoryPoint{
				Position:     r2.Vec{X: pos.X + vel.X*t, Y: pos.Y + vel.Y*t},
				Theta:        agent.Heading,
				V:            speed,
				RelativeTime: t,
			})
		}
		agent.Trajectories = []msg.PredictedTrajectory{traj}
		pred.Obstacles = append(pred.Obstacles, agent)
	}
	return pred
}
