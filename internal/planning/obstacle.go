package planning

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/M-Vagrant/apollo/internal/monitoring"
	"github.com/M-Vagrant/apollo/internal/msg"
)

// Obstacle is the planner's view of one predicted entity for a single
// cycle. Obstacles are rebuilt from prediction input every cycle and owned
// exclusively by the frame's IndexedObstacles; decisions reference them by
// id only.
type Obstacle struct {
	ID           string
	Position     r2.Vec
	Heading      float64
	Velocity     r2.Vec
	Length       float64
	Width        float64
	Trajectories []msg.PredictedTrajectory
}

// Speed returns the obstacle's ground speed in m/s.
func (o *Obstacle) Speed() float64 {
	return r2.Norm(o.Velocity)
}

// CreateObstacles converts a prediction message into per-cycle obstacles,
// one per predicted entity. A message with no entities yields an empty
// slice.
func CreateObstacles(pred msg.PredictionObstacles) []*Obstacle {
	obstacles := make([]*Obstacle, 0, len(pred.Obstacles))
	for _, po := range pred.Obstacles {
		obstacles = append(obstacles, &Obstacle{
			ID:           po.ID,
			Position:     po.Position.Vec2(),
			Heading:      po.Heading,
			Velocity:     po.Velocity,
			Length:       po.Length,
			Width:        po.Width,
			Trajectories: po.Trajectories,
		})
	}
	return obstacles
}

// IndexedObstacles is the exclusive owner of one cycle's obstacles, keyed
// by id with stable insertion order. It is rebuilt from scratch each cycle
// and never shared across frames.
type IndexedObstacles struct {
	order []string
	items map[string]*Obstacle
}

// NewIndexedObstacles returns an empty index.
func NewIndexedObstacles() *IndexedObstacles {
	return &IndexedObstacles{items: make(map[string]*Obstacle)}
}

// Add inserts an obstacle. A duplicate id overwrites the stored obstacle
// and keeps its original insertion position.
func (x *IndexedObstacles) Add(o *Obstacle) {
	if o == nil {
		return
	}
	if _, ok := x.items[o.ID]; ok {
		monitoring.Logf("planning: obstacle %s already indexed, overwriting", o.ID)
		x.items[o.ID] = o
		return
	}
	x.order = append(x.order, o.ID)
	x.items[o.ID] = o
}

// Get returns the obstacle stored under id, or nil when absent.
func (x *IndexedObstacles) Get(id string) *Obstacle {
	return x.items[id]
}

// Items returns the obstacles in insertion order. The slice is a snapshot;
// the obstacles themselves are shared.
func (x *IndexedObstacles) Items() []*Obstacle {
	out := make([]*Obstacle, 0, len(x.order))
	for _, id := range x.order {
		out = append(out, x.items[id])
	}
	return out
}

// IDs returns the indexed ids in insertion order.
func (x *IndexedObstacles) IDs() []string {
	out := make([]string, len(x.order))
	copy(out, x.order)
	return out
}

// Len returns the number of indexed obstacles.
func (x *IndexedObstacles) Len() int { return len(x.order) }
