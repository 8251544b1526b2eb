package planning

// DecisionType labels the planner's coarse intent toward one obstacle.
type DecisionType string

const (
	// DecisionIgnore marks an obstacle outside the candidate's corridor.
	DecisionIgnore DecisionType = "ignore"
	// DecisionFollow marks a moving obstacle blocking the corridor ahead.
	DecisionFollow DecisionType = "follow"
	// DecisionYield marks a static or slow obstacle blocking the corridor.
	DecisionYield DecisionType = "yield"
	// DecisionNudge marks an obstacle intruding laterally without blocking.
	DecisionNudge DecisionType = "nudge"
)

// ObstacleDecision is the intent registered for one obstacle on one
// reference line candidate. It references the obstacle by id only; the
// frame's IndexedObstacles stays the sole owner of obstacle state.
type ObstacleDecision struct {
	ObstacleID   string
	SL           SLPoint
	Longitudinal DecisionType
	Lateral      DecisionType
}

// PathDecision is the per-candidate decision registry, keyed by obstacle id
// with stable insertion order. Each ReferenceLineInfo owns exactly one.
type PathDecision struct {
	order []string
	items map[string]ObstacleDecision
}

// NewPathDecision returns an empty registry.
func NewPathDecision() *PathDecision {
	return &PathDecision{items: make(map[string]ObstacleDecision)}
}

// Set registers a decision, overwriting any previous decision for the same
// obstacle while keeping its insertion position.
func (pd *PathDecision) Set(d ObstacleDecision) {
	if _, ok := pd.items[d.ObstacleID]; !ok {
		pd.order = append(pd.order, d.ObstacleID)
	}
	pd.items[d.ObstacleID] = d
}

// Get returns the decision for an obstacle id.
func (pd *PathDecision) Get(id string) (ObstacleDecision, bool) {
	d, ok := pd.items[id]
	return d, ok
}

// Items returns the decisions in insertion order.
func (pd *PathDecision) Items() []ObstacleDecision {
	out := make([]ObstacleDecision, 0, len(pd.order))
	for _, id := range pd.order {
		out = append(out, pd.items[id])
	}
	return out
}

// Len returns the number of registered decisions.
func (pd *PathDecision) Len() int { return len(pd.order) }
