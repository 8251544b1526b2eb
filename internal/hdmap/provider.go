package hdmap

import (
	"errors"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/M-Vagrant/apollo/internal/msg"
)

// Provider errors. Callers wrap these with their own context.
var (
	// ErrEmptyRouting is returned when the routing response names no lanes.
	ErrEmptyRouting = errors.New("hdmap: routing response has no lanes")
	// ErrUnknownLane is returned when a routed lane id is not in the map.
	ErrUnknownLane = errors.New("hdmap: unknown lane id")
	// ErrOffRoute is returned when the vehicle position is farther from the
	// routed centerline than the provider's snap tolerance.
	ErrOffRoute = errors.New("hdmap: position too far from route")
)

// PathProvider cuts a drivable centerline window out of a routing response.
// Implementations resolve the routed lanes against their map data and clip
// the result to an arc-length window around the vehicle position.
type PathProvider interface {
	// CreatePathFromRouting returns the centerline path covering
	// lookBackward meters behind and lookForward meters ahead of the point
	// on the route nearest to pos. Station values on the returned path
	// start at zero.
	CreatePathFromRouting(routing msg.RoutingResponse, pos r2.Vec, lookBackward, lookForward float64) (*Path, error)
}
