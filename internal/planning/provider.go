package planning

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/M-Vagrant/apollo/internal/hdmap"
	"github.com/M-Vagrant/apollo/internal/msg"
)

// Window defaults for the drivable path cut around the vehicle.
const (
	DefaultLookBackwardM = 30.0
	DefaultLookForwardM  = 250.0
)

// LineProvider is what frame initialization needs from reference line
// synthesis. ReferenceLineProvider is the production implementation.
type LineProvider interface {
	// Ready reports whether the provider's collaborators are wired.
	Ready() bool
	// SmootherConfig returns the smoothing parameters in effect.
	SmootherConfig() SmootherConfig
	// CreateFromRouting synthesizes the cycle's reference line candidates.
	CreateFromRouting(pos r2.Vec, routing msg.RoutingResponse) ([]*ReferenceLine, error)
}

// ReferenceLineProvider synthesizes smoothed reference lines from routing
// and pose over two collaborators: map path extraction and smoothing.
// Either collaborator's failure surfaces to the caller wrapped, never
// substituted with a fallback line.
type ReferenceLineProvider struct {
	maps         hdmap.PathProvider
	smoother     Smoother
	lookBackward float64
	lookForward  float64
}

// NewReferenceLineProvider wires the provider. Window distances at or below
// zero fall back to the defaults.
func NewReferenceLineProvider(maps hdmap.PathProvider, smoother Smoother, lookBackward, lookForward float64) *ReferenceLineProvider {
	if lookBackward <= 0 {
		lookBackward = DefaultLookBackwardM
	}
	if lookForward <= 0 {
		lookForward = DefaultLookForwardM
	}
	return &ReferenceLineProvider{
		maps:         maps,
		smoother:     smoother,
		lookBackward: lookBackward,
		lookForward:  lookForward,
	}
}

// Ready reports whether both collaborators are wired.
func (p *ReferenceLineProvider) Ready() bool {
	return p != nil && p.maps != nil && p.smoother != nil
}

// SmootherConfig returns the configuration the smoother will apply.
func (p *ReferenceLineProvider) SmootherConfig() SmootherConfig {
	if p == nil || p.smoother == nil {
		return SmootherConfig{}
	}
	return p.smoother.Config()
}

// CreateFromRouting extracts the drivable window around pos from the map
// and smooths it. It returns a slice of candidates; the current map
// collaborator produces exactly one, but callers are shaped for several.
func (p *ReferenceLineProvider) CreateFromRouting(pos r2.Vec, routing msg.RoutingResponse) ([]*ReferenceLine, error) {
	raw, err := p.maps.CreatePathFromRouting(routing, pos, p.lookBackward, p.lookForward)
	if err != nil {
		return nil, fmt.Errorf("map path: %w", err)
	}
	line, err := p.smoother.Smooth(raw)
	if err != nil {
		return nil, fmt.Errorf("smooth path: %w", err)
	}
	return []*ReferenceLine{line}, nil
}
