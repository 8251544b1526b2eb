package planning

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/M-Vagrant/apollo/internal/hdmap"
	"github.com/M-Vagrant/apollo/internal/msg"
)

var errSmoothBroken = errors.New("smoother broken")

// failSmoother always fails, standing in for a smoother rejecting its input.
type failSmoother struct{}

func (failSmoother) Configure(SmootherConfig) {}

func (failSmoother) Config() SmootherConfig { return SmootherConfig{} }

func (failSmoother) Smooth(*hdmap.Path) (*ReferenceLine, error) {
	return nil, errSmoothBroken
}

func demoMapAndRouting(t *testing.T) (*hdmap.RouteMap, msg.RoutingResponse) {
	t.Helper()
	gen := NewScenarioGenerator(1)
	m, routing, err := gen.BuildRouteMap(10)
	if err != nil {
		t.Fatalf("BuildRouteMap failed: %v", err)
	}
	return m, routing
}

func TestReferenceLineProvider_CreateFromRouting(t *testing.T) {
	m, routing := demoMapAndRouting(t)
	provider := NewReferenceLineProvider(m, NewSplineSmoother(), 30, 250)

	if !provider.Ready() {
		t.Fatal("Ready = false with both collaborators wired")
	}

	lines, err := provider.CreateFromRouting(r2.Vec{X: 100, Y: routeY(100)}, routing)
	if err != nil {
		t.Fatalf("CreateFromRouting failed: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("candidates = %d, want 1", len(lines))
	}

	// 30m behind plus 250m ahead of the query position.
	if got := lines[0].Length(); got < 250 || got > 290 {
		t.Errorf("line length = %vm, want the clipped window around 280m", got)
	}
}

func TestReferenceLineProvider_MapFailureSurfaces(t *testing.T) {
	m, routing := demoMapAndRouting(t)
	provider := NewReferenceLineProvider(m, NewSplineSmoother(), 30, 250)

	_, err := provider.CreateFromRouting(r2.Vec{X: 100, Y: 500}, routing)
	if !errors.Is(err, hdmap.ErrOffRoute) {
		t.Errorf("error = %v, want hdmap.ErrOffRoute preserved", err)
	}

	_, err = provider.CreateFromRouting(r2.Vec{X: 100, Y: routeY(100)}, msg.RoutingResponse{})
	if !errors.Is(err, hdmap.ErrEmptyRouting) {
		t.Errorf("error = %v, want hdmap.ErrEmptyRouting preserved", err)
	}
}

func TestReferenceLineProvider_SmootherFailureSurfaces(t *testing.T) {
	m, routing := demoMapAndRouting(t)
	provider := NewReferenceLineProvider(m, failSmoother{}, 30, 250)

	_, err := provider.CreateFromRouting(r2.Vec{X: 100, Y: routeY(100)}, routing)
	if !errors.Is(err, errSmoothBroken) {
		t.Errorf("error = %v, want smoother cause preserved", err)
	}
}

func TestReferenceLineProvider_Ready(t *testing.T) {
	if NewReferenceLineProvider(nil, NewSplineSmoother(), 0, 0).Ready() {
		t.Error("Ready = true with nil map provider")
	}
	m, _ := demoMapAndRouting(t)
	if NewReferenceLineProvider(m, nil, 0, 0).Ready() {
		t.Error("Ready = true with nil smoother")
	}

	var nilProvider *ReferenceLineProvider
	if nilProvider.Ready() {
		t.Error("Ready = true on nil provider")
	}
}
