package planning

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/M-Vagrant/apollo/internal/hdmap"
)

// Smoother defaults, applied for zero or negative config values.
const (
	DefaultAnchorSpacingM    = 5.0
	DefaultOutputResolutionM = 1.0
	DefaultMaxDeviationM     = 3.0
)

// SmootherConfig holds the knobs of the reference line smoother.
type SmootherConfig struct {
	// AnchorSpacingM is the arc-length spacing at which raw path points are
	// kept as spline anchors.
	AnchorSpacingM float64
	// OutputResolutionM is the station spacing of the resampled output.
	OutputResolutionM float64
	// MaxDeviationM is the largest lateral distance any raw path point may
	// have from the smoothed line before smoothing fails.
	MaxDeviationM float64
}

func (c SmootherConfig) withDefaults() SmootherConfig {
	if c.AnchorSpacingM <= 0 {
		c.AnchorSpacingM = DefaultAnchorSpacingM
	}
	if c.OutputResolutionM <= 0 {
		c.OutputResolutionM = DefaultOutputResolutionM
	}
	if c.MaxDeviationM <= 0 {
		c.MaxDeviationM = DefaultMaxDeviationM
	}
	return c
}

// Smoother turns a raw map path into a smoothed reference line. The frame
// captures Config() at initialization so each cycle records the parameters
// that produced its line.
type Smoother interface {
	Configure(cfg SmootherConfig)
	Config() SmootherConfig
	Smooth(raw *hdmap.Path) (*ReferenceLine, error)
}

// SplineSmoother fits station-parameterized splines over thinned anchors of
// the raw path and resamples them at a uniform resolution. With five or
// more anchors it uses an Akima spline, below that piecewise linear.
type SplineSmoother struct {
	cfg SmootherConfig
}

// NewSplineSmoother returns a smoother with default configuration.
func NewSplineSmoother() *SplineSmoother {
	return &SplineSmoother{cfg: SmootherConfig{}.withDefaults()}
}

// Configure replaces the smoother's configuration, filling defaults for
// unset values.
func (s *SplineSmoother) Configure(cfg SmootherConfig) {
	s.cfg = cfg.withDefaults()
}

// Config returns the active configuration.
func (s *SplineSmoother) Config() SmootherConfig { return s.cfg }

// Smooth implements Smoother.
func (s *SplineSmoother) Smooth(raw *hdmap.Path) (*ReferenceLine, error) {
	if raw == nil || raw.Len() < 2 {
		return nil, fmt.Errorf("raw path too short to smooth")
	}

	anchors := thinAnchors(raw.Points(), s.cfg.AnchorSpacingM)
	ss := make([]float64, len(anchors))
	xs := make([]float64, len(anchors))
	ys := make([]float64, len(anchors))
	for i, a := range anchors {
		ss[i] = a.S
		xs[i] = a.Pos.X
		ys[i] = a.Pos.Y
	}

	var fitX, fitY interp.FittablePredictor
	if len(anchors) >= 5 {
		fitX, fitY = &interp.AkimaSpline{}, &interp.AkimaSpline{}
	} else {
		fitX, fitY = &interp.PiecewiseLinear{}, &interp.PiecewiseLinear{}
	}
	if err := fitX.Fit(ss, xs); err != nil {
		return nil, fmt.Errorf("fit x spline: %w", err)
	}
	if err := fitY.Fit(ss, ys); err != nil {
		return nil, fmt.Errorf("fit y spline: %w", err)
	}

	stations := sampleStations(ss[len(ss)-1], s.cfg.OutputResolutionM)
	positions := make([]r2.Vec, 0, len(stations))
	for _, st := range stations {
		p := r2.Vec{X: fitX.Predict(st), Y: fitY.Predict(st)}
		if n := len(positions); n > 0 && r2.Norm(r2.Sub(p, positions[n-1])) < 1e-9 {
			continue
		}
		positions = append(positions, p)
	}
	if len(positions) < 2 {
		return nil, fmt.Errorf("smoothing collapsed the path to %d points", len(positions))
	}

	// Station on the output is recomputed from the smoothed geometry.
	segs := make([]float64, len(positions))
	for i := 1; i < len(positions); i++ {
		segs[i] = r2.Norm(r2.Sub(positions[i], positions[i-1]))
	}
	floats.CumSum(segs, segs)

	pts := make([]ReferencePoint, len(positions))
	for i, p := range positions {
		pts[i] = ReferencePoint{Pos: p, S: segs[i]}
	}
	for i := 0; i < len(pts)-1; i++ {
		d := r2.Sub(pts[i+1].Pos, pts[i].Pos)
		pts[i].Heading = math.Atan2(d.Y, d.X)
	}
	pts[len(pts)-1].Heading = pts[len(pts)-2].Heading
	for i := 1; i < len(pts); i++ {
		if ds := pts[i].S - pts[i-1].S; ds > 0 {
			pts[i].Kappa = normalizeAngle(pts[i].Heading-pts[i-1].Heading) / ds
		}
	}

	line := NewReferenceLine(pts)
	for _, rp := range raw.Points() {
		if sl := line.XYToSL(rp.Pos); math.Abs(sl.L) > s.cfg.MaxDeviationM {
			return nil, fmt.Errorf("smoothed line deviates %.2fm from raw path near s=%.1f, limit %.2fm",
				math.Abs(sl.L), sl.S, s.cfg.MaxDeviationM)
		}
	}
	return line, nil
}

// thinAnchors keeps the first point, then every point at least spacing
// meters of station beyond the last kept one, and always the final point.
func thinAnchors(pts []hdmap.PathPoint, spacing float64) []hdmap.PathPoint {
	anchors := []hdmap.PathPoint{pts[0]}
	for _, p := range pts[1:] {
		if p.S-anchors[len(anchors)-1].S >= spacing-1e-9 {
			anchors = append(anchors, p)
		}
	}
	if last := pts[len(pts)-1]; last.S > anchors[len(anchors)-1].S {
		anchors = append(anchors, last)
	}
	return anchors
}

// sampleStations returns uniform stations from 0 to length inclusive.
func sampleStations(length, resolution float64) []float64 {
	var stations []float64
	for st := 0.0; st < length; st += resolution {
		stations = append(stations, st)
	}
	if n := len(stations); n == 0 || length-stations[n-1] > 1e-9 {
		stations = append(stations, length)
	}
	return stations
}
