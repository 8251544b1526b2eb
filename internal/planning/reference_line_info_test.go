package planning

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestReferenceLineInfo_InitialDecisions(t *testing.T) {
	info := NewReferenceLineInfo(straightRefLine(11)) // 0..100m along +X

	obstacles := []*Obstacle{
		{ID: "blocker-moving", Position: r2.Vec{X: 50, Y: 0.3}, Velocity: r2.Vec{X: 5}},
		{ID: "blocker-static", Position: r2.Vec{X: 60, Y: -0.5}},
		{ID: "intruder", Position: r2.Vec{X: 40, Y: 2.5}, Velocity: r2.Vec{X: 3}},
		{ID: "clear", Position: r2.Vec{X: 30, Y: 8}, Velocity: r2.Vec{X: 3}},
	}
	if err := info.AddObstacles(obstacles); err != nil {
		t.Fatalf("AddObstacles failed: %v", err)
	}

	pd := info.Decision()
	if pd.Len() != 4 {
		t.Fatalf("decisions = %d, want 4", pd.Len())
	}

	cases := []struct {
		id   string
		long DecisionType
		lat  DecisionType
	}{
		{"blocker-moving", DecisionFollow, DecisionIgnore},
		{"blocker-static", DecisionYield, DecisionIgnore},
		{"intruder", DecisionIgnore, DecisionNudge},
		{"clear", DecisionIgnore, DecisionIgnore},
	}
	for _, tc := range cases {
		d, ok := pd.Get(tc.id)
		if !ok {
			t.Errorf("no decision for %s", tc.id)
			continue
		}
		if d.Longitudinal != tc.long {
			t.Errorf("%s longitudinal = %s, want %s", tc.id, d.Longitudinal, tc.long)
		}
		if d.Lateral != tc.lat {
			t.Errorf("%s lateral = %s, want %s", tc.id, d.Lateral, tc.lat)
		}
	}

	// Projections are recorded alongside the intent.
	d, _ := pd.Get("blocker-moving")
	if math.Abs(d.SL.S-50) > 1e-9 || math.Abs(d.SL.L-0.3) > 1e-9 {
		t.Errorf("blocker-moving SL = %+v, want S 50 L 0.3", d.SL)
	}
}

func TestReferenceLineInfo_AddObstaclesErrors(t *testing.T) {
	line := straightRefLine(3)

	if err := NewReferenceLineInfo(line).AddObstacles([]*Obstacle{nil}); err == nil {
		t.Error("nil obstacle accepted, expected error")
	}

	bad := &Obstacle{ID: "bad", Position: r2.Vec{X: math.NaN(), Y: 0}}
	if err := NewReferenceLineInfo(line).AddObstacles([]*Obstacle{bad}); err == nil {
		t.Error("NaN obstacle position accepted, expected error")
	}

	degenerate := NewReferenceLineInfo(NewReferenceLine([]ReferencePoint{{}}))
	if err := degenerate.AddObstacles(nil); err == nil {
		t.Error("degenerate line accepted, expected error")
	}

	if err := NewReferenceLineInfo(nil).AddObstacles(nil); err == nil {
		t.Error("nil line accepted, expected error")
	}
}

func TestPathDecision_SetOverwrites(t *testing.T) {
	pd := NewPathDecision()
	pd.Set(ObstacleDecision{ObstacleID: "a", Longitudinal: DecisionFollow})
	pd.Set(ObstacleDecision{ObstacleID: "b", Longitudinal: DecisionYield})
	pd.Set(ObstacleDecision{ObstacleID: "a", Longitudinal: DecisionYield})

	if pd.Len() != 2 {
		t.Fatalf("Len = %d, want 2", pd.Len())
	}
	if d, _ := pd.Get("a"); d.Longitudinal != DecisionYield {
		t.Errorf("a longitudinal = %s, want yield after overwrite", d.Longitudinal)
	}

	items := pd.Items()
	if items[0].ObstacleID != "a" || items[1].ObstacleID != "b" {
		t.Errorf("Items order = [%s %s], want [a b]", items[0].ObstacleID, items[1].ObstacleID)
	}

	if _, ok := pd.Get("ghost"); ok {
		t.Error("Get on absent id succeeded")
	}
}
