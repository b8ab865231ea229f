package systems

import (
	"math"
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/gridlife/components"
	"github.com/pthm-cable/gridlife/config"
)

func init() {
	config.MustInit("")
}

const eps = 1e-9

func approx(a, b float64) bool {
	return math.Abs(a-b) < eps
}

// senseWorld builds an index and food set holding a single agent.
func senseWorld(w, h int, st *components.State, g *components.Genome, food ...components.Cell) (*SpatialIndex, *FoodSet) {
	idx := NewSpatialIndex(w, h)
	idx.Insert(Occupant{E: ecs.Entity{}, Color: g.Color, Energy: st.Energy}, st.X, st.Y)
	fs := NewFoodSet(w, h)
	for _, c := range food {
		fs.Add(c.X, c.Y)
	}
	return idx, fs
}

func TestSense_FoodDirectlyUp(t *testing.T) {
	tests := []struct {
		name     string
		food     components.Cell
		wantDist float64
	}{
		{"adjacent", components.Cell{X: 5, Y: 4}, 1.0 / 3.0},
		{"two away", components.Cell{X: 5, Y: 3}, 2.0 / 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := components.State{X: 5, Y: 5, Energy: 10}
			g := components.Genome{FoodRadius: 2}
			idx, fs := senseWorld(20, 20, &st, &g, tt.food)

			var s components.Senses
			Sense(&s, &st, &g, idx, fs)

			if s.FoodUp != 1 {
				t.Errorf("FoodUp = %d, want 1", s.FoodUp)
			}
			if s.FoodDown != 0 || s.FoodLeft != 0 || s.FoodRight != 0 {
				t.Errorf("other counters = %d/%d/%d, want 0", s.FoodDown, s.FoodLeft, s.FoodRight)
			}
			if !approx(s.FoodUpDist, tt.wantDist) {
				t.Errorf("FoodUpDist = %f, want %f", s.FoodUpDist, tt.wantDist)
			}
			for name, d := range map[string]float64{"down": s.FoodDownDist, "left": s.FoodLeftDist, "right": s.FoodRightDist} {
				if d != 1 {
					t.Errorf("%s dist = %f, want 1 (none seen)", name, d)
				}
			}
			if s.FoodCount != 1 {
				t.Errorf("FoodCount = %d, want 1", s.FoodCount)
			}
		})
	}
}

func TestSense_DiagonalTieCountsBothAxes(t *testing.T) {
	st := components.State{X: 5, Y: 5, Energy: 10}
	g := components.Genome{FoodRadius: 2}
	idx, fs := senseWorld(20, 20, &st, &g, components.Cell{X: 6, Y: 4})

	var s components.Senses
	Sense(&s, &st, &g, idx, fs)

	if s.FoodRight != 1 || s.FoodUp != 1 {
		t.Errorf("right=%d up=%d, want 1 and 1", s.FoodRight, s.FoodUp)
	}
	// Off-axis food does not set distances.
	if s.FoodUpDist != 1 || s.FoodRightDist != 1 {
		t.Errorf("dists up=%f right=%f, want 1", s.FoodUpDist, s.FoodRightDist)
	}
}

func TestSense_DominantAxis(t *testing.T) {
	st := components.State{X: 5, Y: 5, Energy: 10}
	g := components.Genome{FoodRadius: 3}
	idx, fs := senseWorld(20, 20, &st, &g, components.Cell{X: 2, Y: 6})

	var s components.Senses
	Sense(&s, &st, &g, idx, fs)

	if s.FoodLeft != 1 || s.FoodDown != 0 {
		t.Errorf("left=%d down=%d, want 1 and 0", s.FoodLeft, s.FoodDown)
	}
}

func TestSense_OwnCellFoodSkipsDirection(t *testing.T) {
	st := components.State{X: 5, Y: 5, Energy: 10}
	g := components.Genome{FoodRadius: 1}
	idx, fs := senseWorld(20, 20, &st, &g, components.Cell{X: 5, Y: 5})

	var s components.Senses
	Sense(&s, &st, &g, idx, fs)

	if s.FoodCount != 1 {
		t.Errorf("FoodCount = %d, want 1", s.FoodCount)
	}
	if s.FoodUp+s.FoodDown+s.FoodLeft+s.FoodRight != 0 {
		t.Error("own-cell food should not count in any direction")
	}
}

func TestSense_EdgeClampDoubleCounts(t *testing.T) {
	st := components.State{X: 0, Y: 0, Energy: 10}
	g := components.Genome{FoodRadius: 1}
	idx, fs := senseWorld(20, 20, &st, &g, components.Cell{X: 0, Y: 1})

	var s components.Senses
	Sense(&s, &st, &g, idx, fs)

	// Offsets (-1,+1) and (0,+1) both clamp to (0,1).
	if s.FoodCount != 2 {
		t.Errorf("FoodCount = %d, want 2", s.FoodCount)
	}
	if s.FoodDown != 2 || s.FoodLeft != 1 {
		t.Errorf("down=%d left=%d, want 2 and 1", s.FoodDown, s.FoodLeft)
	}
	if !approx(s.FoodDownDist, 0.5) {
		t.Errorf("FoodDownDist = %f, want 0.5", s.FoodDownDist)
	}
	if s.EdgeX != 0 || s.EdgeY != 0 {
		t.Errorf("edge = (%f, %f), want (0, 0)", s.EdgeX, s.EdgeY)
	}
	// Self is seen through four clamped offsets.
	if s.AgentCount != 4 {
		t.Errorf("AgentCount = %d, want 4", s.AgentCount)
	}
}

func TestSense_PeersAndEnergy(t *testing.T) {
	st := components.State{X: 5, Y: 5, Energy: 10}
	g := components.Genome{FoodRadius: 2, Color: components.Color{1, 2, 3}}
	idx, fs := senseWorld(20, 20, &st, &g)
	idx.Insert(Occupant{Color: components.Color{1, 2, 3}, Energy: 30}, 6, 5)
	idx.Insert(Occupant{Color: components.Color{9, 9, 9}, Energy: 50}, 4, 4)
	idx.Insert(Occupant{Color: components.Color{9, 9, 9}, Energy: 99}, 9, 9) // outside radius

	var s components.Senses
	Sense(&s, &st, &g, idx, fs)

	if s.AgentCount != 3 {
		t.Errorf("AgentCount = %d, want 3", s.AgentCount)
	}
	if s.Friends != 2 || s.Others != 1 {
		t.Errorf("friends=%d others=%d, want 2 and 1", s.Friends, s.Others)
	}
	if !approx(s.AvgEnergy, 30) {
		t.Errorf("AvgEnergy = %f, want 30", s.AvgEnergy)
	}
	if s.MaxEnergy != 50 {
		t.Errorf("MaxEnergy = %f, want 50", s.MaxEnergy)
	}
	if !approx(s.EdgeX, 5.0/19.0) {
		t.Errorf("EdgeX = %f, want %f", s.EdgeX, 5.0/19.0)
	}
}

func TestSense_ResetsBetweenCalls(t *testing.T) {
	st := components.State{X: 5, Y: 5, Energy: 10}
	g := components.Genome{FoodRadius: 2}
	idx, fs := senseWorld(20, 20, &st, &g, components.Cell{X: 5, Y: 4})

	var s components.Senses
	Sense(&s, &st, &g, idx, fs)
	fs.Remove(5, 4)
	Sense(&s, &st, &g, idx, fs)

	if s.FoodCount != 0 || s.FoodUp != 0 {
		t.Errorf("stale food: count=%d up=%d", s.FoodCount, s.FoodUp)
	}
	if s.FoodUpDist != 1 {
		t.Errorf("FoodUpDist = %f, want 1", s.FoodUpDist)
	}
}

func TestSense_ZeroRadius(t *testing.T) {
	st := components.State{X: 3, Y: 3, Energy: 10}
	g := components.Genome{FoodRadius: 0}
	idx, fs := senseWorld(10, 10, &st, &g, components.Cell{X: 3, Y: 2})

	var s components.Senses
	Sense(&s, &st, &g, idx, fs)

	if s.FoodCount != 0 {
		t.Errorf("FoodCount = %d, want 0", s.FoodCount)
	}
	if s.AgentCount != 1 {
		t.Errorf("AgentCount = %d, want 1", s.AgentCount)
	}
	if s.FoodUpDist != 1 {
		t.Errorf("FoodUpDist = %f, want 1", s.FoodUpDist)
	}
}
