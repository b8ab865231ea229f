package systems

import (
	"testing"

	"github.com/pthm-cable/gridlife/components"
	"github.com/pthm-cable/gridlife/config"
)

// ---------- Eat ----------

func TestEat_ConsumesFood(t *testing.T) {
	fs := NewFoodSet(10, 10)
	fs.Add(3, 3)
	st := components.State{X: 3, Y: 3, Energy: 5}

	if !Eat(&st, fs) {
		t.Fatal("expected to eat")
	}
	if st.Energy != 5+config.Cfg().Energy.PerFood {
		t.Errorf("Energy = %f, want %f", st.Energy, 5+config.Cfg().Energy.PerFood)
	}
	if fs.Has(3, 3) || fs.Len() != 0 {
		t.Error("food not removed")
	}
}

func TestEat_NoFood(t *testing.T) {
	fs := NewFoodSet(10, 10)
	fs.Add(4, 3)
	st := components.State{X: 3, Y: 3, Energy: 5}

	if Eat(&st, fs) {
		t.Error("ate without food on cell")
	}
	if st.Energy != 5 || fs.Len() != 1 {
		t.Error("state changed without food")
	}
}

// ---------- Age ----------

func TestAge_DeathPriority(t *testing.T) {
	maxAge := config.Cfg().Energy.MaxAge

	tests := []struct {
		name       string
		age        int
		energy     float64
		agents     int
		maxN       int
		want       components.DeathCause
		wantEnergy float64
	}{
		{"survives", 10, 5, 3, 15, components.CauseNone, 5},
		{"crowd beats everything", maxAge, -2, 16, 15, components.CauseCrowd, -1},
		{"crowd at limit survives", 10, 5, 15, 15, components.CauseNone, 5},
		{"crowd disabled", 10, 5, 100, 0, components.CauseNone, 5},
		{"old age beats energy", maxAge - 1, -2, 1, 15, components.CauseOldAge, -1},
		{"old age with positive energy", maxAge - 1, 80, 1, 15, components.CauseOldAge, -1},
		{"energy at zero", 10, 0, 1, 15, components.CauseEnergy, 0},
		{"energy negative keeps value", 10, -0.5, 1, 15, components.CauseEnergy, -0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := components.State{Age: tt.age, Energy: tt.energy}
			senses := components.Senses{AgentCount: tt.agents}
			knobs := testKnobs
			knobs.MaxNeighbors = tt.maxN

			got := Age(&st, &senses, knobs)
			if got != tt.want {
				t.Errorf("cause = %v, want %v", got, tt.want)
			}
			if st.Age != tt.age+1 {
				t.Errorf("Age = %d, want %d", st.Age, tt.age+1)
			}
			if st.Energy != tt.wantEnergy {
				t.Errorf("Energy = %f, want %f", st.Energy, tt.wantEnergy)
			}
		})
	}
}

func TestAge_EnergyDeathNeverFiresWhilePositive(t *testing.T) {
	for _, e := range []float64{0.001, 1, 119, 1000} {
		st := components.State{Energy: e}
		if cause := Age(&st, &components.Senses{AgentCount: 1}, testKnobs); cause != components.CauseNone {
			t.Errorf("energy %f died of %v", e, cause)
		}
	}
}
