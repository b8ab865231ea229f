package components

import "testing"

func TestTrailEvictsOldest(t *testing.T) {
	var tr Trail
	for i := 0; i < TrailCapacity+3; i++ {
		tr.Push(Cell{X: i, Y: 0})
	}

	if tr.Len() != TrailCapacity {
		t.Fatalf("Len = %d, want %d", tr.Len(), TrailCapacity)
	}

	cells := tr.Cells()
	if cells[0] != (Cell{X: 3}) {
		t.Errorf("oldest = %v, want {3 0}", cells[0])
	}
	if cells[TrailCapacity-1] != (Cell{X: TrailCapacity + 2}) {
		t.Errorf("newest = %v, want {%d 0}", cells[TrailCapacity-1], TrailCapacity+2)
	}

	for i := 0; i < 3; i++ {
		if tr.Contains(Cell{X: i}) {
			t.Errorf("evicted cell %d still present", i)
		}
	}
	if !tr.Contains(Cell{X: 5}) {
		t.Error("expected cell 5 to be present")
	}
}

func TestKillUnconditionalForcesSentinel(t *testing.T) {
	tests := []struct {
		name       string
		cause      DeathCause
		energy     float64
		wantEnergy float64
	}{
		{"crowd with energy", CauseCrowd, 50, -1},
		{"old age with energy", CauseOldAge, 10, -1},
		{"cull", CauseCull, 80, -1},
		{"energy keeps value", CauseEnergy, -0.4, -0.4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := State{Energy: tt.energy}
			s.Kill(tt.cause, -1)
			if s.Death != tt.cause {
				t.Errorf("Death = %v, want %v", s.Death, tt.cause)
			}
			if s.Energy != tt.wantEnergy {
				t.Errorf("Energy = %v, want %v", s.Energy, tt.wantEnergy)
			}
			if s.Alive() {
				t.Error("killed agent reported alive")
			}
		})
	}
}

func TestKillIsTerminal(t *testing.T) {
	s := State{Energy: 5}
	s.Kill(CauseCrowd, -1)
	s.Kill(CauseCull, -1)
	if s.Death != CauseCrowd {
		t.Errorf("Death = %v, want first cause crowd", s.Death)
	}
}

func TestPersonalityText(t *testing.T) {
	for i := 0; i < PersonalityCount(); i++ {
		p := Personality(i)
		b, err := p.MarshalText()
		if err != nil {
			t.Fatal(err)
		}
		var back Personality
		if err := back.UnmarshalText(b); err != nil {
			t.Fatalf("UnmarshalText(%s): %v", b, err)
		}
		if back != p {
			t.Errorf("round trip %v -> %v", p, back)
		}
	}

	if _, err := ParsePersonality("grumpy"); err == nil {
		t.Error("expected error for unknown personality")
	}
}
