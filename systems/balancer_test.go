package systems

import (
	"math/rand/v2"
	"testing"

	"github.com/pthm-cable/gridlife/components"
	"github.com/pthm-cable/gridlife/config"
)

type fakePop struct {
	n      int
	culled int
}

func (p *fakePop) Len() int { return p.n }

func (p *fakePop) CullOldest(n int) int {
	n = min(n, p.n)
	p.culled += n
	return n
}

type fakeDeaths map[components.DeathCause]int

func (d fakeDeaths) Len() int {
	total := 0
	for _, n := range d {
		total += n
	}
	return total
}

func (d fakeDeaths) Count(c components.DeathCause) int { return d[c] }

func newTestBalancer(seed uint64) (*Balancer, *Environment) {
	cfg := config.Cfg()
	env := NewEnvironment(cfg)
	return NewBalancer(cfg, env, rand.New(rand.NewPCG(seed, seed+1))), env
}

func TestBalance_Gating(t *testing.T) {
	b, env := newTestBalancer(1)
	before := env.Knobs()

	tests := []struct {
		name   string
		tick   int
		pop    int
		deaths fakeDeaths
	}{
		{"off interval", 15, 100, fakeDeaths{components.CauseEnergy: 100}},
		{"too few deaths", 20, 100, fakeDeaths{components.CauseEnergy: 49}},
		{"empty population", 20, 0, fakeDeaths{components.CauseEnergy: 100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := b.Balance(tt.tick, &fakePop{n: tt.pop}, tt.deaths)
			if r.Ran {
				t.Error("balancer should not run")
			}
			if env.Knobs() != before {
				t.Errorf("knobs changed: %+v -> %+v", before, env.Knobs())
			}
		})
	}
}

func TestBalance_CullCountsAsCrowd(t *testing.T) {
	b, _ := newTestBalancer(2)
	r := b.Balance(0, &fakePop{n: 100}, fakeDeaths{components.CauseCull: 60, components.CauseEnergy: 40})
	if !r.Ran {
		t.Fatal("expected run")
	}
	want := 60.0 / 101.0
	if !approx(r.Ratios.Crowd, want) {
		t.Errorf("crowd ratio = %f, want %f", r.Ratios.Crowd, want)
	}
	if !approx(b.EMA().Crowd, config.Cfg().Balancer.Alpha*want) {
		t.Errorf("crowd EMA = %f", b.EMA().Crowd)
	}
}

func TestBalance_KnobsStayInRange(t *testing.T) {
	c := config.Cfg().Balancer
	rng := rand.New(rand.NewPCG(9, 9))

	for i := 0; i < 2000; i++ {
		b, env := newTestBalancer(uint64(i))
		b.ema = DeathEMA{Crowd: rng.Float64(), Energy: rng.Float64(), OldAge: rng.Float64()}
		env.setKnobs(Knobs{
			MaxNeighbors: rng.IntN(60),
			FoodCount:    rng.IntN(3000),
			MoveCost:     rng.Float64() * 5,
			MaxPop:       rng.IntN(5000),
		})
		deaths := fakeDeaths{
			components.CauseCrowd:  rng.IntN(700),
			components.CauseEnergy: rng.IntN(700),
			components.CauseOldAge: rng.IntN(700),
		}
		deaths[components.CauseCull] = 50

		r := b.Balance(0, &fakePop{n: 1 + rng.IntN(4000)}, deaths)
		k := r.Knobs
		if k.MaxNeighbors < c.MaxNeighbors.Min || k.MaxNeighbors > c.MaxNeighbors.Max {
			t.Fatalf("MaxNeighbors %d out of range", k.MaxNeighbors)
		}
		if k.FoodCount < c.FoodCount.Min || k.FoodCount > c.FoodCount.Max {
			t.Fatalf("FoodCount %d out of range", k.FoodCount)
		}
		if k.MoveCost < c.MoveCost.Min || k.MoveCost > c.MoveCost.Max {
			t.Fatalf("MoveCost %f out of range", k.MoveCost)
		}
		if k.MaxPop < c.MaxPop.Min || k.MaxPop > c.MaxPop.Max {
			t.Fatalf("MaxPop %d out of range", k.MaxPop)
		}
		if !approx(k.IdleCost, k.MoveCost*config.Cfg().Knobs.IdleRatio) {
			t.Fatalf("IdleCost %f not derived from MoveCost %f", k.IdleCost, k.MoveCost)
		}
		if env.Knobs() != k {
			t.Fatal("report knobs differ from environment")
		}
	}
}

func TestBalance_DeadlockBreaker(t *testing.T) {
	c := config.Cfg().Balancer
	b, env := newTestBalancer(3)

	// Pin every knob at its restrictive extreme with crowding near 1.
	env.setKnobs(Knobs{
		MaxNeighbors: c.MaxNeighbors.Min,
		FoodCount:    c.FoodCount.Min,
		MoveCost:     c.MoveCost.Max,
		MaxPop:       c.MaxPop.Min,
	})
	b.ema.Crowd = 0.99
	deaths := fakeDeaths{components.CauseCrowd: 2000}
	pop := &fakePop{n: 100}

	tick := 0
	for i := 1; i < c.DeadlockLimit; i++ {
		r := b.Balance(tick, pop, deaths)
		tick += c.Interval
		if r.DeadlockBroken {
			t.Fatalf("broke early at call %d", i)
		}
		if r.DeadlockTicks != i {
			t.Fatalf("call %d: deadlock ticks = %d", i, r.DeadlockTicks)
		}
	}

	r := b.Balance(tick, pop, deaths)
	if !r.DeadlockBroken {
		t.Fatal("expected deadlock breaker")
	}
	if r.DeadlockTicks != 0 || b.DeadlockTicks() != 0 {
		t.Errorf("deadlock counter = %d, want 0", r.DeadlockTicks)
	}
	if b.EMA().Crowd != c.RecoveryCrowdEMA {
		t.Errorf("crowd EMA = %f, want %f", b.EMA().Crowd, c.RecoveryCrowdEMA)
	}

	k := env.Knobs()
	if k.MaxNeighbors < c.RecoveryNeighborsMin || k.MaxNeighbors > c.MaxNeighbors.Max {
		t.Errorf("MaxNeighbors = %d, want generous", k.MaxNeighbors)
	}
	if k.FoodCount < c.FoodCount.Max/2 || k.FoodCount > c.FoodCount.Max {
		t.Errorf("FoodCount = %d, want generous", k.FoodCount)
	}
	if k.MoveCost != c.MoveCost.Min {
		t.Errorf("MoveCost = %f, want %f", k.MoveCost, c.MoveCost.Min)
	}
	if k.MaxPop != c.MaxPop.Max {
		t.Errorf("MaxPop = %d, want %d", k.MaxPop, c.MaxPop.Max)
	}
}

func TestBalance_DeadlockCounterResets(t *testing.T) {
	c := config.Cfg().Balancer
	b, env := newTestBalancer(4)
	pin := Knobs{
		MaxNeighbors: c.MaxNeighbors.Min,
		FoodCount:    c.FoodCount.Min,
		MoveCost:     c.MoveCost.Max,
		MaxPop:       c.MaxPop.Min,
	}
	env.setKnobs(pin)
	b.ema.Crowd = 0.99
	deaths := fakeDeaths{components.CauseCrowd: 2000}

	for i := 0; i < 5; i++ {
		b.Balance(i*c.Interval, &fakePop{n: 100}, deaths)
	}
	if b.DeadlockTicks() != 5 {
		t.Fatalf("deadlock ticks = %d, want 5", b.DeadlockTicks())
	}

	// Loosen one knob: the condition no longer holds.
	k := env.Knobs()
	k.MaxPop = c.MaxPop.Max
	env.setKnobs(k)
	b.Balance(5*c.Interval, &fakePop{n: 100}, deaths)
	if b.DeadlockTicks() != 0 {
		t.Errorf("deadlock ticks = %d, want 0", b.DeadlockTicks())
	}
}

func TestBalance_HardCull(t *testing.T) {
	b, _ := newTestBalancer(5)
	pop := &fakePop{n: 2000}

	r := b.Balance(0, pop, fakeDeaths{components.CauseEnergy: 100})
	if r.Culled == 0 {
		t.Fatal("expected hard cull")
	}
	if r.Culled != 2000-r.Knobs.MaxPop {
		t.Errorf("culled %d, want %d", r.Culled, 2000-r.Knobs.MaxPop)
	}
	if r.Nudge != NudgeNone {
		t.Errorf("nudge = %v after cull, want none", r.Nudge)
	}
}

func TestBalance_PopulationNudges(t *testing.T) {
	start := config.Cfg().Knobs

	tests := []struct {
		name      string
		pop       int
		wantNudge Nudge
		foodCheck func(int) bool
	}{
		{"above cap", start.MaxPop + 100, NudgeDown, func(f int) bool { return f < start.FoodCount-40 }},
		{"below floor", 10, NudgeUp, func(f int) bool { return f > start.FoodCount }},
		{"in band", 400, NudgeNone, func(f int) bool { return f <= start.FoodCount }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, _ := newTestBalancer(6)
			r := b.Balance(0, &fakePop{n: tt.pop}, fakeDeaths{components.CauseEnergy: 50})
			if r.Culled != 0 {
				t.Fatalf("unexpected cull of %d", r.Culled)
			}
			if r.Nudge != tt.wantNudge {
				t.Errorf("nudge = %v, want %v", r.Nudge, tt.wantNudge)
			}
			if !tt.foodCheck(r.Knobs.FoodCount) {
				t.Errorf("FoodCount = %d", r.Knobs.FoodCount)
			}
		})
	}
}
