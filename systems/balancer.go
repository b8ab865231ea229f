package systems

import (
	"log/slog"
	"math/rand/v2"

	"github.com/pthm-cable/gridlife/components"
	"github.com/pthm-cable/gridlife/config"
)

// DeathLog is the bounded window of recent death causes.
type DeathLog interface {
	Len() int
	Count(cause components.DeathCause) int
}

// Population is the live-agent collection as seen by the balancer.
type Population interface {
	Len() int
	// CullOldest kills the n oldest live agents with cause cull and returns
	// how many were killed.
	CullOldest(n int) int
}

// DeathEMA holds smoothed death-cause ratios.
type DeathEMA struct {
	Crowd  float64 `json:"crowd"`
	Energy float64 `json:"energy"`
	OldAge float64 `json:"old_age"`
}

// LogValue implements slog.LogValuer.
func (d DeathEMA) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("crowd", d.Crowd),
		slog.Float64("energy", d.Energy),
		slog.Float64("old_age", d.OldAge),
	)
}

// Nudge is the direction of a population safety-valve adjustment.
type Nudge int

const (
	NudgeNone Nudge = iota
	NudgeDown       // population above cap: less food, dearer moves
	NudgeUp         // population below floor: more food, cheaper moves
)

// BalanceReport describes one balancer call.
type BalanceReport struct {
	Ran            bool
	Tick           int
	Ratios         DeathEMA // instantaneous ratios this call
	EMA            DeathEMA
	Knobs          Knobs
	DeadlockTicks  int
	DeadlockBroken bool
	Culled         int
	Nudge          Nudge
}

// Balancer retunes the environment knobs from recent death causes.
// It owns the death-cause EMAs and the deadlock counter.
type Balancer struct {
	cfg    config.BalancerConfig
	minPop int
	env    *Environment
	rng    *rand.Rand

	ema           DeathEMA
	deadlockTicks int
}

// NewBalancer creates a balancer that writes to env.
func NewBalancer(cfg *config.Config, env *Environment, rng *rand.Rand) *Balancer {
	return &Balancer{
		cfg:    cfg.Balancer,
		minPop: cfg.Population.Min,
		env:    env,
		rng:    rng,
	}
}

// EMA returns the current smoothed death ratios.
func (b *Balancer) EMA() DeathEMA {
	return b.ema
}

// DeadlockTicks returns the current deadlock counter.
func (b *Balancer) DeadlockTicks() int {
	return b.deadlockTicks
}

// Balance runs one controller step if tick falls on the interval and enough
// deaths have been recorded. Safety valves run on the same schedule.
func (b *Balancer) Balance(tick int, pop Population, deaths DeathLog) BalanceReport {
	c := b.cfg
	report := BalanceReport{Tick: tick}
	if c.Interval <= 0 || tick%c.Interval != 0 {
		return report
	}
	if pop.Len() == 0 || deaths.Len() < c.MinDeaths {
		return report
	}
	report.Ran = true

	crowd := deaths.Count(components.CauseCrowd) + deaths.Count(components.CauseCull)
	energy := deaths.Count(components.CauseEnergy)
	oldAge := deaths.Count(components.CauseOldAge)
	total := float64(crowd + energy + oldAge + 1)

	report.Ratios = DeathEMA{
		Crowd:  float64(crowd) / total,
		Energy: float64(energy) / total,
		OldAge: float64(oldAge) / total,
	}
	b.ema.Crowd += c.Alpha * (report.Ratios.Crowd - b.ema.Crowd)
	b.ema.Energy += c.Alpha * (report.Ratios.Energy - b.ema.Energy)
	b.ema.OldAge += c.Alpha * (report.Ratios.OldAge - b.ema.OldAge)

	knobs := b.adjust(b.env.Knobs())

	if b.deadlocked(knobs) {
		b.deadlockTicks++
	} else {
		b.deadlockTicks = 0
	}
	if b.deadlockTicks >= c.DeadlockLimit {
		knobs = b.breakDeadlock()
		report.DeadlockBroken = true
		slog.Warn("deadlock_breaker", "tick", tick, "knobs", knobs)
	}
	b.env.setKnobs(knobs)

	n := pop.Len()
	if n > int(float64(b.env.knobs.MaxPop)*c.CullFactor) {
		report.Culled = pop.CullOldest(n - b.env.knobs.MaxPop)
		n -= report.Culled
		slog.Warn("hard_cull", "tick", tick, "culled", report.Culled, "max_pop", b.env.knobs.MaxPop)
	}

	k := b.env.Knobs()
	if n > k.MaxPop {
		k.FoodCount = max(k.FoodCount-c.FoodNudge, c.FoodCount.Min)
		k.MoveCost = min(k.MoveCost+c.MoveNudge, c.MoveCost.Max)
		b.env.setKnobs(k)
		report.Nudge = NudgeDown
		slog.Info("pop_control", "tick", tick, "pop", n)
	}
	if n < b.minPop {
		k.FoodCount = min(k.FoodCount+c.FoodNudge, c.FoodCount.Max)
		k.MoveCost = max(k.MoveCost-c.MoveNudge, c.MoveCost.Min)
		b.env.setKnobs(k)
		report.Nudge = NudgeUp
		slog.Info("pop_recovery", "tick", tick, "pop", n)
	}

	report.EMA = b.ema
	report.Knobs = b.env.Knobs()
	report.DeadlockTicks = b.deadlockTicks

	slog.Debug("balancer",
		"tick", tick,
		"pop", n,
		"ema", report.EMA,
		"knobs", report.Knobs,
		"deadlock", report.DeadlockTicks,
	)
	return report
}

// adjust applies the bounded proportional feedback to k.
func (b *Balancer) adjust(k Knobs) Knobs {
	c := b.cfg
	crowdDev := b.ema.Crowd - c.TargetCrowd
	energyDev := b.ema.Energy - c.TargetEnergy

	neighborChange := clampFloat(1+crowdDev*c.NeighborGain, 1-c.StepBand, 1+c.StepBand)
	foodChange := clampFloat(1+energyDev*c.FoodGain, 1-c.StepBand, 1+c.StepBand)
	moveChange := clampFloat(1+crowdDev*c.MoveGain, 1-c.StepBand, 1+c.StepBand)
	popChange := clampFloat(1-crowdDev*c.PopGain, 1-c.PopStepBand, 1+c.PopStepBand)

	return Knobs{
		MaxNeighbors: int(clampFloat(float64(k.MaxNeighbors)*neighborChange, float64(c.MaxNeighbors.Min), float64(c.MaxNeighbors.Max))),
		FoodCount:    int(clampFloat(float64(k.FoodCount)*foodChange, float64(c.FoodCount.Min), float64(c.FoodCount.Max))),
		MoveCost:     clampFloat(k.MoveCost*moveChange, c.MoveCost.Min, c.MoveCost.Max),
		MaxPop:       int(clampFloat(float64(k.MaxPop)*popChange, float64(c.MaxPop.Min), float64(c.MaxPop.Max))),
	}
}

// deadlocked reports whether every knob sits at its restrictive extreme
// while crowding stays pinned high.
func (b *Balancer) deadlocked(k Knobs) bool {
	c := b.cfg
	return absFloat(float64(k.MaxNeighbors-c.MaxNeighbors.Min)) < c.NeighborTolerance &&
		absFloat(float64(k.FoodCount-c.FoodCount.Min)) < c.FoodTolerance &&
		absFloat(k.MoveCost-c.MoveCost.Max) < c.MoveTolerance &&
		absFloat(float64(k.MaxPop-c.MaxPop.Min)) < c.PopTolerance &&
		b.ema.Crowd > c.DeadlockCrowdEMA
}

// breakDeadlock draws generous knobs, forces the crowd EMA down and resets the counter.
func (b *Balancer) breakDeadlock() Knobs {
	c := b.cfg
	b.ema.Crowd = c.RecoveryCrowdEMA
	b.deadlockTicks = 0
	return Knobs{
		MaxNeighbors: c.RecoveryNeighborsMin + b.rng.IntN(c.MaxNeighbors.Max-c.RecoveryNeighborsMin+1),
		FoodCount:    c.FoodCount.Max/2 + b.rng.IntN(c.FoodCount.Max-c.FoodCount.Max/2+1),
		MoveCost:     c.MoveCost.Min,
		MaxPop:       c.MaxPop.Max,
	}
}
