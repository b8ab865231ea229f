package game

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/gridlife/components"
	"github.com/pthm-cable/gridlife/neural"
	"github.com/pthm-cable/gridlife/systems"
	"github.com/pthm-cable/gridlife/telemetry"
)

// Step runs a single tick of the simulation. It fails only when the policy
// call fails; the game should not be stepped again after an error.
func (g *Game) Step() error {
	g.perf.StartTick()
	g.last = TickReport{Tick: g.tick, Before: g.pop.Len()}

	// 1. Food zone rotation and replenishment
	g.perf.StartPhase(telemetry.PhaseFood)
	g.updateFood()

	// 2. Spatial index over tick-start positions
	g.perf.StartPhase(telemetry.PhaseSpatial)
	g.updateSpatialIndex()

	// 3. Senses and features for every live agent
	g.perf.StartPhase(telemetry.PhaseSense)
	slots := g.buildBatch()

	// 4. One batched policy call
	g.perf.StartPhase(telemetry.PhaseDecide)
	if err := neural.Decide(g.policy, slots, g.rng); err != nil {
		g.perf.EndTick()
		return fmt.Errorf("tick %d: %w", g.tick, err)
	}

	// 5. Moves in processing order, then eat and age
	g.perf.StartPhase(telemetry.PhaseLifecycle)
	g.applyMoves(slots)
	g.last.Deaths = g.updateEnergy()

	// 6. Remove the dead
	g.perf.StartPhase(telemetry.PhaseCleanup)
	g.cleanupDead()
	g.last.AfterCleanup = g.pop.Len()

	// 7. Reproduction into free neighbor cells
	g.perf.StartPhase(telemetry.PhaseReproduction)
	g.last.Births = g.updateReproduction()

	// 8. Balancer, including same-tick removal of culled agents
	g.perf.StartPhase(telemetry.PhaseBalance)
	g.last.Balance = g.balancer.Balance(g.tick, g.pop, g.stats.Recent())
	if g.last.Balance.Culled > 0 {
		g.last.Culled = g.cleanupDead()
	}
	g.last.After = g.pop.Len()

	// 9. Trace decay, logs and outputs
	g.perf.StartPhase(telemetry.PhaseTelemetry)
	g.trace.Prune(g.tick, g.cfg.Trace.Length)
	g.updateTelemetry()

	g.perf.EndTick()
	g.tick++
	return nil
}

// updateFood rotates the food zone on schedule and tops food back up to the
// FoodCount knob. A rotation clears all existing food first.
func (g *Game) updateFood() {
	if g.env.MaybeRotate(g.tick) {
		g.food.Clear()
		slog.Info("food_zone_rotated", "tick", g.tick, "zone", g.env.ZoneIndex())
	}

	g.claims.Reset()
	for i := 0; i < g.pop.Len(); i++ {
		g.claims.Claim(g.pop.at(i).State.Cell())
	}
	g.env.SpawnFood(g.food, g.claims, g.rng)
}

// updateSpatialIndex rebuilds the per-cell occupant index.
func (g *Game) updateSpatialIndex() {
	g.index.Clear()
	for i := 0; i < g.pop.Len(); i++ {
		a := g.pop.at(i)
		if !a.State.Alive() {
			continue
		}
		g.index.Insert(systems.Occupant{
			E:      a.Entity,
			Color:  a.Genome.Color,
			Energy: a.State.Energy,
		}, a.State.X, a.State.Y)
	}
}

// applyMoves resolves each decided move in batch order. Claims start as every
// agent's tick-start cell, so no two agents end on the same cell.
func (g *Game) applyMoves(slots []neural.Slot) {
	knobs := g.env.Knobs()
	w, h := g.env.Width, g.env.Height

	for i := range slots {
		a := g.parallel.agents[i]
		res := systems.ApplyMove(a.State, slots[i].Action, g.claims, knobs, w, h, g.trace, g.tick)
		g.claims.Claim(res.To)

		g.collector.RecordMove(res.Moved)
		g.lifetimes.RecordMove(a.State.ID, res.Moved)
	}
}

// updateEnergy feeds and ages every agent that was alive at tick start. An
// agent whose move left it without energy dies before it can eat.
// Returns the number given a death cause.
func (g *Game) updateEnergy() int {
	knobs := g.env.Knobs()
	perFood := g.cfg.Energy.PerFood
	sentinel := g.cfg.Energy.DeathSentinel

	deaths := 0
	for _, a := range g.parallel.agents {
		if !a.State.Alive() {
			a.State.Kill(components.CauseEnergy, sentinel)
			deaths++
			continue
		}
		if systems.Eat(a.State, g.food) {
			g.collector.RecordMeal()
			g.lifetimes.RecordMeal(a.State.ID, perFood)
		}
		g.lifetimes.UpdateEnergy(a.State.ID, a.State.Energy)

		if systems.Age(a.State, a.Senses, knobs) != components.CauseNone {
			deaths++
		}
	}
	return deaths
}
