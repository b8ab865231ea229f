package game

import (
	"log/slog"

	"github.com/pthm-cable/gridlife/components"
	"github.com/pthm-cable/gridlife/persistence"
	"github.com/pthm-cable/gridlife/systems"
	"github.com/pthm-cable/gridlife/telemetry"
)

// spawnInitialPopulation seeds random agents on distinct cells of the first
// food zone. Placement gives up after 10 tries per agent.
func (g *Game) spawnInitialPopulation() {
	cfg := g.cfg
	zone := g.env.ZoneAt(0)

	g.claims.Reset()
	placed := 0
	for tries := 0; placed < cfg.Population.Initial && tries < 10*cfg.Population.Initial; tries++ {
		c := zone.RandomCell(g.rng)
		if g.claims.Taken(c) {
			continue
		}
		g.claims.Claim(c)

		st := components.State{X: c.X, Y: c.Y, Energy: cfg.Energy.Start}
		a := g.pop.spawn(st, systems.RandomGenome(g.rng), g.newMemory())
		g.lifetimes.Register(a.State.ID, g.tick, a.State.Energy)
		placed++
	}
	if placed < cfg.Population.Initial {
		slog.Warn("initial population truncated", "wanted", cfg.Population.Initial, "placed", placed)
	}
}

// cleanupDead removes agents with a death cause, recording each in the
// population stats, the window collector and the lineage archive.
// Returns the number removed.
func (g *Game) cleanupDead() int {
	sentinel := g.cfg.Energy.DeathSentinel

	var records []persistence.DeathRecord
	removed := g.pop.sweep(func(a Agent) {
		if a.State.Death == components.CauseNone {
			a.State.Kill(components.CauseEnergy, sentinel)
		}
		g.stats.RecordDeath(a.State, a.Genome)
		g.collector.RecordDeath(a.State.Death)

		life := g.lifetimes.Remove(a.State.ID)
		if g.archive != nil {
			records = append(records, g.deathRecord(a, life))
		}
	})

	if len(records) > 0 {
		if err := g.archive.RecordDeaths(records); err != nil {
			slog.Error("archive write failed", "tick", g.tick, "deaths", len(records), "error", err)
		}
	}
	return removed
}

// updateReproduction lets every surviving agent try to place a child in a
// free neighbor cell. Claims start fresh from the survivors' cells and each
// placed child claims its cell. Children join the end of the processing order.
func (g *Game) updateReproduction() int {
	w, h := g.env.Width, g.env.Height

	g.claims.Reset()
	for i := 0; i < g.pop.Len(); i++ {
		g.claims.Claim(g.pop.at(i).State.Cell())
	}

	// Spawning moves component storage, so breed first and spawn after.
	var children []systems.Child
	for i := 0; i < g.pop.Len(); i++ {
		a := g.pop.at(i)
		child, ok := systems.Breed(a.State, a.Genome, g.claims, g.food, w, h, g.rng)
		if !ok {
			continue
		}
		g.lifetimes.UpdateEnergy(a.State.ID, a.State.Energy)
		children = append(children, child)
	}

	for _, c := range children {
		a := g.pop.spawn(c.State, c.Genome, g.newMemory())
		g.lifetimes.Register(a.State.ID, g.tick, a.State.Energy)
		g.collector.RecordBirth()
	}
	return len(children)
}

// deathRecord converts a removed agent into its archive row.
func (g *Game) deathRecord(a Agent, life *telemetry.LifetimeStats) persistence.DeathRecord {
	st, gen := a.State, a.Genome
	rec := persistence.DeathRecord{
		AgentID:     st.ID,
		ParentID:    st.ParentID,
		Tick:        g.tick,
		Cause:       st.Death.String(),
		Age:         st.Age,
		Offspring:   st.Offspring,
		X:           st.X,
		Y:           st.Y,
		ColorR:      gen.Color[0],
		ColorG:      gen.Color[1],
		ColorB:      gen.Color[2],
		FoodRadius:  gen.FoodRadius,
		AgentRadius: gen.AgentRadius,
		Personality: gen.Personality.String(),
	}
	if life != nil {
		rec.Meals = life.Meals
		rec.PeakEnergy = life.PeakEnergy
	}
	return rec
}
