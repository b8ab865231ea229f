package game

import (
	"cmp"
	"slices"

	"github.com/pthm-cable/gridlife/components"
	"github.com/pthm-cable/gridlife/systems"
	"github.com/pthm-cable/gridlife/telemetry"
)

// AgentView is the read-only state of one agent in a Snapshot.
type AgentView struct {
	ID          uint32                 `json:"id"`
	ParentID    uint32                 `json:"parent_id"`
	X           int                    `json:"x"`
	Y           int                    `json:"y"`
	Color       components.Color       `json:"color" inspect:"color"`
	FoodRadius  int                    `json:"food_radius"`
	AgentRadius int                    `json:"agent_radius"`
	Personality components.Personality `json:"personality"`
	Energy      float64                `json:"energy" inspect:"bar,max:200"`
	Age         int                    `json:"age"`
	Offspring   int                    `json:"offspring"`
	Senses      components.Senses      `json:"senses"`
}

// TraceCell is a recently vacated cell and the tick it was vacated.
type TraceCell struct {
	X    int `json:"x"`
	Y    int `json:"y"`
	Tick int `json:"tick"`
}

// Stats is the aggregate view shown in the HUD and streamed to clients.
type Stats struct {
	Tick          int                       `json:"tick"`
	Population    int                       `json:"population"`
	Food          int                       `json:"food"`
	Zone          int                       `json:"zone"`
	MeanAge       float64                   `json:"mean_age"`
	MaxAge        int                       `json:"max_age"`
	Personalities map[string]int            `json:"personalities"`
	Deaths        map[string]int            `json:"deaths"`
	TotalDeaths   int                       `json:"total_deaths"`
	Leaderboard   []telemetry.GenomeSummary `json:"leaderboard"`
	EMA           systems.DeathEMA          `json:"ema"`
	Knobs         systems.Knobs             `json:"knobs"`
	DeadlockTicks int                       `json:"deadlock_ticks"`
}

// Snapshot is a self-contained copy of the world for rendering and streaming.
// It shares no memory with the game.
type Snapshot struct {
	Width  int               `json:"width"`
	Height int               `json:"height"`
	Zone   systems.Zone      `json:"zone"`
	Agents []AgentView       `json:"agents"`
	Food   []components.Cell `json:"food"`
	Trace  []TraceCell       `json:"trace"`
	Stats  Stats             `json:"stats"`
}

// Snapshot copies the current world state.
func (g *Game) Snapshot() *Snapshot {
	s := &Snapshot{
		Width:  g.env.Width,
		Height: g.env.Height,
		Zone:   g.env.Zone(),
		Agents: make([]AgentView, 0, g.pop.Len()),
		Food:   g.food.Cells(),
		Trace:  make([]TraceCell, 0, len(g.trace)),
		Stats:  g.Stats(),
	}

	for i := 0; i < g.pop.Len(); i++ {
		a := g.pop.at(i)
		st, gen := a.State, a.Genome
		s.Agents = append(s.Agents, AgentView{
			ID:          st.ID,
			ParentID:    st.ParentID,
			X:           st.X,
			Y:           st.Y,
			Color:       gen.Color,
			FoodRadius:  gen.FoodRadius,
			AgentRadius: gen.AgentRadius,
			Personality: gen.Personality,
			Energy:      st.Energy,
			Age:         st.Age,
			Offspring:   st.Offspring,
			Senses:      *a.Senses,
		})
	}

	for c, at := range g.trace {
		s.Trace = append(s.Trace, TraceCell{X: c.X, Y: c.Y, Tick: at})
	}
	slices.SortFunc(s.Trace, func(a, b TraceCell) int {
		return cmp.Or(cmp.Compare(a.Y, b.Y), cmp.Compare(a.X, b.X))
	})

	return s
}

// Stats summarizes the population and the balancer state.
func (g *Game) Stats() Stats {
	s := Stats{
		Tick:          g.tick,
		Population:    g.pop.Len(),
		Food:          g.food.Len(),
		Zone:          g.env.ZoneIndex(),
		Personalities: make(map[string]int, components.PersonalityCount()),
		Deaths:        g.stats.DeathCounts(),
		TotalDeaths:   g.stats.TotalDeaths(),
		Leaderboard:   g.stats.Leaderboard(g.cfg.Telemetry.Leaderboard),
		EMA:           g.balancer.EMA(),
		Knobs:         g.env.Knobs(),
		DeadlockTicks: g.balancer.DeadlockTicks(),
	}

	ages := make([]int, 0, g.pop.Len())
	for i := 0; i < g.pop.Len(); i++ {
		a := g.pop.at(i)
		ages = append(ages, a.State.Age)
		s.Personalities[a.Genome.Personality.String()]++
	}
	s.MeanAge, s.MaxAge = telemetry.ComputeAgeStats(ages)
	return s
}

// AgentAt returns the agent standing on cell (x, y), if any.
func (s *Snapshot) AgentAt(x, y int) (AgentView, bool) {
	for _, a := range s.Agents {
		if a.X == x && a.Y == y {
			return a, true
		}
	}
	return AgentView{}, false
}

// Agent returns the agent with the given ID, if present.
func (s *Snapshot) Agent(id uint32) (AgentView, bool) {
	for _, a := range s.Agents {
		if a.ID == id {
			return a, true
		}
	}
	return AgentView{}, false
}
