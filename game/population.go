package game

import (
	"slices"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/gridlife/components"
)

// Agent is a live view of one population member's components.
type Agent struct {
	Entity ecs.Entity
	State  *components.State
	Genome *components.Genome
	Senses *components.Senses
	Memory *components.Memory
}

// population stores agents as ark entities and keeps their processing order.
// Order is insertion order: seeded agents first, then children in birth order.
type population struct {
	world  *ecs.World
	mapper *ecs.Map4[components.State, components.Genome, components.Senses, components.Memory]

	order  []ecs.Entity
	nextID uint32

	sentinel float64
}

func newPopulation(sentinel float64) *population {
	world := ecs.NewWorld()
	return &population{
		world:    world,
		mapper:   ecs.NewMap4[components.State, components.Genome, components.Senses, components.Memory](world),
		sentinel: sentinel,
	}
}

// spawn adds an agent, assigning the next ID. IDs start at 1 and are never reused.
func (p *population) spawn(st components.State, g components.Genome, mem components.Memory) Agent {
	p.nextID++
	st.ID = p.nextID
	var senses components.Senses

	e := p.mapper.NewEntity(&st, &g, &senses, &mem)
	p.order = append(p.order, e)
	return p.agent(e)
}

func (p *population) agent(e ecs.Entity) Agent {
	st, g, s, m := p.mapper.Get(e)
	return Agent{Entity: e, State: st, Genome: g, Senses: s, Memory: m}
}

// at returns the i-th agent in processing order.
func (p *population) at(i int) Agent {
	return p.agent(p.order[i])
}

// Len returns the number of stored agents, dead or alive.
func (p *population) Len() int {
	return len(p.order)
}

// CullOldest marks the n oldest agents dead with the cull cause.
// Ties keep processing order. Returns the number culled.
func (p *population) CullOldest(n int) int {
	if n <= 0 {
		return 0
	}

	candidates := make([]Agent, 0, len(p.order))
	for _, e := range p.order {
		a := p.agent(e)
		if a.State.Death == components.CauseNone {
			candidates = append(candidates, a)
		}
	}
	slices.SortStableFunc(candidates, func(a, b Agent) int {
		return b.State.Age - a.State.Age
	})

	n = min(n, len(candidates))
	for _, a := range candidates[:n] {
		a.State.Kill(components.CauseCull, p.sentinel)
	}
	return n
}

// sweep removes every agent with a death cause or no energy left, calling fn on
// each before its entity is destroyed. Survivors keep their relative order.
func (p *population) sweep(fn func(Agent)) int {
	var dead []Agent
	kept := p.order[:0]
	for _, e := range p.order {
		a := p.agent(e)
		if a.State.Death != components.CauseNone || !a.State.Alive() {
			dead = append(dead, a)
			continue
		}
		kept = append(kept, e)
	}
	p.order = kept

	// Component pointers move once any entity is removed, so visit all first.
	if fn != nil {
		for _, a := range dead {
			fn(a)
		}
	}
	for _, a := range dead {
		p.world.RemoveEntity(a.Entity)
	}
	return len(dead)
}
