package systems

import (
	"math/rand/v2"

	"github.com/pthm-cable/gridlife/components"
	"github.com/pthm-cable/gridlife/config"
)

// breedOffsets are the axis-adjacent cells examined for a child, in order.
var breedOffsets = [4]components.Cell{
	{X: -1, Y: 0},
	{X: 1, Y: 0},
	{X: 0, Y: -1},
	{X: 0, Y: 1},
}

// Child is a newborn produced by Breed, waiting to be spawned.
type Child struct {
	State  components.State
	Genome components.Genome
}

// CanReproduce reports whether the agent has enough energy to breed.
func CanReproduce(st *components.State) bool {
	return st.Energy >= config.Cfg().Energy.Reproduce
}

// Breed tries to place a mutated child next to the parent. A candidate cell
// must not be claimed or hold food. The chosen cell is claimed immediately.
// On success the parent's energy is reset and its offspring count incremented.
func Breed(st *components.State, g *components.Genome, claimed *ClaimSet, food *FoodSet, width, height int, rng *rand.Rand) (Child, bool) {
	if !CanReproduce(st) {
		return Child{}, false
	}

	var candidates [4]components.Cell
	n := 0
	for _, d := range breedOffsets {
		c := components.Cell{
			X: clampInt(st.X+d.X, 0, width-1),
			Y: clampInt(st.Y+d.Y, 0, height-1),
		}
		if claimed.Taken(c) || food.Has(c.X, c.Y) {
			continue
		}
		candidates[n] = c
		n++
	}
	if n == 0 {
		return Child{}, false
	}

	pos := candidates[rng.IntN(n)]
	claimed.Claim(pos)

	energy := config.Cfg().Energy.AfterRepro
	st.Energy = energy
	st.Offspring++

	return Child{
		State: components.State{
			ParentID: st.ID,
			X:        pos.X,
			Y:        pos.Y,
			Energy:   energy,
		},
		Genome: MutateGenome(g, rng),
	}, true
}

// MutateGenome returns a mutated copy of g.
func MutateGenome(g *components.Genome, rng *rand.Rand) components.Genome {
	m := config.Cfg().Mutation

	child := *g
	for i, c := range g.Color {
		child.Color[i] = uint8(clampInt(int(c)+randStep(rng, m.ColorRange), 0, 255))
	}
	child.FoodRadius = clampInt(g.FoodRadius+randStep(rng, m.RadiusStep), m.RadiusMin, m.RadiusMax)
	child.AgentRadius = clampInt(g.AgentRadius+randStep(rng, m.RadiusStep), m.RadiusMin, m.RadiusMax)
	if rng.Float64() < m.PersonalityRate {
		child.Personality = RandomPersonality(rng)
	}
	return child
}

// RandomGenome draws a genome for a seeded agent.
func RandomGenome(rng *rand.Rand) components.Genome {
	m := config.Cfg().Mutation
	return components.Genome{
		Color: components.Color{
			uint8(rng.IntN(255)),
			uint8(rng.IntN(255)),
			uint8(rng.IntN(255)),
		},
		FoodRadius:  m.RadiusMin + rng.IntN(m.RadiusMax-m.RadiusMin+1),
		AgentRadius: m.RadiusMin + rng.IntN(m.RadiusMax-m.RadiusMin+1),
		Personality: RandomPersonality(rng),
	}
}

// RandomPersonality draws a personality uniformly.
func RandomPersonality(rng *rand.Rand) components.Personality {
	return components.Personality(rng.IntN(components.PersonalityCount()))
}

// randStep returns a uniform integer in [-r, r].
func randStep(rng *rand.Rand, r int) int {
	if r <= 0 {
		return 0
	}
	return rng.IntN(2*r+1) - r
}
