// Package neural builds policy inputs and runs the batched decision policy.
package neural

import (
	"github.com/pthm-cable/gridlife/components"
	"github.com/pthm-cable/gridlife/config"
	"github.com/pthm-cable/gridlife/systems"
)

// Base feature indices.
const (
	InFoodCount = iota
	InAgentCount
	InFriends
	InOthers
	InAvgEnergy
	InMaxEnergy
	InChemo
	InEdgeX
	InEdgeY
	InFoodUp
	InFoodDown
	InFoodLeft
	InFoodRight
	InFoodUpDist
	InFoodDownDist
	InFoodLeftDist
	InFoodRightDist
	InVisitedHere
	InLastMoveX
	InLastMoveY
	InCrowdEMA
	InEnergyEMA
	InOldAgeEMA

	NumBaseInputs
)

// Normalization divisors.
const (
	countScale     = 10.0
	energyScale    = 200.0
	chemoScale     = 5.0
	directionScale = 5.0
)

// bias is a personality's perception tweak: feature index and multiplier.
type bias struct {
	index int
	mult  float64
}

// personalityBias maps each personality to the single feature it distorts.
var personalityBias = [...]bias{
	components.PersonalityExplorer: {InFoodUpDist, 1.2},
	components.PersonalitySurvivor: {InAvgEnergy, 1.2},
	components.PersonalityFeeder:   {InFoodCount, 1.2},
	components.PersonalityLoner:    {InAgentCount, 1.2},
	components.PersonalitySocial:   {InAgentCount, -1.2},
}

// BaseFeatures returns the normalized per-tick features before personality bias.
func BaseFeatures(s *components.Senses, st *components.State, ema systems.DeathEMA) [NumBaseInputs]float64 {
	var f [NumBaseInputs]float64

	f[InFoodCount] = float64(s.FoodCount) / countScale
	f[InAgentCount] = float64(s.AgentCount) / countScale
	f[InFriends] = float64(s.Friends) / countScale
	f[InOthers] = float64(s.Others) / countScale
	f[InAvgEnergy] = s.AvgEnergy / energyScale
	f[InMaxEnergy] = s.MaxEnergy / energyScale
	f[InChemo] = s.Chemo / chemoScale
	f[InEdgeX] = s.EdgeX
	f[InEdgeY] = s.EdgeY
	f[InFoodUp] = float64(s.FoodUp) / directionScale
	f[InFoodDown] = float64(s.FoodDown) / directionScale
	f[InFoodLeft] = float64(s.FoodLeft) / directionScale
	f[InFoodRight] = float64(s.FoodRight) / directionScale
	f[InFoodUpDist] = s.FoodUpDist
	f[InFoodDownDist] = s.FoodDownDist
	f[InFoodLeftDist] = s.FoodLeftDist
	f[InFoodRightDist] = s.FoodRightDist
	if st.Visited.Contains(st.Cell()) {
		f[InVisitedHere] = 1
	}
	f[InLastMoveX] = float64(st.LastMove.X)
	f[InLastMoveY] = float64(st.LastMove.Y)
	f[InCrowdEMA] = ema.Crowd
	f[InEnergyEMA] = ema.Energy
	f[InOldAgeEMA] = ema.OldAge

	return f
}

// Encoder assembles fixed-width feature vectors with a rolling history.
type Encoder struct {
	history int
}

// NewEncoder creates an encoder keeping history previous ticks.
func NewEncoder(history int) *Encoder {
	return &Encoder{history: history}
}

// Width returns the feature vector length.
func (e *Encoder) Width() int {
	return NumBaseInputs * (1 + e.history)
}

// Encode writes the agent's feature vector into dst, which must have length
// Width(). Layout: current base features, then history oldest first,
// zero-padded. The un-biased base features are then pushed into history.
func (e *Encoder) Encode(dst []float64, s *components.Senses, st *components.State, g *components.Genome, mem *components.Memory, ema systems.DeathEMA) {
	base := BaseFeatures(s, st, ema)

	copy(dst, base[:])
	off := NumBaseInputs
	for _, h := range mem.History {
		copy(dst[off:off+NumBaseInputs], h)
		off += NumBaseInputs
	}
	clear(dst[off:])

	e.push(mem, base[:])

	if int(g.Personality) < len(personalityBias) {
		b := personalityBias[g.Personality]
		dst[b.index] *= b.mult
	}
}

// push appends base to the history, dropping the oldest entry when full.
func (e *Encoder) push(mem *components.Memory, base []float64) {
	if e.history <= 0 {
		return
	}
	if len(mem.History) < e.history {
		mem.History = append(mem.History, append([]float64(nil), base...))
		return
	}
	oldest := mem.History[0]
	copy(mem.History, mem.History[1:])
	copy(oldest, base)
	mem.History[len(mem.History)-1] = oldest
}

// The feature layout must match config.NumBaseInputs.
const (
	_ = uint(NumBaseInputs - config.NumBaseInputs)
	_ = uint(config.NumBaseInputs - NumBaseInputs)
)
