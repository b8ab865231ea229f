// Package components defines ECS components for the simulation.
package components

// Color is an agent's RGB genome color.
type Color [3]uint8

// State holds identity, position and vitals of an agent.
type State struct {
	ID       uint32 `inspect:"label"`
	ParentID uint32 `inspect:"label"` // 0 for seeded agents
	X, Y     int
	Energy   float64 `inspect:"bar"`
	Age      int     `inspect:"label"`

	// Death is set once and never cleared.
	Death     DeathCause `inspect:"label"`
	Offspring int        `inspect:"label"`

	Visited  Trail // last distinct cells vacated by moves
	LastMove Cell  // unit offset of the last committed move
}

// Cell returns the agent's current grid cell.
func (s *State) Cell() Cell {
	return Cell{X: s.X, Y: s.Y}
}

// Alive reports whether the agent still takes part in sensing and decisions.
func (s *State) Alive() bool {
	return s.Energy > 0
}

// Kill marks the agent dead with the given cause. Unconditional causes force
// energy to the sentinel so removal happens even if energy was positive.
func (s *State) Kill(cause DeathCause, sentinel float64) {
	if s.Death != CauseNone {
		return
	}
	s.Death = cause
	if cause != CauseEnergy {
		s.Energy = sentinel
	}
}

// Genome holds heritable traits.
type Genome struct {
	Color       Color
	FoodRadius  int `inspect:"label"`
	AgentRadius int `inspect:"label"`
	Personality Personality
}

// Signature identifies a genome for population statistics.
type Signature struct {
	Color       Color
	FoodRadius  int
	AgentRadius int
	Personality Personality
}

// Signature returns the genome's statistics key.
func (g *Genome) Signature() Signature {
	return Signature{
		Color:       g.Color,
		FoodRadius:  g.FoodRadius,
		AgentRadius: g.AgentRadius,
		Personality: g.Personality,
	}
}

// Senses is the sensory snapshot computed at the start of each tick.
type Senses struct {
	FoodCount  int
	AgentCount int // includes the agent itself
	Friends    int // same color
	Others     int

	AvgEnergy float64
	MaxEnergy float64
	Chemo     float64 // no chemical field is simulated; always 0

	EdgeX float64 // [0,1], 0 at the map edge
	EdgeY float64

	FoodUp, FoodDown, FoodLeft, FoodRight int

	// Distances normalized by radius+1; 1.0 means no food seen on that axis.
	FoodUpDist, FoodDownDist, FoodLeftDist, FoodRightDist float64
}

// Memory holds the recurrent decision state and the feature history.
type Memory struct {
	Hidden []float64 // Layers*Hidden, row-major by layer
	Cell   []float64

	// History holds previous un-biased base feature vectors, oldest first.
	History [][]float64
}

// NewMemory returns zeroed recurrent state of the given width.
func NewMemory(stateWidth, history int) Memory {
	return Memory{
		Hidden:  make([]float64, stateWidth),
		Cell:    make([]float64, stateWidth),
		History: make([][]float64, 0, history),
	}
}
