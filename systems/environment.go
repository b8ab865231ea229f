package systems

import (
	"log/slog"
	"math/rand/v2"

	"github.com/pthm-cable/gridlife/components"
	"github.com/pthm-cable/gridlife/config"
)

// Knobs are the runtime-tunable resource parameters. Only the Balancer changes them.
type Knobs struct {
	MaxNeighbors int     `json:"max_neighbors"`
	FoodCount    int     `json:"food_count"`
	MoveCost     float64 `json:"move_cost"`
	IdleCost     float64 `json:"idle_cost"`
	MaxPop       int     `json:"max_pop"`
}

// LogValue implements slog.LogValuer.
func (k Knobs) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("max_neighbors", k.MaxNeighbors),
		slog.Int("food_count", k.FoodCount),
		slog.Float64("move_cost", k.MoveCost),
		slog.Float64("idle_cost", k.IdleCost),
		slog.Int("max_pop", k.MaxPop),
	)
}

// Zone is a half-open cell rectangle [X0,X1) x [Y0,Y1).
type Zone struct {
	X0, X1, Y0, Y1 int
}

// Width returns the zone width in cells.
func (z Zone) Width() int { return z.X1 - z.X0 }

// Height returns the zone height in cells.
func (z Zone) Height() int { return z.Y1 - z.Y0 }

// RandomCell returns a uniformly random cell in the zone.
func (z Zone) RandomCell(rng *rand.Rand) components.Cell {
	return components.Cell{
		X: z.X0 + rng.IntN(max(z.Width(), 1)),
		Y: z.Y0 + rng.IntN(max(z.Height(), 1)),
	}
}

// Environment holds world bounds, the food zone rotation and the resource knobs.
// Lifecycle and reproduction read the knobs; the Balancer is the only writer.
type Environment struct {
	Width  int
	Height int

	zones   []Zone
	zoneIdx int
	period  int

	knobs     Knobs
	idleRatio float64
}

// NewEnvironment builds an environment from config.
func NewEnvironment(cfg *config.Config) *Environment {
	w, h := cfg.World.Width, cfg.World.Height
	zones := make([]Zone, len(cfg.World.Zones))
	for i, z := range cfg.World.Zones {
		zones[i] = Zone{
			X0: int(z.X0 * float64(w)),
			X1: int(z.X1 * float64(w)),
			Y0: int(z.Y0 * float64(h)),
			Y1: int(z.Y1 * float64(h)),
		}
	}

	k := cfg.Knobs
	return &Environment{
		Width:     w,
		Height:    h,
		zones:     zones,
		period:    cfg.World.ZonePeriod,
		idleRatio: k.IdleRatio,
		knobs: Knobs{
			MaxNeighbors: k.MaxNeighbors,
			FoodCount:    k.FoodCount,
			MoveCost:     k.MoveCost,
			IdleCost:     k.MoveCost * k.IdleRatio,
			MaxPop:       k.MaxPop,
		},
	}
}

// Knobs returns a copy of the current resource knobs.
func (e *Environment) Knobs() Knobs {
	return e.knobs
}

// setKnobs replaces the knobs, deriving idle cost from move cost.
func (e *Environment) setKnobs(k Knobs) {
	k.IdleCost = k.MoveCost * e.idleRatio
	e.knobs = k
}

// Zone returns the active food zone.
func (e *Environment) Zone() Zone {
	return e.zones[e.zoneIdx]
}

// ZoneIndex returns the index of the active food zone.
func (e *Environment) ZoneIndex() int {
	return e.zoneIdx
}

// ZoneAt returns zone i.
func (e *Environment) ZoneAt(i int) Zone {
	return e.zones[i]
}

// MaybeRotate advances the food zone at every multiple of the zone period,
// including tick 0. Returns true if it rotated.
func (e *Environment) MaybeRotate(tick int) bool {
	if e.period <= 0 || tick%e.period != 0 {
		return false
	}
	e.zoneIdx = (e.zoneIdx + 1) % len(e.zones)
	return true
}

// SpawnFood tops food up to the FoodCount knob inside the active zone,
// skipping occupied cells. Gives up after 10 tries per requested unit.
// Returns the number of units placed.
func (e *Environment) SpawnFood(food *FoodSet, occupied *ClaimSet, rng *rand.Rand) int {
	want := e.knobs.FoodCount
	zone := e.Zone()
	if zone.Width() <= 0 || zone.Height() <= 0 {
		return 0
	}

	placed := 0
	for tries := 0; food.Len() < want && tries < want*10; tries++ {
		c := zone.RandomCell(rng)
		if occupied.Taken(c) {
			continue
		}
		if food.Add(c.X, c.Y) {
			placed++
		}
	}
	return placed
}
