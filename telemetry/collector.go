package telemetry

import (
	"github.com/pthm-cable/gridlife/components"
	"github.com/pthm-cable/gridlife/systems"
)

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationTicks int

	// Current window tracking
	windowStartTick int

	// Event counters for current window
	births int
	deaths map[components.DeathCause]int
	moves  int
	idle   int
	meals  int
}

// NewCollector creates a new stats collector flushing every windowTicks ticks.
func NewCollector(windowTicks int) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{
		windowDurationTicks: windowTicks,
		deaths:              make(map[components.DeathCause]int),
	}
}

// RecordBirth records a birth event.
func (c *Collector) RecordBirth() {
	c.births++
}

// RecordDeath records a death event.
func (c *Collector) RecordDeath(cause components.DeathCause) {
	c.deaths[cause]++
}

// RecordMove records one resolved action, committed or idle.
func (c *Collector) RecordMove(moved bool) {
	if moved {
		c.moves++
	} else {
		c.idle++
	}
}

// RecordMeal records a food unit eaten.
func (c *Collector) RecordMeal() {
	c.meals++
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Sample is the live state observed when a window is flushed.
type Sample struct {
	Population int
	Food       int
	Zone       int
	Genomes    int
	Energies   []float64
	Ages       []int
	EMA        systems.DeathEMA
	Knobs      systems.Knobs
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int, s Sample) WindowStats {
	var moveRate float64
	if total := c.moves + c.idle; total > 0 {
		moveRate = float64(c.moves) / float64(total)
	}

	energyMean, p10, p50, p90 := ComputeEnergyStats(s.Energies)
	ageMean, ageMax := ComputeAgeStats(s.Ages)

	var deaths int
	for _, n := range c.deaths {
		deaths += n
	}

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,

		Population: s.Population,
		Food:       s.Food,
		Zone:       s.Zone,
		Genomes:    s.Genomes,

		Births:       c.births,
		Deaths:       deaths,
		DeathsCrowd:  c.deaths[components.CauseCrowd],
		DeathsOldAge: c.deaths[components.CauseOldAge],
		DeathsEnergy: c.deaths[components.CauseEnergy],
		DeathsCull:   c.deaths[components.CauseCull],
		Moves:        c.moves,
		IdleSteps:    c.idle,
		Meals:        c.meals,
		MoveRate:     moveRate,

		EnergyMean: energyMean,
		EnergyP10:  p10,
		EnergyP50:  p50,
		EnergyP90:  p90,
		AgeMean:    ageMean,
		AgeMax:     ageMax,

		CrowdEMA:     s.EMA.Crowd,
		EnergyEMA:    s.EMA.Energy,
		OldAgeEMA:    s.EMA.OldAge,
		MaxNeighbors: s.Knobs.MaxNeighbors,
		FoodTarget:   s.Knobs.FoodCount,
		MoveCost:     s.Knobs.MoveCost,
		IdleCost:     s.Knobs.IdleCost,
		MaxPop:       s.Knobs.MaxPop,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.births = 0
	clear(c.deaths)
	c.moves = 0
	c.idle = 0
	c.meals = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int {
	return c.windowDurationTicks
}
