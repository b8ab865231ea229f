package systems

import (
	"github.com/pthm-cable/gridlife/components"
	"github.com/pthm-cable/gridlife/config"
)

// Eat consumes the food on the agent's cell, if any.
func Eat(st *components.State, food *FoodSet) bool {
	if !food.Remove(st.X, st.Y) {
		return false
	}
	st.Energy += config.Cfg().Energy.PerFood
	return true
}

// Age advances the agent one tick and evaluates death in priority order:
// crowding, then old age, then exhausted energy. Returns the cause, or
// CauseNone if the agent survives.
func Age(st *components.State, senses *components.Senses, knobs Knobs) components.DeathCause {
	cfg := config.Cfg()
	st.Age++

	switch {
	case knobs.MaxNeighbors > 0 && senses.AgentCount > knobs.MaxNeighbors:
		st.Kill(components.CauseCrowd, cfg.Energy.DeathSentinel)
	case st.Age >= cfg.Energy.MaxAge:
		st.Kill(components.CauseOldAge, cfg.Energy.DeathSentinel)
	case st.Energy <= 0:
		st.Kill(components.CauseEnergy, cfg.Energy.DeathSentinel)
	default:
		return components.CauseNone
	}
	return st.Death
}
