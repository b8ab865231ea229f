package telemetry

// LifetimeStats tracks per-agent statistics over its lifetime.
type LifetimeStats struct {
	BirthTick int `json:"birth_tick"`

	Moves int `json:"moves"`
	Idle  int `json:"idle"`
	Meals int `json:"meals"`

	PeakEnergy float64 `json:"peak_energy"`
	FoodEnergy float64 `json:"food_energy"` // cumulative energy gained from eating
}

// LifetimeTracker manages per-agent lifetime statistics keyed by agent ID.
type LifetimeTracker struct {
	stats map[uint32]*LifetimeStats
}

// NewLifetimeTracker creates a new lifetime tracker.
func NewLifetimeTracker() *LifetimeTracker {
	return &LifetimeTracker{
		stats: make(map[uint32]*LifetimeStats),
	}
}

// Register creates lifetime stats for a new agent.
func (lt *LifetimeTracker) Register(id uint32, birthTick int, energy float64) {
	lt.stats[id] = &LifetimeStats{BirthTick: birthTick, PeakEnergy: energy}
}

// Get returns the lifetime stats for an agent, or nil if not found.
func (lt *LifetimeTracker) Get(id uint32) *LifetimeStats {
	return lt.stats[id]
}

// Remove removes an agent's stats and returns them.
func (lt *LifetimeTracker) Remove(id uint32) *LifetimeStats {
	stats := lt.stats[id]
	delete(lt.stats, id)
	return stats
}

// RecordMove counts a committed move or an idle step.
func (lt *LifetimeTracker) RecordMove(id uint32, moved bool) {
	if s := lt.stats[id]; s != nil {
		if moved {
			s.Moves++
		} else {
			s.Idle++
		}
	}
}

// RecordMeal adds one eaten food unit and its energy gain.
func (lt *LifetimeTracker) RecordMeal(id uint32, gain float64) {
	if s := lt.stats[id]; s != nil {
		s.Meals++
		s.FoodEnergy += gain
	}
}

// UpdateEnergy tracks peak energy.
func (lt *LifetimeTracker) UpdateEnergy(id uint32, energy float64) {
	if s := lt.stats[id]; s != nil && energy > s.PeakEnergy {
		s.PeakEnergy = energy
	}
}

// Count returns the number of tracked agents.
func (lt *LifetimeTracker) Count() int {
	return len(lt.stats)
}
