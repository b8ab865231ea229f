package main

import (
	"math"

	"github.com/pthm-cable/gridlife/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
	Integer bool    // Rounded before it is applied

	get func(*config.Config) float64
	set func(*config.Config, float64)
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters. Knob
// bounds stay inside the balancer's legal ranges so the first adjustment
// never has to clamp them.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Energy
			{
				Name: "per_food", Path: "energy.per_food", Min: 30, Max: 100, Default: 60,
				get: func(c *config.Config) float64 { return c.Energy.PerFood },
				set: func(c *config.Config, v float64) { c.Energy.PerFood = v },
			},
			{
				Name: "reproduce", Path: "energy.reproduce", Min: 80, Max: 200, Default: 120,
				get: func(c *config.Config) float64 { return c.Energy.Reproduce },
				set: func(c *config.Config, v float64) { c.Energy.Reproduce = v },
			},
			{
				Name: "after_repro", Path: "energy.after_repro", Min: 20, Max: 70, Default: 45,
				get: func(c *config.Config) float64 { return c.Energy.AfterRepro },
				set: func(c *config.Config, v float64) { c.Energy.AfterRepro = v },
			},
			// Knobs
			{
				Name: "food_count", Path: "knobs.food_count", Min: 300, Max: 1200, Default: 600, Integer: true,
				get: func(c *config.Config) float64 { return float64(c.Knobs.FoodCount) },
				set: func(c *config.Config, v float64) { c.Knobs.FoodCount = int(v) },
			},
			{
				Name: "move_cost", Path: "knobs.move_cost", Min: 0.8, Max: 2.5, Default: 1.0,
				get: func(c *config.Config) float64 { return c.Knobs.MoveCost },
				set: func(c *config.Config, v float64) { c.Knobs.MoveCost = v },
			},
			{
				Name: "idle_ratio", Path: "knobs.idle_ratio", Min: 0.2, Max: 1.0, Default: 0.6,
				get: func(c *config.Config) float64 { return c.Knobs.IdleRatio },
				set: func(c *config.Config, v float64) { c.Knobs.IdleRatio = v },
			},
			{
				Name: "max_neighbors", Path: "knobs.max_neighbors", Min: 8, Max: 30, Default: 15, Integer: true,
				get: func(c *config.Config) float64 { return float64(c.Knobs.MaxNeighbors) },
				set: func(c *config.Config, v float64) { c.Knobs.MaxNeighbors = int(v) },
			},
			{
				Name: "max_pop", Path: "knobs.max_pop", Min: 200, Max: 2000, Default: 800, Integer: true,
				get: func(c *config.Config) float64 { return float64(c.Knobs.MaxPop) },
				set: func(c *config.Config, v float64) { c.Knobs.MaxPop = int(v) },
			},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp bounds every value and rounds integer parameters.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := math.Max(spec.Min, math.Min(spec.Max, v[i]))
		if spec.Integer {
			val = math.Round(val)
		}
		clamped[i] = val
	}
	return clamped
}

// ApplyToConfig writes clamped parameter values into cfg.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	for i, v := range pv.Clamp(values) {
		pv.Specs[i].set(cfg, v)
	}
	// Reproduction must leave the parent with less than the threshold.
	if cfg.Energy.AfterRepro >= cfg.Energy.Reproduce {
		cfg.Energy.AfterRepro = cfg.Energy.Reproduce / 2
	}
}

// ExtractFromConfig reads current parameter values from cfg.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.get(cfg)
	}
	return v
}
