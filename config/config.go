// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// NumBaseInputs is the number of per-tick features before history is appended.
const NumBaseInputs = 23

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	World      WorldConfig      `yaml:"world"`
	Population PopulationConfig `yaml:"population"`
	Energy     EnergyConfig     `yaml:"energy"`
	Mutation   MutationConfig   `yaml:"mutation"`
	Neural     NeuralConfig     `yaml:"neural"`
	Knobs      KnobsConfig      `yaml:"knobs"`
	Balancer   BalancerConfig   `yaml:"balancer"`
	Trace      TraceConfig      `yaml:"trace"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Stream     StreamConfig     `yaml:"stream"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings for the graphical viewer.
type ScreenConfig struct {
	Width      int `yaml:"width"`
	Height     int `yaml:"height"`
	CellPixels int `yaml:"cell_pixels"`
	TargetFPS  int `yaml:"target_fps"`
}

// ZoneConfig is a food zone expressed as fractions of the world size.
type ZoneConfig struct {
	X0 float64 `yaml:"x0"`
	X1 float64 `yaml:"x1"`
	Y0 float64 `yaml:"y0"`
	Y1 float64 `yaml:"y1"`
}

// WorldConfig holds grid dimensions and food zone rotation.
type WorldConfig struct {
	Width      int          `yaml:"width"`       // Grid columns
	Height     int          `yaml:"height"`      // Grid rows
	ZonePeriod int          `yaml:"zone_period"` // Ticks between food zone rotations
	Zones      []ZoneConfig `yaml:"zones"`
}

// PopulationConfig holds seeding and floor parameters.
type PopulationConfig struct {
	Initial int `yaml:"initial"`
	Min     int `yaml:"min"` // Below this the balancer nudges resources up
}

// EnergyConfig holds the energy economy.
type EnergyConfig struct {
	Start         float64 `yaml:"start"`
	PerFood       float64 `yaml:"per_food"`
	Reproduce     float64 `yaml:"reproduce"`      // Minimum energy to reproduce
	AfterRepro    float64 `yaml:"after_repro"`    // Parent and child energy after reproduction
	MaxAge        int     `yaml:"max_age"`        // Ticks
	DeathSentinel float64 `yaml:"death_sentinel"` // Energy forced on unconditional deaths
}

// MutationConfig holds genome mutation ranges.
type MutationConfig struct {
	ColorRange      int     `yaml:"color_range"`      // Per-channel +/- step
	RadiusStep      int     `yaml:"radius_step"`      // Per-radius +/- step
	RadiusMin       int     `yaml:"radius_min"`
	RadiusMax       int     `yaml:"radius_max"`
	PersonalityRate float64 `yaml:"personality_rate"` // Probability of redrawing personality
}

// NeuralConfig holds feature and policy shape parameters.
type NeuralConfig struct {
	Policy    string  `yaml:"policy"`  // "lstm" or "ffnn"
	History   int     `yaml:"history"` // Ticks of base features kept as history
	Layers    int     `yaml:"layers"`
	Hidden    int     `yaml:"hidden"`
	Actions   int     `yaml:"actions"`
	InitScale float64 `yaml:"init_scale"` // Uniform init half-width multiplier
}

// KnobsConfig holds the initial resource knobs.
type KnobsConfig struct {
	MaxNeighbors int     `yaml:"max_neighbors"`
	FoodCount    int     `yaml:"food_count"`
	MoveCost     float64 `yaml:"move_cost"`
	IdleRatio    float64 `yaml:"idle_ratio"` // IdleCost = MoveCost * IdleRatio
	MaxPop       int     `yaml:"max_pop"`
}

// RangeInt is an inclusive legal range.
type RangeInt struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// RangeFloat is an inclusive legal range.
type RangeFloat struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// BalancerConfig holds population balancer parameters.
type BalancerConfig struct {
	Interval     int     `yaml:"interval"`   // Ticks between balancer runs
	MinDeaths    int     `yaml:"min_deaths"` // Recent deaths required before adjusting
	Alpha        float64 `yaml:"alpha"`      // EMA smoothing factor
	TargetCrowd  float64 `yaml:"target_crowd"`
	TargetEnergy float64 `yaml:"target_energy"`
	TargetOldAge float64 `yaml:"target_old_age"`

	NeighborGain  float64 `yaml:"neighbor_gain"`
	FoodGain      float64 `yaml:"food_gain"`
	MoveGain      float64 `yaml:"move_gain"`
	PopGain       float64 `yaml:"pop_gain"`
	StepBand      float64 `yaml:"step_band"`     // Neighbor/food/move adjustments clamp to 1 +/- this
	PopStepBand   float64 `yaml:"pop_step_band"` // Pop cap adjustment clamps to 1 +/- this

	MaxNeighbors RangeInt   `yaml:"max_neighbors"`
	FoodCount    RangeInt   `yaml:"food_count"`
	MoveCost     RangeFloat `yaml:"move_cost"`
	MaxPop       RangeInt   `yaml:"max_pop"`

	DeadlockLimit     int     `yaml:"deadlock_limit"`
	DeadlockCrowdEMA  float64 `yaml:"deadlock_crowd_ema"`
	NeighborTolerance float64 `yaml:"neighbor_tolerance"`
	FoodTolerance     float64 `yaml:"food_tolerance"`
	MoveTolerance     float64 `yaml:"move_tolerance"`
	PopTolerance      float64 `yaml:"pop_tolerance"`

	RecoveryNeighborsMin int     `yaml:"recovery_neighbors_min"`
	RecoveryCrowdEMA     float64 `yaml:"recovery_crowd_ema"`

	CullFactor float64 `yaml:"cull_factor"`
	FoodNudge  int     `yaml:"food_nudge"`
	MoveNudge  float64 `yaml:"move_nudge"`
}

// TraceConfig holds the vacated-cell trace parameters.
type TraceConfig struct {
	Length int `yaml:"length"` // Ticks a vacated cell stays in the trace map
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsInterval       int `yaml:"stats_interval"`        // Ticks between population summaries
	Window              int `yaml:"window"`                // Ticks per CSV window
	RecentDeaths        int `yaml:"recent_deaths"`         // Capacity of the recent death ring
	PerfCollectorWindow int `yaml:"perf_collector_window"` // Ticks averaged by the perf collector
	Leaderboard         int `yaml:"leaderboard"`           // Genome signatures reported
}

// StreamConfig holds snapshot streaming parameters.
type StreamConfig struct {
	Every int `yaml:"every"` // Ticks between broadcast snapshots
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	FeatureWidth int // NumBaseInputs * (1 + History)
	StateWidth   int // Layers * Hidden
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Set replaces the global configuration. Games read it at construction and
// during Step, so it must not change while a game is running.
func Set(cfg *Config) {
	global = cfg
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// validate rejects configurations the engine cannot run with.
func (c *Config) validate() error {
	if c.World.Width < 2 || c.World.Height < 2 {
		return fmt.Errorf("world must be at least 2x2, got %dx%d", c.World.Width, c.World.Height)
	}
	if len(c.World.Zones) == 0 {
		return fmt.Errorf("world.zones must not be empty")
	}
	for i, z := range c.World.Zones {
		if z.X0 < 0 || z.Y0 < 0 || z.X1 > 1 || z.Y1 > 1 || z.X0 >= z.X1 || z.Y0 >= z.Y1 {
			return fmt.Errorf("world.zones[%d] must satisfy 0 <= x0 < x1 <= 1 and 0 <= y0 < y1 <= 1, got %+v", i, z)
		}
	}
	if c.Neural.Actions != 4 {
		return fmt.Errorf("neural.actions must be 4 (up, down, left, right), got %d", c.Neural.Actions)
	}
	if c.Neural.Policy != "lstm" && c.Neural.Policy != "ffnn" {
		return fmt.Errorf("neural.policy must be lstm or ffnn, got %q", c.Neural.Policy)
	}
	if c.Neural.Layers < 1 || c.Neural.Hidden < 1 {
		return fmt.Errorf("neural.layers and neural.hidden must be positive")
	}
	if err := c.Balancer.validate(); err != nil {
		return err
	}
	if c.Mutation.RadiusMin < 0 || c.Mutation.RadiusMax < c.Mutation.RadiusMin {
		return fmt.Errorf("invalid radius range [%d, %d]", c.Mutation.RadiusMin, c.Mutation.RadiusMax)
	}
	return nil
}

// validate checks that every legal range is ordered and the deadlock
// recovery draw fits inside the neighbor range.
func (b *BalancerConfig) validate() error {
	ranges := []struct {
		name     string
		min, max float64
	}{
		{"max_neighbors", float64(b.MaxNeighbors.Min), float64(b.MaxNeighbors.Max)},
		{"food_count", float64(b.FoodCount.Min), float64(b.FoodCount.Max)},
		{"move_cost", b.MoveCost.Min, b.MoveCost.Max},
		{"max_pop", float64(b.MaxPop.Min), float64(b.MaxPop.Max)},
	}
	for _, r := range ranges {
		if r.min > r.max {
			return fmt.Errorf("balancer.%s: min %v exceeds max %v", r.name, r.min, r.max)
		}
	}
	if b.RecoveryNeighborsMin > b.MaxNeighbors.Max {
		return fmt.Errorf("balancer.recovery_neighbors_min %d exceeds balancer.max_neighbors.max %d",
			b.RecoveryNeighborsMin, b.MaxNeighbors.Max)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.FeatureWidth = NumBaseInputs * (1 + c.Neural.History)
	c.Derived.StateWidth = c.Neural.Layers * c.Neural.Hidden
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
