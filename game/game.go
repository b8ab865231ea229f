// Package game runs the grid simulation: one Step is one tick of sensing,
// a single batched policy decision, movement, feeding, death, reproduction
// and balancing.
package game

import (
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/pthm-cable/gridlife/components"
	"github.com/pthm-cable/gridlife/config"
	"github.com/pthm-cable/gridlife/neural"
	"github.com/pthm-cable/gridlife/persistence"
	"github.com/pthm-cable/gridlife/stream"
	"github.com/pthm-cable/gridlife/systems"
	"github.com/pthm-cable/gridlife/telemetry"
)

// Options configures a new game.
type Options struct {
	Seed   uint64
	Policy neural.Policy // nil builds the reference LSTM

	Archive *persistence.DB // optional lineage archive
	Stream  *stream.Hub     // optional snapshot broadcaster

	OutputDir string // CSV/JSON output directory, empty disables
	LogStats  bool   // log window stats to stdout
}

// TickReport counts what the last Step did to the population.
type TickReport struct {
	Tick         int
	Before       int // agents at tick start
	Deaths       int // agents given a death cause by lifecycle this tick
	AfterCleanup int
	Births       int
	Culled       int
	After        int
	Balance      systems.BalanceReport
}

// LogValue implements slog.LogValuer.
func (r TickReport) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("tick", r.Tick),
		slog.Int("before", r.Before),
		slog.Int("deaths", r.Deaths),
		slog.Int("births", r.Births),
		slog.Int("culled", r.Culled),
		slog.Int("after", r.After),
	)
}

// Game holds the complete simulation state.
type Game struct {
	cfg *config.Config
	rng *rand.Rand

	pop    *population
	food   *systems.FoodSet
	index  *systems.SpatialIndex
	claims *systems.ClaimSet
	trace  systems.TraceMap

	env      *systems.Environment
	balancer *systems.Balancer

	encoder  *neural.Encoder
	policy   neural.Policy
	parallel *parallelState

	// Telemetry
	stats     *telemetry.PopulationStats
	collector *telemetry.Collector
	lifetimes *telemetry.LifetimeTracker
	perf      *telemetry.PerfCollector
	output    *telemetry.OutputManager
	bookmarks *telemetry.BookmarkDetector
	logStats  bool

	archive *persistence.DB
	hub     *stream.Hub

	tick int
	last TickReport
}

// NewGame creates a game from the global config and seeds the initial population.
func NewGame(opts Options) (*Game, error) {
	cfg := config.Cfg()
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))

	policy := opts.Policy
	if policy == nil {
		policy = newPolicy(cfg, rng)
	}
	if policy.FeatureWidth() != cfg.Derived.FeatureWidth || policy.StateWidth() != cfg.Derived.StateWidth {
		return nil, fmt.Errorf("policy widths %d/%d do not match config %d/%d",
			policy.FeatureWidth(), policy.StateWidth(), cfg.Derived.FeatureWidth, cfg.Derived.StateWidth)
	}
	if policy.Actions() != systems.NumActions {
		return nil, fmt.Errorf("policy has %d actions, want %d", policy.Actions(), systems.NumActions)
	}

	w, h := cfg.World.Width, cfg.World.Height
	env := systems.NewEnvironment(cfg)

	g := &Game{
		cfg:      cfg,
		rng:      rng,
		pop:      newPopulation(cfg.Energy.DeathSentinel),
		food:     systems.NewFoodSet(w, h),
		index:    systems.NewSpatialIndex(w, h),
		claims:   systems.NewClaimSet(w, h),
		trace:    make(systems.TraceMap),
		env:      env,
		balancer: systems.NewBalancer(cfg, env, rng),
		encoder:  neural.NewEncoder(cfg.Neural.History),
		policy:   policy,
		parallel: newParallelState(),

		stats:     telemetry.NewPopulationStats(cfg.Telemetry.RecentDeaths),
		collector: telemetry.NewCollector(cfg.Telemetry.Window),
		lifetimes: telemetry.NewLifetimeTracker(),
		perf:      telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		bookmarks: telemetry.NewBookmarkDetector(10),
		logStats:  opts.LogStats,

		archive: opts.Archive,
		hub:     opts.Stream,
	}

	if opts.OutputDir != "" {
		om, err := telemetry.NewOutputManager(opts.OutputDir)
		if err != nil {
			return nil, fmt.Errorf("create output manager: %w", err)
		}
		if err := om.WriteConfig(cfg); err != nil {
			om.Close()
			return nil, fmt.Errorf("write config: %w", err)
		}
		g.output = om
	}

	g.spawnInitialPopulation()
	return g, nil
}

// newPolicy builds the configured reference policy.
func newPolicy(cfg *config.Config, rng *rand.Rand) neural.Policy {
	if cfg.Neural.Policy == "ffnn" {
		return neural.NewFFNN(cfg.Derived.FeatureWidth, cfg.Neural.Hidden, cfg.Neural.Actions, cfg.Derived.StateWidth, rng)
	}
	return neural.NewLSTM(
		cfg.Derived.FeatureWidth,
		cfg.Neural.Hidden,
		cfg.Neural.Layers,
		cfg.Neural.Actions,
		cfg.Neural.InitScale,
		rng,
	)
}

// Tick returns the number of completed ticks.
func (g *Game) Tick() int {
	return g.tick
}

// Population returns the number of stored agents.
func (g *Game) Population() int {
	return g.pop.Len()
}

// LastTick returns the population accounting of the most recent Step.
func (g *Game) LastTick() TickReport {
	return g.last
}

// Knobs returns the current resource knobs.
func (g *Game) Knobs() systems.Knobs {
	return g.env.Knobs()
}

// Agents calls fn for each agent in processing order. The view is only valid
// until the next Step.
func (g *Game) Agents(fn func(Agent)) {
	for i := 0; i < g.pop.Len(); i++ {
		fn(g.pop.at(i))
	}
}

// Lineage returns the archived ancestry of an agent, newest first.
// Returns nil without an archive.
func (g *Game) Lineage(id uint32) ([]persistence.DeathRecord, error) {
	if g.archive == nil {
		return nil, nil
	}
	return g.archive.Ancestors(id)
}

// Perf returns the rolling per-phase timings.
func (g *Game) Perf() telemetry.PerfStats {
	return g.perf.Stats()
}

// RecordFrame marks a rendered frame for FPS tracking.
func (g *Game) RecordFrame() {
	g.perf.RecordFrame()
}

// Close writes final outputs and stops background workers. The archive and
// stream passed in Options are left open for their owner to close.
func (g *Game) Close() error {
	g.stopParallelWorkers()

	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if g.archive != nil {
		keep(g.archive.SaveTick(g.tick))
	}
	if g.output != nil {
		keep(g.output.WriteLeaderboard(g.stats.Leaderboard(g.cfg.Telemetry.Leaderboard)))
		keep(g.output.Close())
	}
	return firstErr
}

// newMemory returns zeroed recurrent state sized for the policy.
func (g *Game) newMemory() components.Memory {
	return components.NewMemory(g.cfg.Derived.StateWidth, g.cfg.Neural.History)
}
