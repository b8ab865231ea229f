package main

import (
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/gridlife/config"
	"github.com/pthm-cable/gridlife/game"
	"github.com/pthm-cable/gridlife/telemetry"
)

// FitnessEvaluator runs headless games and computes fitness. Games read the
// global config, so seeds run one after another with the evaluated config
// installed through config.Set.
type FitnessEvaluator struct {
	params     *ParamVector
	maxTicks   int
	seeds      []uint64
	baseConfig *config.Config

	bestFitness     float64
	bestLeaderboard []telemetry.GenomeSummary
	lastQuality     float64
	lastSurvival    float64
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int, seeds []uint64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		bestFitness: math.Inf(1),
	}
}

// BestLeaderboard returns the genome leaderboard from the best evaluation.
func (fe *FitnessEvaluator) BestLeaderboard() []telemetry.GenomeSummary {
	return fe.bestLeaderboard
}

// LastQuality returns the mean quality from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	return fe.lastQuality
}

// LastSurvival returns the mean survival ticks from the most recent evaluation.
func (fe *FitnessEvaluator) LastSurvival() float64 {
	return fe.lastSurvival
}

const (
	warmupTicks = 200 // population samples before this tick are ignored
	sampleEvery = 50  // ticks between population samples
)

// runResult holds the results from a single simulation run.
type runResult struct {
	survivalTicks int   // ticks before extinction, or maxTicks if the run survived
	samples       []int // population every sampleEvery ticks after warmup
	leaderboard   []telemetry.GenomeSummary
}

// Evaluate computes fitness for a raw parameter vector (lower = better).
// A game that fails to start scores zero, the worst possible survival.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)
	config.Set(cfg)
	defer config.Set(fe.baseConfig)

	var totalFitness, totalQuality, totalSurvival float64
	bestSeed := math.Inf(1)
	var bestSeedBoard []telemetry.GenomeSummary

	for _, seed := range fe.seeds {
		result, err := fe.runSimulation(seed)
		if err != nil {
			slog.Warn("evaluation run failed", "error", err)
			continue
		}
		quality := computeQuality(result.samples, cfg.Population.Min)
		fitness := computeFitness(result.survivalTicks, quality)

		totalFitness += fitness
		totalQuality += quality
		totalSurvival += float64(result.survivalTicks)
		if fitness < bestSeed {
			bestSeed = fitness
			bestSeedBoard = result.leaderboard
		}
	}

	n := float64(len(fe.seeds))
	avgFitness := totalFitness / n
	if avgFitness < fe.bestFitness {
		fe.bestFitness = avgFitness
		fe.bestLeaderboard = bestSeedBoard
	}
	fe.lastQuality = totalQuality / n
	fe.lastSurvival = totalSurvival / n

	return avgFitness
}

// runSimulation executes one headless game until extinction or maxTicks.
func (fe *FitnessEvaluator) runSimulation(seed uint64) (*runResult, error) {
	g, err := game.NewGame(game.Options{Seed: seed})
	if err != nil {
		return nil, fmt.Errorf("seed %d: %w", seed, err)
	}
	defer g.Close()

	result := &runResult{survivalTicks: fe.maxTicks}
	for g.Tick() < fe.maxTicks {
		if err := g.Step(); err != nil {
			return nil, fmt.Errorf("seed %d tick %d: %w", seed, g.Tick(), err)
		}
		if g.Population() == 0 {
			result.survivalTicks = g.Tick()
			break
		}
		if g.Tick() >= warmupTicks && g.Tick()%sampleEvery == 0 {
			result.samples = append(result.samples, g.Population())
		}
	}
	result.leaderboard = g.Stats().Leaderboard
	return result, nil
}

// copyConfig returns a copy of the base config that parameters can be
// applied to. Only scalar sections are changed, so sharing the zone slice
// is fine.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	return &cfg
}

// computeFitness calculates the scalar fitness (lower = better).
// Survival dominates; quality adds up to a 20% bonus to separate configs
// that survive equally long.
func computeFitness(survivalTicks int, quality float64) float64 {
	return -(float64(survivalTicks) * (1.0 + 0.2*quality))
}

// Quality component weights.
const (
	qualityWeightStability = 0.6
	qualityWeightFloor     = 0.4
)

// computeQuality scores a run in [0, 1] from its population samples: a steady
// population scores high on stability, and one that stays above the
// configured minimum scores high on floor.
func computeQuality(samples []int, minPop int) float64 {
	if len(samples) < 2 {
		return 0
	}

	values := make([]float64, len(samples))
	above := 0
	for i, s := range samples {
		values[i] = float64(s)
		if s >= minPop {
			above++
		}
	}

	stabilityScore := 0.0
	if c := cv(values); !math.IsNaN(c) {
		stabilityScore = math.Exp(-c * c)
	}
	floorScore := float64(above) / float64(len(samples))

	return clamp01(qualityWeightStability*stabilityScore + qualityWeightFloor*floorScore)
}

// cv computes the coefficient of variation (std/mean).
func cv(values []float64) float64 {
	mean, std := stat.MeanStdDev(values, nil)
	if mean == 0 {
		return 0
	}
	return std / mean
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}
