// Package main provides CMA-ES optimization for finding energy and resource
// knob settings that keep the gridlife population alive.
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/gridlife/config"
)

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	maxTicks := flag.Int("max-ticks", 20000, "Maximum simulation duration in ticks (cap)")
	seeds := flag.Int("seeds", 3, "Number of seeds per evaluation")
	maxEvals := flag.Int("max-evals", 200, "Maximum number of evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn})))

	if *outputDir == "" {
		fatal("--output is required")
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		fatal("failed to create output directory", "error", err)
	}

	baseCfg, err := config.Load(*configPath)
	if err != nil {
		fatal("failed to load config", "error", err)
	}
	config.Set(baseCfg)

	params := NewParamVector()

	evalSeeds := make([]uint64, *seeds)
	for i := range evalSeeds {
		evalSeeds[i] = uint64(i*1000 + 42)
	}

	evaluator := NewFitnessEvaluator(params, *maxTicks, evalSeeds, baseCfg)

	dim := params.Dim()
	initX := params.Normalize(params.ExtractFromConfig(baseCfg))

	popSize := *population
	if popSize == 0 {
		popSize = 4 + int(3.0*float64(dim)/2.0)
	}
	method := &optimize.CmaEsChol{
		InitStepSize: 0.3,
		Population:   popSize,
	}
	// Games share the global config, so evaluations must not overlap.
	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
		Concurrent:      0,
	}

	logPath := filepath.Join(*outputDir, "optimize_log.csv")
	logFile, err := os.Create(logPath)
	if err != nil {
		fatal("failed to create log file", "error", err)
	}
	defer logFile.Close()

	logWriter := csv.NewWriter(logFile)
	defer logWriter.Flush()

	header := []string{"eval", "fitness", "survival", "quality"}
	for _, spec := range params.Specs {
		header = append(header, spec.Name)
	}
	logWriter.Write(header)

	evalCount := 0
	bestFitness := 1e18
	var bestParams []float64
	startTime := time.Now()

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			clamped := params.Clamp(params.Denormalize(x))
			fitness := evaluator.Evaluate(clamped)
			evalCount++

			if fitness < bestFitness {
				bestFitness = fitness
				bestParams = clamped
			}

			row := []string{
				strconv.Itoa(evalCount),
				fmt.Sprintf("%.2f", fitness),
				fmt.Sprintf("%.1f", evaluator.LastSurvival()),
				fmt.Sprintf("%.4f", evaluator.LastQuality()),
			}
			for _, v := range clamped {
				row = append(row, fmt.Sprintf("%.6f", v))
			}
			logWriter.Write(row)
			logWriter.Flush()

			elapsed := time.Since(startTime)
			avgPerEval := elapsed / time.Duration(evalCount)
			remaining := time.Duration(*maxEvals-evalCount) * avgPerEval

			fmt.Printf("Eval %d/%d: survived=%s ticks quality=%.2f (best=%.0f) | elapsed: %s, ETA: %s\n",
				evalCount, *maxEvals, humanize.Comma(int64(evaluator.LastSurvival())), evaluator.LastQuality(),
				bestFitness, formatDuration(elapsed), formatDuration(remaining))

			return fitness
		},
	}

	fmt.Printf("Starting CMA-ES optimization with %d parameters, population=%d, max_evals=%d\n",
		dim, popSize, *maxEvals)
	fmt.Printf("Seeds per evaluation: %d, ticks per run: %s\n", *seeds, humanize.Comma(int64(*maxTicks)))

	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		slog.Warn("optimization ended", "error", err)
	}
	if bestParams == nil && result != nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}

	fmt.Printf("\nOptimization complete after %d evaluations in %s\n", evalCount, formatDuration(time.Since(startTime)))
	fmt.Printf("Best fitness: %.0f\n", bestFitness)
	if bestParams == nil {
		return
	}

	fmt.Println("\nBest parameters:")
	for i, spec := range params.Specs {
		fmt.Printf("  %s: %.6f\n", spec.Path, bestParams[i])
	}

	bestCfg, err := config.Load(*configPath)
	if err != nil {
		fatal("failed to reload config", "error", err)
	}
	params.ApplyToConfig(bestCfg, bestParams)

	configOutPath := filepath.Join(*outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configOutPath); err != nil {
		slog.Error("failed to write best config", "error", err)
	} else {
		fmt.Printf("\nBest config saved to: %s\n", configOutPath)
	}

	if board := evaluator.BestLeaderboard(); board != nil {
		boardPath := filepath.Join(*outputDir, "leaderboard.json")
		data, err := json.MarshalIndent(board, "", "  ")
		if err != nil {
			slog.Error("failed to marshal leaderboard", "error", err)
		} else if err := os.WriteFile(boardPath, data, 0644); err != nil {
			slog.Error("failed to write leaderboard", "error", err)
		} else {
			fmt.Printf("Leaderboard saved to: %s\n", boardPath)
		}
	}
}

func fatal(msg string, args ...any) {
	slog.Error(msg, args...)
	os.Exit(1)
}
