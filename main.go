package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/gridlife/config"
	"github.com/pthm-cable/gridlife/game"
	"github.com/pthm-cable/gridlife/persistence"
	"github.com/pthm-cable/gridlife/renderer"
	"github.com/pthm-cable/gridlife/stream"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output window stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs, snapshots and config")
	dbPath := flag.String("db", "", "SQLite lineage archive (empty = disabled)")
	wsAddr := flag.String("ws-addr", "", "Serve snapshots over websocket at this address, e.g. :8080")
	seed := flag.Uint64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = uint64(time.Now().UnixNano())
	}

	if err := run(cfg, rngSeed, *headless, *maxTicks, *logStats, *outputDir, *dbPath, *wsAddr); err != nil {
		slog.Error("simulation failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, seed uint64, headless bool, maxTicks int, logStats bool, outputDir, dbPath, wsAddr string) error {
	opts := game.Options{
		Seed:      seed,
		OutputDir: outputDir,
		LogStats:  logStats,
	}

	if dbPath != "" {
		db, err := persistence.Open(dbPath, seed)
		if err != nil {
			return err
		}
		defer db.Close()
		opts.Archive = db
	}

	if wsAddr != "" {
		hub := stream.NewHub(stream.Message{Type: "hello", Data: map[string]any{
			"seed":   seed,
			"width":  cfg.World.Width,
			"height": cfg.World.Height,
		}}, 16)
		srv, err := stream.Listen(wsAddr, hub)
		if err != nil {
			hub.Close()
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				slog.Warn("stream shutdown", "error", err)
			}
		}()
		opts.Stream = hub
	}

	if headless {
		return runHeadless(opts, maxTicks)
	}
	return runGraphical(cfg, opts, maxTicks)
}

func runHeadless(opts game.Options, maxTicks int) (err error) {
	g, err := game.NewGame(opts)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := g.Close(); err == nil {
			err = cerr
		}
	}()

	slog.Info("starting headless simulation",
		"seed", opts.Seed,
		"max_ticks", maxTicks,
		"population", g.Population(),
	)

	for maxTicks <= 0 || g.Tick() < maxTicks {
		if err := g.Step(); err != nil {
			return err
		}
		if g.Population() == 0 {
			slog.Warn("population extinct", "tick", g.Tick())
			return nil
		}
	}
	slog.Info("max ticks reached", "tick", g.Tick(), "report", g.LastTick())
	return nil
}

func runGraphical(cfg *config.Config, opts game.Options, maxTicks int) (err error) {
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Gridlife")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))
	rl.SetExitKey(rl.KeyEscape)

	g, err := game.NewGame(opts)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := g.Close(); err == nil {
			err = cerr
		}
	}()

	return renderer.NewViewer(g, maxTicks).Run()
}
