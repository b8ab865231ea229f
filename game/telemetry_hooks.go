package game

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/gridlife/components"
	"github.com/pthm-cable/gridlife/stream"
	"github.com/pthm-cable/gridlife/telemetry"
)

// updateTelemetry runs the end-of-tick reporting: the periodic population
// summary, window flushes and snapshot streaming.
func (g *Game) updateTelemetry() {
	if every := g.cfg.Telemetry.StatsInterval; every > 0 && g.tick%every == 0 {
		g.logPopulationStats()
		g.perf.Stats().LogStats()
	}

	g.flushTelemetry()

	if g.hub != nil && g.cfg.Stream.Every > 0 && g.tick%g.cfg.Stream.Every == 0 {
		g.hub.Publish(stream.Message{Type: "snapshot", Tick: g.tick, Data: g.Snapshot()})
	}
}

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	stats := g.collector.Flush(g.tick, g.sample())
	perfStats := g.perf.Stats()

	if g.logStats {
		stats.LogStats()
	}

	if err := g.output.WriteTelemetry(stats); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}
	if err := g.output.WritePerf(perfStats, stats.WindowEndTick); err != nil {
		slog.Error("failed to write perf", "error", err)
	}

	for _, bm := range g.bookmarks.Check(stats) {
		bm.LogBookmark()
		if err := g.output.WriteBookmark(bm); err != nil {
			slog.Error("failed to write bookmark", "error", err)
		}
		g.saveSnapshot(bm)
	}
}

// sample collects the live distributions a window flush reports.
func (g *Game) sample() telemetry.Sample {
	n := g.pop.Len()
	s := telemetry.Sample{
		Population: n,
		Food:       g.food.Len(),
		Zone:       g.env.ZoneIndex(),
		Energies:   make([]float64, 0, n),
		Ages:       make([]int, 0, n),
		EMA:        g.balancer.EMA(),
		Knobs:      g.env.Knobs(),
	}

	genomes := make(map[components.Signature]struct{})
	for i := 0; i < n; i++ {
		a := g.pop.at(i)
		s.Energies = append(s.Energies, a.State.Energy)
		s.Ages = append(s.Ages, a.State.Age)
		genomes[a.Genome.Signature()] = struct{}{}
	}
	s.Genomes = len(genomes)
	return s
}

// saveSnapshot writes the world state at a bookmark to the output directory.
func (g *Game) saveSnapshot(bm telemetry.Bookmark) {
	if g.output == nil {
		return
	}
	name := fmt.Sprintf("snapshot_%d_%s.json", bm.Tick, bm.Type)
	path, err := g.output.WriteJSON(name, g.Snapshot())
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}
	slog.Info("snapshot saved", "path", path, "bookmark", string(bm.Type))
}
