package game

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/pthm-cable/gridlife/components"
	"github.com/pthm-cable/gridlife/telemetry"
)

// logPopulationStats logs the periodic population summary.
func (g *Game) logPopulationStats() {
	s := g.Stats()

	personalities := make([]any, 0, 2*components.PersonalityCount())
	for _, name := range components.PersonalityNames() {
		personalities = append(personalities, name, s.Personalities[name])
	}

	attrs := []any{
		"tick", g.tick,
		"population", s.Population,
		"mean_age", s.MeanAge,
		"max_age", s.MaxAge,
		slog.Group("personalities", personalities...),
		slog.Group("deaths", g.deathAttrs()...),
		"summary", g.summary(s),
	}
	if top, ok := g.stats.TopGenome(); ok {
		attrs = append(attrs, "top_genome", top)
	}

	slog.Info("population_stats", attrs...)
}

// deathAttrs returns deaths by cause in display order.
func (g *Game) deathAttrs() []any {
	attrs := make([]any, 0, 2*len(components.DeathCauses()))
	for _, c := range components.DeathCauses() {
		attrs = append(attrs, c.String(), g.stats.Deaths(c))
	}
	return attrs
}

// summary renders a one-line human readable status.
func (g *Game) summary(s Stats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "tick %s: %s agents, %s food, %s deaths",
		humanize.Comma(int64(s.Tick)),
		humanize.Comma(int64(s.Population)),
		humanize.Comma(int64(s.Food)),
		humanize.Comma(int64(s.TotalDeaths)),
	)
	for _, c := range components.DeathCauses() {
		fmt.Fprintf(&b, ", %s age %s", c, telemetry.FormatFloat(g.stats.MeanAgeAtDeath(c), 1))
	}
	return b.String()
}
