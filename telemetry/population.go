package telemetry

import (
	"cmp"
	"log/slog"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/gridlife/components"
)

// DeathRing is a fixed-capacity window of the most recent death causes.
// It satisfies systems.DeathLog.
type DeathRing struct {
	buf    []components.DeathCause
	next   int
	n      int
	counts map[components.DeathCause]int
}

// NewDeathRing creates a ring holding at most capacity causes.
func NewDeathRing(capacity int) *DeathRing {
	if capacity < 1 {
		capacity = 1
	}
	return &DeathRing{
		buf:    make([]components.DeathCause, capacity),
		counts: make(map[components.DeathCause]int),
	}
}

// Push appends a cause, evicting the oldest when full.
func (r *DeathRing) Push(cause components.DeathCause) {
	if r.n == len(r.buf) {
		r.counts[r.buf[r.next]]--
	} else {
		r.n++
	}
	r.buf[r.next] = cause
	r.counts[cause]++
	r.next = (r.next + 1) % len(r.buf)
}

// Len returns the number of causes held.
func (r *DeathRing) Len() int { return r.n }

// Count returns how many held causes equal cause.
func (r *DeathRing) Count(cause components.DeathCause) int { return r.counts[cause] }

// GenomeSummary aggregates the dead agents of one genome signature.
type GenomeSummary struct {
	Signature     components.Signature `json:"signature"`
	Deaths        int                  `json:"deaths"`
	MeanAge       float64              `json:"mean_age"`
	MeanOffspring float64              `json:"mean_offspring"`
}

type genomeRecord struct {
	ages      []float64
	offspring []float64
}

// PopulationStats holds terminal data folded in from removed agents.
type PopulationStats struct {
	genomes map[components.Signature]*genomeRecord
	ages    map[components.DeathCause][]int
	total   int
	recent  *DeathRing
}

// NewPopulationStats creates empty statistics with a recent-death ring of the
// given capacity.
func NewPopulationStats(recentCapacity int) *PopulationStats {
	return &PopulationStats{
		genomes: make(map[components.Signature]*genomeRecord),
		ages:    make(map[components.DeathCause][]int),
		recent:  NewDeathRing(recentCapacity),
	}
}

// RecordDeath folds a removed agent into the statistics.
func (p *PopulationStats) RecordDeath(st *components.State, g *components.Genome) {
	sig := g.Signature()
	rec := p.genomes[sig]
	if rec == nil {
		rec = &genomeRecord{}
		p.genomes[sig] = rec
	}
	rec.ages = append(rec.ages, float64(st.Age))
	rec.offspring = append(rec.offspring, float64(st.Offspring))

	p.ages[st.Death] = append(p.ages[st.Death], st.Age)
	p.total++
	p.recent.Push(st.Death)
}

// Recent returns the recent-death window.
func (p *PopulationStats) Recent() *DeathRing { return p.recent }

// Deaths returns the number of recorded deaths with the given cause.
func (p *PopulationStats) Deaths(cause components.DeathCause) int {
	return len(p.ages[cause])
}

// TotalDeaths returns the number of recorded deaths.
func (p *PopulationStats) TotalDeaths() int { return p.total }

// MeanAgeAtDeath returns the mean age of agents that died of cause, or NaN
// when none have.
func (p *PopulationStats) MeanAgeAtDeath(cause components.DeathCause) float64 {
	ages := p.ages[cause]
	if len(ages) == 0 {
		return math.NaN()
	}
	v := make([]float64, len(ages))
	for i, a := range ages {
		v[i] = float64(a)
	}
	return stat.Mean(v, nil)
}

// DeathCounts returns recorded deaths keyed by cause name.
func (p *PopulationStats) DeathCounts() map[string]int {
	out := make(map[string]int, len(components.DeathCauses()))
	for _, c := range components.DeathCauses() {
		out[c.String()] = p.Deaths(c)
	}
	return out
}

// Genomes returns the number of distinct signatures seen among dead agents.
func (p *PopulationStats) Genomes() int { return len(p.genomes) }

// Leaderboard returns up to n genome signatures with the most deaths. Ties are
// broken by signature so the order is stable.
func (p *PopulationStats) Leaderboard(n int) []GenomeSummary {
	out := make([]GenomeSummary, 0, len(p.genomes))
	for sig, rec := range p.genomes {
		out = append(out, GenomeSummary{
			Signature:     sig,
			Deaths:        len(rec.ages),
			MeanAge:       stat.Mean(rec.ages, nil),
			MeanOffspring: stat.Mean(rec.offspring, nil),
		})
	}
	slices.SortFunc(out, func(a, b GenomeSummary) int {
		if c := cmp.Compare(b.Deaths, a.Deaths); c != 0 {
			return c
		}
		return compareSignature(a.Signature, b.Signature)
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// TopGenome returns the signature with the most recorded deaths.
func (p *PopulationStats) TopGenome() (GenomeSummary, bool) {
	top := p.Leaderboard(1)
	if len(top) == 0 {
		return GenomeSummary{}, false
	}
	return top[0], true
}

func compareSignature(a, b components.Signature) int {
	for i := range a.Color {
		if c := cmp.Compare(a.Color[i], b.Color[i]); c != 0 {
			return c
		}
	}
	if c := cmp.Compare(a.FoodRadius, b.FoodRadius); c != 0 {
		return c
	}
	if c := cmp.Compare(a.AgentRadius, b.AgentRadius); c != 0 {
		return c
	}
	return cmp.Compare(a.Personality, b.Personality)
}

// LogValue implements slog.LogValuer.
func (g GenomeSummary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Any("color", g.Signature.Color[:]),
		slog.Int("food_radius", g.Signature.FoodRadius),
		slog.Int("agent_radius", g.Signature.AgentRadius),
		slog.String("personality", g.Signature.Personality.String()),
		slog.Int("count", g.Deaths),
		slog.Float64("mean_age", g.MeanAge),
	)
}
