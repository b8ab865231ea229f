package telemetry

import (
	"log/slog"
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/stat"
)

// Placeholder is shown for values that cannot be displayed.
const Placeholder = "–"

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int `csv:"-"`
	WindowEndTick   int `csv:"window_end"`

	// Population at window end
	Population int `csv:"population"`
	Food       int `csv:"food"`
	Zone       int `csv:"zone"`
	Genomes    int `csv:"genomes"` // distinct live genome signatures

	// Events during window
	Births       int `csv:"births"`
	Deaths       int `csv:"deaths"`
	DeathsCrowd  int `csv:"deaths_crowd"`
	DeathsOldAge int `csv:"deaths_old_age"`
	DeathsEnergy int `csv:"deaths_energy"`
	DeathsCull   int `csv:"deaths_cull"`
	Moves        int `csv:"moves"`
	IdleSteps    int `csv:"idle_steps"`
	Meals        int `csv:"meals"`

	MoveRate float64 `csv:"move_rate"`

	// Energy distribution (sampled at window end)
	EnergyMean float64 `csv:"energy_mean"`
	EnergyP10  float64 `csv:"energy_p10"`
	EnergyP50  float64 `csv:"energy_p50"`
	EnergyP90  float64 `csv:"energy_p90"`

	AgeMean float64 `csv:"age_mean"`
	AgeMax  int     `csv:"age_max"`

	// Balancer state
	CrowdEMA     float64 `csv:"crowd_ema"`
	EnergyEMA    float64 `csv:"energy_ema"`
	OldAgeEMA    float64 `csv:"old_age_ema"`
	MaxNeighbors int     `csv:"max_neighbors"`
	FoodTarget   int     `csv:"food_target"`
	MoveCost     float64 `csv:"move_cost"`
	IdleCost     float64 `csv:"idle_cost"`
	MaxPop       int     `csv:"max_pop"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeEnergyStats calculates mean and percentiles from energy values.
func ComputeEnergyStats(values []float64) (mean, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}

	mean = stat.Mean(values, nil)

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, p10, p50, p90
}

// ComputeAgeStats returns the mean and maximum of the given ages.
func ComputeAgeStats(ages []int) (mean float64, oldest int) {
	if len(ages) == 0 {
		return 0, 0
	}
	var sum int
	for _, a := range ages {
		sum += a
		if a > oldest {
			oldest = a
		}
	}
	return float64(sum) / float64(len(ages)), oldest
}

// FormatFloat formats v with prec decimals, or returns Placeholder when v is
// NaN or infinite.
func FormatFloat(v float64, prec int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Placeholder
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", s.WindowStartTick),
		slog.Int("window_end", s.WindowEndTick),
		slog.Int("population", s.Population),
		slog.Int("food", s.Food),
		slog.Int("zone", s.Zone),
		slog.Int("genomes", s.Genomes),
		slog.Int("births", s.Births),
		slog.Int("deaths", s.Deaths),
		slog.Int("deaths_crowd", s.DeathsCrowd),
		slog.Int("deaths_old_age", s.DeathsOldAge),
		slog.Int("deaths_energy", s.DeathsEnergy),
		slog.Int("deaths_cull", s.DeathsCull),
		slog.Int("moves", s.Moves),
		slog.Int("idle_steps", s.IdleSteps),
		slog.Int("meals", s.Meals),
		slog.Float64("move_rate", s.MoveRate),
		slog.Float64("energy_mean", s.EnergyMean),
		slog.Float64("energy_p10", s.EnergyP10),
		slog.Float64("energy_p50", s.EnergyP50),
		slog.Float64("energy_p90", s.EnergyP90),
		slog.Float64("age_mean", s.AgeMean),
		slog.Int("age_max", s.AgeMax),
		slog.Float64("crowd_ema", s.CrowdEMA),
		slog.Float64("energy_ema", s.EnergyEMA),
		slog.Float64("old_age_ema", s.OldAgeEMA),
		slog.Int("max_neighbors", s.MaxNeighbors),
		slog.Int("food_target", s.FoodTarget),
		slog.Float64("move_cost", s.MoveCost),
		slog.Float64("idle_cost", s.IdleCost),
		slog.Int("max_pop", s.MaxPop),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"population", s.Population,
		"food", s.Food,
		"zone", s.Zone,
		"births", s.Births,
		"deaths", s.Deaths,
		"deaths_crowd", s.DeathsCrowd,
		"deaths_old_age", s.DeathsOldAge,
		"deaths_energy", s.DeathsEnergy,
		"deaths_cull", s.DeathsCull,
		"move_rate", s.MoveRate,
		"meals", s.Meals,
		"energy_mean", s.EnergyMean,
		"energy_p50", s.EnergyP50,
		"age_mean", s.AgeMean,
		"age_max", s.AgeMax,
		"crowd_ema", s.CrowdEMA,
		"energy_ema", s.EnergyEMA,
		"old_age_ema", s.OldAgeEMA,
		"max_neighbors", s.MaxNeighbors,
		"food_target", s.FoodTarget,
		"move_cost", s.MoveCost,
		"max_pop", s.MaxPop,
	)
}
