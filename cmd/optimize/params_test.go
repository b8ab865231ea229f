package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/gridlife/config"
)

func TestParamVector_DefaultsMatchConfig(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	pv := NewParamVector()

	got := pv.ExtractFromConfig(cfg)
	for i, spec := range pv.Specs {
		if got[i] != spec.Default {
			t.Errorf("%s: config default %v, param default %v", spec.Path, got[i], spec.Default)
		}
		if spec.Default < spec.Min || spec.Default > spec.Max {
			t.Errorf("%s: default %v outside [%v, %v]", spec.Path, spec.Default, spec.Min, spec.Max)
		}
	}
}

func TestParamVector_ApplyClampsAndRounds(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	pv := NewParamVector()

	values := pv.DefaultVector()
	values[0] = 1000  // per_food above max
	values[3] = 450.6 // food_count rounds
	values[4] = -3    // move_cost below min
	pv.ApplyToConfig(cfg, values)

	if cfg.Energy.PerFood != 100 {
		t.Errorf("PerFood = %v, want 100", cfg.Energy.PerFood)
	}
	if cfg.Knobs.FoodCount != 451 {
		t.Errorf("FoodCount = %d, want 451", cfg.Knobs.FoodCount)
	}
	if cfg.Knobs.MoveCost != 0.8 {
		t.Errorf("MoveCost = %v, want 0.8", cfg.Knobs.MoveCost)
	}
}

func TestParamVector_AfterReproBelowThreshold(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	pv := NewParamVector()

	values := pv.DefaultVector()
	values[1] = 80 // reproduce
	values[2] = 70 // after_repro
	pv.ApplyToConfig(cfg, values)
	if cfg.Energy.AfterRepro != 70 {
		t.Errorf("AfterRepro = %v, want 70", cfg.Energy.AfterRepro)
	}

	values[2] = 90
	values[1] = 80
	pv.Specs[2].Max = 100
	pv.ApplyToConfig(cfg, values)
	if cfg.Energy.AfterRepro != 40 {
		t.Errorf("AfterRepro = %v, want 40 when it would reach the threshold", cfg.Energy.AfterRepro)
	}
}

func TestParamVector_NormalizeBounds(t *testing.T) {
	pv := NewParamVector()
	mins := make([]float64, pv.Dim())
	for i, spec := range pv.Specs {
		mins[i] = spec.Min
	}
	for i, v := range pv.Normalize(mins) {
		if v != 0 {
			t.Errorf("%s: normalized min = %v, want 0", pv.Specs[i].Name, v)
		}
	}
}

func TestComputeQuality(t *testing.T) {
	tests := []struct {
		name    string
		samples []int
		minPop  int
		want    float64
	}{
		{"too few samples", []int{100}, 10, 0},
		{"flat above floor", []int{100, 100, 100, 100}, 10, 1},
		{"flat below floor", []int{5, 5, 5, 5}, 10, qualityWeightStability},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := computeQuality(tt.samples, tt.minPop); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("computeQuality = %v, want %v", got, tt.want)
			}
		})
	}

	steady := computeQuality([]int{100, 102, 98, 101}, 10)
	swinging := computeQuality([]int{20, 300, 15, 400}, 10)
	if steady <= swinging {
		t.Errorf("steady population scored %v, swinging scored %v", steady, swinging)
	}
}

func TestComputeFitness(t *testing.T) {
	if a, b := computeFitness(1000, 0), computeFitness(2000, 0); a <= b {
		t.Errorf("longer survival should score lower: %v vs %v", a, b)
	}
	if got := computeFitness(1000, 1); math.Abs(got+1200) > 1e-9 {
		t.Errorf("computeFitness(1000, 1) = %v, want -1200", got)
	}
}
