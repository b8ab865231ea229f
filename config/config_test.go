package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load defaults: %v", err)
	}

	if cfg.World.Width != 107 || cfg.World.Height != 82 {
		t.Errorf("world = %dx%d, want 107x82", cfg.World.Width, cfg.World.Height)
	}
	if len(cfg.World.Zones) != 4 {
		t.Errorf("zones = %d, want 4", len(cfg.World.Zones))
	}
	if cfg.Energy.Reproduce != 120 || cfg.Energy.AfterRepro != 45 {
		t.Errorf("energy economy wrong: %+v", cfg.Energy)
	}

	wantWidth := NumBaseInputs * (1 + cfg.Neural.History)
	if cfg.Derived.FeatureWidth != wantWidth {
		t.Errorf("FeatureWidth = %d, want %d", cfg.Derived.FeatureWidth, wantWidth)
	}
	if cfg.Derived.StateWidth != cfg.Neural.Layers*cfg.Neural.Hidden {
		t.Errorf("StateWidth = %d, want %d", cfg.Derived.StateWidth, cfg.Neural.Layers*cfg.Neural.Hidden)
	}
}

func TestLoadOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	override := "neural:\n  history: 4\n  layers: 1\n  hidden: 8\nknobs:\n  food_count: 10\n"
	if err := os.WriteFile(path, []byte(override), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Knobs.FoodCount != 10 {
		t.Errorf("FoodCount = %d, want 10", cfg.Knobs.FoodCount)
	}
	// Untouched keys keep their defaults
	if cfg.Knobs.MaxPop != 800 {
		t.Errorf("MaxPop = %d, want default 800", cfg.Knobs.MaxPop)
	}
	if cfg.Derived.FeatureWidth != NumBaseInputs*5 {
		t.Errorf("FeatureWidth = %d, want %d", cfg.Derived.FeatureWidth, NumBaseInputs*5)
	}
	if cfg.Derived.StateWidth != 8 {
		t.Errorf("StateWidth = %d, want 8", cfg.Derived.StateWidth)
	}
}

func TestLoadRejectsBadActions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	if err := os.WriteFile(path, []byte("neural:\n  actions: 5\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected error for 5 actions")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Knobs.MaxNeighbors = 21

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load written config: %v", err)
	}
	if reloaded.Knobs.MaxNeighbors != 21 {
		t.Errorf("MaxNeighbors = %d, want 21", reloaded.Knobs.MaxNeighbors)
	}
}

func TestLoadRejectsUnknownPolicy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(path, []byte("neural:\n  policy: transformer\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected error for an unknown policy")
	}
}

func TestSet(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Population.Initial = 7

	Set(cfg)
	if Cfg().Population.Initial != 7 {
		t.Errorf("Cfg() after Set has Initial = %d, want 7", Cfg().Population.Initial)
	}
}

func TestLoadRejectsInvalidRanges(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"zone starts at the far edge", "world:\n  zones:\n    - {x0: 1.0, x1: 1.0, y0: 0.0, y1: 1.0}\n"},
		{"zone beyond the world", "world:\n  zones:\n    - {x0: 0.5, x1: 1.5, y0: 0.0, y1: 1.0}\n"},
		{"inverted zone", "world:\n  zones:\n    - {x0: 0.0, x1: 1.0, y0: 0.8, y1: 0.2}\n"},
		{"negative zone", "world:\n  zones:\n    - {x0: -0.1, x1: 0.5, y0: 0.0, y1: 1.0}\n"},
		{"inverted food range", "balancer:\n  food_count: {min: 900, max: 300}\n"},
		{"inverted move cost range", "balancer:\n  move_cost: {min: 2.0, max: 1.0}\n"},
		{"recovery above neighbor max", "balancer:\n  recovery_neighbors_min: 40\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "cfg.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Errorf("expected an error for %s", tt.name)
			}
		})
	}
}

func TestLoadAcceptsFullMapZone(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	yaml := "world:\n  zones:\n    - {x0: 0.0, x1: 1.0, y0: 0.0, y1: 1.0}\n"
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.World.Zones) != 1 {
		t.Errorf("got %d zones, want 1", len(cfg.World.Zones))
	}
}
