package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/gridlife/config"
)

func TestOutputManager_Disabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("NewOutputManager(\"\") = %v, %v", om, err)
	}
	if err := om.WriteTelemetry(WindowStats{}); err != nil {
		t.Error(err)
	}
	if err := om.Close(); err != nil {
		t.Error(err)
	}
}

func TestOutputManager_TelemetryHeaderOnce(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	for i := 1; i <= 3; i++ {
		if err := om.WriteTelemetry(WindowStats{WindowEndTick: i * 100, Population: i}); err != nil {
			t.Fatal(err)
		}
	}
	if err := om.WriteBookmark(Bookmark{Type: BookmarkCullWave, Tick: 300, Description: "x"}); err != nil {
		t.Fatal(err)
	}
	if err := om.WriteLeaderboard([]GenomeSummary{{Deaths: 4}}); err != nil {
		t.Fatal(err)
	}
	if err := om.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("telemetry.csv has %d lines, want header + 3", len(lines))
	}
	if !strings.HasPrefix(lines[0], "window_end,population") {
		t.Errorf("header = %q", lines[0])
	}
	if strings.Count(string(data), "window_end") != 1 {
		t.Error("header written more than once")
	}

	if _, err := os.Stat(filepath.Join(dir, "leaderboard.json")); err != nil {
		t.Error(err)
	}
	bm, err := os.ReadFile(filepath.Join(dir, "bookmarks.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(bm), "cull_wave,300,x") {
		t.Errorf("bookmarks.csv = %q", bm)
	}
}

func TestOutputManager_WriteConfig(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer om.Close()

	if err := om.WriteConfig(cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := config.Load(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if loaded.World.Width != cfg.World.Width || loaded.Derived.FeatureWidth != cfg.Derived.FeatureWidth {
		t.Error("written config does not round-trip")
	}
}
