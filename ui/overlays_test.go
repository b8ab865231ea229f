package ui

import (
	"slices"
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func TestOverlayRegistry_Defaults(t *testing.T) {
	reg := NewOverlayRegistry()

	want := []OverlayID{OverlayFood, OverlayZone, OverlayTrace, OverlaySenseRadius}
	if got := reg.EnabledOverlays(); !slices.Equal(got, want) {
		t.Errorf("EnabledOverlays() = %v, want %v", got, want)
	}
	if got := reg.Categories(); !slices.Equal(got, []string{"world", "agents", "panels"}) {
		t.Errorf("Categories() = %v", got)
	}
}

func TestOverlayRegistry_Exclusive(t *testing.T) {
	reg := NewOverlayRegistry()

	reg.Toggle(OverlayEnergy)
	if !reg.IsEnabled(OverlayEnergy) {
		t.Fatal("energy shading should be enabled")
	}
	reg.Toggle(OverlayPersonality)
	if reg.IsEnabled(OverlayEnergy) {
		t.Error("enabling personality colors should disable energy shading")
	}
	if !reg.IsEnabled(OverlayPersonality) {
		t.Error("personality colors should be enabled")
	}
}

func TestOverlayRegistry_HandleKeyPress(t *testing.T) {
	reg := NewOverlayRegistry()

	id, on, ok := reg.HandleKeyPress(rl.KeyF)
	if !ok || id != OverlayFood || on {
		t.Errorf("HandleKeyPress(F) = (%s, %v, %v), want (food, false, true)", id, on, ok)
	}
	if _, _, ok := reg.HandleKeyPress(rl.KeyQ); ok {
		t.Error("unbound key should not toggle anything")
	}
	if reg.Toggle("missing") {
		t.Error("toggling an unknown overlay should report false")
	}
}

func TestClampSpeed(t *testing.T) {
	tests := []struct{ in, want int }{
		{0, MinSpeed},
		{5, 5},
		{1000, MaxSpeed},
	}
	for _, tt := range tests {
		if got := ClampSpeed(tt.in); got != tt.want {
			t.Errorf("ClampSpeed(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestEnergyColor(t *testing.T) {
	if c := EnergyColor(0, 100); c.R != 230 || c.G != 60 {
		t.Errorf("EnergyColor(0) = %+v", c)
	}
	if c := EnergyColor(500, 100); c.R != 0 || c.G != 230 {
		t.Errorf("EnergyColor(over limit) = %+v", c)
	}
}

func TestPanelAnchorPosition(t *testing.T) {
	tests := []struct {
		anchor PanelAnchor
		x, y   int32
	}{
		{AnchorTopLeft, 10, 10},
		{AnchorTopRight, 690, 10},
		{AnchorBottomLeft, 10, 490},
		{AnchorBottomRight, 690, 490},
	}
	for _, tt := range tests {
		x, y := tt.anchor.Position(800, 600, 100, 100, 10)
		if x != tt.x || y != tt.y {
			t.Errorf("anchor %d: got (%d, %d), want (%d, %d)", tt.anchor, x, y, tt.x, tt.y)
		}
	}
}
