package camera

import (
	"math"
	"testing"
)

// newTestCamera views a 100x50 grid of 16px cells (1600x800) through an
// 800x400 viewport, so the fit zoom is 0.5.
func newTestCamera() *Camera {
	return New(800, 400, 100, 50, 16)
}

func TestNew(t *testing.T) {
	cam := newTestCamera()

	if cam.X != 800 || cam.Y != 400 {
		t.Errorf("expected camera at (800, 400), got (%f, %f)", cam.X, cam.Y)
	}
	if cam.Zoom != 0.5 {
		t.Errorf("expected zoom 0.5, got %f", cam.Zoom)
	}
	if cam.MinZoom != 0.25 {
		t.Errorf("expected MinZoom 0.25, got %f", cam.MinZoom)
	}
}

func TestWorldToScreenCentered(t *testing.T) {
	cam := newTestCamera()

	sx, sy := cam.WorldToScreen(800, 400)
	if math.Abs(float64(sx-400)) > 0.01 || math.Abs(float64(sy-200)) > 0.01 {
		t.Errorf("expected screen center (400, 200), got (%f, %f)", sx, sy)
	}
}

func TestScreenToWorldRoundtrip(t *testing.T) {
	cam := newTestCamera()
	cam.SetZoom(2)

	testCases := []struct{ sx, sy float32 }{
		{400, 200}, // center
		{10, 10},   // top-left
		{790, 390}, // near bottom-right
	}

	for _, tc := range testCases {
		wx, wy := cam.ScreenToWorld(tc.sx, tc.sy)
		sx, sy := cam.WorldToScreen(wx, wy)
		if math.Abs(float64(sx-tc.sx)) > 0.01 || math.Abs(float64(sy-tc.sy)) > 0.01 {
			t.Errorf("roundtrip failed: (%f,%f) -> (%f,%f) -> (%f,%f)",
				tc.sx, tc.sy, wx, wy, sx, sy)
		}
	}
}

func TestScreenToCell(t *testing.T) {
	cam := newTestCamera()

	tests := []struct {
		name   string
		sx, sy float32
		x, y   int
		ok     bool
	}{
		{"center", 400, 200, 50, 25, true},
		{"origin", 0, 0, 0, 0, true},
		{"last cell", 799, 399, 99, 49, true},
		{"left of grid", -1, 0, 0, 0, false},
		{"below grid", 0, 400, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y, ok := cam.ScreenToCell(tt.sx, tt.sy)
			if ok != tt.ok || (ok && (x != tt.x || y != tt.y)) {
				t.Errorf("ScreenToCell(%v, %v) = (%d, %d, %v), want (%d, %d, %v)",
					tt.sx, tt.sy, x, y, ok, tt.x, tt.y, tt.ok)
			}
		})
	}
}

func TestZoomClamp(t *testing.T) {
	cam := newTestCamera()

	cam.SetZoom(0.01)
	if cam.Zoom != 0.25 {
		t.Errorf("expected zoom clamped to 0.25, got %f", cam.Zoom)
	}

	cam.SetZoom(100)
	if cam.Zoom != 8 {
		t.Errorf("expected zoom clamped to 8, got %f", cam.Zoom)
	}
}

func TestPanClampsToGrid(t *testing.T) {
	cam := newTestCamera()

	cam.Pan(-1e6, 0)
	if cam.X != 0 {
		t.Errorf("expected X clamped to 0, got %f", cam.X)
	}
	cam.Pan(0, 1e6)
	if cam.Y != cam.WorldH() {
		t.Errorf("expected Y clamped to %f, got %f", cam.WorldH(), cam.Y)
	}
}

func TestCenterOnCell(t *testing.T) {
	cam := newTestCamera()
	cam.CenterOnCell(3, 4)

	if cam.X != 56 || cam.Y != 72 {
		t.Errorf("expected (56, 72), got (%f, %f)", cam.X, cam.Y)
	}
}

func TestVisibleCells(t *testing.T) {
	cam := newTestCamera()

	x0, y0, x1, y1 := cam.VisibleCells()
	if x0 != 0 || y0 != 0 || x1 != 99 || y1 != 49 {
		t.Errorf("VisibleCells = (%d,%d,%d,%d), want whole grid", x0, y0, x1, y1)
	}

	if !cam.IsCellVisible(50, 25) {
		t.Error("center cell should be visible")
	}
	cam.SetZoom(8)
	if cam.IsCellVisible(0, 0) {
		t.Error("corner cell should be off screen when zoomed in on the center")
	}
}

func TestReset(t *testing.T) {
	cam := newTestCamera()
	cam.X = 100
	cam.Y = 100
	cam.Zoom = 2.5

	cam.Reset()

	if cam.X != 800 || cam.Y != 400 {
		t.Errorf("expected position (800, 400), got (%f, %f)", cam.X, cam.Y)
	}
	if cam.Zoom != 0.5 {
		t.Errorf("expected zoom 0.5, got %f", cam.Zoom)
	}
}
