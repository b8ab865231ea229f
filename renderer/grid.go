// Package renderer draws game snapshots with raylib.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/gridlife/camera"
	"github.com/pthm-cable/gridlife/game"
	"github.com/pthm-cable/gridlife/ui"
)

// Grid colors.
var (
	backgroundColor = rl.Color{R: 14, G: 17, B: 22, A: 255}
	gridFloorColor  = rl.Color{R: 24, G: 28, B: 34, A: 255}
	gridLineColor   = rl.Color{R: 36, G: 42, B: 50, A: 255}
	zoneColor       = rl.Color{R: 80, G: 160, B: 90, A: 40}
	zoneBorderColor = rl.Color{R: 110, G: 200, B: 120, A: 160}
	foodColor       = rl.Color{R: 90, G: 220, B: 110, A: 255}
	traceColor      = rl.Color{R: 140, G: 150, B: 170, A: 0}
	selectColor     = rl.Color{R: 255, G: 255, B: 255, A: 255}
	foodRadiusColor = rl.Color{R: 90, G: 220, B: 110, A: 140}
	peerRadiusColor = rl.Color{R: 120, G: 170, B: 255, A: 140}
)

// GridRenderer draws the world grid through a camera.
type GridRenderer struct {
	cam         *camera.Camera
	overlays    *ui.OverlayRegistry
	traceLength int
	energyLimit float64
}

// NewGridRenderer creates a grid renderer. traceLength is the number of ticks
// a vacated cell stays visible; energyLimit is full-scale energy shading.
func NewGridRenderer(cam *camera.Camera, overlays *ui.OverlayRegistry, traceLength int, energyLimit float64) *GridRenderer {
	return &GridRenderer{
		cam:         cam,
		overlays:    overlays,
		traceLength: max(traceLength, 1),
		energyLimit: energyLimit,
	}
}

// Draw renders the snapshot. selected is the ID of the highlighted agent, or 0.
func (r *GridRenderer) Draw(snap *game.Snapshot, selected uint32) {
	rl.ClearBackground(backgroundColor)

	x0, y0, _ := r.cam.CellToScreen(0, 0)
	x1, y1, _ := r.cam.CellToScreen(snap.Width, snap.Height)
	rl.DrawRectangleRec(rl.Rectangle{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}, gridFloorColor)

	if r.overlays.IsEnabled(ui.OverlayZone) {
		r.drawZone(snap)
	}
	if r.overlays.IsEnabled(ui.OverlayGrid) {
		r.drawGridLines()
	}
	if r.overlays.IsEnabled(ui.OverlayTrace) {
		r.drawTrace(snap)
	}
	if r.overlays.IsEnabled(ui.OverlayFood) {
		r.drawFood(snap)
	}
	r.drawAgents(snap, selected)
}

func (r *GridRenderer) drawZone(snap *game.Snapshot) {
	z := snap.Zone
	x0, y0, _ := r.cam.CellToScreen(z.X0, z.Y0)
	x1, y1, _ := r.cam.CellToScreen(z.X1, z.Y1)
	rect := rl.Rectangle{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
	rl.DrawRectangleRec(rect, zoneColor)
	rl.DrawRectangleLinesEx(rect, 2, zoneBorderColor)
}

func (r *GridRenderer) drawGridLines() {
	cx0, cy0, cx1, cy1 := r.cam.VisibleCells()
	top, bottom := r.cellEdge(cx0, cy0), r.cellEdge(cx1+1, cy1+1)
	for x := cx0; x <= cx1+1; x++ {
		sx := r.cellEdge(x, 0).X
		rl.DrawLineV(rl.Vector2{X: sx, Y: top.Y}, rl.Vector2{X: sx, Y: bottom.Y}, gridLineColor)
	}
	for y := cy0; y <= cy1+1; y++ {
		sy := r.cellEdge(0, y).Y
		rl.DrawLineV(rl.Vector2{X: top.X, Y: sy}, rl.Vector2{X: bottom.X, Y: sy}, gridLineColor)
	}
}

func (r *GridRenderer) cellEdge(x, y int) rl.Vector2 {
	sx, sy, _ := r.cam.CellToScreen(x, y)
	return rl.Vector2{X: sx, Y: sy}
}

func (r *GridRenderer) drawTrace(snap *game.Snapshot) {
	for _, t := range snap.Trace {
		if !r.cam.IsCellVisible(t.X, t.Y) {
			continue
		}
		left := r.traceLength - (snap.Stats.Tick - t.Tick)
		if left <= 0 {
			continue
		}
		c := traceColor
		c.A = uint8(90 * left / r.traceLength)
		r.fillCell(t.X, t.Y, 0, c)
	}
}

func (r *GridRenderer) drawFood(snap *game.Snapshot) {
	for _, f := range snap.Food {
		if r.cam.IsCellVisible(f.X, f.Y) {
			r.fillCell(f.X, f.Y, 0.3, foodColor)
		}
	}
}

func (r *GridRenderer) drawAgents(snap *game.Snapshot, selected uint32) {
	var sel *game.AgentView
	for i := range snap.Agents {
		a := &snap.Agents[i]
		if a.ID == selected {
			sel = a
		}
		if !r.cam.IsCellVisible(a.X, a.Y) {
			continue
		}
		r.fillCell(a.X, a.Y, 0.1, r.agentColor(a))
	}

	if sel == nil {
		return
	}
	if r.overlays.IsEnabled(ui.OverlaySenseRadius) {
		r.outlineSquare(sel.X, sel.Y, sel.FoodRadius, foodRadiusColor)
		r.outlineSquare(sel.X, sel.Y, sel.AgentRadius, peerRadiusColor)
	}
	r.outlineSquare(sel.X, sel.Y, 0, selectColor)
}

func (r *GridRenderer) agentColor(a *game.AgentView) rl.Color {
	switch {
	case r.overlays.IsEnabled(ui.OverlayEnergy):
		return ui.EnergyColor(a.Energy, r.energyLimit)
	case r.overlays.IsEnabled(ui.OverlayPersonality):
		return ui.PersonalityColor(a.Personality)
	default:
		return ui.AgentColor(a.Color)
	}
}

// fillCell fills cell (x, y) inset by a fraction of the cell size.
func (r *GridRenderer) fillCell(x, y int, inset float32, c rl.Color) {
	sx, sy, size := r.cam.CellToScreen(x, y)
	pad := size * inset / 2
	rl.DrawRectangleRec(rl.Rectangle{X: sx + pad, Y: sy + pad, Width: size - 2*pad, Height: size - 2*pad}, c)
}

// outlineSquare outlines the (2*radius+1)-cell square centered on (x, y).
func (r *GridRenderer) outlineSquare(x, y, radius int, c rl.Color) {
	sx, sy, _ := r.cam.CellToScreen(x-radius, y-radius)
	ex, ey, _ := r.cam.CellToScreen(x+radius+1, y+radius+1)
	rl.DrawRectangleLinesEx(rl.Rectangle{X: sx, Y: sy, Width: ex - sx, Height: ey - sy}, 2, c)
}
