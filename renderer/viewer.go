package renderer

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/gridlife/camera"
	"github.com/pthm-cable/gridlife/config"
	"github.com/pthm-cable/gridlife/game"
	"github.com/pthm-cable/gridlife/persistence"
	"github.com/pthm-cable/gridlife/ui"
)

const controlsLegend = "Space: pause | N: step | </>: speed | Tab: controls | Click: select | Backspace: deselect | C: follow | Arrows/wheel: camera | Home: reset"

// Viewer runs the graphical loop around a Game. The window must be open.
type Viewer struct {
	game *game.Game

	cam         *camera.Camera
	overlays    *ui.OverlayRegistry
	grid        *GridRenderer
	hud         *ui.HUD
	controls    *ui.ControlsPanel
	inspector   *ui.Inspector
	perf        *ui.PerfPanel
	leaderboard *ui.LeaderboardPanel

	state   ui.ControlState
	snap    *game.Snapshot
	follow  bool
	maxTick int

	// Selection survives the agent's death so the inspector can show how it ended.
	selected     uint32
	selectedView game.AgentView
	lineage      []persistence.DeathRecord

	screenW, screenH float32
}

// NewViewer creates a viewer for g. maxTicks stops the loop when reached (0 = unlimited).
func NewViewer(g *game.Game, maxTicks int) *Viewer {
	cfg := config.Cfg()
	w, h := float32(rl.GetScreenWidth()), float32(rl.GetScreenHeight())

	cam := camera.New(w, h, cfg.World.Width, cfg.World.Height, float32(cfg.Screen.CellPixels))
	overlays := ui.NewOverlayRegistry()

	v := &Viewer{
		game:        g,
		cam:         cam,
		overlays:    overlays,
		grid:        NewGridRenderer(cam, overlays, cfg.Trace.Length, cfg.Energy.Reproduce),
		hud:         ui.NewHUD(),
		controls:    ui.NewControlsPanel(10, 140, 240),
		inspector:   ui.NewInspector(0, 10, 300),
		perf:        ui.NewPerfPanel(0, 0),
		leaderboard: ui.NewLeaderboardPanel(0, 0, 360),
		state:       ui.ControlState{Speed: ui.MinSpeed},
		maxTick:     maxTicks,
		screenW:     w,
		screenH:     h,
	}
	v.snap = g.Snapshot()
	v.layout()
	return v
}

// Run loops until the window closes, a Step fails, or maxTicks is reached.
func (v *Viewer) Run() error {
	for !rl.WindowShouldClose() {
		if err := v.Update(); err != nil {
			return err
		}
		v.Draw()

		if v.maxTick > 0 && v.game.Tick() >= v.maxTick {
			slog.Info("max ticks reached", "tick", v.game.Tick())
			break
		}
	}
	return nil
}

// Update handles input and advances the game by the current speed.
func (v *Viewer) Update() error {
	v.handleInput()

	steps := v.state.Speed
	if v.state.Paused {
		steps = 0
		if v.state.StepOnce {
			steps = 1
		}
	}
	v.state.StepOnce = false

	for range steps {
		if err := v.game.Step(); err != nil {
			return err
		}
	}
	if steps > 0 {
		v.snap = v.game.Snapshot()
	}

	if a, ok := v.snap.Agent(v.selected); ok {
		v.selectedView = a
		if v.follow {
			v.cam.CenterOnCell(a.X, a.Y)
		}
	}
	return nil
}

// Draw renders one frame.
func (v *Viewer) Draw() {
	rl.BeginDrawing()

	v.grid.Draw(v.snap, v.selected)

	v.hud.Draw(ui.HUDData{
		Title:  "Gridlife",
		Stats:  v.snap.Stats,
		Speed:  v.state.Speed,
		FPS:    rl.GetFPS(),
		Paused: v.state.Paused,
	})
	v.controls.Draw(v.overlays, &v.state)
	if v.state.ResetCamera {
		v.cam.Reset()
		v.follow = false
		v.state.ResetCamera = false
	}

	if v.overlays.IsEnabled(ui.OverlayPerf) {
		v.perf.Draw(v.game.Perf())
	}
	if v.overlays.IsEnabled(ui.OverlayLeaderboard) {
		v.leaderboard.Draw(v.snap.Stats.Leaderboard)
	}
	if v.selected != 0 {
		_, alive := v.snap.Agent(v.selected)
		v.inspector.Draw(ui.InspectorData{Agent: v.selectedView, Alive: alive, Lineage: v.lineage})
	}

	v.hud.DrawControls(int32(v.screenH), controlsLegend)

	rl.EndDrawing()
	v.game.RecordFrame()
}

func (v *Viewer) handleInput() {
	v.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		v.state.Paused = !v.state.Paused
	}
	if rl.IsKeyPressed(rl.KeyN) {
		v.state.StepOnce = true
	}
	if rl.IsKeyPressed(rl.KeyComma) {
		v.state.Speed = ui.ClampSpeed(v.state.Speed / 2)
	}
	if rl.IsKeyPressed(rl.KeyPeriod) {
		v.state.Speed = ui.ClampSpeed(v.state.Speed * 2)
	}
	if rl.IsKeyPressed(rl.KeyTab) {
		v.controls.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyC) && v.selected != 0 {
		v.follow = !v.follow
	}
	if rl.IsKeyPressed(rl.KeyBackspace) {
		v.selectAgent(0)
	}

	for key := rl.GetKeyPressed(); key != 0; key = rl.GetKeyPressed() {
		v.overlays.HandleKeyPress(key)
	}

	v.handleCameraInput()
	v.handleSelection()
}

// handleResize checks for window resize and propagates new dimensions.
func (v *Viewer) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w, h := float32(rl.GetScreenWidth()), float32(rl.GetScreenHeight())
	if w == v.screenW && h == v.screenH {
		return
	}
	v.screenW, v.screenH = w, h
	v.cam.Resize(w, h)
	v.layout()
}

// layout anchors the side panels to the current screen size.
func (v *Viewer) layout() {
	w, h := int32(v.screenW), int32(v.screenH)
	v.inspector.SetPosition(ui.AnchorTopRight.Position(w, h, 300, 0, 10))
	v.perf.SetPosition(ui.AnchorBottomRight.Position(w, h, 300, 40+14*9, 40))
	v.leaderboard.SetPosition(ui.AnchorBottomLeft.Position(w, h, 360, 140, 40))
}

func (v *Viewer) handleCameraInput() {
	panSpeed := float32(8.0) / v.cam.Zoom

	if rl.IsKeyDown(rl.KeyRight) {
		v.cam.Pan(panSpeed, 0)
		v.follow = false
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		v.cam.Pan(-panSpeed, 0)
		v.follow = false
	}
	if rl.IsKeyDown(rl.KeyDown) {
		v.cam.Pan(0, panSpeed)
		v.follow = false
	}
	if rl.IsKeyDown(rl.KeyUp) {
		v.cam.Pan(0, -panSpeed)
		v.follow = false
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		v.cam.ZoomBy(1 + wheel*0.1)
	}
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		v.cam.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		v.cam.ZoomBy(0.8)
	}
	if rl.IsKeyPressed(rl.KeyHome) {
		v.cam.Reset()
		v.follow = false
	}
}

// handleSelection selects the agent under a left click on the grid.
func (v *Viewer) handleSelection() {
	if !rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		return
	}
	mouse := rl.GetMousePosition()
	if v.controls.Contains(v.overlays, int32(mouse.X), int32(mouse.Y)) {
		return
	}
	x, y, ok := v.cam.ScreenToCell(mouse.X, mouse.Y)
	if !ok {
		return
	}
	if a, found := v.snap.AgentAt(x, y); found {
		v.selectAgent(a.ID)
	}
}

func (v *Viewer) selectAgent(id uint32) {
	v.selected = id
	v.lineage = nil
	if id == 0 {
		v.follow = false
		return
	}
	if a, ok := v.snap.Agent(id); ok {
		v.selectedView = a
	}
	lineage, err := v.game.Lineage(id)
	if err != nil {
		slog.Warn("lineage lookup failed", "agent", id, "error", err)
		return
	}
	v.lineage = lineage
}
