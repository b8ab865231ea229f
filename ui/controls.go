package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Speed limits in ticks per frame.
const (
	MinSpeed = 1
	MaxSpeed = 32
)

// ControlState is the viewer state the controls panel edits.
type ControlState struct {
	Paused      bool
	Speed       int
	StepOnce    bool // advance one tick while paused
	ResetCamera bool
}

// ControlsPanel renders the left-side controls panel with overlay toggles.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetVisible shows or hides the panel.
func (c *ControlsPanel) SetVisible(visible bool) {
	c.visible = visible
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Height returns the panel height for the registered overlays.
func (c *ControlsPanel) Height(overlays *OverlayRegistry) int32 {
	t := c.renderer.Theme
	rows := int32(0)
	for _, cat := range overlays.Categories() {
		rows += int32(len(overlays.ByCategory(cat))) + 1
	}
	return t.Padding*3 + t.LineHeight + 4 + controlsHeight + rows*t.LineHeight
}

// controlsHeight covers the buttons row and the speed slider.
const controlsHeight = 30 + 28 + 8

// Contains reports whether a screen point falls on the panel.
func (c *ControlsPanel) Contains(overlays *OverlayRegistry, px, py int32) bool {
	if !c.visible {
		return false
	}
	return px >= c.x && px < c.x+c.width && py >= c.y && py < c.y+c.Height(overlays)
}

// Draw renders the panel and applies clicks to state and overlays.
// It returns the y coordinate below the panel.
func (c *ControlsPanel) Draw(overlays *OverlayRegistry, state *ControlState) int32 {
	if !c.visible {
		return c.y
	}

	r := c.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight
	inner := c.width - padding*2

	r.DrawPanel(c.x, c.y, c.width, c.Height(overlays))

	x := c.x + padding
	y := r.DrawTitle(x, c.y+padding, "Controls")

	half := float32(inner-6) / 2
	if gui.Button(rl.Rectangle{X: float32(x), Y: float32(y), Width: half, Height: 24}, toggleText(state.Paused, "Resume", "Pause")) {
		state.Paused = !state.Paused
	}
	if gui.Button(rl.Rectangle{X: float32(x) + half + 6, Y: float32(y), Width: half, Height: 24}, "Reset View") {
		state.ResetCamera = true
	}
	y += 30

	speed := gui.SliderBar(
		rl.Rectangle{X: float32(x + 40), Y: float32(y), Width: float32(inner - 80), Height: 18},
		"Speed", fmt.Sprintf("%dx", state.Speed),
		float32(state.Speed), MinSpeed, MaxSpeed,
	)
	state.Speed = ClampSpeed(int(speed + 0.5))
	y += 28 + 8

	mouse := rl.GetMousePosition()
	clicked := rl.IsMouseButtonPressed(rl.MouseButtonLeft)

	for _, category := range overlays.Categories() {
		y = r.DrawSectionHeader(x, y, categoryLabel(category))
		for _, desc := range overlays.ByCategory(category) {
			row := rl.Rectangle{X: float32(x), Y: float32(y), Width: float32(inner), Height: float32(lineHeight)}
			if clicked && rl.CheckCollisionPointRec(mouse, row) {
				overlays.Toggle(desc.ID)
			}
			c.drawToggle(x, y, desc, overlays.IsEnabled(desc.ID), inner)
			y += lineHeight
		}
	}

	return c.y + c.Height(overlays)
}

func (c *ControlsPanel) drawToggle(x, y int32, desc OverlayDescriptor, enabled bool, width int32) {
	r := c.renderer

	statusColor := rl.Color{R: 80, G: 80, B: 80, A: 255}
	nameColor := r.Theme.LabelColor
	if enabled {
		statusColor = rl.Color{R: 100, G: 200, B: 100, A: 255}
		nameColor = rl.White
	}
	rl.DrawRectangle(x, y+2, 8, 8, statusColor)
	rl.DrawText(desc.Name, x+14, y, r.Theme.FontSize, nameColor)

	if desc.KeyLabel != "" {
		keyText := fmt.Sprintf("[%s]", desc.KeyLabel)
		keyWidth := rl.MeasureText(keyText, r.Theme.FontSize)
		rl.DrawText(keyText, x+width-keyWidth, y, r.Theme.FontSize, rl.Color{R: 150, G: 150, B: 150, A: 255})
	}
}

// ClampSpeed bounds a ticks-per-frame speed to [MinSpeed, MaxSpeed].
func ClampSpeed(speed int) int {
	return max(MinSpeed, min(speed, MaxSpeed))
}

func categoryLabel(cat string) string {
	switch cat {
	case "world":
		return "World"
	case "agents":
		return "Agents"
	case "panels":
		return "Panels"
	default:
		return cat
	}
}

func toggleText(on bool, onText, offText string) string {
	if on {
		return onText
	}
	return offText
}
