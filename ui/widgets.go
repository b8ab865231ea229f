package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/gridlife/inspector"
)

// Renderer handles all UI drawing with consistent styling.
type Renderer struct {
	Theme Theme
}

// NewRenderer creates a renderer with the default theme.
func NewRenderer() *Renderer {
	return &Renderer{Theme: DefaultTheme()}
}

// DrawPanel draws a panel background with border.
func (r *Renderer) DrawPanel(x, y, width, height int32) {
	rl.DrawRectangle(x, y, width, height, r.Theme.PanelBg)
	rl.DrawRectangleLines(x, y, width, height, r.Theme.PanelBorder)
}

// DrawTitle draws a panel title and returns the new Y position.
func (r *Renderer) DrawTitle(x, y int32, title string) int32 {
	rl.DrawText(title, x, y, 16, rl.White)
	return y + r.Theme.LineHeight + 4
}

// DrawSectionHeader draws a section header and returns the new Y position.
func (r *Renderer) DrawSectionHeader(x, y int32, title string) int32 {
	rl.DrawText(title, x, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
	return y + r.Theme.LineHeight
}

// DrawLabelValue draws a label and value on the same line.
func (r *Renderer) DrawLabelValue(x, y int32, label, value string) int32 {
	rl.DrawText(label, x, y, r.Theme.FontSize, r.Theme.LabelColor)
	rl.DrawText(value, x+r.Theme.LabelWidth, y, r.Theme.FontSize, r.Theme.ValueColor)
	return y + r.Theme.LineHeight
}

// DrawBar draws a labeled bar for value in [0, limit], colored by fill ratio.
func (r *Renderer) DrawBar(x, y int32, label string, value, limit float64, width int32) int32 {
	ratio := 0.0
	if limit > 0 {
		ratio = max(min(value/limit, 1), 0)
	}

	barX := x + r.Theme.LabelWidth
	barWidth := width - r.Theme.LabelWidth - 50

	rl.DrawText(label, x, y, r.Theme.FontSize, r.Theme.LabelColor)
	rl.DrawRectangle(barX, y+2, barWidth, r.Theme.BarHeight, r.Theme.BarBg)

	barColor := r.Theme.BarFillHigh
	if ratio < 0.3 {
		barColor = r.Theme.BarFillLow
	} else if ratio < 0.6 {
		barColor = r.Theme.BarFillMedium
	}
	rl.DrawRectangle(barX, y+2, int32(float64(barWidth)*ratio), r.Theme.BarHeight, barColor)

	rl.DrawText(fmt.Sprintf("%.1f", value), barX+barWidth+5, y, r.Theme.FontSize, r.Theme.ValueColor)
	return y + r.Theme.LineHeight + 2
}

// DrawColorSwatch draws a labeled color swatch.
func (r *Renderer) DrawColorSwatch(x, y int32, label string, color rl.Color) int32 {
	rl.DrawText(label, x, y, r.Theme.FontSize, r.Theme.LabelColor)
	rl.DrawRectangle(x+r.Theme.LabelWidth, y+1, 12, 12, color)
	rl.DrawText(fmt.Sprintf("%d,%d,%d", color.R, color.G, color.B), x+r.Theme.LabelWidth+18, y, r.Theme.FontSize, r.Theme.ValueColor)
	return y + r.Theme.LineHeight
}

// DrawField renders one reflected field with its widget.
func (r *Renderer) DrawField(x, y int32, f inspector.Field, width int32) int32 {
	switch f.Widget {
	case inspector.WidgetBar:
		if v, ok := inspector.GetFloatValue(f.Value); ok {
			return r.DrawBar(x, y, f.Name, v, inspector.GetMax(f.Options), width)
		}
	case inspector.WidgetColor:
		if c, ok := inspector.GetRGB(f.Value); ok {
			return r.DrawColorSwatch(x, y, f.Name, AgentColor(c))
		}
	}
	return r.DrawLabelValue(x, y, f.Name, inspector.FormatValue(f.Value, f.Options["fmt"]))
}
