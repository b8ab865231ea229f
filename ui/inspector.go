package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/gridlife/game"
	"github.com/pthm-cable/gridlife/inspector"
	"github.com/pthm-cable/gridlife/persistence"
)

// maxLineage caps the ancestors listed in the inspector.
const maxLineage = 6

// InspectorData holds the selected agent and its archived ancestry.
type InspectorData struct {
	Agent   game.AgentView
	Alive   bool
	Lineage []persistence.DeathRecord
}

// Inspector renders the selected agent's fields.
type Inspector struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewInspector creates an inspector panel.
func NewInspector(x, y, width int32) *Inspector {
	return &Inspector{renderer: NewRenderer(), x: x, y: y, width: width}
}

// SetPosition updates the panel position.
func (ins *Inspector) SetPosition(x, y int32) {
	ins.x = x
	ins.y = y
}

// Height returns the panel height for data.
func (ins *Inspector) Height(data InspectorData) int32 {
	t := ins.renderer.Theme
	rows := int32(len(inspector.ExtractFields(data.Agent)))
	h := t.Padding*2 + t.LineHeight + 4 + rows*(t.LineHeight+2)
	if n := min(len(data.Lineage), maxLineage); n > 0 {
		h += t.LineHeight*(int32(n)+1) + 4
	}
	return h
}

// Draw renders the panel and returns the y coordinate below it.
func (ins *Inspector) Draw(data InspectorData) int32 {
	r := ins.renderer
	padding := r.Theme.Padding
	inner := ins.width - padding*2
	height := ins.Height(data)

	r.DrawPanel(ins.x, ins.y, ins.width, height)

	x := ins.x + padding
	title := fmt.Sprintf("Agent #%d", data.Agent.ID)
	if !data.Alive {
		title += " (dead)"
	}
	y := r.DrawTitle(x, ins.y+padding, title)

	for _, f := range inspector.ExtractFields(data.Agent) {
		y = r.DrawField(x, y, f, inner)
	}

	if len(data.Lineage) > 0 {
		y += 4
		y = r.DrawSectionHeader(x, y, "Lineage")
		for i, rec := range data.Lineage {
			if i >= maxLineage {
				break
			}
			rl.DrawRectangle(x, y+2, 10, 10, AgentColor([3]uint8{rec.ColorR, rec.ColorG, rec.ColorB}))
			rl.DrawText(
				fmt.Sprintf("#%d %s, age %d, %d kids", rec.AgentID, rec.Cause, rec.Age, rec.Offspring),
				x+16, y, r.Theme.FontSize, r.Theme.LabelColor,
			)
			y += r.Theme.LineHeight
		}
	}

	return ins.y + height
}
