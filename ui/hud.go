package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/gridlife/components"
	"github.com/pthm-cable/gridlife/game"
	"github.com/pthm-cable/gridlife/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title  string
	Stats  game.Stats
	Speed  int
	FPS    int32
	Paused bool
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{renderer: NewRenderer()}
}

// Draw renders the HUD in the top-left corner.
func (h *HUD) Draw(data HUDData) {
	s := data.Stats
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Agents: %d | Food: %d | Zone: %d | Deaths: %d", s.Population, s.Food, s.Zone, s.TotalDeaths),
		10, 35, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("Tick: %d | Speed: %dx | FPS: %d | Age: %s avg, %d max",
			s.Tick, data.Speed, data.FPS, telemetry.FormatFloat(s.MeanAge, 1), s.MaxAge),
		10, 55, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("Knobs: neighbors %d, food %d, move %.2f, idle %.2f, max pop %d",
			s.Knobs.MaxNeighbors, s.Knobs.FoodCount, s.Knobs.MoveCost, s.Knobs.IdleCost, s.Knobs.MaxPop),
		10, 75, 14, rl.Gray,
	)
	rl.DrawText(
		fmt.Sprintf("Death EMA: crowd %.2f, energy %.2f, old age %.2f",
			s.EMA.Crowd, s.EMA.Energy, s.EMA.OldAge),
		10, 93, 14, rl.Gray,
	)

	statusText := "Running"
	if data.Paused {
		statusText = "PAUSED"
	}
	rl.DrawText(statusText, 10, 111, 16, rl.Yellow)
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders per-phase tick timings.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{renderer: NewRenderer(), x: x, y: y}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the phase breakdown in tick order.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	const width, height = 300, 40 + 14*9
	r := p.renderer
	r.DrawPanel(p.x, p.y, width, height)

	x := p.x + r.Theme.Padding
	y := p.y + 6
	rl.DrawText(fmt.Sprintf("Tick %s (%.0f/s)", stats.AvgTickDuration.Round(time.Microsecond), stats.TicksPerSecond), x, y, 14, rl.Yellow)
	y += 20

	for _, phase := range telemetry.Phases {
		pct := stats.PhasePct[phase]
		color := rl.LightGray
		if pct > 40 {
			color = rl.Red
		} else if pct > 20 {
			color = rl.Orange
		}
		rl.DrawText(
			fmt.Sprintf("%-13s %8s %5.1f%%", phase, stats.PhaseAvg[phase].Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}

// LeaderboardPanel lists the genome signatures with the longest mean
// lifespan among dead agents.
type LeaderboardPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewLeaderboardPanel creates a new leaderboard panel.
func NewLeaderboardPanel(x, y, width int32) *LeaderboardPanel {
	return &LeaderboardPanel{renderer: NewRenderer(), x: x, y: y, width: width}
}

// SetPosition updates the panel position.
func (l *LeaderboardPanel) SetPosition(x, y int32) {
	l.x = x
	l.y = y
}

// Draw renders one row per genome summary.
func (l *LeaderboardPanel) Draw(board []telemetry.GenomeSummary) {
	r := l.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight
	height := padding*2 + lineHeight + 4 + lineHeight*int32(max(len(board), 1))
	r.DrawPanel(l.x, l.y, l.width, height)

	x := l.x + padding
	y := r.DrawTitle(x, l.y+padding, "Leaderboard")
	if len(board) == 0 {
		rl.DrawText("no deaths yet", x, y, r.Theme.FontSize, r.Theme.LabelColor)
		return
	}

	for i, g := range board {
		sig := g.Signature
		rl.DrawRectangle(x, y+2, 10, 10, AgentColor(sig.Color))
		rl.DrawText(
			fmt.Sprintf("%d. %s f%d a%d  age %s  kids %s  n=%d",
				i+1, sig.Personality, sig.FoodRadius, sig.AgentRadius,
				telemetry.FormatFloat(g.MeanAge, 0), telemetry.FormatFloat(g.MeanOffspring, 1), g.Deaths),
			x+16, y, r.Theme.FontSize, r.Theme.ValueColor,
		)
		y += lineHeight
	}
}

var personalityPalette = []rl.Color{
	{R: 90, G: 170, B: 250, A: 255},
	{R: 240, G: 200, B: 80, A: 255},
	{R: 110, G: 210, B: 110, A: 255},
	{R: 200, G: 110, B: 220, A: 255},
	{R: 250, G: 120, B: 100, A: 255},
}

// PersonalityColor returns the display color of a personality.
func PersonalityColor(p components.Personality) rl.Color {
	return personalityPalette[int(p)%len(personalityPalette)]
}

// EnergyColor shades from red at zero energy to green at limit.
func EnergyColor(energy, limit float64) rl.Color {
	t := 0.0
	if limit > 0 {
		t = max(0, min(energy/limit, 1))
	}
	return rl.Color{R: uint8(230 * (1 - t)), G: uint8(60 + 170*t), B: 60, A: 255}
}
