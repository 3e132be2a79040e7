package ui

import (
	"fmt"
	"sort"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/swarm/game"
	"github.com/pthm-cable/swarm/systems"
	"github.com/pthm-cable/swarm/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Progress     game.ProgressView
	Palette      game.Palette
	Tick         int32
	FPS          int32
	ScreenWidth  int32
	ScreenHeight int32
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
	width    int32
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{renderer: NewRenderer(), width: 260}
}

// Draw renders the progression panel in the top right corner.
func (h *HUD) Draw(data HUDData) {
	r := h.renderer
	p := data.Progress
	padding := r.Theme.Padding

	x := data.ScreenWidth - h.width - padding
	y := padding
	r.DrawPanel(x, y, h.width, 10*r.Theme.LineHeight+padding*2)

	x += padding
	y += padding
	inner := h.width - padding*2

	y = r.DrawSectionHeader(x, y, fmt.Sprintf("Stage %d  Level %d", p.Stage, p.Level))
	y = r.DrawLabelValue(x, y, "Score", fmt.Sprintf("%d", p.Score))
	y = r.DrawLabelValue(x, y, "Entities", fmt.Sprintf("%d", p.Entities))
	y = r.DrawLabelValue(x, y, "Credits", fmt.Sprintf("%d / %d", p.Credits, p.NextSpawnCost))
	y = r.DrawBar(x, y, "Next spawn", float32(p.SpawnProgress), inner, toColor(data.Palette.EntityEnd, 255))
	y = r.DrawLabelValue(x, y, "Resources", fmt.Sprintf("%d / %d", p.CurrentResources, p.TotalResources))
	y = r.DrawBar(x, y, "Depletion", float32(p.DepletionProgress), inner, toColor(data.Palette.ResourceEnd, 255))

	status, color := "Harvesting", r.Theme.ValueColor
	if p.Phase == game.PhaseDepleting {
		status, color = "Depleted: next stage soon", rl.Orange
	}
	rl.DrawText(status, x, y, r.Theme.FontSize, color)
	y += r.Theme.LineHeight

	collisions := "off"
	if p.Collisions {
		collisions = "on"
	}
	r.DrawLabelValue(x, y, "Collisions", collisions)
}

// noticeFadeOut is how long a notice takes to fade before it disappears.
const noticeFadeOut = 300 * time.Millisecond

// DrawNotice renders the current stage or level-up card centered near the top of
// the screen. Nothing is drawn for NoticeNone.
func (h *HUD) DrawNotice(n game.Notice, screenWidth, screenHeight int32) {
	var title string
	var lines []string
	switch n.Kind {
	case game.NoticeStage:
		e := n.Stage
		title = fmt.Sprintf("Stage %d reached", e.Stage)
		lines = []string{
			fmt.Sprintf("Speed: %.2f -> %.2f", e.OldSpeed, e.NewSpeed),
			fmt.Sprintf("Starting entities: %d -> %d", e.OldEntityCount, e.NewEntityCount),
			fmt.Sprintf("Radius: %.2f -> %.2f", e.OldRadius, e.NewRadius),
			fmt.Sprintf("Food: %s (%d cells)", e.Food, e.Generated),
		}
	case game.NoticeLevelUp:
		e := n.LevelUp
		title = fmt.Sprintf("Level %d", e.Level)
		lines = []string{
			fmt.Sprintf("%d entities incoming", e.Entities),
			fmt.Sprintf("Next spawn: %d credits", e.NextCost),
		}
	default:
		return
	}

	alpha := float32(1)
	if n.Remaining < noticeFadeOut {
		alpha = float32(n.Remaining) / float32(noticeFadeOut)
	}

	const titleSize, lineSize = 24, 16
	width := int32(320)
	height := int32(titleSize+12) + int32(len(lines))*(lineSize+6) + 2*h.renderer.Theme.Padding
	x := (screenWidth - width) / 2
	y := screenHeight/4 - height/2

	rl.DrawRectangle(x, y, width, height, rl.Fade(rl.Black, 0.8*alpha))
	rl.DrawRectangleLines(x, y, width, height, rl.Fade(h.renderer.Theme.PanelBorder, alpha))

	y += h.renderer.Theme.Padding
	rl.DrawText(title, (screenWidth-rl.MeasureText(title, titleSize))/2, y, titleSize, rl.Fade(rl.White, alpha))
	y += titleSize + 12
	for _, line := range lines {
		rl.DrawText(line, (screenWidth-rl.MeasureText(line, lineSize))/2, y, lineSize, rl.Fade(rl.LightGray, alpha))
		y += lineSize + 6
	}
}

// DrawStatus renders tick and frame rate in the top left corner.
func (h *HUD) DrawStatus(data HUDData) {
	rl.DrawText(fmt.Sprintf("Tick: %d | FPS: %d", data.Tick, data.FPS), 10, 10, 16, rl.LightGray)
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders the per-phase tick timings.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
	names    []string
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

// Draw renders the phases, most expensive first.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	x, y := p.x, p.y

	rl.DrawText("Tick Performance", x, y, 16, rl.White)
	y += 20
	rl.DrawText(fmt.Sprintf("Avg: %s | P95: %s", stats.AvgTickDuration.Round(time.Microsecond),
		stats.P95TickDuration.Round(time.Microsecond)), x, y, 14, rl.Yellow)
	y += 16

	p.names = p.names[:0]
	for name := range stats.PhaseAvg {
		p.names = append(p.names, name)
	}
	sort.Slice(p.names, func(i, j int) bool {
		return stats.PhaseAvg[p.names[i]] > stats.PhaseAvg[p.names[j]]
	})

	for _, name := range p.names {
		pct := stats.PhasePct[name]
		color := rl.LightGray
		if pct > 50 {
			color = rl.Red
		} else if pct > 25 {
			color = rl.Orange
		}
		rl.DrawText(
			fmt.Sprintf("%-14s %8s %5.1f%%", name, stats.PhaseAvg[name].Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}

func toColor(c systems.RGB, alpha uint8) rl.Color {
	return rl.Color{R: c[0], G: c[1], B: c[2], A: alpha}
}
