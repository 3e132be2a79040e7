package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/swarm/camera"
	"github.com/pthm-cable/swarm/components"
	"github.com/pthm-cable/swarm/game"
)

// Slider ranges for the entity template.
const (
	minRadius    = 1
	maxRadius    = 19
	minBaseSpeed = 0.05
	maxBaseSpeed = 4
)

// Tuner is the part of the game the control panel edits.
type Tuner interface {
	Archetype() components.Archetype
	SetArchetype(components.Archetype)
	Progress() game.ProgressView
	SetCollisions(on bool)
	ClearEntities()
}

// ControlsPanel renders the left-side panel for the entity template, collisions
// and zoom.
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
		visible:  true,
	}
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Bounds returns the screen area covered by the panel, or an empty rectangle when
// hidden. Clicks inside it do not reach the world.
func (c *ControlsPanel) Bounds() rl.Rectangle {
	if !c.visible {
		return rl.Rectangle{}
	}
	return rl.Rectangle{X: float32(c.x), Y: float32(c.y), Width: float32(c.width), Height: float32(c.height())}
}

func (c *ControlsPanel) height() int32 {
	return 12*c.renderer.Theme.LineHeight + 6*30
}

// Draw renders the panel and applies any changes to t and cam.
func (c *ControlsPanel) Draw(t Tuner, cam *camera.Camera) {
	if !c.visible {
		return
	}

	r := c.renderer
	padding := r.Theme.Padding
	r.DrawPanel(c.x, c.y, c.width, c.height())

	x := float32(c.x + padding)
	y := c.y + padding
	inner := float32(c.width - padding*2)

	y = r.DrawSectionHeader(int32(x), y, "Entities")
	arch := t.Archetype()
	changed := false

	rl.DrawText(fmt.Sprintf("Radius: %.1f", arch.Radius), int32(x), y, r.Theme.FontSize, r.Theme.LabelColor)
	y += r.Theme.LineHeight
	radius := gui.SliderBar(rl.Rectangle{X: x + 20, Y: float32(y), Width: inner - 50, Height: 16},
		"1", "19", float32(arch.Radius), minRadius, maxRadius)
	if radius != float32(arch.Radius) {
		arch.Radius = float64(radius)
		changed = true
	}
	y += 24

	random := gui.CheckBox(rl.Rectangle{X: x, Y: float32(y), Width: 14, Height: 14}, "Random radius", arch.RandomRadius)
	if random != arch.RandomRadius {
		arch.RandomRadius = random
		changed = true
	}
	y += 24

	rl.DrawText(fmt.Sprintf("Base speed: %.2f", arch.BaseSpeed), int32(x), y, r.Theme.FontSize, r.Theme.LabelColor)
	y += r.Theme.LineHeight
	speed := gui.SliderBar(rl.Rectangle{X: x + 20, Y: float32(y), Width: inner - 50, Height: 16},
		"0", "4", float32(arch.BaseSpeed), minBaseSpeed, maxBaseSpeed)
	if speed != float32(arch.BaseSpeed) {
		arch.BaseSpeed = float64(speed)
		changed = true
	}
	y += 24

	random = gui.CheckBox(rl.Rectangle{X: x, Y: float32(y), Width: 14, Height: 14}, "Random speed", arch.RandomBaseSpeed)
	if random != arch.RandomBaseSpeed {
		arch.RandomBaseSpeed = random
		changed = true
	}
	y += 24

	if changed {
		t.SetArchetype(arch)
	}

	collisions := t.Progress().Collisions
	if on := gui.CheckBox(rl.Rectangle{X: x, Y: float32(y), Width: 14, Height: 14}, "Collisions", collisions); on != collisions {
		t.SetCollisions(on)
	}
	y += 28

	if gui.Button(rl.Rectangle{X: x, Y: float32(y), Width: inner, Height: 24}, "Clear entities") {
		t.ClearEntities()
	}
	y += 34

	y = r.DrawSectionHeader(int32(x), y, "View")
	half := (inner - 10) / 3
	if gui.Button(rl.Rectangle{X: x, Y: float32(y), Width: half, Height: 24}, "Zoom +") {
		cam.ZoomBy(camera.ZoomStep)
	}
	if gui.Button(rl.Rectangle{X: x + half + 5, Y: float32(y), Width: half, Height: 24}, "Zoom -") {
		cam.ZoomBy(-camera.ZoomStep)
	}
	if gui.Button(rl.Rectangle{X: x + 2*(half+5), Y: float32(y), Width: half, Height: 24}, "Reset") {
		cam.Reset()
	}
	y += 30

	rl.DrawText(fmt.Sprintf("Zoom: %.1fx", cam.Zoom), int32(x), y, r.Theme.FontSize, r.Theme.LabelColor)
}
