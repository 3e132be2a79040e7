package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/swarm/camera"
)

// Controller is the part of the game driven by mouse and keyboard.
type Controller interface {
	SetRallyPoint(x, y float64)
	ReleaseRallyPoint()
	SetSpawning(on bool, x, y float64)
	ResetStage()
	ToggleCollisions() bool
	Resize(w, h float64)
	DismissNotice()
}

// Input maps mouse and keyboard events onto a Controller and the camera.
//
//	left mouse    hold to drag the rally point
//	right mouse   hold to spawn entities under the cursor
//	wheel         zoom
//	middle mouse  pan
//	R             next stage
//	C             toggle collisions
//	Tab           toggle the control panel
//	Space         dismiss the stage card
type Input struct {
	cam          *camera.Camera
	panel        *ControlsPanel
	followScreen bool // the world is resized with the window
	rallying     bool
}

// NewInput creates an input handler. Clicks inside panel are left to the panel.
func NewInput(cam *camera.Camera, panel *ControlsPanel, followScreen bool) *Input {
	return &Input{cam: cam, panel: panel, followScreen: followScreen}
}

// Handle processes this frame's input.
func (in *Input) Handle(c Controller) {
	in.handleResize(c)

	mouse := rl.GetMousePosition()
	wx, wy := in.cam.ScreenToWorld(float64(mouse.X), float64(mouse.Y))
	overPanel := rl.CheckCollisionPointRec(mouse, in.panel.Bounds())

	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) && !overPanel {
		in.rallying = true
	}
	if in.rallying {
		if rl.IsMouseButtonDown(rl.MouseButtonLeft) {
			c.SetRallyPoint(wx, wy)
		} else {
			in.rallying = false
			c.ReleaseRallyPoint()
		}
	}

	if rl.IsMouseButtonDown(rl.MouseButtonRight) && !overPanel {
		c.SetSpawning(true, wx, wy)
	} else {
		c.SetSpawning(false, 0, 0)
	}

	if rl.IsMouseButtonDown(rl.MouseButtonMiddle) {
		delta := rl.GetMouseDelta()
		in.cam.Pan(-float64(delta.X)/in.cam.Zoom, -float64(delta.Y)/in.cam.Zoom)
	}
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		if wheel > 0 {
			in.cam.ZoomBy(camera.ZoomStep)
		} else {
			in.cam.ZoomBy(-camera.ZoomStep)
		}
	}

	if rl.IsKeyPressed(rl.KeyR) {
		c.ResetStage()
	}
	if rl.IsKeyPressed(rl.KeyC) {
		c.ToggleCollisions()
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		c.DismissNotice()
	}
	if rl.IsKeyPressed(rl.KeyTab) {
		in.panel.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}
}

// handleResize propagates a new window size to the camera, and to the world when
// it follows the screen.
func (in *Input) handleResize(c Controller) {
	if !rl.IsWindowResized() {
		return
	}
	w := float64(rl.GetScreenWidth())
	h := float64(rl.GetScreenHeight())
	in.cam.Resize(w, h)
	if in.followScreen {
		c.Resize(w, h)
		in.cam.SetWorld(w, h)
	}
}
