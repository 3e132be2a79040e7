// Package renderer draws the simulation world with raylib.
package renderer

import (
	"math"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/swarm/camera"
	"github.com/pthm-cable/swarm/game"
	"github.com/pthm-cable/swarm/systems"
)

// Scene is the read surface the renderer draws from.
type Scene interface {
	Resources() *systems.ResourceField
	Entities(dst []game.EntityView) []game.EntityView
	Palette() game.Palette
	RallyPoint() (x, y float64, fresh time.Duration)
	Now() time.Duration
	WorldSize() (w, h float64)
}

// WorldRenderer draws resources, entities and the rally marker.
type WorldRenderer struct {
	cam      *camera.Camera
	cellSize float64
	views    []game.EntityView
}

// NewWorldRenderer creates a renderer for a world with the given resource cell size.
func NewWorldRenderer(cam *camera.Camera, cellSize float64) *WorldRenderer {
	return &WorldRenderer{cam: cam, cellSize: cellSize}
}

// Draw renders the scene. Call between BeginDrawing and EndDrawing.
func (r *WorldRenderer) Draw(s Scene) {
	rl.ClearBackground(rl.Black)

	w, h := s.WorldSize()
	x0, y0 := r.cam.WorldToScreen(0, 0)
	x1, y1 := r.cam.WorldToScreen(w, h)
	rl.DrawRectangleLines(int32(x0), int32(y0), int32(x1-x0), int32(y1-y0), rl.Color{R: 30, G: 30, B: 40, A: 255})

	r.drawResources(s.Resources())
	r.drawRallyPoint(s)
	r.drawEntities(s)
}

// drawResources draws each cell with alpha = health / max health.
func (r *WorldRenderer) drawResources(field *systems.ResourceField) {
	size := float32(r.cellSize * r.cam.Zoom)
	field.Each(func(res *systems.Resource) {
		wx := float64(res.X) * r.cellSize
		wy := float64(res.Y) * r.cellSize
		if !r.cam.IsVisible(wx, wy, r.cellSize) {
			return
		}
		sx, sy := r.cam.WorldToScreen(wx, wy)
		color := rl.Color{R: res.Color[0], G: res.Color[1], B: res.Color[2], A: uint8(255 * res.Alpha())}
		rl.DrawRectangleV(rl.Vector2{X: float32(sx), Y: float32(sy)}, rl.Vector2{X: size, Y: size}, color)
	})
}

// drawEntities draws each entity as a circle colored by speed.
func (r *WorldRenderer) drawEntities(s Scene) {
	palette := s.Palette()
	r.views = s.Entities(r.views[:0])
	for _, e := range r.views {
		if !r.cam.IsVisible(e.X, e.Y, e.Radius) {
			continue
		}
		c, alpha := palette.EntityColor(e.Speed)
		sx, sy := r.cam.WorldToScreen(e.X, e.Y)
		rl.DrawCircleV(
			rl.Vector2{X: float32(sx), Y: float32(sy)},
			float32(e.Radius*r.cam.Zoom),
			rl.Color{R: c[0], G: c[1], B: c[2], A: alpha},
		)
	}
}

// drawRallyPoint draws a pulsing marker that fades after the point was last moved.
func (r *WorldRenderer) drawRallyPoint(s Scene) {
	x, y, fresh := s.RallyPoint()
	now := s.Now()
	fade := game.RallyFade(now, fresh)
	if fade <= 0 {
		return
	}

	t := now.Seconds()
	pulse := math.Sin(t*3)*0.5 + 0.5
	c := s.Palette().RallyPoint
	sx, sy := r.cam.WorldToScreen(x, y)
	center := rl.Vector2{X: float32(sx), Y: float32(sy)}
	radius := float32((12 + pulse*6) * r.cam.Zoom)

	rl.DrawCircleV(center, radius, rl.Color{R: c[0], G: c[1], B: c[2], A: uint8(90 * fade)})
	rl.DrawCircleLines(int32(sx), int32(sy), radius*1.8, rl.Color{R: c[0], G: c[1], B: c[2], A: uint8(60 * fade)})
}
