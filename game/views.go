package game

import (
	"math"
	"time"

	"github.com/pthm-cable/swarm/components"
	"github.com/pthm-cable/swarm/config"
	"github.com/pthm-cable/swarm/systems"
)

// maxDisplaySpeed is the speed at which entity color reaches the end of its gradient.
const maxDisplaySpeed = 4.0

// Palette holds the colors of the current stage.
type Palette struct {
	EntityStart   systems.RGB
	EntityEnd     systems.RGB
	ResourceStart systems.RGB
	ResourceEnd   systems.RGB
	RallyPoint    systems.RGB
	SpeedAlpha    bool // entity alpha follows speed
}

func defaultPalette(cfg *config.Config) Palette {
	return Palette{
		EntityStart:   systems.RGB{0, 0, 255},
		EntityEnd:     systems.RGB{0, 255, 0},
		ResourceStart: cfg.Resource.StartColor,
		ResourceEnd:   cfg.Resource.EndColor,
		RallyPoint:    systems.RGB{0, 255, 0},
	}
}

// nextPalette picks the colors for a new stage.
func (g *Game) nextPalette() Palette {
	p := g.palette
	p.EntityStart = systems.RGB{uint8(g.rng.Intn(256)), uint8(g.rng.Intn(256)), uint8(g.rng.Intn(256))}
	p.EntityEnd = systems.RGB{0, 255, 0}
	p.ResourceStart = g.cfg.Resource.StartColor
	choices := g.cfg.Resource.Palette
	p.ResourceEnd = choices[g.rng.Intn(len(choices))]
	p.SpeedAlpha = g.rng.Float64() < g.cfg.Progression.SpeedAlphaChance
	return p
}

// EntityColor grades an entity's color by speed. Alpha is opaque unless the stage
// uses speed-based alpha.
func (p Palette) EntityColor(speed float64) (systems.RGB, uint8) {
	t := math.Min(math.Max(speed/maxDisplaySpeed, 0), 1)
	var c systems.RGB
	for i := range c {
		c[i] = uint8(math.Floor(float64(p.EntityStart[i]) + (float64(p.EntityEnd[i])-float64(p.EntityStart[i]))*t))
	}
	alpha := uint8(255)
	if p.SpeedAlpha {
		alpha = uint8(math.Floor(255 * t))
	}
	return c, alpha
}

// EntityView is the render-facing state of one entity.
type EntityView struct {
	X, Y   float64
	Speed  float64
	Radius float64
}

// ProgressView is the HUD-facing progression state.
type ProgressView struct {
	Stage             int
	Level             int
	Credits           int
	NextSpawnCost     int
	SpawnProgress     float64
	CurrentResources  int
	TotalResources    int
	DepletionProgress float64
	Score             int
	Entities          int
	Phase             Phase
	Collisions        bool
	SpeedMultiplier   float64
}

// Entities appends every entity to dst and returns it.
func (g *Game) Entities(dst []EntityView) []EntityView {
	query := g.entityFilter.Query()
	for query.Next() {
		pos, _, body, motion, _, _ := query.Get()
		dst = append(dst, EntityView{X: pos.X, Y: pos.Y, Speed: motion.Speed, Radius: body.Radius})
	}
	return dst
}

// EntityCount returns the number of live entities.
func (g *Game) EntityCount() int {
	return g.entityCount
}

// RallyPoint returns the rally point and when it was last set or released.
func (g *Game) RallyPoint() (x, y float64, fresh time.Duration) {
	return g.rallyX, g.rallyY, g.rallyFresh
}

// Progress returns the current progression state.
func (g *Game) Progress() ProgressView {
	p := g.progress
	return ProgressView{
		Stage:             p.Stage,
		Level:             p.Level,
		Credits:           p.Credits,
		NextSpawnCost:     p.NextSpawnCost,
		SpawnProgress:     p.SpawnProgress(),
		CurrentResources:  p.CurrentResources,
		TotalResources:    p.TotalResources,
		DepletionProgress: p.DepletionProgress(),
		Score:             p.Score,
		Entities:          g.entityCount,
		Phase:             p.Phase,
		Collisions:        g.collisionsOn,
		SpeedMultiplier:   p.SpeedMultiplier,
	}
}

// Resources returns the resource field. Callers must not modify it.
func (g *Game) Resources() *systems.ResourceField {
	return g.field
}

// Palette returns the current stage colors.
func (g *Game) Palette() Palette {
	return g.palette
}

// Archetype returns the template new entities are created from.
func (g *Game) Archetype() components.Archetype {
	return g.progress.Archetype
}

// WorldSize returns the world dimensions.
func (g *Game) WorldSize() (w, h float64) {
	return g.width, g.height
}

// SetRallyPoint moves the rally point. Ignored while resources are depleting.
func (g *Game) SetRallyPoint(x, y float64) {
	if g.progress.Phase == PhaseDepleting {
		return
	}
	g.rallyX, g.rallyY = x, y
	g.rallyFresh = g.clock.Now()
}

// ReleaseRallyPoint starts the rally point fade.
func (g *Game) ReleaseRallyPoint() {
	g.rallyFresh = g.clock.Now()
}

// SetCollisions enables or disables entity collisions.
func (g *Game) SetCollisions(on bool) {
	g.collisionsOn = on
}

// ToggleCollisions flips entity collisions and returns the new state.
func (g *Game) ToggleCollisions() bool {
	g.collisionsOn = !g.collisionsOn
	return g.collisionsOn
}

// SetArchetype replaces the template for new entities.
func (g *Game) SetArchetype(a components.Archetype) {
	if a.Radius <= 0 {
		a.Radius = g.progress.Archetype.Radius
	}
	if a.BaseSpeed <= 0 {
		a.BaseSpeed = g.progress.Archetype.BaseSpeed
	}
	g.progress.Archetype = a
}

// SetSpawning starts or stops spawning at (x, y) every tick.
func (g *Game) SetSpawning(on bool, x, y float64) {
	g.spawning = on
	g.spawnX, g.spawnY = x, y
}

// Resize changes the world size used for the spatial index, rally defaults and
// future resource generation. Existing resources keep their cells.
func (g *Game) Resize(w, h float64) {
	if w <= 0 || h <= 0 {
		return
	}
	g.width, g.height = w, h
}

// rallyFadeDuration is how long the rally marker takes to fade after its last update.
const rallyFadeDuration = 5 * time.Second

// RallyFade returns the rally marker intensity at now, from 1 when just set down to 0.
func RallyFade(now, fresh time.Duration) float64 {
	elapsed := now - fresh
	if elapsed <= 0 {
		return 1
	}
	return max(0, 1-float64(elapsed)/float64(rallyFadeDuration))
}
