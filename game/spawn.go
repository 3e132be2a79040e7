package game

import (
	"log/slog"
	"math"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/swarm/components"
	"github.com/pthm-cable/swarm/telemetry"
)

// spawnEntity creates one entity near (x, y) from archetype, with an optional
// steering override.
func (g *Game) spawnEntity(x, y float64, arch components.Archetype, override components.Override) ecs.Entity {
	radius := arch.Radius
	if arch.RandomRadius {
		radius = g.rng.Float64()*arch.Radius + 1
	}
	baseSpeed := arch.BaseSpeed
	if arch.RandomBaseSpeed {
		minSpeed := g.cfg.Entity.MinBaseSpeed
		baseSpeed = g.rng.Float64()*(arch.BaseSpeed-minSpeed) + minSpeed
	}

	jitter := g.cfg.Entity.SpawnJitter
	pos := components.Position{
		X: x + (g.rng.Float64()*2-1)*jitter,
		Y: y + (g.rng.Float64()*2-1)*jitter,
	}
	vel := components.Velocity{}
	body := components.Body{Radius: radius}
	motion := components.Motion{BaseSpeed: baseSpeed}
	harvester := components.Harvester{}

	e := g.entityMapper.NewEntity(&pos, &vel, &body, &motion, &harvester, &override)
	g.entityCount++
	g.collector.RecordSpawn(1)
	return e
}

// spawnDispersing creates an entity at the world center that heads for a random
// point around the center before it follows the rally point.
func (g *Game) spawnDispersing(now time.Duration, arch components.Archetype) ecs.Entity {
	cx, cy := g.width/2, g.height/2

	angle := g.rng.Float64() * 2 * math.Pi
	dist := math.Sqrt(g.rng.Float64()) * g.cfg.Spawn.DispersalRadius
	override := components.Override{
		X:     cx + math.Cos(angle)*dist,
		Y:     cy + math.Sin(angle)*dist,
		Until: now + g.cfg.Derived.DispersalDuration,
		Set:   true,
	}
	return g.spawnEntity(cx, cy, arch, override)
}

// scheduleInitialSpawn staggers count dispersing spawns from now. Each spawn uses
// the archetype current when it runs.
func (g *Game) scheduleInitialSpawn(now time.Duration, count int) {
	interval := g.cfg.Derived.InitialInterval
	for i := 0; i < count; i++ {
		g.scheduler.Schedule(now+time.Duration(i)*interval, TaskInitialSpawn, func() {
			g.spawnDispersing(g.clock.Now(), g.progress.Archetype)
		})
	}
}

// updateEconomy converts credits into a group spawn once they cover the spawn cost.
func (g *Game) updateEconomy(now time.Duration) {
	spend, ok := g.progress.LevelUp()
	if !ok {
		return
	}

	count := g.progress.EntitiesFor(spend)
	side := g.scheduleGroupSpawn(now, count)
	g.collector.RecordLevelUp()

	event := telemetry.LevelUpEvent{
		Tick:     g.tick,
		Level:    g.progress.Level,
		Spent:    spend,
		Entities: count,
		NextCost: g.progress.NextSpawnCost,
		Side:     side,
	}
	slog.Info("level up", "event", event)
	g.announce(Notice{Kind: NoticeLevelUp, LevelUp: event}, now, levelUpNoticeDuration)
}

// scheduleGroupSpawn queues count entities entering from a random world edge. The
// group shares one randomized archetype and one entry point. Returns the side:
// 0 top, 1 right, 2 bottom, 3 left.
func (g *Game) scheduleGroupSpawn(now time.Duration, count int) int {
	arch := g.progress.Archetype
	minSpeed := g.cfg.Entity.MinBaseSpeed
	radius := g.cfg.Entity.ResetRadius
	if g.rng.Float64() >= 0.5 {
		radius = g.rng.Float64()*arch.Radius + 1
	}
	group := components.Archetype{
		Radius:          radius,
		BaseSpeed:       g.rng.Float64()*(arch.BaseSpeed-minSpeed) + minSpeed,
		RandomRadius:    g.rng.Float64() < 0.5,
		RandomBaseSpeed: g.rng.Float64() < 0.5,
	}

	side := g.rng.Intn(4)
	sc := g.cfg.Spawn
	dist := sc.EdgeDistanceMin + g.rng.Float64()*(sc.EdgeDistanceMax-sc.EdgeDistanceMin)
	x, y := g.edgePoint(side, dist)

	due := now
	for i := 0; i < count; i++ {
		g.scheduler.Schedule(due, TaskGroupSpawn, func() {
			g.spawnEntity(x, y, group, components.Override{})
		})
		interval := sc.GroupIntervalMin + g.rng.Float64()*(sc.GroupIntervalMax-sc.GroupIntervalMin)
		due += time.Duration(interval * float64(time.Second))
	}
	return side
}

// edgePoint returns a point dist outside the given world side, at a random position
// along it.
func (g *Game) edgePoint(side int, dist float64) (x, y float64) {
	switch side {
	case 0:
		return g.rng.Float64() * g.width, -dist
	case 1:
		return g.width + dist, g.rng.Float64() * g.height
	case 2:
		return g.rng.Float64() * g.width, g.height + dist
	default:
		return -dist, g.rng.Float64() * g.height
	}
}

// spawnOnHold adds a batch of entities at the spawn point while spawning is held.
func (g *Game) spawnOnHold() {
	if !g.spawning {
		return
	}
	for i := 0; i < g.cfg.Spawn.HoldBatch; i++ {
		g.spawnEntity(g.spawnX, g.spawnY, g.progress.Archetype, components.Override{})
	}
}

// ClearEntities removes every entity. Pending spawns still run.
func (g *Game) ClearEntities() {
	g.removeAllEntities()
	slog.Info("entities cleared", "tick", g.tick)
}

// removeAllEntities collects the live entities first, then removes them.
func (g *Game) removeAllEntities() int {
	g.doomed = g.doomed[:0]
	query := g.entityFilter.Query()
	for query.Next() {
		g.doomed = append(g.doomed, query.Entity())
	}
	for _, e := range g.doomed {
		g.entityMapper.Remove(e)
	}
	g.entityCount = 0
	return len(g.doomed)
}
