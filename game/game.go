package game

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/swarm/components"
	"github.com/pthm-cable/swarm/config"
	"github.com/pthm-cable/swarm/systems"
	"github.com/pthm-cable/swarm/telemetry"
)

// Simulation timing.
const (
	DT           = 1.0 / 60.0 // seconds per tick
	tickDuration = time.Second / 60
)

// Options configures a new game.
type Options struct {
	Config         *config.Config // nil = config.Cfg()
	Seed           int64
	Clock          Clock // nil = real clock, or a self-advancing manual clock when headless
	Headless       bool
	LogStats       bool
	StatsWindowSec float64 // 0 = telemetry.stats_window
	SnapshotDir    string
	OutputDir      string
	StepsPerUpdate int
	StatsCallback  func(telemetry.WindowStats)
}

// Game holds the complete simulation state.
type Game struct {
	cfg   *config.Config
	world *ecs.World
	rng   *rand.Rand
	seed  int64

	clock    Clock
	ownClock *ManualClock // advanced by Step when the game drives its own time

	entityMapper *ecs.Map6[
		components.Position,
		components.Velocity,
		components.Body,
		components.Motion,
		components.Harvester,
		components.Override,
	]
	entityFilter *ecs.Filter6[
		components.Position,
		components.Velocity,
		components.Body,
		components.Motion,
		components.Harvester,
		components.Override,
	]

	collisions *systems.CollisionSystem
	tree       *systems.QuadTree
	field      *systems.ResourceField
	generator  *systems.Generator
	progress   *Progression
	scheduler  *Scheduler
	palette    Palette
	notice     noticeState

	steering systems.SteeringParams
	harvest  systems.HarvestParams

	// Rally point
	rallyX, rallyY float64
	rallyFresh     time.Duration

	collisionsOn   bool
	spawning       bool
	spawnX, spawnY float64

	width, height float64
	tick          int32
	entityCount   int

	// Telemetry
	collector      *telemetry.Collector
	perfCollector  *telemetry.PerfCollector
	bookmarks      *telemetry.BookmarkDetector
	outputManager  *telemetry.OutputManager
	logStats       bool
	snapshotDir    string
	statsCallback  func(telemetry.WindowStats)
	stepsPerUpdate int

	doomed []ecs.Entity
	speeds []float64
}

// NewGameWithOptions creates a game at stage 1 with the initial field generated and
// the initial entities scheduled.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}

	world := ecs.NewWorld()
	g := &Game{
		cfg:   cfg,
		world: world,
		rng:   rand.New(rand.NewSource(opts.Seed)),
		seed:  opts.Seed,
		entityMapper: ecs.NewMap6[
			components.Position,
			components.Velocity,
			components.Body,
			components.Motion,
			components.Harvester,
			components.Override,
		](world),
		entityFilter: ecs.NewFilter6[
			components.Position,
			components.Velocity,
			components.Body,
			components.Motion,
			components.Harvester,
			components.Override,
		](world),
		collisions:     systems.NewCollisionSystem(world, cfg.Collision.QueryFactor),
		field:          systems.NewResourceField(),
		scheduler:      NewScheduler(),
		width:          cfg.Derived.WorldW,
		height:         cfg.Derived.WorldH,
		collisionsOn:   cfg.Collision.Enabled,
		logStats:       opts.LogStats,
		snapshotDir:    opts.SnapshotDir,
		statsCallback:  opts.StatsCallback,
		stepsPerUpdate: max(1, opts.StepsPerUpdate),
		steering: systems.SteeringParams{
			Force:          cfg.Steering.Force,
			ArriveDistance: cfg.Steering.ArriveDistance,
			Damping:        cfg.Steering.Damping,
		},
		harvest: systems.HarvestParams{
			CellSize:       cfg.Harvest.CellSize,
			BounceStrength: cfg.Harvest.BounceStrength,
			Clearance:      cfg.Harvest.Clearance,
			Cooldown:       cfg.Derived.HarvestCooldown,
		},
	}

	switch {
	case opts.Clock != nil:
		g.clock = opts.Clock
	case opts.Headless:
		g.ownClock = &ManualClock{}
		g.clock = g.ownClock
	default:
		g.clock = NewRealClock()
	}

	g.tree = systems.NewQuadTree(g.bounds(), cfg.Spatial.Capacity)
	g.generator = systems.NewGenerator(systems.GeneratorParams{
		CellSize:         cfg.Harvest.CellSize,
		BorderMargin:     cfg.Resource.BorderMargin,
		EmptyRadius:      cfg.Resource.EmptyRadius,
		NoiseScale:       cfg.Resource.NoiseScale,
		ScarcePerStage:   cfg.Resource.ScarcePerStage,
		AbundantPerStage: cfg.Resource.AbundantPerStage,
		ScarceHealth:     cfg.Resource.ScarceHealth,
		AbundantHealth:   cfg.Resource.AbundantHealth,
		FormationHealth:  cfg.Resource.FormationHealth,
		Darken:           cfg.Resource.Darken,
		ColorJitter:      cfg.Resource.ColorJitter,
		Aggressiveness:   cfg.Resource.Aggressiveness,
	}, cfg.Resource.Noise, g.rng)

	g.progress = NewProgression(ProgressionParams{
		InitialSpawnCost: cfg.Progression.InitialSpawnCost,
		CreditsPerEntity: cfg.Progression.CreditsPerEntity,
		DepletionSpeed:   cfg.Progression.DepletionSpeed,
		RadiusScale:      cfg.Progression.RadiusScale,
		SpeedScale:       cfg.Progression.SpeedScale,
		EntityCountStep:  cfg.Progression.EntityCountStep,
	}, components.Archetype{
		Radius:          cfg.Entity.Radius,
		BaseSpeed:       cfg.Entity.BaseSpeed,
		RandomRadius:    cfg.Entity.RandomRadius,
		RandomBaseSpeed: cfg.Entity.RandomBaseSpeed,
	}, cfg.Progression.InitialEntityCount)

	g.palette = defaultPalette(cfg)

	// Telemetry
	statsWindow := opts.StatsWindowSec
	if statsWindow <= 0 {
		statsWindow = cfg.Telemetry.StatsWindow
	}
	g.collector = telemetry.NewCollector(statsWindow, DT)
	g.perfCollector = telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow)
	g.bookmarks = telemetry.NewBookmarkDetector(cfg.Telemetry.BookmarkHistory)

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("creating output manager: %w", err)
	}
	g.outputManager = om
	if err := g.outputManager.WriteConfig(cfg); err != nil {
		return nil, fmt.Errorf("writing config: %w", err)
	}

	if err := g.generateInitialField(); err != nil {
		return nil, err
	}

	now := g.clock.Now()
	g.rallyX, g.rallyY = g.width/2, g.height/2
	g.rallyFresh = now
	g.scheduleInitialSpawn(now, g.progress.InitialEntityCount)

	slog.Info("game created",
		"seed", g.seed,
		"world_w", g.width,
		"world_h", g.height,
		"resources", g.field.Len(),
		"total_resources", g.progress.TotalResources,
	)

	return g, nil
}

// generateInitialField builds the stage-1 field and the start formation.
func (g *Game) generateInitialField() error {
	food := systems.FoodForStage(g.progress.Stage)
	batch, err := g.generator.Generate(systems.GenerateRequest{
		Width:     g.width,
		Height:    g.height,
		Stage:     g.progress.Stage,
		Food:      food,
		MaxHealth: g.generator.Params.HealthFor(food),
		From:      g.palette.ResourceStart,
		To:        g.palette.ResourceEnd,
	}, g.field)
	if err != nil {
		return fmt.Errorf("generating resources: %w", err)
	}
	g.field.AddAll(batch)
	g.field.AddAll(g.generator.StartFormation(g.width, g.height, g.palette.ResourceEnd))

	total := g.cfg.Resource.InitialTotal
	if total <= 0 {
		total = g.field.TotalHealth()
	}
	g.progress.SetResources(total)
	return nil
}

func (g *Game) bounds() systems.Rect {
	return systems.Rect{X: 0, Y: 0, W: g.width, H: g.height}
}

// Update runs one tick. Used by the graphical loop, which is paced by the frame rate.
func (g *Game) Update() {
	g.perfCollector.RecordFrame()
	g.Step()
}

// UpdateHeadless runs StepsPerUpdate ticks.
func (g *Game) UpdateHeadless() {
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.Step()
	}
}

// Step runs one simulation tick.
func (g *Game) Step() {
	g.perfCollector.StartTick()
	now := g.clock.Now()

	g.perfCollector.StartPhase(telemetry.PhaseSchedule)
	g.scheduler.Drain(now)

	g.perfCollector.StartPhase(telemetry.PhaseSpawn)
	g.updateEconomy(now)
	g.spawnOnHold()

	g.perfCollector.StartPhase(telemetry.PhaseSpatialIndex)
	g.rebuildSpatialIndex()

	g.perfCollector.StartPhase(telemetry.PhaseEntities)
	g.updateEntities(now)

	g.perfCollector.StartPhase(telemetry.PhaseProgression)
	g.updateDepletion(now)

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.tick++
	g.flushTelemetry()
	g.perfCollector.EndTick()

	if g.ownClock != nil {
		g.ownClock.Advance(tickDuration)
	}
}

// rebuildSpatialIndex reinserts every entity at its current position.
// Entities outside the world bounds are not indexed and do not collide.
func (g *Game) rebuildSpatialIndex() {
	g.tree.Reset(g.bounds())

	query := g.entityFilter.Query()
	for query.Next() {
		pos, _, _, _, _, _ := query.Get()
		g.tree.Insert(query.Entity(), pos.X, pos.Y)
	}
}

// updateEntities steers, harvests and collides each entity in turn.
func (g *Game) updateEntities(now time.Duration) {
	multiplier := g.progress.SpeedMultiplier
	collisions := 0

	query := g.entityFilter.Query()
	for query.Next() {
		pos, vel, body, motion, harvester, override := query.Get()

		tx, ty := g.rallyX, g.rallyY
		if override.Active(now) {
			tx, ty = override.X, override.Y
		} else if override.Set {
			*override = components.Override{}
		}
		systems.Steer(pos, vel, motion, tx, ty, multiplier, g.steering)

		res := systems.Harvest(pos, vel, body, harvester, g.field, now, g.harvest)
		if res.Harvested {
			g.progress.RecordHarvest()
			g.collector.RecordHarvest(res.Depleted)
		}

		if g.collisionsOn {
			collisions += g.collisions.Resolve(query.Entity(), g.tree)
		}
	}

	g.collector.RecordCollisions(collisions)
}

// updateDepletion enters the depleting phase once half the stage's resources are gone.
func (g *Game) updateDepletion(now time.Duration) {
	if !g.progress.CheckDepletion(now, g.cfg.Derived.DepletionDelay) {
		return
	}

	g.collisionsOn = false
	g.rallyX, g.rallyY = g.width/2, g.height/2
	g.rallyFresh = now
	g.scheduler.Schedule(g.progress.ResetDue, TaskStageReset, g.resetStage)

	slog.Info("resources depleted",
		"stage", g.progress.Stage,
		"tick", g.tick,
		"current", g.progress.CurrentResources,
		"total", g.progress.TotalResources,
		"reset_in", g.cfg.Derived.DepletionDelay.String(),
	)
}

// Unload releases resources.
func (g *Game) Unload() {
	g.scheduler.Clear()
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}

// Tick returns the number of completed ticks.
func (g *Game) Tick() int32 {
	return g.tick
}

// Now returns the current simulation time.
func (g *Game) Now() time.Duration {
	return g.clock.Now()
}
