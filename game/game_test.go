package game

import (
	"math"
	"testing"
	"time"

	"github.com/pthm-cable/swarm/components"
	"github.com/pthm-cable/swarm/config"
	"github.com/pthm-cable/swarm/systems"
	"github.com/pthm-cable/swarm/telemetry"
)

func newTestGame(t *testing.T) (*Game, *ManualClock) {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	clock := &ManualClock{}
	g, err := NewGameWithOptions(Options{Config: cfg, Seed: 1, Clock: clock})
	if err != nil {
		t.Fatalf("NewGameWithOptions: %v", err)
	}
	t.Cleanup(g.Unload)
	return g, clock
}

func TestNewGameInitialState(t *testing.T) {
	g, _ := newTestGame(t)

	p := g.Progress()
	if p.Stage != 1 || p.Level != 1 || p.NextSpawnCost != 250 {
		t.Errorf("stage/level/cost = %d/%d/%d, want 1/1/250", p.Stage, p.Level, p.NextSpawnCost)
	}
	if p.CurrentResources != 3000 || p.TotalResources != 3000 {
		t.Errorf("resources = %d/%d, want 3000/3000", p.CurrentResources, p.TotalResources)
	}
	if p.Phase != PhaseNormal || !p.Collisions {
		t.Errorf("phase=%v collisions=%v, want normal true", p.Phase, p.Collisions)
	}
	if g.Resources().Len() == 0 {
		t.Error("initial field is empty")
	}
	if g.EntityCount() != 0 {
		t.Errorf("EntityCount = %d before the first tick, want 0", g.EntityCount())
	}
	if n := g.scheduler.Pending(TaskInitialSpawn); n != 20 {
		t.Errorf("pending initial spawns = %d, want 20", n)
	}

	x, y, _ := g.RallyPoint()
	w, h := g.WorldSize()
	if x != w/2 || y != h/2 {
		t.Errorf("rally point = (%v, %v), want world center", x, y)
	}
}

func TestInitialSpawnIsStaggered(t *testing.T) {
	g, clock := newTestGame(t)

	g.Step()
	if g.EntityCount() != 1 {
		t.Fatalf("after t=0: %d entities, want 1", g.EntityCount())
	}

	clock.Set(100 * time.Millisecond)
	g.Step()
	if g.EntityCount() != 2 {
		t.Fatalf("after t=100ms: %d entities, want 2", g.EntityCount())
	}

	clock.Set(1900 * time.Millisecond)
	g.Step()
	if g.EntityCount() != 20 {
		t.Fatalf("after t=1.9s: %d entities, want 20", g.EntityCount())
	}
	if got := len(g.Entities(nil)); got != 20 {
		t.Errorf("Entities returned %d views, want 20", got)
	}
}

func TestLevelUpSpawnsGroupFromEdge(t *testing.T) {
	g, clock := newTestGame(t)
	g.progress.Credits = 300

	g.Step()

	p := g.Progress()
	if p.Level != 2 || p.Credits != 50 || p.NextSpawnCost != 500 {
		t.Fatalf("level/credits/cost = %d/%d/%d, want 2/50/500", p.Level, p.Credits, p.NextSpawnCost)
	}
	if n := g.scheduler.Pending(TaskGroupSpawn); n != 5 {
		t.Fatalf("pending group spawns = %d, want 5", n)
	}

	clock.Set(time.Second)
	g.Step()

	if n := g.scheduler.Pending(TaskGroupSpawn); n != 0 {
		t.Errorf("pending group spawns after 1s = %d, want 0", n)
	}
	// 11 initial spawns are due by 1s, plus the group of 5.
	if g.EntityCount() != 16 {
		t.Fatalf("EntityCount = %d, want 16", g.EntityCount())
	}

	w, h := g.WorldSize()
	outside := 0
	for _, e := range g.Entities(nil) {
		if e.X < 0 || e.X >= w || e.Y < 0 || e.Y >= h {
			outside++
		}
	}
	if outside != 5 {
		t.Errorf("%d entities outside the world, want the 5 group spawns", outside)
	}
}

func TestStageResetCancelsGroupSpawns(t *testing.T) {
	g, clock := newTestGame(t)
	g.progress.Credits = 1000

	g.Step()
	if n := g.scheduler.Pending(TaskGroupSpawn); n != 20 {
		t.Fatalf("pending group spawns = %d, want 20", n)
	}

	g.ResetStage()

	if n := g.scheduler.Pending(TaskGroupSpawn); n != 0 {
		t.Errorf("group spawns survived the reset: %d pending", n)
	}
	if n := g.scheduler.Pending(TaskInitialSpawn); n != 0 {
		t.Errorf("initial spawns survived the reset: %d pending", n)
	}
	if g.EntityCount() != 40 {
		t.Errorf("EntityCount = %d after reset, want 40", g.EntityCount())
	}

	p := g.Progress()
	if p.Stage != 2 || p.Level != 1 || p.Credits != 0 || p.NextSpawnCost != 250 {
		t.Errorf("stage/level/credits/cost = %d/%d/%d/%d, want 2/1/0/250",
			p.Stage, p.Level, p.Credits, p.NextSpawnCost)
	}
	if p.CurrentResources != p.TotalResources || p.TotalResources != g.Resources().TotalHealth() {
		t.Errorf("resources = %d/%d, want both equal to field health %d",
			p.CurrentResources, p.TotalResources, g.Resources().TotalHealth())
	}

	arch := g.Archetype()
	if math.Abs(arch.Radius-4.8) > 1e-9 || math.Abs(arch.BaseSpeed-2.2) > 1e-9 {
		t.Errorf("archetype = %+v, want radius 4.8 speed 2.2", arch)
	}
	for _, e := range g.Entities(nil) {
		// Reset radius 4 with the random-radius flag: rand*4 + 1.
		if e.Radius < 1 || e.Radius >= 5 {
			t.Fatalf("respawned entity radius %v outside the reset range", e.Radius)
		}
	}

	clock.Set(10 * time.Second)
	g.Step()
	if g.EntityCount() != 40 {
		t.Errorf("EntityCount = %d after cancelled spawns were due, want 40", g.EntityCount())
	}
}

func TestDepletionScenario(t *testing.T) {
	g, clock := newTestGame(t)

	g.progress.CurrentResources = 1501
	g.Step()
	if g.Progress().Phase != PhaseNormal {
		t.Fatal("entered depleting above half the total")
	}

	g.SetRallyPoint(10, 10)
	g.progress.CurrentResources = 1500
	g.Step()

	p := g.Progress()
	if p.Phase != PhaseDepleting {
		t.Fatal("did not enter depleting at half the total")
	}
	if p.Collisions {
		t.Error("collisions still enabled while depleting")
	}
	if p.SpeedMultiplier != 10 {
		t.Errorf("SpeedMultiplier = %v, want 10", p.SpeedMultiplier)
	}
	w, h := g.WorldSize()
	if x, y, _ := g.RallyPoint(); x != w/2 || y != h/2 {
		t.Errorf("rally point = (%v, %v), want center", x, y)
	}
	g.SetRallyPoint(10, 10)
	if x, _, _ := g.RallyPoint(); x != w/2 {
		t.Error("rally point moved while depleting")
	}
	if n := g.scheduler.Pending(TaskStageReset); n != 1 {
		t.Fatalf("pending stage resets = %d, want 1", n)
	}

	// A second tick below half must not schedule another reset.
	g.Step()
	if n := g.scheduler.Pending(TaskStageReset); n != 1 {
		t.Errorf("pending stage resets = %d after another tick, want 1", n)
	}

	clock.Set(5 * time.Second)
	g.Step()

	p = g.Progress()
	if p.Stage != 2 || p.Phase != PhaseNormal || !p.Collisions || p.SpeedMultiplier != 1 {
		t.Errorf("after reset: stage=%d phase=%v collisions=%v speed=%v", p.Stage, p.Phase, p.Collisions, p.SpeedMultiplier)
	}
}

func TestHarvestingDrivesDepletion(t *testing.T) {
	g, _ := newTestGame(t)
	g.scheduler.Cancel(TaskInitialSpawn)
	g.SetCollisions(false)
	g.cfg.Entity.SpawnJitter = 0

	// One resource of health 10 under the rally point is the whole stage.
	w, h := g.WorldSize()
	cellSize := g.harvest.CellSize
	cell := systems.CellOf(w/2, h/2, cellSize)
	cx, cy := systems.CellCenter(cell, cellSize)
	g.field = systems.NewResourceField()
	g.field.Add(systems.Resource{Cell: cell, Health: 10, MaxHealth: 10})
	g.progress.SetResources(10)
	g.SetRallyPoint(cx, cy)

	arch := components.Archetype{Radius: 2, BaseSpeed: 2}
	spawnRing := func(n int) {
		for i := 0; i < n; i++ {
			angle := 2 * math.Pi * float64(i) / float64(n)
			g.spawnEntity(cx+0.5*math.Cos(angle), cy+0.5*math.Sin(angle), arch, components.Override{})
		}
	}

	// Each entity takes one unit, then is pushed clear of the cell.
	spawnRing(4)
	g.Step()

	p := g.Progress()
	if p.Credits != 4 || p.Score != 4 || p.CurrentResources != 6 {
		t.Fatalf("credits/score/current = %d/%d/%d, want 4/4/6", p.Credits, p.Score, p.CurrentResources)
	}
	if r := g.field.At(cell); r == nil || r.Health != 6 {
		t.Fatalf("resource health = %v, want 6", r)
	}
	if p.Phase != PhaseNormal {
		t.Fatal("entered depleting above half the total")
	}

	spawnRing(1)
	g.Step()

	p = g.Progress()
	if p.Credits != 5 || p.Score != 5 || p.CurrentResources != 5 {
		t.Fatalf("credits/score/current = %d/%d/%d, want 5/5/5", p.Credits, p.Score, p.CurrentResources)
	}
	if p.Phase != PhaseDepleting {
		t.Error("harvesting to half the total did not enter depleting")
	}
	if n := g.scheduler.Pending(TaskStageReset); n != 1 {
		t.Errorf("pending stage resets = %d, want 1", n)
	}
}

func TestUnloadDropsPendingTasks(t *testing.T) {
	g, _ := newTestGame(t)
	if g.scheduler.Len() == 0 {
		t.Fatal("expected pending initial spawns")
	}
	g.Unload()
	if n := g.scheduler.Len(); n != 0 {
		t.Errorf("scheduler holds %d tasks after Unload, want 0", n)
	}
}

func TestClearEntities(t *testing.T) {
	g, clock := newTestGame(t)
	clock.Set(2 * time.Second)
	g.Step()
	if g.EntityCount() != 20 {
		t.Fatalf("EntityCount = %d, want 20", g.EntityCount())
	}

	g.ClearEntities()
	if g.EntityCount() != 0 || len(g.Entities(nil)) != 0 {
		t.Errorf("after clear: count=%d views=%d, want 0", g.EntityCount(), len(g.Entities(nil)))
	}

	g.Step()
	if g.EntityCount() != 0 {
		t.Errorf("EntityCount = %d after a tick, want 0", g.EntityCount())
	}
}

func TestSpawnOnHold(t *testing.T) {
	g, _ := newTestGame(t)

	g.SetSpawning(true, 100, 100)
	g.Step()
	if g.EntityCount() != 6 {
		t.Fatalf("EntityCount = %d, want 1 initial + 5 held", g.EntityCount())
	}
	g.Step()
	if g.EntityCount() != 11 {
		t.Fatalf("EntityCount = %d, want 11", g.EntityCount())
	}

	g.SetSpawning(false, 0, 0)
	g.Step()
	if g.EntityCount() != 11 {
		t.Errorf("EntityCount = %d after release, want 11", g.EntityCount())
	}
}

func TestToggleCollisions(t *testing.T) {
	g, _ := newTestGame(t)
	if g.ToggleCollisions() {
		t.Error("first toggle should disable collisions")
	}
	if !g.ToggleCollisions() {
		t.Error("second toggle should enable collisions")
	}
	g.SetCollisions(false)
	if g.Progress().Collisions {
		t.Error("SetCollisions(false) ignored")
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	g, clock := newTestGame(t)
	clock.Set(time.Second)
	g.Step()

	snap := g.Snapshot()
	if len(snap.Entities) != g.EntityCount() {
		t.Fatalf("snapshot has %d entities, want %d", len(snap.Entities), g.EntityCount())
	}
	if len(snap.Resources) != g.Resources().Len() {
		t.Errorf("snapshot has %d resources, want %d", len(snap.Resources), g.Resources().Len())
	}
	if snap.Version != telemetry.SnapshotVersion || snap.Tick != 1 {
		t.Errorf("version=%d tick=%d, want %d 1", snap.Version, snap.Tick, telemetry.SnapshotVersion)
	}

	before := g.Entities(nil)[0].X
	snap.Entities[0].X += 1000
	if g.Entities(nil)[0].X != before {
		t.Error("editing the snapshot changed the game")
	}
}

func TestHeadlessAdvancesOwnClock(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	var windows []telemetry.WindowStats
	g, err := NewGameWithOptions(Options{
		Config:         cfg,
		Seed:           3,
		Headless:       true,
		StepsPerUpdate: 60,
		StatsWindowSec: 0.5,
		StatsCallback:  func(s telemetry.WindowStats) { windows = append(windows, s) },
	})
	if err != nil {
		t.Fatal(err)
	}
	defer g.Unload()

	g.UpdateHeadless()

	if g.Tick() != 60 {
		t.Errorf("Tick = %d, want 60", g.Tick())
	}
	if g.Now() != 60*tickDuration {
		t.Errorf("Now = %v, want %v", g.Now(), 60*tickDuration)
	}
	// Ticks ran at t = 0 .. 59/60 s: initial spawns 0..9 were due.
	if g.EntityCount() != 10 {
		t.Errorf("EntityCount = %d, want 10", g.EntityCount())
	}
	if len(windows) != 2 {
		t.Fatalf("got %d stats windows, want 2", len(windows))
	}
	if windows[0].Spawned+windows[1].Spawned != 10 {
		t.Errorf("windows recorded %d spawns, want 10", windows[0].Spawned+windows[1].Spawned)
	}
}
