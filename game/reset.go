package game

import (
	"log/slog"

	"github.com/pthm-cable/swarm/systems"
	"github.com/pthm-cable/swarm/telemetry"
)

// ResetStage advances to the next stage immediately, as if the depletion delay had
// elapsed.
func (g *Game) ResetStage() {
	slog.Info("manual stage reset", "stage", g.progress.Stage, "tick", g.tick)
	g.resetStage()
}

// resetStage cancels pending spawns, respawns a larger starting swarm, regenerates
// resources for the next stage and scales the archetype.
func (g *Game) resetStage() {
	now := g.clock.Now()

	cancelled := g.scheduler.Cancel(TaskGroupSpawn) + g.scheduler.Cancel(TaskInitialSpawn)
	g.scheduler.Cancel(TaskStageReset)
	if cancelled > 0 {
		slog.Info("pending spawns cancelled", "count", cancelled)
	}

	oldArch := g.progress.Archetype
	oldCount := g.progress.InitialEntityCount

	// The new swarm spawns with the old archetype at the fixed reset radius.
	g.removeAllEntities()
	respawn := oldArch
	respawn.Radius = g.cfg.Entity.ResetRadius
	for i := 0; i < oldCount+g.cfg.Progression.EntityCountStep; i++ {
		g.spawnDispersing(now, respawn)
	}

	g.palette = g.nextPalette()
	g.progress.Reset()

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
		// Backends are validated at config load; keep the remaining field.
		slog.Error("failed to generate resources", "stage", g.progress.Stage, "error", err)
	}
	generated := g.field.AddAll(batch)
	g.progress.SetResources(g.field.TotalHealth())

	g.collisionsOn = true
	g.rallyFresh = now

	event := telemetry.StageEvent{
		Stage:          g.progress.Stage,
		Tick:           g.tick,
		SimTime:        now.Seconds(),
		Food:           food.String(),
		Generated:      generated,
		Total:          g.progress.TotalResources,
		OldRadius:      oldArch.Radius,
		NewRadius:      g.progress.Archetype.Radius,
		OldSpeed:       oldArch.BaseSpeed,
		NewSpeed:       g.progress.Archetype.BaseSpeed,
		OldEntityCount: oldCount,
		NewEntityCount: g.progress.InitialEntityCount,
		Score:          g.progress.Score,
	}
	slog.Info("stage reset", "event", event)
	g.announce(Notice{Kind: NoticeStage, Stage: event}, now, stageNoticeDuration)
	g.collector.RecordStageReset()

	if err := g.outputManager.WriteStage(event); err != nil {
		slog.Error("failed to write stage event", "error", err)
	}
	if g.snapshotDir != "" {
		g.saveSnapshot("stage reset")
	}
}
