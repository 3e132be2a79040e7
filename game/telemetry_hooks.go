package game

import (
	"log/slog"

	"github.com/pthm-cable/swarm/systems"
	"github.com/pthm-cable/swarm/telemetry"
)

// flushTelemetry closes the stats window when it is due.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	g.speeds = g.speeds[:0]
	query := g.entityFilter.Query()
	for query.Next() {
		_, _, _, motion, _, _ := query.Get()
		g.speeds = append(g.speeds, motion.Speed)
	}

	p := g.progress
	stats := g.collector.Flush(g.tick, g.speeds, telemetry.WorldState{
		Stage:          p.Stage,
		Level:          p.Level,
		Phase:          p.Phase.String(),
		Entities:       g.entityCount,
		Resources:      p.CurrentResources,
		TotalResources: p.TotalResources,
		Credits:        p.Credits,
		Score:          p.Score,
	})
	perfStats := g.perfCollector.Stats()

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	for _, bm := range g.bookmarks.Check(stats) {
		bm.LogBookmark()
		if bm.Type == telemetry.BookmarkHarvestStall && g.snapshotDir != "" {
			g.saveSnapshot(string(bm.Type))
		}
	}

	if err := g.outputManager.WriteTelemetry(stats); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}
	if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
		slog.Error("failed to write perf", "error", err)
	}
}

// saveSnapshot writes the current state to the snapshot directory.
func (g *Game) saveSnapshot(reason string) {
	snapshot := g.Snapshot()
	snapshot.Reason = reason

	path, err := telemetry.SaveSnapshot(snapshot, g.snapshotDir)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}

	slog.Info("snapshot saved", "path", path, "tick", g.tick)
}

// Snapshot copies the complete simulation state. The result shares nothing with
// the game and may be handed to other goroutines.
func (g *Game) Snapshot() *telemetry.Snapshot {
	p := g.progress
	snapshot := &telemetry.Snapshot{
		Version:     telemetry.SnapshotVersion,
		RNGSeed:     g.seed,
		WorldWidth:  g.width,
		WorldHeight: g.height,
		CellSize:    g.harvest.CellSize,
		Tick:        g.tick,
		SimTime:     g.clock.Now().Seconds(),
		Progress: telemetry.ProgressState{
			Stage:              p.Stage,
			Level:              p.Level,
			Credits:            p.Credits,
			Score:              p.Score,
			NextSpawnCost:      p.NextSpawnCost,
			CurrentResources:   p.CurrentResources,
			TotalResources:     p.TotalResources,
			ResourceMultiplier: p.ResourceMultiplier,
			SpeedMultiplier:    p.SpeedMultiplier,
			Phase:              p.Phase.String(),
			Collisions:         g.collisionsOn,
		},
		RallyX:    g.rallyX,
		RallyY:    g.rallyY,
		Entities:  make([]telemetry.EntityState, 0, g.entityCount),
		Resources: make([]telemetry.ResourceState, 0, g.field.Len()),
	}

	query := g.entityFilter.Query()
	for query.Next() {
		pos, vel, body, motion, _, _ := query.Get()
		snapshot.Entities = append(snapshot.Entities, telemetry.EntityState{
			X:         pos.X,
			Y:         pos.Y,
			VelX:      vel.X,
			VelY:      vel.Y,
			Radius:    body.Radius,
			Speed:     motion.Speed,
			BaseSpeed: motion.BaseSpeed,
		})
	}

	g.field.Each(func(r *systems.Resource) {
		snapshot.Resources = append(snapshot.Resources, telemetry.ResourceState{
			X:         r.X,
			Y:         r.Y,
			Health:    r.Health,
			MaxHealth: r.MaxHealth,
			Color:     r.Color,
		})
	})

	return snapshot
}

// PerfStats returns tick timing statistics over the perf window.
func (g *Game) PerfStats() telemetry.PerfStats {
	return g.perfCollector.Stats()
}
