// Package telemetry provides window statistics, stage events, CSV output and snapshots.
package telemetry

import "log/slog"

// StageEvent records one stage reset.
type StageEvent struct {
	Stage     int     `csv:"stage"`
	Tick      int32   `csv:"tick"`
	SimTime   float64 `csv:"sim_time"`
	Food      string  `csv:"food"`
	Generated int     `csv:"resources_generated"`
	Total     int     `csv:"resources_total"`

	OldRadius float64 `csv:"old_radius"`
	NewRadius float64 `csv:"new_radius"`
	OldSpeed  float64 `csv:"old_speed"`
	NewSpeed  float64 `csv:"new_speed"`

	OldEntityCount int `csv:"old_entity_count"`
	NewEntityCount int `csv:"new_entity_count"`

	Score int `csv:"score"`
}

// LogValue implements slog.LogValuer for structured logging.
func (e StageEvent) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("stage", e.Stage),
		slog.Int("tick", int(e.Tick)),
		slog.String("food", e.Food),
		slog.Int("generated", e.Generated),
		slog.Int("total", e.Total),
		slog.Float64("old_radius", e.OldRadius),
		slog.Float64("new_radius", e.NewRadius),
		slog.Float64("old_speed", e.OldSpeed),
		slog.Float64("new_speed", e.NewSpeed),
		slog.Int("old_entity_count", e.OldEntityCount),
		slog.Int("new_entity_count", e.NewEntityCount),
		slog.Int("score", e.Score),
	)
}

// LevelUpEvent records one spawn purchase.
type LevelUpEvent struct {
	Tick     int32
	Level    int
	Spent    int
	Entities int
	NextCost int
	Side     int
}

// LogValue implements slog.LogValuer for structured logging.
func (e LevelUpEvent) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("tick", int(e.Tick)),
		slog.Int("level", e.Level),
		slog.Int("spent", e.Spent),
		slog.Int("entities", e.Entities),
		slog.Int("next_cost", e.NextCost),
		slog.Int("side", e.Side),
	)
}
