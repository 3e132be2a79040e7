package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Progression at window end
	Stage          int    `csv:"stage"`
	Level          int    `csv:"level"`
	Phase          string `csv:"phase"`
	Entities       int    `csv:"entities"`
	Resources      int    `csv:"resources"`
	TotalResources int    `csv:"total_resources"`
	Credits        int    `csv:"credits"`
	Score          int    `csv:"score"`

	// Events during window
	Harvests    int `csv:"harvests"`
	Depleted    int `csv:"depleted"`
	Collisions  int `csv:"collisions"`
	Spawned     int `csv:"spawned"`
	LevelUps    int `csv:"level_ups"`
	StageResets int `csv:"stage_resets"`

	// Entity speed distribution (sampled at window end)
	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`
	SpeedP10  float64 `csv:"speed_p10"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`
}

// Distribution is a summary of a sample.
type Distribution struct {
	Mean, Std     float64
	P10, P50, P90 float64
}

// ComputeDistribution returns mean, sample standard deviation and empirical
// quantiles of values. values is not modified.
func ComputeDistribution(values []float64) Distribution {
	n := len(values)
	if n == 0 {
		return Distribution{}
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	var d Distribution
	if n == 1 {
		d.Mean = sorted[0]
	} else {
		d.Mean, d.Std = stat.MeanStdDev(sorted, nil)
	}
	d.P10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
	d.P50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	d.P90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)
	return d
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("stage", s.Stage),
		slog.Int("level", s.Level),
		slog.String("phase", s.Phase),
		slog.Int("entities", s.Entities),
		slog.Int("resources", s.Resources),
		slog.Int("total_resources", s.TotalResources),
		slog.Int("credits", s.Credits),
		slog.Int("score", s.Score),
		slog.Int("harvests", s.Harvests),
		slog.Int("depleted", s.Depleted),
		slog.Int("collisions", s.Collisions),
		slog.Int("spawned", s.Spawned),
		slog.Int("level_ups", s.LevelUps),
		slog.Int("stage_resets", s.StageResets),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_std", s.SpeedStd),
		slog.Float64("speed_p10", s.SpeedP10),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"stage", s.Stage,
		"level", s.Level,
		"phase", s.Phase,
		"entities", s.Entities,
		"resources", s.Resources,
		"total_resources", s.TotalResources,
		"credits", s.Credits,
		"score", s.Score,
		"harvests", s.Harvests,
		"depleted", s.Depleted,
		"collisions", s.Collisions,
		"spawned", s.Spawned,
		"level_ups", s.LevelUps,
		"stage_resets", s.StageResets,
		"speed_mean", s.SpeedMean,
		"speed_p50", s.SpeedP50,
		"speed_p90", s.SpeedP90,
	)
}
