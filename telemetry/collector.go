package telemetry

// WorldState is the progression summary sampled when a window is flushed.
type WorldState struct {
	Stage          int
	Level          int
	Phase          string
	Entities       int
	Resources      int
	TotalResources int
	Credits        int
	Score          int
}

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float64

	// Current window tracking
	windowStartTick int32

	// Event counters for current window
	harvests    int
	depleted    int
	collisions  int
	spawned     int
	levelUps    int
	stageResets int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec float64, dt float64) *Collector {
	ticksPerWindow := int32(windowDurationSec / dt)
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// RecordHarvest records one unit of health taken from a resource.
func (c *Collector) RecordHarvest(depleted bool) {
	c.harvests++
	if depleted {
		c.depleted++
	}
}

// RecordCollisions records resolved entity contacts.
func (c *Collector) RecordCollisions(n int) {
	c.collisions += n
}

// RecordSpawn records n entities entering the world.
func (c *Collector) RecordSpawn(n int) {
	c.spawned += n
}

// RecordLevelUp records a spawn purchase.
func (c *Collector) RecordLevelUp() {
	c.levelUps++
}

// RecordStageReset records a stage transition.
func (c *Collector) RecordStageReset() {
	c.stageResets++
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
// speeds holds the current speed of every entity.
func (c *Collector) Flush(currentTick int32, speeds []float64, state WorldState) WindowStats {
	dist := ComputeDistribution(speeds)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,

		Stage:          state.Stage,
		Level:          state.Level,
		Phase:          state.Phase,
		Entities:       state.Entities,
		Resources:      state.Resources,
		TotalResources: state.TotalResources,
		Credits:        state.Credits,
		Score:          state.Score,

		Harvests:    c.harvests,
		Depleted:    c.depleted,
		Collisions:  c.collisions,
		Spawned:     c.spawned,
		LevelUps:    c.levelUps,
		StageResets: c.stageResets,

		SpeedMean: dist.Mean,
		SpeedStd:  dist.Std,
		SpeedP10:  dist.P10,
		SpeedP50:  dist.P50,
		SpeedP90:  dist.P90,
	}

	c.windowStartTick = currentTick
	c.harvests = 0
	c.depleted = 0
	c.collisions = 0
	c.spawned = 0
	c.levelUps = 0
	c.stageResets = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
