// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen      ScreenConfig      `yaml:"screen"`
	World       WorldConfig       `yaml:"world"`
	Spatial     SpatialConfig     `yaml:"spatial"`
	Entity      EntityConfig      `yaml:"entity"`
	Steering    SteeringConfig    `yaml:"steering"`
	Harvest     HarvestConfig     `yaml:"harvest"`
	Collision   CollisionConfig   `yaml:"collision"`
	Resource    ResourceConfig    `yaml:"resource"`
	Progression ProgressionConfig `yaml:"progression"`
	Spawn       SpawnConfig       `yaml:"spawn"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
	Stream      StreamConfig      `yaml:"stream"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// WorldConfig holds simulation world dimensions.
type WorldConfig struct {
	Width  int `yaml:"width"`  // World width in world units (0 = use screen width)
	Height int `yaml:"height"` // World height in world units (0 = use screen height)
}

// SpatialConfig holds quadtree parameters.
type SpatialConfig struct {
	Capacity int `yaml:"capacity"` // Items per node before subdividing
}

// EntityConfig holds the starting entity archetype.
type EntityConfig struct {
	Radius          float64 `yaml:"radius"`
	RandomRadius    bool    `yaml:"random_radius"`
	BaseSpeed       float64 `yaml:"base_speed"`
	RandomBaseSpeed bool    `yaml:"random_base_speed"`
	MinBaseSpeed    float64 `yaml:"min_base_speed"` // Floor of the randomized base speed
	SpawnJitter     float64 `yaml:"spawn_jitter"`   // Half-width of the spawn position jitter box
	ResetRadius     float64 `yaml:"reset_radius"`   // Radius of entities respawned on stage reset
}

// SteeringConfig holds movement parameters.
type SteeringConfig struct {
	Force          float64 `yaml:"force"`           // Force = Force * baseSpeed * multiplier
	ArriveDistance float64 `yaml:"arrive_distance"` // No steering inside this distance
	Damping        float64 `yaml:"damping"`         // Velocity multiplier per tick
}

// HarvestConfig holds resource interaction parameters.
type HarvestConfig struct {
	CellSize       float64 `yaml:"cell_size"`
	BounceStrength float64 `yaml:"bounce_strength"`
	Clearance      float64 `yaml:"clearance"` // Minimum distance from a resource center beyond the radius
	CooldownMS     float64 `yaml:"cooldown_ms"`
}

// CollisionConfig holds entity collision parameters.
type CollisionConfig struct {
	Enabled     bool    `yaml:"enabled"`
	QueryFactor float64 `yaml:"query_factor"`
}

// ResourceConfig holds resource field generation parameters.
type ResourceConfig struct {
	Noise            string     `yaml:"noise"` // simplex | perlin
	NoiseScale       float64    `yaml:"noise_scale"`
	BorderMargin     int        `yaml:"border_margin"`
	EmptyRadius      float64    `yaml:"empty_radius"`
	ScarcePerStage   int        `yaml:"scarce_per_stage"`
	AbundantPerStage int        `yaml:"abundant_per_stage"`
	ScarceHealth     int        `yaml:"scarce_health"`
	AbundantHealth   int        `yaml:"abundant_health"`
	FormationHealth  int        `yaml:"formation_health"`
	Darken           float64    `yaml:"darken"`
	ColorJitter      int        `yaml:"color_jitter"`
	Aggressiveness   float64    `yaml:"aggressiveness"`
	InitialTotal     int        `yaml:"initial_total"`
	StartColor       [3]uint8   `yaml:"start_color"`
	EndColor         [3]uint8   `yaml:"end_color"`
	Palette          [][3]uint8 `yaml:"palette"`
}

// ProgressionConfig holds economy and stage parameters.
type ProgressionConfig struct {
	InitialSpawnCost   int     `yaml:"initial_spawn_cost"`
	CreditsPerEntity   int     `yaml:"credits_per_entity"`
	DepletionDelay     float64 `yaml:"depletion_delay"`
	DepletionSpeed     float64 `yaml:"depletion_speed"`
	RadiusScale        float64 `yaml:"radius_scale"`
	SpeedScale         float64 `yaml:"speed_scale"`
	InitialEntityCount int     `yaml:"initial_entity_count"`
	EntityCountStep    int     `yaml:"entity_count_step"`
	SpeedAlphaChance   float64 `yaml:"speed_alpha_chance"`
}

// SpawnConfig holds spawn scheduling parameters.
type SpawnConfig struct {
	InitialInterval   float64 `yaml:"initial_interval"`
	DispersalRadius   float64 `yaml:"dispersal_radius"`
	DispersalDuration float64 `yaml:"dispersal_duration"`
	GroupIntervalMin  float64 `yaml:"group_interval_min"`
	GroupIntervalMax  float64 `yaml:"group_interval_max"`
	EdgeDistanceMin   float64 `yaml:"edge_distance_min"`
	EdgeDistanceMax   float64 `yaml:"edge_distance_max"`
	HoldBatch         int     `yaml:"hold_batch"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
	BookmarkHistory     int     `yaml:"bookmark_history"`
}

// StreamConfig holds spectator stream parameters.
type StreamConfig struct {
	EveryTicks  int `yaml:"every_ticks"`
	MaxEntities int `yaml:"max_entities"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	WorldW            float64       // Effective world width
	WorldH            float64       // Effective world height
	HarvestCooldown   time.Duration // Harvest.CooldownMS as a duration
	DepletionDelay    time.Duration
	InitialInterval   time.Duration
	DispersalDuration time.Duration
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// validate rejects values the simulation cannot run with.
func (c *Config) validate() error {
	switch {
	case c.Spatial.Capacity < 1:
		return fmt.Errorf("spatial.capacity must be >= 1, got %d", c.Spatial.Capacity)
	case c.Harvest.CellSize <= 0:
		return fmt.Errorf("harvest.cell_size must be > 0, got %v", c.Harvest.CellSize)
	case c.Entity.Radius <= 0:
		return fmt.Errorf("entity.radius must be > 0, got %v", c.Entity.Radius)
	case c.Progression.InitialSpawnCost < 1:
		return fmt.Errorf("progression.initial_spawn_cost must be >= 1, got %d", c.Progression.InitialSpawnCost)
	case c.Progression.CreditsPerEntity < 1:
		return fmt.Errorf("progression.credits_per_entity must be >= 1, got %d", c.Progression.CreditsPerEntity)
	case c.Resource.Noise != "simplex" && c.Resource.Noise != "perlin":
		return fmt.Errorf("resource.noise must be simplex or perlin, got %q", c.Resource.Noise)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	worldW := c.World.Width
	if worldW == 0 {
		worldW = c.Screen.Width
	}
	worldH := c.World.Height
	if worldH == 0 {
		worldH = c.Screen.Height
	}
	c.Derived.WorldW = float64(worldW)
	c.Derived.WorldH = float64(worldH)

	c.Derived.HarvestCooldown = time.Duration(c.Harvest.CooldownMS * float64(time.Millisecond))
	c.Derived.DepletionDelay = seconds(c.Progression.DepletionDelay)
	c.Derived.InitialInterval = seconds(c.Spawn.InitialInterval)
	c.Derived.DispersalDuration = seconds(c.Spawn.DispersalDuration)

	if len(c.Resource.Palette) == 0 {
		c.Resource.Palette = [][3]uint8{c.Resource.EndColor}
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
