package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the simulation state after a tick.
type Snapshot struct {
	Version int    `json:"version"`
	RNGSeed int64  `json:"rng_seed"`
	Reason  string `json:"reason,omitempty"`

	WorldWidth  float64 `json:"world_width"`
	WorldHeight float64 `json:"world_height"`
	CellSize    float64 `json:"cell_size"`

	Tick     int32         `json:"tick"`
	SimTime  float64       `json:"sim_time"`
	Progress ProgressState `json:"progress"`

	RallyX float64 `json:"rally_x"`
	RallyY float64 `json:"rally_y"`

	Entities  []EntityState   `json:"entities"`
	Resources []ResourceState `json:"resources"`
}

// ProgressState is the progression portion of a snapshot.
type ProgressState struct {
	Stage              int     `json:"stage"`
	Level              int     `json:"level"`
	Credits            int     `json:"credits"`
	Score              int     `json:"score"`
	NextSpawnCost      int     `json:"next_spawn_cost"`
	CurrentResources   int     `json:"current_resources"`
	TotalResources     int     `json:"total_resources"`
	ResourceMultiplier float64 `json:"resource_multiplier"`
	SpeedMultiplier    float64 `json:"speed_multiplier"`
	Phase              string  `json:"phase"`
	Collisions         bool    `json:"collisions"`
}

// EntityState holds one entity's state.
type EntityState struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	VelX      float64 `json:"vel_x"`
	VelY      float64 `json:"vel_y"`
	Radius    float64 `json:"radius"`
	Speed     float64 `json:"speed"`
	BaseSpeed float64 `json:"base_speed"`
}

// ResourceState holds one resource cell.
type ResourceState struct {
	X         int      `json:"x"`
	Y         int      `json:"y"`
	Health    int      `json:"health"`
	MaxHealth int      `json:"max_health"`
	Color     [3]uint8 `json:"color"`
}

// SaveSnapshot writes a snapshot to dir and returns the file path.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_%d", snapshot.Tick)
	if snapshot.Reason != "" {
		name += "_" + strings.ReplaceAll(snapshot.Reason, " ", "_")
	}
	path := filepath.Join(dir, name+".json")

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snapshot.Version, SnapshotVersion)
	}
	return &snapshot, nil
}
