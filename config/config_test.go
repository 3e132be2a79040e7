package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Spatial.Capacity != 4 {
		t.Errorf("spatial.capacity = %d, want 4", cfg.Spatial.Capacity)
	}
	if cfg.Progression.InitialSpawnCost != 250 {
		t.Errorf("initial_spawn_cost = %d, want 250", cfg.Progression.InitialSpawnCost)
	}
	if cfg.Harvest.CellSize != 8 {
		t.Errorf("cell_size = %v, want 8", cfg.Harvest.CellSize)
	}
	if len(cfg.Resource.Palette) != 6 {
		t.Errorf("palette has %d colors, want 6", len(cfg.Resource.Palette))
	}
	if cfg.Resource.EndColor != [3]uint8{0, 0, 255} {
		t.Errorf("end_color = %v, want [0 0 255]", cfg.Resource.EndColor)
	}

	// World falls back to screen size
	if cfg.Derived.WorldW != 1280 || cfg.Derived.WorldH != 800 {
		t.Errorf("derived world = %vx%v, want 1280x800", cfg.Derived.WorldW, cfg.Derived.WorldH)
	}
	if cfg.Derived.DepletionDelay != 5*time.Second {
		t.Errorf("depletion delay = %v, want 5s", cfg.Derived.DepletionDelay)
	}
	if cfg.Derived.HarvestCooldown != time.Millisecond {
		t.Errorf("harvest cooldown = %v, want 1ms", cfg.Derived.HarvestCooldown)
	}
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	overlay := []byte("world:\n  width: 640\n  height: 480\nresource:\n  noise: perlin\n")
	if err := os.WriteFile(path, overlay, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Derived.WorldW != 640 || cfg.Derived.WorldH != 480 {
		t.Errorf("derived world = %vx%v, want 640x480", cfg.Derived.WorldW, cfg.Derived.WorldH)
	}
	if cfg.Resource.Noise != "perlin" {
		t.Errorf("noise = %q, want perlin", cfg.Resource.Noise)
	}
	// Untouched keys keep their defaults
	if cfg.Spatial.Capacity != 4 {
		t.Errorf("spatial.capacity = %d, want default 4", cfg.Spatial.Capacity)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		overlay string
	}{
		{"zero capacity", "spatial:\n  capacity: 0\n"},
		{"zero cell size", "harvest:\n  cell_size: 0\n"},
		{"unknown noise", "resource:\n  noise: worley\n"},
		{"zero spawn cost", "progression:\n  initial_spawn_cost: 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.overlay), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Spatial.Capacity = 9

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load written config: %v", err)
	}
	if loaded.Spatial.Capacity != 9 {
		t.Errorf("capacity = %d, want 9", loaded.Spatial.Capacity)
	}
}
