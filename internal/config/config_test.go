package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.GridSize != 20 {
		t.Errorf("expected grid size 20, got %d", cfg.GridSize)
	}
	if cfg.Algorithm != "astar" {
		t.Errorf("expected algorithm astar, got %s", cfg.Algorithm)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestPacingFor(t *testing.T) {
	cfg := DefaultConfig()

	fast := cfg.PacingFor("astar")
	normal := cfg.PacingFor("dijkstra")
	if fast.Step >= normal.Step {
		t.Errorf("expected astar to be faster: %v vs %v", fast.Step, normal.Step)
	}
	if normal != cfg.PacingFor("jps") {
		t.Error("expected jps to fall back to the normal profile")
	}
	if normal.PathCell <= normal.Step {
		t.Error("expected path cells to be slower than search ticks")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
grid_size: 50
algorithm: jps
obstacle_count: 300
provider:
  url: http://example.test/map
  timeout: 3s
pacing:
  jps:
    step: 5ms
    path_cell: 15ms
log_level: debug
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.GridSize != 50 || cfg.Algorithm != "jps" || cfg.ObstacleCount != 300 {
		t.Errorf("unexpected values %+v", cfg)
	}
	if cfg.Provider.Timeout != 3*time.Second {
		t.Errorf("expected 3s timeout, got %v", cfg.Provider.Timeout)
	}
	if p := cfg.PacingFor("jps"); p.Step != 5*time.Millisecond || p.PathCell != 15*time.Millisecond {
		t.Errorf("unexpected jps pacing %+v", p)
	}
	if p := cfg.PacingFor("dijkstra"); p.Step != 60*time.Millisecond {
		t.Errorf("expected normal fallback to survive a custom pacing map, got %+v", p)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("expected debug level, got %v", cfg.SlogLevel())
	}
	if cfg.DataDir != DefaultDataDir {
		t.Errorf("expected default data dir, got %s", cfg.DataDir)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	cfg.ObstacleCount = 77

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got.ObstacleCount != 77 {
		t.Errorf("expected 77 obstacles, got %d", got.ObstacleCount)
	}
	if got.PacingFor("astar") != cfg.PacingFor("astar") {
		t.Error("pacing did not survive a save")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"tiny grid", func(c *Config) { c.GridSize = 1 }},
		{"negative obstacles", func(c *Config) { c.ObstacleCount = -1 }},
		{"too many obstacles", func(c *Config) { c.GridSize = 3; c.ObstacleCount = 8 }},
		{"negative pacing", func(c *Config) { c.Pacing["astar"] = PacingConfig{Step: -time.Millisecond} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestGetPreset(t *testing.T) {
	p := GetPreset("maze")
	if p == nil {
		t.Fatal("expected preset, got nil")
	}
	if p.Algorithm != "jps" {
		t.Errorf("expected jps, got %s", p.Algorithm)
	}
	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestApplyPreset(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.ApplyPreset("large"); err != nil {
		t.Fatal(err)
	}
	if cfg.GridSize != 50 || cfg.ObstacleCount != 600 {
		t.Errorf("preset not applied: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("every preset should validate: %v", err)
	}
	if err := cfg.ApplyPreset("nope"); err == nil {
		t.Error("expected error for unknown preset")
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	if len(names) != len(Presets) {
		t.Errorf("expected %d presets, got %d", len(Presets), len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Error("expected sorted preset names")
		}
	}
}
