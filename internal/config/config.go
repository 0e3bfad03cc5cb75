package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/san-kum/pathreplay/internal/replay"
	"gopkg.in/yaml.v3"
)

const (
	DefaultGridSize      = 20
	DefaultAlgorithm     = "astar"
	DefaultObstacleCount = 40
	DefaultProviderURL   = "http://localhost:8000/generate-map"
	DefaultTimeout       = 10 * time.Second
	DefaultDataDir       = ".pathreplay"
	DefaultListen        = ":8080"
	DefaultLogLevel      = "info"
	DefaultSessionTTL    = 10 * time.Minute

	// NormalProfile is used for any algorithm without its own pacing entry.
	NormalProfile = "normal"
)

var ErrInvalid = errors.New("config: invalid value")

type Config struct {
	Provider      ProviderConfig          `yaml:"provider"`
	GridSize      int                     `yaml:"grid_size"`
	Algorithm     string                  `yaml:"algorithm"`
	ObstacleCount int                     `yaml:"obstacle_count"`
	Pacing        map[string]PacingConfig `yaml:"pacing"`
	DataDir       string                  `yaml:"data_dir"`
	Listen        string                  `yaml:"listen"`
	LogLevel      string                  `yaml:"log_level"`
	SessionTTL    time.Duration           `yaml:"session_ttl"`
}

type ProviderConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// PacingConfig is the delay between search ticks and between drawn path
// cells.
type PacingConfig struct {
	Step     time.Duration `yaml:"step"`
	PathCell time.Duration `yaml:"path_cell"`
}

func DefaultPacing() map[string]PacingConfig {
	return map[string]PacingConfig{
		NormalProfile: {Step: 60 * time.Millisecond, PathCell: 120 * time.Millisecond},
		"astar":       {Step: 20 * time.Millisecond, PathCell: 80 * time.Millisecond},
	}
}

func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderConfig{
			URL:     DefaultProviderURL,
			Timeout: DefaultTimeout,
		},
		GridSize:      DefaultGridSize,
		Algorithm:     DefaultAlgorithm,
		ObstacleCount: DefaultObstacleCount,
		Pacing:        DefaultPacing(),
		DataDir:       DefaultDataDir,
		Listen:        DefaultListen,
		LogLevel:      DefaultLogLevel,
		SessionTTL:    DefaultSessionTTL,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if _, ok := cfg.Pacing[NormalProfile]; !ok {
		cfg.Pacing[NormalProfile] = DefaultPacing()[NormalProfile]
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.GridSize <= 1 {
		return fmt.Errorf("%w: grid_size must be greater than 1, got %d", ErrInvalid, c.GridSize)
	}
	if c.ObstacleCount < 0 {
		return fmt.Errorf("%w: obstacle_count must not be negative, got %d", ErrInvalid, c.ObstacleCount)
	}
	if free := c.GridSize*c.GridSize - 2; c.ObstacleCount > free {
		return fmt.Errorf("%w: obstacle_count %d exceeds %d free cells", ErrInvalid, c.ObstacleCount, free)
	}
	for name, p := range c.Pacing {
		if p.Step < 0 || p.PathCell < 0 {
			return fmt.Errorf("%w: pacing %q has a negative delay", ErrInvalid, name)
		}
	}
	if c.Provider.Timeout < 0 {
		return fmt.Errorf("%w: provider timeout must not be negative", ErrInvalid)
	}
	return nil
}

// PacingFor returns the play pacing for an algorithm name, falling back to
// the normal profile.
func (c *Config) PacingFor(algorithm string) replay.Pacing {
	p, ok := c.Pacing[strings.ToLower(algorithm)]
	if !ok {
		p = c.Pacing[NormalProfile]
	}
	return replay.Pacing{Step: p.Step, PathCell: p.PathCell}
}

func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// ApplyPreset copies the named preset's algorithm, obstacle count and grid
// size onto c.
func (c *Config) ApplyPreset(name string) error {
	p := GetPreset(name)
	if p == nil {
		return fmt.Errorf("unknown preset: %s (available: %v)", name, ListPresets())
	}
	c.Algorithm = p.Algorithm
	c.ObstacleCount = p.ObstacleCount
	c.GridSize = p.GridSize
	return nil
}
