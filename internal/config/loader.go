package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultSearchPaths lists the locations probed when no explicit path is
// given, in priority order.
var DefaultSearchPaths = []string{
	"server.yaml",
	"configs/server.yaml",
}

// Load reads the configuration at path. An empty path walks
// DefaultSearchPaths and falls back to Default when no file exists.
// A file that exists but fails to parse is an error, never a silent
// fallback.
func Load(path string) (Config, error) {
	if path != "" {
		return loadFile(path)
	}
	for _, candidate := range DefaultSearchPaths {
		cfg, err := loadFile(candidate)
		if err == nil {
			return cfg, nil
		}
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return Config{}, err
	}
	return Default(), nil
}

func loadFile(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.Simulation.TickRate <= 0 {
		return fmt.Errorf("simulation.tick_rate must be positive, got %d", c.Simulation.TickRate)
	}
	if c.Rules.MinDeltaTime >= c.Rules.MaxDeltaTime {
		return fmt.Errorf("rules delta window inverted: min %v >= max %v", c.Rules.MinDeltaTime, c.Rules.MaxDeltaTime)
	}
	if c.Rules.MinJumpStrength >= c.Rules.MaxJumpStrength {
		return fmt.Errorf("rules jump strength window inverted: min %v >= max %v", c.Rules.MinJumpStrength, c.Rules.MaxJumpStrength)
	}
	if c.Journal.KeyframeCapacity <= 0 {
		return fmt.Errorf("journal.keyframe_capacity must be positive, got %d", c.Journal.KeyframeCapacity)
	}
	if c.Journal.KeyframeIntervalTicks <= 0 {
		return fmt.Errorf("journal.keyframe_interval_ticks must be positive, got %d", c.Journal.KeyframeIntervalTicks)
	}
	return nil
}
