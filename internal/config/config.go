// Package config provides YAML-backed tuning for the simulation server.
package config

import (
	"time"

	"run-and-leap/server/internal/predict"
	"run-and-leap/server/internal/sim"
)

// Config aggregates every tunable the server reads at startup.
type Config struct {
	Simulation SimulationConfig `yaml:"simulation"`
	Rules      RulesConfig      `yaml:"rules"`
	Prediction PredictionConfig `yaml:"prediction"`
	Journal    JournalConfig    `yaml:"journal"`
	Storage    StorageConfig    `yaml:"storage"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// SimulationConfig tunes the fixed-step loop.
type SimulationConfig struct {
	TickRate        int `yaml:"tick_rate"`
	CatchupMaxTicks int `yaml:"catchup_max_ticks"`
	CommandCapacity int `yaml:"command_capacity"`
	PerPlayerLimit  int `yaml:"per_player_limit"`

	// HeartbeatTimeoutSeconds evicts players silent for this long.
	// A negative value disables eviction.
	HeartbeatTimeoutSeconds int `yaml:"heartbeat_timeout_seconds"`
}

// HeartbeatTimeout converts the configured eviction window.
func (c Config) HeartbeatTimeout() time.Duration {
	return time.Duration(c.Simulation.HeartbeatTimeoutSeconds) * time.Second
}

// RulesConfig tunes the anti-cheat validation bounds.
type RulesConfig struct {
	AxisTolerance     float32 `yaml:"axis_tolerance"`
	MinDeltaTime      float32 `yaml:"min_delta_time"`
	MaxDeltaTime      float32 `yaml:"max_delta_time"`
	MinJumpStrength   float32 `yaml:"min_jump_strength"`
	MaxJumpStrength   float32 `yaml:"max_jump_strength"`
	JumpCooldownTicks uint64  `yaml:"jump_cooldown_ticks"`
}

// PredictionConfig tunes reconciliation thresholds.
type PredictionConfig struct {
	RunSpeed             float32 `yaml:"run_speed"`
	BlendThreshold       float32 `yaml:"blend_threshold"`
	BlendFactor          float32 `yaml:"blend_factor"`
	SnapThreshold        float32 `yaml:"snap_threshold"`
	ExtrapolationLimitMS int     `yaml:"extrapolation_limit_ms"`
	InterpolationSpeed   float32 `yaml:"interpolation_speed"`
}

// JournalConfig tunes keyframe retention and cadence.
type JournalConfig struct {
	KeyframeCapacity      int `yaml:"keyframe_capacity"`
	MaxAgeSeconds         int `yaml:"max_age_seconds"`
	KeyframeIntervalTicks int `yaml:"keyframe_interval_ticks"`
}

// StorageConfig locates the save-game database.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig selects sinks and the JSON event log destination.
type LoggingConfig struct {
	Sinks    []string `yaml:"sinks"`
	JSONPath string   `yaml:"json_path"`
}

// Default returns the compiled-in configuration.
func Default() Config {
	rules := sim.DefaultRules()
	prediction := predict.DefaultConfig()
	return Config{
		Simulation: SimulationConfig{
			TickRate:                sim.DefaultTickRate,
			CatchupMaxTicks:         4,
			CommandCapacity:         256,
			PerPlayerLimit:          16,
			HeartbeatTimeoutSeconds: 6,
		},
		Rules: RulesConfig{
			AxisTolerance:     rules.AxisTolerance,
			MinDeltaTime:      rules.MinDeltaTime,
			MaxDeltaTime:      rules.MaxDeltaTime,
			MinJumpStrength:   rules.MinJumpStrength,
			MaxJumpStrength:   rules.MaxJumpStrength,
			JumpCooldownTicks: rules.JumpCooldownTicks,
		},
		Prediction: PredictionConfig{
			RunSpeed:             prediction.RunSpeed,
			BlendThreshold:       prediction.BlendThreshold,
			BlendFactor:          prediction.BlendFactor,
			SnapThreshold:        prediction.SnapThreshold,
			ExtrapolationLimitMS: int(prediction.ExtrapolationLimit / time.Millisecond),
			InterpolationSpeed:   prediction.InterpolationSpeed,
		},
		Journal: JournalConfig{
			KeyframeCapacity:      32,
			MaxAgeSeconds:         30,
			KeyframeIntervalTicks: 60,
		},
		Storage: StorageConfig{
			Path: "data/run-and-leap.db",
		},
		Logging: LoggingConfig{
			Sinks: []string{"console"},
		},
	}
}

// SimRules converts the YAML bounds into simulation rules.
func (c Config) SimRules() sim.Rules {
	return sim.Rules{
		AxisTolerance:     c.Rules.AxisTolerance,
		MinDeltaTime:      c.Rules.MinDeltaTime,
		MaxDeltaTime:      c.Rules.MaxDeltaTime,
		MinJumpStrength:   c.Rules.MinJumpStrength,
		MaxJumpStrength:   c.Rules.MaxJumpStrength,
		JumpCooldownTicks: c.Rules.JumpCooldownTicks,
	}
}

// LoopConfig converts the YAML loop tuning.
func (c Config) LoopConfig() sim.LoopConfig {
	return sim.LoopConfig{
		TickRate:        c.Simulation.TickRate,
		CatchupMaxTicks: c.Simulation.CatchupMaxTicks,
		CommandCapacity: c.Simulation.CommandCapacity,
		PerPlayerLimit:  c.Simulation.PerPlayerLimit,
	}
}

// PredictConfig converts the YAML reconciliation tuning.
func (c Config) PredictConfig() predict.Config {
	return predict.Config{
		RunSpeed:           c.Prediction.RunSpeed,
		BlendThreshold:     c.Prediction.BlendThreshold,
		BlendFactor:        c.Prediction.BlendFactor,
		SnapThreshold:      c.Prediction.SnapThreshold,
		ExtrapolationLimit: time.Duration(c.Prediction.ExtrapolationLimitMS) * time.Millisecond,
		InterpolationSpeed: c.Prediction.InterpolationSpeed,
	}
}
