package internal

import (
	"fmt"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// Config declares the lanes of the scheduler and where actors land by default.
type Config struct {
	// Lanes are drained in declared order; earlier lanes are causally earlier.
	Lanes []string `yaml:"lanes"`

	// DefaultLane receives deliveries of listeners and actors that do not name one.
	DefaultLane string `yaml:"default_lane"`

	// EffectLane receives effect re-runs.
	EffectLane string `yaml:"effect_lane"`

	// ClosingLane is the always-active lane for teardown notifications.
	// It must not be one of Lanes.
	ClosingLane string `yaml:"closing_lane"`

	LogLevel string `yaml:"log_level"`
}

func DefaultConfig() Config {
	return Config{
		Lanes:       []string{"model", "render", "user"},
		DefaultLane: "model",
		EffectLane:  "user",
		ClosingLane: "close",
		LogLevel:    "info",
	}
}

// ParseConfig reads a yaml document on top of DefaultConfig.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	return ParseConfig(data)
}

func (c Config) Validate() error {
	if len(c.Lanes) == 0 {
		return fmt.Errorf("%w: at least one lane is required", ErrInvalidConfig)
	}

	seen := make(map[string]bool, len(c.Lanes))
	for _, lane := range c.Lanes {
		if lane == "" {
			return fmt.Errorf("%w: empty lane name", ErrInvalidConfig)
		}
		if seen[lane] {
			return fmt.Errorf("%w: duplicate lane %q", ErrInvalidConfig, lane)
		}
		seen[lane] = true
	}

	if !seen[c.DefaultLane] {
		return fmt.Errorf("%w: default lane %q is not declared", ErrInvalidConfig, c.DefaultLane)
	}
	if !seen[c.EffectLane] {
		return fmt.Errorf("%w: effect lane %q is not declared", ErrInvalidConfig, c.EffectLane)
	}

	if c.ClosingLane == "" {
		return fmt.Errorf("%w: closing lane is required", ErrInvalidConfig)
	}
	if slices.Contains(c.Lanes, c.ClosingLane) {
		return fmt.Errorf("%w: closing lane %q must not be a regular lane", ErrInvalidConfig, c.ClosingLane)
	}

	if _, err := c.Level(); err != nil {
		return err
	}

	return nil
}

// Level converts LogLevel into a slog level. An empty level means info.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}

	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("%w: log level %q", ErrInvalidConfig, c.LogLevel)
	}

	return level, nil
}
