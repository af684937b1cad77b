// Package config loads the service configuration from a YAML file, filling
// unset fields with defaults that match the built-in optimizer tuning.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/brcurves/svenfit/internal/curve"
	"github.com/brcurves/svenfit/internal/opt"
)

// Config is the top-level service configuration.
type Config struct {
	Listen    string          `yaml:"listen"`
	LogLevel  string          `yaml:"logLevel"`
	DayCount  float64         `yaml:"dayCount"`
	Seed      int64           `yaml:"seed"`
	Store     StoreConfig     `yaml:"store"`
	Optimizer OptimizerConfig `yaml:"optimizer"`
}

// StoreConfig selects and configures the persistence backend.
type StoreConfig struct {
	// Backend is "memory" or "postgres".
	Backend string `yaml:"backend"`
	// DSN is the PostgreSQL connection string, required for the postgres
	// backend.
	DSN string `yaml:"dsn"`
}

// OptimizerConfig overrides the search strategy tunables. Zero values fall
// back to the defaults.
type OptimizerConfig struct {
	StepSchedule     []float64 `yaml:"stepSchedule"`
	MaxPassesPerStep int       `yaml:"maxPassesPerStep"`
	PopulationSize   int       `yaml:"populationSize"`
	Generations      int       `yaml:"generations"`
	MutationProb     float64   `yaml:"mutationProb"`
	RandomFraction   float64   `yaml:"randomFraction"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		Listen:   ":8080",
		LogLevel: "info",
		DayCount: curve.DefaultDayCount,
		Store:    StoreConfig{Backend: "memory"},
	}
}

// Load reads a YAML configuration file and merges it over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations that cannot produce a working service.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case "memory":
	case "postgres":
		if c.Store.DSN == "" {
			return fmt.Errorf("store: postgres backend requires a dsn")
		}
	default:
		return fmt.Errorf("store: unknown backend %q", c.Store.Backend)
	}
	if c.DayCount <= 0 {
		return fmt.Errorf("dayCount must be positive, got %g", c.DayCount)
	}
	for i, s := range c.Optimizer.StepSchedule {
		if s <= 0 {
			return fmt.Errorf("optimizer: stepSchedule[%d] must be positive, got %g", i, s)
		}
	}
	if p := c.Optimizer.MutationProb; p < 0 || p > 1 {
		return fmt.Errorf("optimizer: mutationProb must be in [0,1], got %g", p)
	}
	if f := c.Optimizer.RandomFraction; f < 0 || f > 1 {
		return fmt.Errorf("optimizer: randomFraction must be in [0,1], got %g", f)
	}
	return nil
}

// OptimizerSettings materializes the optimizer configuration, applying the
// built-in defaults for any field left unset.
func (c Config) OptimizerSettings() opt.Config {
	cfg := opt.DefaultConfig()
	cfg.DayCount = c.DayCount

	if len(c.Optimizer.StepSchedule) > 0 {
		cfg.StepSchedule = c.Optimizer.StepSchedule
	}
	if c.Optimizer.MaxPassesPerStep > 0 {
		cfg.MaxPassesPerStep = c.Optimizer.MaxPassesPerStep
	}
	if c.Optimizer.PopulationSize > 0 {
		cfg.PopulationSize = c.Optimizer.PopulationSize
	}
	if c.Optimizer.Generations > 0 {
		cfg.Generations = c.Optimizer.Generations
	}
	if c.Optimizer.MutationProb > 0 {
		cfg.MutationProb = c.Optimizer.MutationProb
	}
	if c.Optimizer.RandomFraction > 0 {
		cfg.RandomFraction = c.Optimizer.RandomFraction
	}
	return cfg
}
