// Package config loads and validates optimizer configuration from YAML
// files, producing ready-to-use strategy and optimizer settings.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/eagleopt/eagle/pkg/errors"
	"github.com/eagleopt/eagle/pkg/optimizers"
)

// EagleSettings mirrors optimizers.EagleConfig with YAML tags and
// declarative validation. Zero values mean "use the default".
type EagleSettings struct {
	Gravity                float64 `yaml:"gravity" validate:"gte=0"`
	NegativeGravity        float64 `yaml:"negative_gravity" validate:"gte=0"`
	Visibility             float64 `yaml:"visibility" validate:"gte=0"`
	Perturbation           float64 `yaml:"perturbation" validate:"gte=0"`
	PenalizeFactor         float64 `yaml:"penalize_factor" validate:"gte=0,lt=1"`
	PerturbationLowerBound float64 `yaml:"perturbation_lower_bound" validate:"gte=0"`
	PoolSize               int     `yaml:"pool_size" validate:"gte=0"`
	BatchSize              int     `yaml:"batch_size" validate:"gte=0"`
	Seed                   int64   `yaml:"seed"`
}

// OptimizerSettings configures the driving loop.
type OptimizerSettings struct {
	MaxEvaluations int `yaml:"max_evaluations" validate:"gt=0"`
}

// LoggingSettings configures the process logger.
type LoggingSettings struct {
	Level string `yaml:"level" validate:"omitempty,oneof=DEBUG INFO WARN ERROR FATAL"`
}

// StoreSettings configures the optional trial history store.
type StoreSettings struct {
	Path string `yaml:"path"`
}

// Config is the root configuration document.
type Config struct {
	Eagle     EagleSettings     `yaml:"eagle"`
	Optimizer OptimizerSettings `yaml:"optimizer"`
	Logging   LoggingSettings   `yaml:"logging"`
	Store     StoreSettings     `yaml:"store"`
}

// DefaultConfig returns a configuration with the stock settings.
func DefaultConfig() *Config {
	return &Config{
		Optimizer: OptimizerSettings{MaxEvaluations: 1000},
		Logging:   LoggingSettings{Level: "INFO"},
	}
}

// Load reads, parses and validates a YAML configuration file. Fields left
// unset fall back to defaults downstream.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ResourceNotFound, "reading config file")
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.Wrap(err, errors.InvalidConfig, "parsing config file")
	}

	if err := Validate(config); err != nil {
		return nil, err
	}
	return config, nil
}

// EagleConfig converts the settings into the strategy's config type.
func (c *Config) EagleConfig() optimizers.EagleConfig {
	return optimizers.EagleConfig{
		Gravity:                c.Eagle.Gravity,
		NegativeGravity:        c.Eagle.NegativeGravity,
		Visibility:             c.Eagle.Visibility,
		Perturbation:           c.Eagle.Perturbation,
		PenalizeFactor:         c.Eagle.PenalizeFactor,
		PerturbationLowerBound: c.Eagle.PerturbationLowerBound,
		PoolSize:               c.Eagle.PoolSize,
		BatchSize:              c.Eagle.BatchSize,
		Seed:                   c.Eagle.Seed,
	}
}
