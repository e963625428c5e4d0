package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "eagle.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeConfig(t, `
eagle:
  gravity: 2.0
  negative_gravity: 0.01
  visibility: 1.5
  perturbation: 0.2
  penalize_factor: 0.8
  pool_size: 40
  batch_size: 8
  seed: 7
optimizer:
  max_evaluations: 5000
logging:
  level: DEBUG
store:
  path: trials.db
`)

	config, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2.0, config.Eagle.Gravity)
	assert.Equal(t, 0.01, config.Eagle.NegativeGravity)
	assert.Equal(t, 40, config.Eagle.PoolSize)
	assert.Equal(t, int64(7), config.Eagle.Seed)
	assert.Equal(t, 5000, config.Optimizer.MaxEvaluations)
	assert.Equal(t, "DEBUG", config.Logging.Level)
	assert.Equal(t, "trials.db", config.Store.Path)

	eagleConfig := config.EagleConfig()
	assert.Equal(t, 2.0, eagleConfig.Gravity)
	assert.Equal(t, 8, eagleConfig.BatchSize)
}

func TestLoadDefaultsForUnsetFields(t *testing.T) {
	path := writeConfig(t, `
eagle:
  pool_size: 25
`)

	config, err := Load(path)
	require.NoError(t, err)

	// Unset fields stay zero and get backfilled by the strategy; document
	// level defaults come from DefaultConfig.
	assert.Equal(t, 25, config.Eagle.PoolSize)
	assert.Zero(t, config.Eagle.Gravity)
	assert.Equal(t, 1000, config.Optimizer.MaxEvaluations)
	assert.Equal(t, "INFO", config.Logging.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	assert.Error(t, err)
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfig(t, "eagle: [not a map")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"negative gravity", "eagle:\n  gravity: -1\n"},
		{"penalize factor at one", "eagle:\n  penalize_factor: 1.0\n"},
		{"negative pool size", "eagle:\n  pool_size: -5\n"},
		{"zero budget", "optimizer:\n  max_evaluations: 0\n"},
		{"bad log level", "logging:\n  level: LOUD\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestValidationErrorMessages(t *testing.T) {
	config := DefaultConfig()
	config.Eagle.Gravity = -2

	err := Validate(config)
	require.Error(t, err)

	verrs, ok := err.(ValidationErrors)
	require.True(t, ok)
	require.NotEmpty(t, verrs)
	assert.Contains(t, verrs.Error(), "validation failed")
	assert.Contains(t, verrs[0].Field, "Gravity")
}
