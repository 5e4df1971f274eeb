package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := Default("/test/root")
	cfg.Performance.MaxGoroutines = 1
	cfg.Performance.ParallelFileWorkers = 1
	return cfg
}

func TestValidateAndSetDefaultsAcceptsValidConfig(t *testing.T) {
	cfg := validConfig()

	err := NewValidator().ValidateAndSetDefaults(cfg)
	require.NoError(t, err)
}

func TestValidateAndSetDefaultsFillsAutoDetectFields(t *testing.T) {
	cfg := validConfig()
	cfg.Performance.MaxGoroutines = 0
	cfg.Performance.ParallelFileWorkers = 0

	require.NoError(t, NewValidator().ValidateAndSetDefaults(cfg))

	assert.Greater(t, cfg.Performance.MaxGoroutines, 0)
	assert.Greater(t, cfg.Performance.ParallelFileWorkers, 0)
}

func TestValidateAndSetDefaultsRejectsEmptyRoot(t *testing.T) {
	cfg := validConfig()
	cfg.Project.Root = ""

	err := NewValidator().ValidateAndSetDefaults(cfg)
	assert.Error(t, err)
}

func TestValidateAndSetDefaultsRejectsZeroMaxFileCount(t *testing.T) {
	cfg := validConfig()
	cfg.Enumerate.MaxFileCount = 0

	err := NewValidator().ValidateAndSetDefaults(cfg)
	assert.Error(t, err)
}

func TestValidateAndSetDefaultsRejectsNegativeWorkers(t *testing.T) {
	cfg := validConfig()
	cfg.Performance.ParallelFileWorkers = -1

	err := NewValidator().ValidateAndSetDefaults(cfg)
	assert.Error(t, err)
}

func TestValidateAndSetDefaultsRejectsZeroTopN(t *testing.T) {
	cfg := validConfig()
	cfg.Scoring.TopN = 0

	err := NewValidator().ValidateAndSetDefaults(cfg)
	assert.Error(t, err)
}

func TestValidateConfigConvenienceWrapper(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, ValidateConfig(cfg))
}
