package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagepulse/internal/config"
)

func TestGetConfigDefaults(t *testing.T) {
	cfg := config.GetConfig()
	require.NotNil(t, cfg)

	assert.Equal(t, "pagepulse", cfg.AppName)
	assert.Equal(t, config.Development, cfg.Environment)
	assert.Equal(t, 10, cfg.DefaultLimit)
	assert.Equal(t, 2.0, cfg.AnomalyThreshold)
	assert.Equal(t, "logs", cfg.LogsDirectory)
	assert.False(t, cfg.IsProduction())
}

func TestGetConfigIsSingleton(t *testing.T) {
	assert.Same(t, config.GetConfig(), config.GetConfig())
}
