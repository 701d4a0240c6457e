package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/scavengarr/scavengarr/internal/resources"
)

func TestAutoTuneBounds(t *testing.T) {
	levels := []resources.DetectedResources{
		{CPUCores: 1, MemoryBytes: 2 << 30},
		{CPUCores: 2, MemoryBytes: 4 << 30},
		{CPUCores: 4, MemoryBytes: 8 << 30},
		{CPUCores: 8, MemoryBytes: 16 << 30},
		{CPUCores: 16, MemoryBytes: 32 << 30},
	}

	var prevPlugins, prevPW, prevProbe, prevValidation int
	for _, res := range levels {
		cfg := AppConfig{}
		AutoTune(&cfg, res)

		assert.GreaterOrEqual(t, cfg.Stremio.MaxConcurrentPlugins, 2)
		assert.LessOrEqual(t, cfg.Stremio.MaxConcurrentPlugins, 30)
		assert.GreaterOrEqual(t, cfg.Stremio.MaxConcurrentPlaywright, 1)
		assert.LessOrEqual(t, cfg.Stremio.MaxConcurrentPlaywright, 10)
		assert.GreaterOrEqual(t, cfg.Stremio.ProbeConcurrency, 4)
		assert.GreaterOrEqual(t, cfg.ValidationMaxConcurrent, 5)

		assert.GreaterOrEqual(t, cfg.Stremio.MaxConcurrentPlugins, prevPlugins)
		assert.GreaterOrEqual(t, cfg.Stremio.MaxConcurrentPlaywright, prevPW)
		assert.GreaterOrEqual(t, cfg.Stremio.ProbeConcurrency, prevProbe)
		assert.GreaterOrEqual(t, cfg.ValidationMaxConcurrent, prevValidation)

		prevPlugins = cfg.Stremio.MaxConcurrentPlugins
		prevPW = cfg.Stremio.MaxConcurrentPlaywright
		prevProbe = cfg.Stremio.ProbeConcurrency
		prevValidation = cfg.ValidationMaxConcurrent
	}
}

func TestAutoTuneCappedOnLargeHosts(t *testing.T) {
	cfg := AppConfig{}
	AutoTune(&cfg, resources.DetectedResources{CPUCores: 32, MemoryBytes: 64 << 30})

	assert.Equal(t, 100, cfg.Stremio.ProbeConcurrency)
	assert.Equal(t, 120, cfg.ValidationMaxConcurrent)
	assert.Equal(t, 30, cfg.Stremio.MaxConcurrentPlugins)    // clamped
	assert.Equal(t, 10, cfg.Stremio.MaxConcurrentPlaywright) // clamped
}
