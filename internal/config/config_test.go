// Copyright 2026 The capRoute Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 0.3, cfg.Learning.SmoothingFactor)
	assert.Equal(t, 0.6, cfg.Fallback.AcceptabilityThreshold)
	assert.Equal(t, 20, cfg.Router.MediumTokenCutoff)
	assert.Equal(t, 60, cfg.Router.ComplexTokenCutoff)
	assert.Equal(t, 2, cfg.Router.MaxSecondaries)
	assert.NotEmpty(t, cfg.Fallback.ServicesByLevel[4])
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
port: 9090
debug: true
catalog-path: providers.yaml
router:
  medium-token-cutoff: 15
  complex-token-cutoff: 50
learning:
  smoothing-factor: 0.5
fallback:
  acceptability-threshold: 0.7
steering:
  rules:
    - name: long requests reason
      condition: TokenCount > 100
      category: reasoning
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "providers.yaml", cfg.CatalogPath)
	assert.Equal(t, 15, cfg.Router.MediumTokenCutoff)
	assert.Equal(t, 50, cfg.Router.ComplexTokenCutoff)
	assert.Equal(t, 0.5, cfg.Learning.SmoothingFactor)
	assert.Equal(t, 0.7, cfg.Fallback.AcceptabilityThreshold)
	require.Len(t, cfg.Steering.Rules, 1)
	assert.Equal(t, "reasoning", cfg.Steering.Rules[0].Category)

	// Unspecified sections keep their defaults
	assert.Equal(t, 90, cfg.Storage.RetentionDays)
	assert.Equal(t, 0.1, cfg.Recommend.ReliabilityBonus)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Port = -1 }},
		{"inverted cutoffs", func(c *Config) { c.Router.ComplexTokenCutoff = c.Router.MediumTokenCutoff }},
		{"negative secondaries", func(c *Config) { c.Router.MaxSecondaries = -1 }},
		{"negative weight", func(c *Config) { c.Router.ConfidenceWeights.Success = -0.1 }},
		{"zero smoothing", func(c *Config) { c.Learning.SmoothingFactor = 0 }},
		{"smoothing above one", func(c *Config) { c.Learning.SmoothingFactor = 1.5 }},
		{"threshold above one", func(c *Config) { c.Fallback.AcceptabilityThreshold = 1.5 }},
		{"zero recent window", func(c *Config) { c.Fallback.RecentWindow = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
