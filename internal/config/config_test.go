package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/BioCatalysis-Toolkit/pkg/errors"
)

func TestDefault_Valid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.Normalizer.Isomeric)
	assert.Equal(t, []int{3}, cfg.Preprocess.Levels)
	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.MinIO.Enabled())
	assert.False(t, cfg.Kafka.Enabled())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"log level", func(c *Config) { c.Log.Level = "verbose" }},
		{"log format", func(c *Config) { c.Log.Format = "text" }},
		{"lru size", func(c *Config) { c.Normalizer.LRUSize = -1 }},
		{"workers", func(c *Config) { c.Normalizer.Workers = -2 }},
		{"level range", func(c *Config) { c.Preprocess.Levels = []int{5} }},
		{"exclusion mode", func(c *Config) { c.Preprocess.ExclusionMode = "drop-all" }},
		{"atom scope", func(c *Config) { c.Preprocess.AtomCountScope = "reactants" }},
		{"ratios", func(c *Config) { c.Preprocess.ValidRatio, c.Preprocess.TestRatio = 0.5, 0.5 }},
		{"negative ratio", func(c *Config) { c.Preprocess.TestRatio = -0.1 }},
		{"n best", func(c *Config) { c.Evaluate.NBestBW = 0 }},
		{"layout", func(c *Config) { c.Evaluate.Layout = "columns" }},
		{"ec pred level", func(c *Config) { c.Evaluate.ECPredLevel = 0 }},
		{"group level", func(c *Config) { c.Evaluate.GroupByLevel = 5 }},
		{"redis mode", func(c *Config) { c.Redis.Addr, c.Redis.Mode = "localhost:6379", "ring" }},
		{"minio bucket", func(c *Config) { c.MinIO.Endpoint, c.MinIO.Bucket = "localhost:9000", "" }},
		{"kafka retries", func(c *Config) { c.Kafka.Brokers, c.Kafka.MaxRetries = []string{"b:9092"}, -1 }},
		{"metrics namespace", func(c *Config) { c.Metrics.Namespace = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.IsConfigurationError(err), err.Error())
		})
	}
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Log.Level = "debug"
	cfg.Evaluate.NBestBW = 3
	ApplyDefaults(cfg)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 3, cfg.Evaluate.NBestBW)
	assert.Equal(t, DefaultNBestFW, cfg.Evaluate.NBestFW)
	assert.Equal(t, DefaultMetricsNamespace, cfg.Metrics.Namespace)

	assert.NotPanics(t, func() { ApplyDefaults(nil) })
}

//Personal.AI order the ending
