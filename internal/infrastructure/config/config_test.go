package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	assert.Equal(t, 100, cfg.Source.PageSize)
	assert.Equal(t, "https://api.bigcommerce.com", cfg.Destination.APIBaseURL)
	assert.Equal(t, 150, cfg.RateLimit.Requests)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window)
	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.Retry.BaseDelay)
	assert.Equal(t, 2.0, cfg.Retry.Factor)
	assert.Equal(t, []string{"category", "product", "customer"}, cfg.Migration.Entities)
	assert.Equal(t, 10, cfg.Migration.CustomerBatch)
	assert.Equal(t, "migration.db", cfg.Database.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "stdout", cfg.Log.Output)
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{
		Source:    SourceConfig{PageSize: 25},
		RateLimit: RateLimitConfig{Requests: 40, Window: 10 * time.Second},
		Migration: MigrationConfig{Entities: []string{"category"}},
	}
	applyDefaults(cfg)

	assert.Equal(t, 25, cfg.Source.PageSize)
	assert.Equal(t, 40, cfg.RateLimit.Requests)
	assert.Equal(t, 10*time.Second, cfg.RateLimit.Window)
	assert.Equal(t, []string{"category"}, cfg.Migration.Entities)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		applyDefaults(cfg)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:    "page size too large",
			mutate:  func(c *Config) { c.Source.PageSize = 500 },
			wantErr: "source.page_size",
		},
		{
			name:    "zero rate limit budget",
			mutate:  func(c *Config) { c.RateLimit.Requests = -1 },
			wantErr: "rate_limit.requests",
		},
		{
			name:    "retry factor below one",
			mutate:  func(c *Config) { c.Retry.Factor = 0.5 },
			wantErr: "retry.factor",
		},
		{
			name:    "max delay below base delay",
			mutate:  func(c *Config) { c.Retry.MaxDelay = c.Retry.BaseDelay / 2 },
			wantErr: "retry.max_delay",
		},
		{
			name:    "customer batch above destination cap",
			mutate:  func(c *Config) { c.Migration.CustomerBatch = 50 },
			wantErr: "migration.customer_batch",
		},
		{
			name:    "unknown entity",
			mutate:  func(c *Config) { c.Migration.Entities = []string{"order"} },
			wantErr: "unknown entity",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
