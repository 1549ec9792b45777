package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all migration engine configuration
type Config struct {
	Source      SourceConfig
	Destination DestinationConfig
	RateLimit   RateLimitConfig
	Retry       RetryConfig
	Migration   MigrationConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Log         LogConfig
}

// SourceConfig holds WooCommerce REST API settings
type SourceConfig struct {
	BaseURL        string // store root, e.g. https://shop.example.com
	ConsumerKey    string
	ConsumerSecret string
	PageSize       int
	Timeout        time.Duration
}

// DestinationConfig holds BigCommerce REST API settings
type DestinationConfig struct {
	APIBaseURL  string // defaults to https://api.bigcommerce.com
	StoreHash   string
	AccessToken string
	Timeout     time.Duration
}

// RateLimitConfig holds the outbound request budget for the destination
type RateLimitConfig struct {
	Requests int           // budget per window
	Window   time.Duration // sliding window length
}

// RetryConfig holds the gateway backoff policy
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Factor      float64
	MaxDelay    time.Duration
}

// MigrationConfig holds per-run policy settings
type MigrationConfig struct {
	Entities         []string // which entity types to migrate, in order
	CustomerBatch    int      // customers per bulk create request
	DeltaSync        bool     // filter source items by last successful run
	StrictSelections bool     // exclude variants with unresolved option selections
	ProcessedTTL     time.Duration
}

// DatabaseConfig holds the sqlite mapping store settings
type DatabaseConfig struct {
	Path string // sqlite file path; ":memory:" for ephemeral runs
}

// RedisConfig holds optional Redis settings for the shared processed-item store
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// Load loads configuration from a TOML file and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with MIGRATE_ prefix (e.g. MIGRATE_DESTINATION_ACCESS_TOKEN)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/catalog-migrate")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No config file is fine, env vars and defaults still apply
	}

	v.SetEnvPrefix("MIGRATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		Source: SourceConfig{
			BaseURL:        v.GetString("source.base_url"),
			ConsumerKey:    v.GetString("source.consumer_key"),
			ConsumerSecret: v.GetString("source.consumer_secret"),
			PageSize:       v.GetInt("source.page_size"),
			Timeout:        v.GetDuration("source.timeout"),
		},
		Destination: DestinationConfig{
			APIBaseURL:  v.GetString("destination.api_base_url"),
			StoreHash:   v.GetString("destination.store_hash"),
			AccessToken: v.GetString("destination.access_token"),
			Timeout:     v.GetDuration("destination.timeout"),
		},
		RateLimit: RateLimitConfig{
			Requests: v.GetInt("rate_limit.requests"),
			Window:   v.GetDuration("rate_limit.window"),
		},
		Retry: RetryConfig{
			MaxAttempts: v.GetInt("retry.max_attempts"),
			BaseDelay:   v.GetDuration("retry.base_delay"),
			Factor:      v.GetFloat64("retry.factor"),
			MaxDelay:    v.GetDuration("retry.max_delay"),
		},
		Migration: MigrationConfig{
			Entities:         v.GetStringSlice("migration.entities"),
			CustomerBatch:    v.GetInt("migration.customer_batch"),
			DeltaSync:        v.GetBool("migration.delta_sync"),
			StrictSelections: v.GetBool("migration.strict_selections"),
			ProcessedTTL:     v.GetDuration("migration.processed_ttl"),
		},
		Database: DatabaseConfig{
			Path: v.GetString("database.path"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.Source.PageSize == 0 {
		cfg.Source.PageSize = 100
	}
	if cfg.Source.Timeout == 0 {
		cfg.Source.Timeout = 30 * time.Second
	}
	if cfg.Destination.APIBaseURL == "" {
		cfg.Destination.APIBaseURL = "https://api.bigcommerce.com"
	}
	if cfg.Destination.Timeout == 0 {
		cfg.Destination.Timeout = 30 * time.Second
	}
	// BigCommerce publishes 150 requests per 30 seconds for standard plans
	if cfg.RateLimit.Requests == 0 {
		cfg.RateLimit.Requests = 150
	}
	if cfg.RateLimit.Window == 0 {
		cfg.RateLimit.Window = 30 * time.Second
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry.MaxAttempts = 5
	}
	if cfg.Retry.BaseDelay == 0 {
		cfg.Retry.BaseDelay = 500 * time.Millisecond
	}
	if cfg.Retry.Factor == 0 {
		cfg.Retry.Factor = 2.0
	}
	if cfg.Retry.MaxDelay == 0 {
		cfg.Retry.MaxDelay = 30 * time.Second
	}
	if len(cfg.Migration.Entities) == 0 {
		cfg.Migration.Entities = []string{"category", "product", "customer"}
	}
	// BigCommerce customer create accepts at most 10 customers per request
	if cfg.Migration.CustomerBatch == 0 {
		cfg.Migration.CustomerBatch = 10
	}
	if cfg.Migration.ProcessedTTL == 0 {
		cfg.Migration.ProcessedTTL = 24 * time.Hour
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "migration.db"
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
}

// validate performs structural validation. Credential presence is checked at
// run start so it can surface as a ConfigurationError with run context.
func (c *Config) validate() error {
	if c.Source.PageSize < 1 || c.Source.PageSize > 100 {
		return fmt.Errorf("source.page_size must be between 1 and 100, got %d", c.Source.PageSize)
	}
	if c.RateLimit.Requests < 1 {
		return fmt.Errorf("rate_limit.requests must be positive")
	}
	if c.RateLimit.Window <= 0 {
		return fmt.Errorf("rate_limit.window must be positive")
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry.max_attempts must be at least 1")
	}
	if c.Retry.Factor < 1.0 {
		return fmt.Errorf("retry.factor must be at least 1.0, got %f", c.Retry.Factor)
	}
	if c.Retry.MaxDelay < c.Retry.BaseDelay {
		return fmt.Errorf("retry.max_delay (%s) cannot be below retry.base_delay (%s)",
			c.Retry.MaxDelay, c.Retry.BaseDelay)
	}
	if c.Migration.CustomerBatch < 1 || c.Migration.CustomerBatch > 10 {
		return fmt.Errorf("migration.customer_batch must be between 1 and 10, got %d", c.Migration.CustomerBatch)
	}
	for _, entity := range c.Migration.Entities {
		switch entity {
		case "category", "product", "customer":
		default:
			return fmt.Errorf("migration.entities contains unknown entity %q", entity)
		}
	}
	return nil
}
