// Package config loads the specwatch configuration from a YAML file with
// SPECWATCH_* environment variable overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/specwatch/specwatch/pkg/snapshot"
	"github.com/specwatch/specwatch/pkg/store"
)

const (
	// DefaultLogLevel is the default logging level.
	DefaultLogLevel = "info"

	// DefaultListen is the default ingest server listen address.
	DefaultListen = ":8099"

	// DefaultSamplingInterval is the default local sampling period.
	DefaultSamplingInterval = time.Second

	// DefaultFlushCount is the number of buffered readings that triggers
	// a batch flush in the local sampling session.
	DefaultFlushCount = 25

	// DefaultRequestsPerMinute is the default per-IP ingest rate limit.
	DefaultRequestsPerMinute = 600

	// DefaultHistoryPath is the default sqlite run-history location.
	DefaultHistoryPath = ".specwatch/history.db"

	// envPrefix is the environment variable prefix for overrides,
	// e.g. SPECWATCH_TRACKING_ENABLED=true.
	envPrefix = "SPECWATCH"
)

// Config is the root configuration for specwatch.
type Config struct {
	Global   GlobalConfig   `yaml:"global" mapstructure:"global"`
	Tracking TrackingConfig `yaml:"tracking" mapstructure:"tracking"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Sampling SamplingConfig `yaml:"sampling" mapstructure:"sampling"`
	History  HistoryConfig  `yaml:"history" mapstructure:"history"`
	Upload   UploadConfig   `yaml:"upload" mapstructure:"upload"`
}

// GlobalConfig contains global application settings.
type GlobalConfig struct {
	LogLevel string `yaml:"log_level" mapstructure:"log_level"`
}

// TrackingConfig controls the memory tracking core. When Enabled is false
// every public operation is a silent no-op. TrackSpecOnly suppresses the
// per-test report; Debug emits verbose diagnostics for store operations.
type TrackingConfig struct {
	Enabled       bool   `yaml:"enabled" mapstructure:"enabled"`
	TrackSpecOnly bool   `yaml:"track_spec_only" mapstructure:"track_spec_only"`
	Debug         bool   `yaml:"debug" mapstructure:"debug"`
	SnapshotPath  string `yaml:"snapshot_path" mapstructure:"snapshot_path"`
}

// ServerConfig contains ingest HTTP server settings.
type ServerConfig struct {
	Listen      string          `yaml:"listen" mapstructure:"listen"`
	CORSOrigins []string        `yaml:"cors_origins,omitempty" mapstructure:"cors_origins"`
	RateLimit   RateLimitConfig `yaml:"rate_limit,omitempty" mapstructure:"rate_limit"`
}

// RateLimitConfig configures per-IP rate limiting on the ingest endpoints.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled" mapstructure:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
}

// SamplingConfig controls the local process sampling session.
type SamplingConfig struct {
	Interval   time.Duration `yaml:"interval" mapstructure:"interval"`
	FlushCount int           `yaml:"flush_count" mapstructure:"flush_count"`
}

// HistoryConfig controls the optional per-run aggregate archive.
type HistoryConfig struct {
	Enabled  bool           `yaml:"enabled" mapstructure:"enabled"`
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`
}

// DatabaseConfig contains history database connection settings.
type DatabaseConfig struct {
	Driver   string         `yaml:"driver" mapstructure:"driver"`
	SQLite   SQLiteConfig   `yaml:"sqlite,omitempty" mapstructure:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres,omitempty" mapstructure:"postgres"`
}

// SQLiteConfig contains SQLite-specific settings.
type SQLiteConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// PostgresConfig contains PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string `yaml:"host" mapstructure:"host"`
	Port     int    `yaml:"port" mapstructure:"port"`
	User     string `yaml:"user" mapstructure:"user"`
	Password string `yaml:"password" mapstructure:"password"`
	Database string `yaml:"database" mapstructure:"database"`
	SSLMode  string `yaml:"ssl_mode,omitempty" mapstructure:"ssl_mode"`
}

// UploadConfig contains optional remote upload settings.
type UploadConfig struct {
	S3 *S3UploadConfig `yaml:"s3,omitempty" mapstructure:"s3"`
}

// S3UploadConfig contains S3-compatible storage settings for uploading the
// snapshot and rendered report at run end.
type S3UploadConfig struct {
	Enabled         bool   `yaml:"enabled" mapstructure:"enabled"`
	Bucket          string `yaml:"bucket" mapstructure:"bucket"`
	Prefix          string `yaml:"prefix,omitempty" mapstructure:"prefix"`
	Region          string `yaml:"region,omitempty" mapstructure:"region"`
	EndpointURL     string `yaml:"endpoint_url,omitempty" mapstructure:"endpoint_url"`
	AccessKeyID     string `yaml:"access_key_id,omitempty" mapstructure:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key,omitempty" mapstructure:"secret_access_key"`
	ForcePathStyle  bool   `yaml:"force_path_style" mapstructure:"force_path_style"`
}

// Load reads the configuration file at path (optional) and applies
// SPECWATCH_* environment overrides on top.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers a default for every known key. Registering the full
// key set is what lets AutomaticEnv overrides reach keys that never appear
// in the config file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("global.log_level", DefaultLogLevel)

	v.SetDefault("tracking.enabled", false)
	v.SetDefault("tracking.track_spec_only", false)
	v.SetDefault("tracking.debug", false)
	v.SetDefault("tracking.snapshot_path", store.DefaultSnapshotPath)

	v.SetDefault("server.listen", DefaultListen)
	v.SetDefault("server.cors_origins", []string{})
	v.SetDefault("server.rate_limit.enabled", false)
	v.SetDefault("server.rate_limit.requests_per_minute", DefaultRequestsPerMinute)

	v.SetDefault("sampling.interval", DefaultSamplingInterval)
	v.SetDefault("sampling.flush_count", DefaultFlushCount)

	v.SetDefault("history.enabled", false)
	v.SetDefault("history.database.driver", "sqlite")
	v.SetDefault("history.database.sqlite.path", DefaultHistoryPath)
	v.SetDefault("history.database.postgres.port", 5432)
	v.SetDefault("history.database.postgres.ssl_mode", "disable")
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Sampling.Interval <= 0 {
		return fmt.Errorf("sampling.interval must be positive")
	}

	if c.Sampling.FlushCount <= 0 {
		return fmt.Errorf("sampling.flush_count must be positive")
	}

	if c.Server.RateLimit.Enabled && c.Server.RateLimit.RequestsPerMinute <= 0 {
		return fmt.Errorf("server.rate_limit.requests_per_minute must be positive")
	}

	if c.History.Enabled {
		switch c.History.Database.Driver {
		case "sqlite":
			if c.History.Database.SQLite.Path == "" {
				return fmt.Errorf("history.database.sqlite.path is required")
			}
		case "postgres":
			if c.History.Database.Postgres.Host == "" {
				return fmt.Errorf("history.database.postgres.host is required")
			}
		default:
			return fmt.Errorf("unsupported history database driver: %s",
				c.History.Database.Driver)
		}
	}

	if c.Upload.S3 != nil && c.Upload.S3.Enabled && c.Upload.S3.Bucket == "" {
		return fmt.Errorf("upload.s3.bucket is required when s3 upload is enabled")
	}

	return nil
}

// Snapshot returns the tracking config block captured into the run snapshot
// at initialize time.
func (c *Config) Snapshot() snapshot.Config {
	return snapshot.Config{
		Enabled:       c.Tracking.Enabled,
		TrackSpecOnly: c.Tracking.TrackSpecOnly,
		Debug:         c.Tracking.Debug,
	}
}
