// Package config loads and validates bicache configuration from defaults,
// the user config file, and environment variable overrides (in increasing
// precedence; CLI flags are applied last by the cli layer).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/samm329-ui/businessIntelligence-sub004/internal/logging"
)

// Defaults for the cache engine configuration.
const (
	DefaultTTLDays              = 7
	DefaultCleanupIntervalHours = 24
	DefaultMaxSizeMB            = 500
	DefaultListenAddr           = ":8370"
)

// Environment variables recognized by the loader.
const (
	EnvHome            = "BICACHE_HOME"
	EnvCacheDir        = "BICACHE_CACHE_DIR"
	EnvTTLDays         = "BICACHE_CACHE_TTL_DAYS"
	EnvCleanupHours    = "BICACHE_CACHE_CLEANUP_HOURS"
	EnvMaxSizeMB       = "BICACHE_CACHE_MAX_SIZE_MB"
	EnvEnforceMaxSize  = "BICACHE_CACHE_ENFORCE_MAX_SIZE"
	EnvLogLevel        = "BICACHE_LOG_LEVEL"
	EnvLogFormat       = "BICACHE_LOG_FORMAT"
	EnvLogFile         = "BICACHE_LOG_FILE"
	EnvServerListen    = "BICACHE_LISTEN"
)

// Validation errors.
var (
	ErrInvalidTTL             = errors.New("cache ttl_days must be positive")
	ErrInvalidCleanupInterval = errors.New("cache cleanup_interval_hours must be positive")
	ErrInvalidMaxSize         = errors.New("cache max_size_mb cannot be negative")
)

// CacheConfig holds the cache engine settings.
type CacheConfig struct {
	// Directory is the storage root for blob files and the index document.
	// Empty means <config dir>/cache.
	Directory string `yaml:"directory"`

	// TTLDays is the entry time-to-live in days.
	TTLDays int `yaml:"ttl_days"`

	// CleanupIntervalHours is the background sweep interval in hours.
	CleanupIntervalHours int `yaml:"cleanup_interval_hours"`

	// MaxSizeMB is the advisory cache size cap in megabytes.
	MaxSizeMB int `yaml:"max_size_mb"`

	// EnforceMaxSize enables LRU eviction on writes when the cap is
	// exceeded. Off by default; the cap is advisory otherwise.
	EnforceMaxSize bool `yaml:"enforce_max_size"`
}

// TTL returns the configured time-to-live as a duration.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLDays) * 24 * time.Hour
}

// CleanupInterval returns the sweep interval as a duration.
func (c CacheConfig) CleanupInterval() time.Duration {
	return time.Duration(c.CleanupIntervalHours) * time.Hour
}

// MaxSizeBytes returns the advisory size cap in bytes.
func (c CacheConfig) MaxSizeBytes() int64 {
	return int64(c.MaxSizeMB) * 1024 * 1024
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// ToLoggingConfig converts to the logging package's config type.
func (c LoggingConfig) ToLoggingConfig() logging.Config {
	return logging.Config{Level: c.Level, Format: c.Format, File: c.File}
}

// ServerConfig holds the admin HTTP server settings.
type ServerConfig struct {
	Listen string `yaml:"listen"`
}

// Config is the root configuration document.
type Config struct {
	Cache   CacheConfig   `yaml:"cache"`
	Logging LoggingConfig `yaml:"logging"`
	Server  ServerConfig  `yaml:"server"`
}

// New returns a Config populated with defaults, then overlaid with the user
// config file (if present) and environment variables.
func New() *Config {
	cfg := defaults()

	if path, err := File(); err == nil {
		_ = cfg.mergeFile(path)
	}
	cfg.applyEnv()

	return cfg
}

// defaults returns the built-in configuration.
func defaults() *Config {
	return &Config{
		Cache: CacheConfig{
			TTLDays:              DefaultTTLDays,
			CleanupIntervalHours: DefaultCleanupIntervalHours,
			MaxSizeMB:            DefaultMaxSizeMB,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: logging.FormatConsole,
		},
		Server: ServerConfig{
			Listen: DefaultListenAddr,
		},
	}
}

// mergeFile overlays the YAML document at path onto the config. A missing
// file is not an error; a malformed one is.
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %q: %w", path, err)
	}
	return nil
}

// applyEnv applies recognized environment variables on top of the config.
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvCacheDir); v != "" {
		c.Cache.Directory = v
	}
	if v := os.Getenv(EnvTTLDays); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Cache.TTLDays = n
		}
	}
	if v := os.Getenv(EnvCleanupHours); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Cache.CleanupIntervalHours = n
		}
	}
	if v := os.Getenv(EnvMaxSizeMB); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.Cache.MaxSizeMB = n
		}
	}
	if v := os.Getenv(EnvEnforceMaxSize); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Cache.EnforceMaxSize = b
		}
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv(EnvLogFile); v != "" {
		c.Logging.File = v
	}
	if v := os.Getenv(EnvServerListen); v != "" {
		c.Server.Listen = v
	}
}

// Validate checks the configuration for semantic errors.
func (c *Config) Validate() error {
	if c.Cache.TTLDays <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidTTL, c.Cache.TTLDays)
	}
	if c.Cache.CleanupIntervalHours <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidCleanupInterval, c.Cache.CleanupIntervalHours)
	}
	if c.Cache.MaxSizeMB < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidMaxSize, c.Cache.MaxSizeMB)
	}
	return nil
}

// Save writes the configuration to the user config file.
func (c *Config) Save() error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}
	path, err := File()
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file %q: %w", path, err)
	}
	return nil
}
