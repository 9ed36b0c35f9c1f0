package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendFile   = "file"
)

// Config represents the application configuration.
type Config struct {
	// Storage backend configuration
	Storage StorageConfig `toml:"storage"`

	// HTTP API configuration
	API APIConfig `toml:"api"`

	// Card-data service configuration
	Cards CardsConfig `toml:"cards"`

	// Background maintenance configuration
	Maintenance MaintenanceConfig `toml:"maintenance"`

	// Logging configuration
	Log LogConfig `toml:"log"`
}

// StorageConfig selects and configures the document store.
type StorageConfig struct {
	Backend string `toml:"backend"` // sqlite, redis or file

	SQLitePath string `toml:"sqlite_path"` // Database file, ":memory:" for tests

	RedisURL    string `toml:"redis_url"`    // redis://host:port/db
	RedisPrefix string `toml:"redis_prefix"` // Key prefix

	FileDir      string `toml:"file_dir"`      // Root directory of the file store
	FileCompress bool   `toml:"file_compress"` // zstd-compress documents
}

// APIConfig contains REST server settings.
type APIConfig struct {
	Port            int      `toml:"port"`
	AllowedOrigins  []string `toml:"allowed_origins"`
	ShutdownTimeout string   `toml:"shutdown_timeout"` // e.g. "10s"
	AdminUsers      []string `toml:"admin_users"`      // User IDs allowed to run maintenance
}

// CardsConfig contains card lookup settings.
type CardsConfig struct {
	BaseURL      string `toml:"base_url"`      // Scryfall API root
	RateLimitMS  int    `toml:"rate_limit_ms"` // Minimum delay between requests
	CacheSize    int    `toml:"cache_size"`    // Max cached lookups (0 = default)
	SuggestLimit int    `toml:"suggest_limit"` // Max suggestions returned
}

// MaintenanceConfig schedules background jobs run by the API server.
// An empty interval disables the job.
type MaintenanceConfig struct {
	ReconcileInterval string `toml:"reconcile_interval"` // Friend graph cleanup, e.g. "24h"
	SnapshotInterval  string `toml:"snapshot_interval"`  // SQLite snapshots, e.g. "6h"
	SnapshotDir       string `toml:"snapshot_dir"`
	SnapshotKeep      int    `toml:"snapshot_keep"` // Snapshots retained (0 = all)
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // console or json
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	dir := DataDir()
	return &Config{
		Storage: StorageConfig{
			Backend:      BackendSQLite,
			SQLitePath:   filepath.Join(dir, "edh.db"),
			RedisURL:     "redis://localhost:6379/0",
			RedisPrefix:  "edh:",
			FileDir:      filepath.Join(dir, "documents"),
			FileCompress: true,
		},
		API: APIConfig{
			Port:            8080,
			AllowedOrigins:  []string{"http://localhost:*"},
			ShutdownTimeout: "10s",
		},
		Cards: CardsConfig{
			BaseURL:      "https://api.scryfall.com",
			RateLimitMS:  100,
			CacheSize:    500,
			SuggestLimit: 10,
		},
		Maintenance: MaintenanceConfig{
			ReconcileInterval: "24h",
			SnapshotInterval:  "6h",
			SnapshotDir:       filepath.Join(dir, "snapshots"),
			SnapshotKeep:      7,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// DataDir returns the directory holding local data and the config file.
func DataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".edh-tracker"
	}
	return filepath.Join(homeDir, ".edh-tracker")
}

// configPath returns the path to the configuration file.
func configPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".edh-tracker")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}

	return filepath.Join(configDir, "config.toml"), nil
}

// Load loads the configuration from the default location.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom loads the configuration at path over the defaults, then applies
// environment overrides. Returns the defaults if the file doesn't exist.
func LoadFrom(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("read config file: %w", err)
	default:
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := config.applyEnv(); err != nil {
		return nil, err
	}
	return config, nil
}

// applyEnv overrides settings from EDH_* environment variables.
func (c *Config) applyEnv() error {
	overrides := map[string]*string{
		"EDH_STORAGE_BACKEND": &c.Storage.Backend,
		"EDH_SQLITE_PATH":     &c.Storage.SQLitePath,
		"EDH_REDIS_URL":       &c.Storage.RedisURL,
		"EDH_FILE_DIR":        &c.Storage.FileDir,
		"EDH_LOG_LEVEL":       &c.Log.Level,
		"EDH_LOG_FORMAT":      &c.Log.Format,
		"EDH_SCRYFALL_URL":    &c.Cards.BaseURL,
	}
	for key, dst := range overrides {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	if v, ok := os.LookupEnv("EDH_API_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid EDH_API_PORT %q: %w", v, err)
		}
		c.API.Port = port
	}
	return nil
}

// Save saves the configuration to the default location.
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the configuration to path.
func (c *Config) SaveTo(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendSQLite:
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("sqlite backend requires sqlite_path")
		}
	case BackendRedis:
		if c.Storage.RedisURL == "" {
			return fmt.Errorf("redis backend requires redis_url")
		}
	case BackendFile:
		if c.Storage.FileDir == "" {
			return fmt.Errorf("file backend requires file_dir")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	if c.API.Port <= 0 || c.API.Port > 65535 {
		return fmt.Errorf("invalid api port: %d", c.API.Port)
	}

	if _, err := time.ParseDuration(c.API.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown timeout %q: %w", c.API.ShutdownTimeout, err)
	}

	if c.Cards.RateLimitMS < 0 {
		return fmt.Errorf("rate limit cannot be negative: %d", c.Cards.RateLimitMS)
	}

	if c.Cards.CacheSize < 0 {
		return fmt.Errorf("cache size cannot be negative: %d", c.Cards.CacheSize)
	}

	for name, v := range map[string]string{
		"reconcile_interval": c.Maintenance.ReconcileInterval,
		"snapshot_interval":  c.Maintenance.SnapshotInterval,
	} {
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, v, err)
		}
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, v)
		}
	}

	if c.Maintenance.SnapshotKeep < 0 {
		return fmt.Errorf("snapshot keep cannot be negative: %d", c.Maintenance.SnapshotKeep)
	}

	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}

	return nil
}

// GetShutdownTimeout returns the API shutdown timeout as a duration.
func (c *Config) GetShutdownTimeout() (time.Duration, error) {
	return time.ParseDuration(c.API.ShutdownTimeout)
}

// GetRateLimit returns the minimum delay between card-data requests.
func (c *Config) GetRateLimit() time.Duration {
	return time.Duration(c.Cards.RateLimitMS) * time.Millisecond
}

// GetReconcileInterval returns the friend reconcile interval, or 0 when disabled.
func (c *Config) GetReconcileInterval() time.Duration {
	return parseInterval(c.Maintenance.ReconcileInterval)
}

// GetSnapshotInterval returns the snapshot interval, or 0 when disabled.
func (c *Config) GetSnapshotInterval() time.Duration {
	return parseInterval(c.Maintenance.SnapshotInterval)
}

func parseInterval(v string) time.Duration {
	if v == "" {
		return 0
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return 0
	}
	return d
}
