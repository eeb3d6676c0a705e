package model

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

const defaultCacheMaxAge = 7 * 24 * time.Hour

// SyncConfig controls the notification synchronization pipeline.
type SyncConfig struct {
	// BaseURL is the GitHub API root. Point it at a GitHub Enterprise
	// instance to use ghnotif against one.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// PageSize is how many stubs each notifications page requests.
	PageSize int `mapstructure:"page_size" yaml:"page_size"`

	// MaxConcurrency caps in-flight hydration and page requests.
	MaxConcurrency int `mapstructure:"max_concurrency" yaml:"max_concurrency"`
}

// CacheConfig controls the on-disk conditional-request cache. The
// notification inbox itself is never persisted; this only stores HTTP
// validators and bodies for detail endpoints.
type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path"`

	// MaxAge is how long a cached response stays eligible for
	// revalidation; older entries are purged at startup.
	MaxAge time.Duration `mapstructure:"max_age" yaml:"max_age"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Sync    SyncConfig    `mapstructure:"sync" yaml:"sync"`
	Cache   CacheConfig   `mapstructure:"cache" yaml:"cache"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`
}

// DefaultConfigPath returns the default path for the configuration
// file, located at ~/.config/ghnotif/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "ghnotif", "config.yaml")
}

// DefaultCachePath returns the default location of the HTTP cache
// database.
func DefaultCachePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "httpcache.db")
	}
	return filepath.Join(home, ".cache", "ghnotif", "httpcache.db")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Sync: SyncConfig{
			BaseURL:        "https://api.github.com",
			PageSize:       50,
			MaxConcurrency: 16,
		},
		Cache: CacheConfig{
			Enabled: true,
			Path:    DefaultCachePath(),
			MaxAge:  defaultCacheMaxAge,
		},
		Display: DisplayConfig{
			Theme: "default",
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using
// Viper. If the file does not exist, it returns a default
// configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("sync.base_url", "https://api.github.com")
	v.SetDefault("sync.page_size", 50)
	v.SetDefault("sync.max_concurrency", 16)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.path", DefaultCachePath())
	v.SetDefault("cache.max_age", defaultCacheMaxAge)
	v.SetDefault("display.theme", "default")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Sync.PageSize <= 0 {
		cfg.Sync.PageSize = 50
	}
	if cfg.Sync.MaxConcurrency <= 0 {
		cfg.Sync.MaxConcurrency = 16
	}
	if cfg.Cache.MaxAge <= 0 {
		cfg.Cache.MaxAge = defaultCacheMaxAge
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("sync", cfg.Sync)
	v.Set("cache", cfg.Cache)
	v.Set("display", cfg.Display)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
