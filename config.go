package convocache

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ucanhq/convocache/cache"
	"github.com/ucanhq/convocache/compression"
)

// Config holds the required configuration for a Manager.
//
// Example:
//
//	mgr, _ := convocache.New(store, sum, convocache.Config{
//	    CacheDir: "/var/lib/myapp/cache",
//	})
type Config struct {
	// CacheDir is the root directory for the on-disk cache tier (required)
	CacheDir string

	// CacheTTL is how long disk-cached entries stay valid. Default: 24h.
	CacheTTL time.Duration

	// Compression tunes history compression and context assembly. Zero
	// fields fall back to their defaults.
	Compression compression.Config
}

// ApplyDefaults fills in zero values with defaults.
func (c *Config) ApplyDefaults() {
	if c.CacheTTL == 0 {
		c.CacheTTL = cache.DefaultTTL
	}
	c.Compression.ApplyDefaults()
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.CacheDir == "" {
		return fmt.Errorf("%w: CacheDir is required", ErrInvalidConfig)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("%w: CacheTTL must be non-negative, got %s", ErrInvalidConfig, c.CacheTTL)
	}
	if err := c.Compression.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// fileConfig is the on-disk YAML shape. Durations are strings in Go duration
// syntax ("24h", "168h") so config files stay readable.
type fileConfig struct {
	CacheDir         string `yaml:"cache_dir"`
	CacheTTL         string `yaml:"cache_ttl"`
	Threshold        int    `yaml:"compression_threshold"`
	StaleAfter       string `yaml:"stale_after"`
	RecentWindow     string `yaml:"recent_window"`
	SummaryMaxTokens int    `yaml:"summary_max_tokens"`
	SummaryMinTokens int    `yaml:"summary_min_tokens"`
}

// LoadConfig reads a YAML config file. Omitted fields keep their defaults;
// malformed durations are an error rather than a silent fallback.
func LoadConfig(path string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.CacheDir = fc.CacheDir
	cfg.Compression.Threshold = fc.Threshold
	cfg.Compression.SummaryMaxTokens = fc.SummaryMaxTokens
	cfg.Compression.SummaryMinTokens = fc.SummaryMinTokens

	if cfg.CacheTTL, err = parseDuration("cache_ttl", fc.CacheTTL); err != nil {
		return cfg, err
	}
	if cfg.Compression.StaleAfter, err = parseDuration("stale_after", fc.StaleAfter); err != nil {
		return cfg, err
	}
	if cfg.Compression.RecentWindow, err = parseDuration("recent_window", fc.RecentWindow); err != nil {
		return cfg, err
	}

	cfg.ApplyDefaults()
	return cfg, nil
}

func parseDuration(field, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, field, err)
	}
	return d, nil
}
