// Package config assembles the one Config struct every component reads
// from, loading spec §6's environment variables plus an optional YAML
// overlay at startup, the way engine/config/unified_config.go composes
// fetch/process/sink policy into one UnifiedBusinessConfig.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// CacheConfig controls the two-tier cache.
type CacheConfig struct {
	Root           string        `yaml:"root"`
	MemoryTTL      time.Duration `yaml:"memory_ttl"`
	DiskBudgetBytes int64        `yaml:"disk_budget_bytes"`
}

// HTTPConfig controls the shared fetcher.
type HTTPConfig struct {
	AppleTimeout time.Duration `yaml:"apple_timeout"`
	OtherTimeout time.Duration `yaml:"other_timeout"`
}

// Config is the fully assembled, validated configuration.
type Config struct {
	Cache   CacheConfig `yaml:"cache"`
	HTTP    HTTPConfig  `yaml:"http"`

	FeedbackDir            string `yaml:"feedback_dir"`
	KnowledgeDir           string `yaml:"knowledge_dir"`
	Headless               bool   `yaml:"-"`
	DisableFeedbackPrompt  bool   `yaml:"-"`

	MetricsBackend string `yaml:"metrics_backend"` // prom|otel|noop
	LogLevel       string `yaml:"log_level"`
}

// Defaults returns a Config with sensible production defaults: every
// policy gets a non-zero default independent of environment.
func Defaults() Config {
	return Config{
		Cache: CacheConfig{
			Root:            defaultCacheDir(),
			MemoryTTL:       15 * time.Minute,
			DiskBudgetBytes: 256 * 1024 * 1024,
		},
		HTTP: HTTPConfig{
			AppleTimeout: 15 * time.Second,
			OtherTimeout: 30 * time.Second,
		},
		FeedbackDir:    "Feedback",
		MetricsBackend: "prom",
		LogLevel:       "info",
	}
}

// defaultCacheDir mirrors the per-OS cache root a real CLI would use;
// overridable by DOCSMCP_CACHE_DIR (spec §6).
func defaultCacheDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Caches", "docsmcp")
	case "windows":
		if v := os.Getenv("LOCALAPPDATA"); v != "" {
			return filepath.Join(v, "docsmcp", "Cache")
		}
		return filepath.Join(os.TempDir(), "docsmcp-cache")
	default:
		if v := os.Getenv("XDG_CACHE_HOME"); v != "" {
			return filepath.Join(v, "docsmcp")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".cache", "docsmcp")
	}
}

// Load builds a Config from Defaults, an optional YAML overlay (DOCSMCP_CONFIG),
// then spec §6's environment variables, in that precedence order (env wins).
func Load() (Config, error) {
	cfg := Defaults()

	if path := os.Getenv("DOCSMCP_CONFIG"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config overlay %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config overlay %s: %w", path, err)
		}
	}

	if v := os.Getenv("DOCSMCP_CACHE_DIR"); v != "" {
		cfg.Cache.Root = v
	}
	if v := os.Getenv("DOCSMCP_FEEDBACK_DIR"); v != "" {
		cfg.FeedbackDir = v
	}
	if v := os.Getenv("DOCSMCP_KNOWLEDGE_DIR"); v != "" {
		cfg.KnowledgeDir = v
	}
	if v := os.Getenv("DOCSMCP_METRICS_BACKEND"); v != "" {
		cfg.MetricsBackend = v
	}
	cfg.Headless = isTruthy(os.Getenv("DOCSMCP_HEADLESS"))
	cfg.DisableFeedbackPrompt = isTruthy(os.Getenv("DOCSMCP_DISABLE_FEEDBACK_PROMPT"))

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func isTruthy(v string) bool {
	v = strings.TrimSpace(strings.ToLower(v))
	return v == "1" || v == "true"
}

// Validate mirrors UnifiedBusinessConfig.Validate's per-section checks.
func (c Config) Validate() error {
	if c.Cache.Root == "" {
		return fmt.Errorf("cache root cannot be empty")
	}
	if c.Cache.DiskBudgetBytes <= 0 {
		return fmt.Errorf("disk budget must be positive: %d", c.Cache.DiskBudgetBytes)
	}
	if c.HTTP.AppleTimeout <= 0 || c.HTTP.OtherTimeout <= 0 {
		return fmt.Errorf("http timeouts must be positive")
	}
	switch strings.ToLower(c.MetricsBackend) {
	case "prom", "otel", "noop":
	default:
		return fmt.Errorf("invalid metrics backend: %s", c.MetricsBackend)
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}
	return nil
}

// ProviderCacheDir returns the per-provider subdirectory under Cache.Root
// (spec §6's disk layout: one subdirectory per provider).
func (c Config) ProviderCacheDir(provider string) string {
	return filepath.Join(c.Cache.Root, provider)
}
