// Package config provides configuration types and defaults for mergelens.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zjrosen/mergelens/internal/cachemanager"
	"github.com/zjrosen/mergelens/internal/linediff"
	"github.com/zjrosen/mergelens/internal/log"
	"github.com/zjrosen/mergelens/internal/watcher"
)

// Config holds all configuration options for mergelens.
type Config struct {
	Diff    DiffConfig    `mapstructure:"diff"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Watch   WatchConfig   `mapstructure:"watch"`
	Tracing TracingConfig `mapstructure:"tracing"`
}

// DiffConfig holds line diff options.
type DiffConfig struct {
	// Cleanup selects the post-processing pass: "none" (default), "semantic",
	// "efficiency", or "merge".
	Cleanup string `mapstructure:"cleanup"`

	// Timeout bounds a single diff. 0 means no deadline.
	Timeout time.Duration `mapstructure:"timeout"`

	// MaxFileBytes skips diffing files larger than this. 0 means unlimited.
	MaxFileBytes int64 `mapstructure:"max_file_bytes"`

	// Concurrency is the number of files diffed in parallel.
	Concurrency int `mapstructure:"concurrency"`
}

// CleanupMode returns the parsed cleanup mode. Call Validate first.
func (d DiffConfig) CleanupMode() linediff.Cleanup {
	c, _ := linediff.ParseCleanup(d.Cleanup)
	return c
}

// Options returns the linediff options for this config.
func (d DiffConfig) Options() []linediff.Option {
	return []linediff.Option{
		linediff.WithCleanup(d.CleanupMode()),
		linediff.WithTimeout(d.Timeout),
	}
}

// CacheConfig holds blob cache options.
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// WatchConfig holds working-tree watch options.
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// TracingConfig holds distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `mapstructure:"enabled"`

	// Exporter selects the trace export backend.
	// Options: "none", "file", "stdout", "otlp"
	// Default: "file"
	Exporter string `mapstructure:"exporter"`

	// FilePath is the output file for "file" exporter.
	// Default: ~/.config/mergelens/traces/traces.jsonl
	FilePath string `mapstructure:"file_path"`

	// OTLPEndpoint is the collector endpoint for "otlp" exporter.
	// Default: "localhost:4317"
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`

	// SampleRate controls trace sampling (0.0 to 1.0).
	// Default: 1.0
	SampleRate float64 `mapstructure:"sample_rate"`
}

// DefaultTracesFilePath returns the default path for trace file export.
// Returns ~/.config/mergelens/traces/traces.jsonl or empty string if home dir unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "mergelens", "traces", "traces.jsonl")
}

// Validate checks the configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func Validate(c Config) error {
	if err := ValidateDiff(c.Diff); err != nil {
		return err
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative, got %v", c.Cache.TTL)
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %v", c.Watch.Debounce)
	}
	return ValidateTracing(c.Tracing)
}

// ValidateDiff checks diff configuration for errors.
func ValidateDiff(d DiffConfig) error {
	if _, ok := linediff.ParseCleanup(d.Cleanup); !ok {
		return fmt.Errorf("diff.cleanup must be \"none\", \"semantic\", \"efficiency\", or \"merge\", got %q", d.Cleanup)
	}
	if d.Timeout < 0 {
		return fmt.Errorf("diff.timeout must not be negative, got %v", d.Timeout)
	}
	if d.MaxFileBytes < 0 {
		return fmt.Errorf("diff.max_file_bytes must not be negative, got %d", d.MaxFileBytes)
	}
	if d.Concurrency < 0 {
		return fmt.Errorf("diff.concurrency must not be negative, got %d", d.Concurrency)
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(tracing TracingConfig) error {
	if tracing.SampleRate < 0.0 || tracing.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tracing.SampleRate)
	}

	if tracing.Exporter != "" {
		switch tracing.Exporter {
		case "none", "file", "stdout", "otlp":
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tracing.Exporter)
		}
	}

	// Only validate path requirements when tracing is enabled
	if tracing.Enabled {
		if tracing.Exporter == "file" && tracing.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if tracing.Exporter == "otlp" && tracing.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}

	return nil
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Diff: DiffConfig{
			Cleanup:      "none",
			Timeout:      linediff.DefaultTimeout,
			MaxFileBytes: 1 << 20,
			Concurrency:  8,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     cachemanager.DefaultExpiration,
		},
		Watch: WatchConfig{
			Debounce: watcher.DefaultDebounce,
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			FilePath:     DefaultTracesFilePath(),
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
	}
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# mergelens configuration

# Line diff settings
diff:
  # Post-processing applied to the raw diff: none (default), semantic, efficiency, merge
  cleanup: none
  # Give up refining a diff after this long (0 = no limit)
  timeout: 1s
  # Files larger than this are not diffed (0 = no limit)
  max_file_bytes: 1048576
  # Number of files diffed in parallel
  concurrency: 8

# Blob cache for file contents read from git
cache:
  enabled: true
  ttl: 10m

# diff --watch and conflicts --watch settings
watch:
  debounce: 300ms  # 0 uses the built-in default

# Distributed tracing configuration
# tracing:
#   enabled: false                 # Enable/disable tracing (default: false)
#   exporter: file                 # Export backend: none, file, stdout, otlp (default: file)
#   file_path: ~/.config/mergelens/traces/traces.jsonl
#   otlp_endpoint: localhost:4317  # OTLP collector endpoint (for otlp exporter)
#   sample_rate: 1.0               # Trace sampling rate 0.0-1.0 (default: 1.0)
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
