// Package config provides configuration management for the cliphub
// server. It handles loading, validation, and defaulting of all hub
// settings, from the listen address to sync engine timing.
//
// Configuration Sources:
//
// Configuration can be loaded from multiple sources with the following
// precedence:
//  1. Command-line flags (highest priority)
//  2. Environment variables
//  3. YAML configuration file
//  4. Default values (lowest priority)
//
// Environment Variables:
//
// All configuration options can be set via environment variables:
//   - CLIPHUB_LISTEN: Address the HTTP server listens on
//   - CLIPHUB_POLL_INTERVAL: Local clipboard polling frequency
//   - CLIPHUB_MIN_SYNC_INTERVAL: Minimum spacing between accepted updates
//   - CLIPHUB_CONFLICT_WINDOW: Duplicate-suppression window
//   - CLIPHUB_HISTORY_SIZE: Number of history entries to retain
//   - CLIPHUB_MAX_CONTENT_LENGTH: Largest clipboard content accepted
//   - CLIPHUB_FILTER_PATTERNS: Comma-separated extra filter regexps
//   - CLIPHUB_DISABLE_BUILTIN_FILTERS: Skip the built-in sensitive patterns
//   - CLIPHUB_DISABLE_AUTOSYNC: Start with automatic syncing paused
//   - CLIPHUB_HEADLESS: Run without a local OS clipboard
//   - CLIPHUB_VERBOSE: Enable verbose logging
//
// Headless Mode:
//
// A hub normally mirrors its own machine's clipboard alongside the
// connected devices. On a machine with no display server there is no
// clipboard to mirror; headless mode skips the local clipboard and
// poller entirely and the hub becomes a pure relay between devices.
//
// Validation:
//
// The configuration is validated to ensure:
//   - The listen address is present
//   - Timing values are at or above their floors
//   - History and content-length limits are positive
//
// Invalid environment values are silently ignored, keeping the existing
// configuration. This prevents the server from failing due to typos in
// optional settings.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied by NewConfig.
const (
	// DefaultListen serves on all interfaces so LAN devices can reach
	// the hub without extra setup.
	DefaultListen = ":8737"

	// DefaultPollInterval balances clipboard responsiveness against CPU.
	DefaultPollInterval = 100 * time.Millisecond

	// DefaultMinSyncInterval spaces out accepted updates during bursts.
	DefaultMinSyncInterval = 50 * time.Millisecond

	// DefaultConflictWindow suppresses duplicate content arriving from
	// multiple devices at once.
	DefaultConflictWindow = time.Second

	// DefaultHistorySize is the number of retained history entries.
	DefaultHistorySize = 10

	// DefaultMaxContentLength is the largest content length accepted,
	// in characters.
	DefaultMaxContentLength = 50000
)

// MinPollInterval is the floor for clipboard polling. Polling faster
// than this burns CPU shelling out to clipboard tools for no benefit.
const MinPollInterval = 50 * time.Millisecond

// Config holds all configuration for a cliphub server.
type Config struct {
	// Network settings
	Listen string

	// Sync engine timing
	PollInterval    time.Duration
	MinSyncInterval time.Duration
	ConflictWindow  time.Duration

	// Content handling
	HistorySize           int
	MaxContentLength      int
	FilterPatterns        []string
	DisableBuiltinFilters bool

	// Behavior
	DisableAutoSync bool
	Headless        bool
	Verbose         bool
}

// NewConfig creates a config with defaults suitable for a typical LAN
// deployment. Users usually only need to change the listen address.
func NewConfig() *Config {
	return &Config{
		Listen:           DefaultListen,
		PollInterval:     DefaultPollInterval,
		MinSyncInterval:  DefaultMinSyncInterval,
		ConflictWindow:   DefaultConflictWindow,
		HistorySize:      DefaultHistorySize,
		MaxContentLength: DefaultMaxContentLength,
	}
}

// fileConfig mirrors Config with YAML-friendly types. Durations are
// written as strings ("100ms", "1s") and parsed on load.
type fileConfig struct {
	Listen                string   `yaml:"listen"`
	PollInterval          string   `yaml:"poll_interval"`
	MinSyncInterval       string   `yaml:"min_sync_interval"`
	ConflictWindow        string   `yaml:"conflict_window"`
	HistorySize           *int     `yaml:"history_size"`
	MaxContentLength      *int     `yaml:"max_content_length"`
	FilterPatterns        []string `yaml:"filter_patterns"`
	DisableBuiltinFilters *bool    `yaml:"disable_builtin_filters"`
	DisableAutoSync       *bool    `yaml:"disable_autosync"`
	Headless              *bool    `yaml:"headless"`
	Verbose               *bool    `yaml:"verbose"`
}

// LoadFile merges settings from a YAML file into the config. Fields
// absent from the file keep their current values. Unlike environment
// loading, a malformed file is an error: the user pointed us at it
// explicitly and silence would hide the mistake.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if fc.Listen != "" {
		c.Listen = fc.Listen
	}
	if err := mergeDuration(&c.PollInterval, fc.PollInterval, "poll_interval"); err != nil {
		return err
	}
	if err := mergeDuration(&c.MinSyncInterval, fc.MinSyncInterval, "min_sync_interval"); err != nil {
		return err
	}
	if err := mergeDuration(&c.ConflictWindow, fc.ConflictWindow, "conflict_window"); err != nil {
		return err
	}
	if fc.HistorySize != nil {
		c.HistorySize = *fc.HistorySize
	}
	if fc.MaxContentLength != nil {
		c.MaxContentLength = *fc.MaxContentLength
	}
	if len(fc.FilterPatterns) > 0 {
		c.FilterPatterns = fc.FilterPatterns
	}
	if fc.DisableBuiltinFilters != nil {
		c.DisableBuiltinFilters = *fc.DisableBuiltinFilters
	}
	if fc.DisableAutoSync != nil {
		c.DisableAutoSync = *fc.DisableAutoSync
	}
	if fc.Headless != nil {
		c.Headless = *fc.Headless
	}
	if fc.Verbose != nil {
		c.Verbose = *fc.Verbose
	}

	return nil
}

func mergeDuration(dst *time.Duration, value, field string) error {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", field, value, err)
	}
	*dst = d
	return nil
}

// LoadFromEnv loads configuration from environment variables, overriding
// any existing values. Invalid values are silently ignored.
func (c *Config) LoadFromEnv() {
	if listen := os.Getenv("CLIPHUB_LISTEN"); listen != "" {
		c.Listen = listen
	}

	if v := os.Getenv("CLIPHUB_POLL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.PollInterval = d
		}
	}

	if v := os.Getenv("CLIPHUB_MIN_SYNC_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.MinSyncInterval = d
		}
	}

	if v := os.Getenv("CLIPHUB_CONFLICT_WINDOW"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.ConflictWindow = d
		}
	}

	if v := os.Getenv("CLIPHUB_HISTORY_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.HistorySize = n
		}
	}

	if v := os.Getenv("CLIPHUB_MAX_CONTENT_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxContentLength = n
		}
	}

	if v := os.Getenv("CLIPHUB_FILTER_PATTERNS"); v != "" {
		patterns := strings.Split(v, ",")
		for i, p := range patterns {
			patterns[i] = strings.TrimSpace(p)
		}
		c.FilterPatterns = patterns
	}

	if v := os.Getenv("CLIPHUB_DISABLE_BUILTIN_FILTERS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.DisableBuiltinFilters = b
		}
	}

	if v := os.Getenv("CLIPHUB_DISABLE_AUTOSYNC"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.DisableAutoSync = b
		}
	}

	if v := os.Getenv("CLIPHUB_HEADLESS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Headless = b
		}
	}

	if v := os.Getenv("CLIPHUB_VERBOSE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Verbose = b
		}
	}
}

// Validate ensures the configuration is valid and internally consistent.
// Returns an error describing the first validation failure found.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen address is required")
	}

	if c.PollInterval < MinPollInterval {
		return fmt.Errorf("poll interval %s is below the %s minimum", c.PollInterval, MinPollInterval)
	}

	if c.MinSyncInterval <= 0 {
		return fmt.Errorf("min sync interval must be positive")
	}

	if c.ConflictWindow < c.MinSyncInterval {
		return fmt.Errorf("conflict window %s must not be shorter than the min sync interval %s",
			c.ConflictWindow, c.MinSyncInterval)
	}

	if c.HistorySize < 1 {
		return fmt.Errorf("history size must be at least 1")
	}

	if c.MaxContentLength < 1 {
		return fmt.Errorf("max content length must be at least 1")
	}

	return nil
}

// String returns a representation of the config suitable for logging.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Listen: %s, PollInterval: %s, MinSyncInterval: %s, ConflictWindow: %s, HistorySize: %d, MaxContentLength: %d, Headless: %v, Verbose: %v}",
		c.Listen, c.PollInterval, c.MinSyncInterval, c.ConflictWindow,
		c.HistorySize, c.MaxContentLength, c.Headless, c.Verbose,
	)
}
