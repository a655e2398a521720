// Package main - flags.go handles command-line parsing for the cliphub CLI.
//
// Precedence follows the config package's documented order: flags override
// environment variables, which override the config file, which overrides
// defaults. Parsing therefore runs in two passes: the config file and
// environment are merged first, and the flag set is applied on top by
// re-walking the flags the user actually provided.
package main

import (
	"flag"
	"strings"

	"github.com/Veraticus/cliphub/pkg/config"
)

// stringSliceFlag implements flag.Value for repeated string flags.
// Values can be repeated (--filter-pattern a --filter-pattern b) or
// comma-separated (--filter-pattern a,b).
type stringSliceFlag []string

// String returns the string representation of the flag value.
func (s *stringSliceFlag) String() string {
	if s == nil || len(*s) == 0 {
		return ""
	}
	return strings.Join(*s, ",")
}

// Set adds a value to the string slice.
func (s *stringSliceFlag) Set(value string) error {
	for _, v := range strings.Split(value, ",") {
		v = strings.TrimSpace(v)
		if v != "" {
			*s = append(*s, v)
		}
	}
	return nil
}

// Get returns the underlying string slice.
func (s *stringSliceFlag) Get() []string {
	if s == nil {
		return nil
	}
	return []string(*s)
}

// parseFlags builds the final configuration from all sources and reports
// whether the user asked for version output.
func parseFlags(args []string) (*config.Config, bool, error) {
	cfg := config.NewConfig()

	fs := flag.NewFlagSet("cliphub", flag.ExitOnError)
	fs.Usage = usage(fs)

	var (
		configFile     string
		filterPatterns stringSliceFlag
	)

	fs.StringVar(&configFile, "config", "", "Path to YAML configuration file")
	listen := fs.String("listen", cfg.Listen, "HTTP listen address")
	pollInterval := fs.Duration("poll-interval", cfg.PollInterval, "Local clipboard polling interval")
	minSyncInterval := fs.Duration("min-sync-interval", cfg.MinSyncInterval, "Minimum spacing between accepted updates")
	conflictWindow := fs.Duration("conflict-window", cfg.ConflictWindow, "Duplicate-suppression window")
	historySize := fs.Int("history-size", cfg.HistorySize, "Number of history entries to retain")
	maxContentLength := fs.Int("max-content-length", cfg.MaxContentLength, "Largest clipboard content accepted, in characters")
	fs.Var(&filterPatterns, "filter-pattern", "Extra sensitive-content regexp (can be repeated or comma-separated)")
	noBuiltinFilters := fs.Bool("no-builtin-filters", false, "Skip the built-in sensitive-content patterns")
	noAutoSync := fs.Bool("no-autosync", false, "Start with automatic syncing paused")
	headless := fs.Bool("headless", false, "Run without a local OS clipboard")
	verbose := fs.Bool("v", false, "Enable verbose logging")
	showVersion := fs.Bool("version", false, "Show version information")

	if err := fs.Parse(args); err != nil {
		return nil, false, err
	}
	if *showVersion {
		return cfg, true, nil
	}

	// File, then environment, then the flags the user actually set.
	if configFile != "" {
		if err := cfg.LoadFile(configFile); err != nil {
			return nil, false, err
		}
	}
	cfg.LoadFromEnv()

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "listen":
			cfg.Listen = *listen
		case "poll-interval":
			cfg.PollInterval = *pollInterval
		case "min-sync-interval":
			cfg.MinSyncInterval = *minSyncInterval
		case "conflict-window":
			cfg.ConflictWindow = *conflictWindow
		case "history-size":
			cfg.HistorySize = *historySize
		case "max-content-length":
			cfg.MaxContentLength = *maxContentLength
		case "filter-pattern":
			cfg.FilterPatterns = filterPatterns.Get()
		case "no-builtin-filters":
			cfg.DisableBuiltinFilters = *noBuiltinFilters
		case "no-autosync":
			cfg.DisableAutoSync = *noAutoSync
		case "headless":
			cfg.Headless = *headless
		case "v":
			cfg.Verbose = *verbose
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, false, err
	}

	return cfg, false, nil
}
