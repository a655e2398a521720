// Package main implements the cliphub server for LAN clipboard synchronization.
//
// # Overview
//
// Cliphub is a hub-and-spoke clipboard synchronization service. One machine
// runs the hub; phones, tablets, and other computers connect to it over
// WebSocket and every accepted clipboard change fans out to the rest. The
// hub's own OS clipboard participates as just another device.
//
// # CLI Structure
//
// The application follows a standard command-line interface pattern with:
//
//   - Flag-based configuration using Go's flag package
//   - An optional YAML configuration file
//   - Environment variable support (CLIPHUB_* variables)
//   - Structured logging with configurable verbosity levels
//   - Graceful shutdown handling with signal interception
//
// # Startup Sequence
//
// The application initialization follows this sequence:
//
//  1. Parse command-line flags, the config file, and environment variables
//  2. Validate configuration (listen address, timing floors)
//  3. Initialize platform-specific clipboard access
//  4. Build the content filter, history store, and device registry
//  5. Start the sync engine and the local clipboard poller
//  6. Serve the HTTP API and WebSocket device channels
//
// # Graceful Shutdown
//
// The application handles shutdown gracefully through:
//
//   - Signal handling for SIGINT (Ctrl+C) and SIGTERM
//   - Context cancellation propagated to all components
//   - 10-second shutdown timeout to ensure cleanup
//   - Final statistics logging before exit
//
// # Example Usage
//
//	# Start a hub on the default port
//	cliphub
//
//	# Start a hub on a specific address
//	cliphub --listen 192.168.1.10:8737
//
//	# Run headless on a server with no display
//	cliphub --headless
//
//	# Load settings from a file
//	cliphub --config /etc/cliphub.yaml
//
//	# Talk to a running hub
//	cliphub copy "Hello, World!"
//	cliphub paste
//	cliphub status
package main

import (
	"flag"
	"fmt"
	"os"
)

var (
	// Version information (set by build flags)
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// main handles command-line parsing and configuration loading, then hands
// off to run for the component lifecycle.
func main() {
	// Client subcommands (copy, paste, status) talk to a running hub
	// and exit without starting one.
	if handled, err := runClientCommand(os.Args[1:]); handled {
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	cfg, showVersion, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	if showVersion {
		fmt.Printf("cliphub version %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	logger := newLogger(cfg.Verbose)

	logger.Info("starting cliphub",
		"version", version,
		"listen", cfg.Listen,
		"headless", cfg.Headless,
	)

	if cfg.Verbose {
		logger.Debug("configuration", "config", cfg.String())
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("cliphub failed", "error", err)
		os.Exit(1)
	}
}

// usage prints flag help with examples.
func usage(fs *flag.FlagSet) func() {
	return func() {
		fmt.Fprintf(os.Stderr, "cliphub - LAN clipboard synchronization hub\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  %s [options]          Start a hub\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s copy [text]        Copy to a running hub\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s paste              Print the hub's clipboard\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s status [--json]    Check a running hub\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Examples:\n")
		fmt.Fprintf(os.Stderr, "  # Start a hub on the default port\n")
		fmt.Fprintf(os.Stderr, "  %s\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  # Bind to a specific interface\n")
		fmt.Fprintf(os.Stderr, "  %s --listen 192.168.1.10:8737\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  # Run on a headless server\n")
		fmt.Fprintf(os.Stderr, "  %s --headless\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}
}
