package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Veraticus/cliphub/pkg/clipboard"
	"github.com/Veraticus/cliphub/pkg/config"
	"github.com/Veraticus/cliphub/pkg/engine"
	"github.com/Veraticus/cliphub/pkg/filter"
	"github.com/Veraticus/cliphub/pkg/history"
	"github.com/Veraticus/cliphub/pkg/hub"
	"github.com/Veraticus/cliphub/pkg/registry"
)

// shutdownTimeout bounds graceful shutdown of the HTTP server and the
// sync engine.
const shutdownTimeout = 10 * time.Second

// run initializes all components in dependency order, starts the
// background services, and blocks until a shutdown signal arrives or a
// component fails.
func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	logger.Info("initializing clipboard")
	clip, poll := createClipboard(cfg, logger)

	contentFilter, err := filter.New(filter.Config{
		MaxContentLength: cfg.MaxContentLength,
		Patterns:         cfg.FilterPatterns,
		DisableBuiltin:   cfg.DisableBuiltinFilters,
	})
	if err != nil {
		return fmt.Errorf("failed to build content filter: %w", err)
	}

	hist := history.New(cfg.HistorySize)
	reg := registry.New()
	deviceHub := hub.New(reg, hist, logger)

	logger.Info("initializing sync engine")
	eng, err := engine.New(&engine.Config{
		Clipboard:        clip,
		Broadcaster:      deviceHub,
		Registry:         reg,
		History:          hist,
		Filter:           contentFilter,
		Logger:           newEngineLogger(logger, "engine"),
		MinSyncInterval:  cfg.MinSyncInterval,
		ConflictWindow:   cfg.ConflictWindow,
		AutoSyncDisabled: cfg.DisableAutoSync,
	})
	if err != nil {
		return fmt.Errorf("failed to create sync engine: %w", err)
	}
	deviceHub.BindEngine(eng)

	var poller *engine.Poller
	if poll {
		poller = engine.NewPoller(eng, clip, cfg.PollInterval, newEngineLogger(logger, "poller"))
	}

	server, err := hub.NewServer(&hub.ServerConfig{
		Hub:      deviceHub,
		Engine:   eng,
		Poller:   poller,
		Registry: reg,
		History:  hist,
		Logger:   logger,
		Addr:     cfg.Listen,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	engineDone := make(chan error, 1)
	go func() {
		engineDone <- eng.Run(ctx)
	}()

	if poller != nil {
		go func() {
			if err := poller.Run(ctx); err != nil {
				logger.Error("poller stopped", "error", err)
			}
		}()
	}

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- server.Start()
	}()

	logger.Info("cliphub is running",
		"listen", cfg.Listen,
		"polling", poller != nil,
	)

	engineStopped := false
	select {
	case sig := <-sigCh:
		logger.Info("received signal, shutting down", "signal", sig.String())

	case err := <-serverDone:
		if err != nil {
			cancel()
			return fmt.Errorf("http server error: %w", err)
		}

	case err := <-engineDone:
		engineStopped = true
		cancel()
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("sync engine error: %w", err)
		}
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := server.Stop(shutdownCtx); err != nil {
		logger.Error("http server shutdown failed", "error", err)
	}

	if !engineStopped {
		select {
		case <-engineDone:
			logger.Debug("sync engine stopped gracefully")
		case <-shutdownCtx.Done():
			logger.Error("sync engine shutdown timeout")
		}
	}

	stats := eng.Stats()
	logger.Info("final statistics",
		"accepted", stats.Accepted,
		"rejected", stats.Rejected,
		"ignored", stats.Ignored,
		"broadcasts", stats.Broadcasts,
		"write_errors", stats.WriteErrors,
		"send_errors", stats.SendErrors,
		"uptime", time.Since(stats.StartTime).Round(time.Second).String(),
	)

	logger.Info("cliphub stopped")
	return nil
}

// createClipboard picks the clipboard implementation. Headless mode and
// platforms without a clipboard tool fall back to an in-memory clipboard
// with polling disabled; the hub still relays between devices.
func createClipboard(cfg *config.Config, logger *slog.Logger) (clipboard.Clipboard, bool) {
	if cfg.Headless {
		return clipboard.NewMemoryClipboard(), false
	}

	clip, err := clipboard.NewPlatformClipboard()
	if err != nil {
		logger.Warn("no OS clipboard available, running as a relay", "error", err)
		return clipboard.NewMemoryClipboard(), false
	}

	if _, err := clip.Read(); err != nil {
		logger.Warn("clipboard access test failed, running as a relay", "error", err)
		return clipboard.NewMemoryClipboard(), false
	}

	return clip, true
}
