// Package main - logger.go sets up structured logging for the cliphub server.
//
// The server logs through log/slog with a text handler on stderr. Each
// component attaches its own "component" attribute, so a single handler
// serves the whole process. The sync engine takes a narrow logging
// interface instead of *slog.Logger; engineLogger adapts one to the other.
package main

import (
	"log/slog"
	"os"

	"github.com/Veraticus/cliphub/pkg/engine"
)

// newLogger creates the process-wide logger. Verbose mode lowers the
// level to debug.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(handler)
}

// engineLogger adapts *slog.Logger to the engine.Logger interface.
type engineLogger struct {
	logger *slog.Logger
}

func newEngineLogger(logger *slog.Logger, component string) engineLogger {
	return engineLogger{logger: logger.With("component", component)}
}

func (e engineLogger) Debug(msg string, keysAndValues ...any) {
	e.logger.Debug(msg, keysAndValues...)
}

func (e engineLogger) Info(msg string, keysAndValues ...any) {
	e.logger.Info(msg, keysAndValues...)
}

func (e engineLogger) Warn(msg string, keysAndValues ...any) {
	e.logger.Warn(msg, keysAndValues...)
}

func (e engineLogger) Error(msg string, keysAndValues ...any) {
	e.logger.Error(msg, keysAndValues...)
}

var _ engine.Logger = engineLogger{}
