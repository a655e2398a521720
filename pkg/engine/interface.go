// Package engine implements the clipboard synchronization core: the
// conflict-resolution and fan-out state machine that sits between the
// device channels, the OS clipboard, and the history store.
//
// One Engine instance exists per process. Updates arrive concurrently
// from many device connections, the REST surface, and the local
// clipboard poller; all engine state mutation is serialized through a
// single mutex-guarded critical section. Side effects (OS clipboard
// writes, broadcasts) run off that critical path so ingestion never
// blocks on I/O.
//
// Decision pipeline, in order:
//
//  1. Global gate: when auto-sync is paused, device updates are ignored;
//     sentinel sources (local poller, API, history replay) pass through.
//  2. Echo suppression: an update whose fingerprint equals the last
//     accepted fingerprint is a no-op. This is what stops a device from
//     re-reporting the broadcast it just applied.
//  3. Rate limiting: updates closer together than the minimum sync
//     interval are deferred in a single-slot debounce; a newer deferred
//     update replaces the older one (last write wins, not FIFO).
//  4. Conflict window: a fingerprint seen again within the window is a
//     duplicate from a near-simultaneous device and is dropped, which
//     prevents ping-pong broadcasts.
//  5. Content filter: sensitive or oversized content is never stored or
//     broadcast, but it still becomes "latest known" so the same
//     rejected value cannot re-trigger the pipeline in a storm.
//  6. Accept: update state, write the OS clipboard when the change came
//     from a remote or programmatic source, record history, and fan out
//     to every auto-sync device except the originator.
package engine

import (
	"errors"
	"time"

	"github.com/Veraticus/cliphub/pkg/clipboard"
	"github.com/Veraticus/cliphub/pkg/filter"
	"github.com/Veraticus/cliphub/pkg/history"
	"github.com/Veraticus/cliphub/pkg/registry"
)

// Defaults for engine timing configuration.
const (
	// DefaultMinSyncInterval is the minimum time between accepted
	// updates; faster arrivals are coalesced.
	DefaultMinSyncInterval = 50 * time.Millisecond

	// DefaultConflictWindow is how long a fingerprint is remembered
	// for duplicate-conflict detection.
	DefaultConflictWindow = 1000 * time.Millisecond

	// DefaultPruneInterval is how often expired conflict-window
	// entries are removed.
	DefaultPruneInterval = 10 * time.Second

	// DefaultWriteTimeout bounds OS clipboard writes on the accept
	// path; a slower write is treated as failed.
	DefaultWriteTimeout = 500 * time.Millisecond
)

// Logger is the logging interface used by the engine.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// noopLogger implements Logger with no operations.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Config holds engine configuration and collaborators.
type Config struct {
	Clipboard   clipboard.Clipboard
	Broadcaster Broadcaster
	Registry    *registry.Registry
	History     *history.Store
	Filter      *filter.Filter
	Logger      Logger

	MinSyncInterval time.Duration
	ConflictWindow  time.Duration
	PruneInterval   time.Duration
	WriteTimeout    time.Duration

	// AutoSyncDisabled starts the engine with the global gate closed.
	AutoSyncDisabled bool
}

// Validate checks required collaborators and applies defaults.
func (c *Config) Validate() error {
	if c.Clipboard == nil {
		return errors.New("clipboard is required")
	}
	if c.Broadcaster == nil {
		return errors.New("broadcaster is required")
	}
	if c.Registry == nil {
		return errors.New("registry is required")
	}
	if c.History == nil {
		return errors.New("history store is required")
	}
	if c.Filter == nil {
		return errors.New("content filter is required")
	}

	if c.MinSyncInterval <= 0 {
		c.MinSyncInterval = DefaultMinSyncInterval
	}
	if c.ConflictWindow <= 0 {
		c.ConflictWindow = DefaultConflictWindow
	}
	if c.PruneInterval <= 0 {
		c.PruneInterval = DefaultPruneInterval
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = DefaultWriteTimeout
	}
	if c.Logger == nil {
		c.Logger = noopLogger{}
	}

	return nil
}
