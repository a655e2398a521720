package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Veraticus/cliphub/pkg/fingerprint"
)

// windowEntry is one conflict-window record: when the fingerprint was
// last seen and which update recorded it.
type windowEntry struct {
	at  time.Time
	seq uint64
}

// Engine is the synchronization core. See the package documentation for
// the decision pipeline.
type Engine struct {
	config *Config
	logger Logger

	// lastContent/lastFP track the latest known value, including
	// filter-rejected content, for echo suppression. The accepted pair
	// only ever holds content that passed the filter; it is what resync
	// and the read API serve.
	mu              sync.Mutex
	lastContent     string
	lastFP          fingerprint.Fingerprint
	acceptedContent string
	acceptedFP      fingerprint.Fingerprint
	lastAcceptedAt  time.Time
	autoSync        bool
	seq             uint64
	recent          map[fingerprint.Fingerprint]windowEntry
	slot            debounceSlot

	stats Stats
}

// New creates a sync engine from config.
func New(config *Config) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Engine{
		config:   config,
		logger:   config.Logger,
		autoSync: !config.AutoSyncDisabled,
		recent:   make(map[fingerprint.Fingerprint]windowEntry),
		stats: Stats{
			StartTime: time.Now(),
		},
	}, nil
}

// Run blocks until ctx is cancelled, driving the periodic maintenance
// that prunes expired conflict-window entries. The engine accepts
// Ingest calls as soon as New returns; Run only owns housekeeping.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Info("sync engine starting",
		"min_sync_interval", e.config.MinSyncInterval,
		"conflict_window", e.config.ConflictWindow,
	)

	ticker := time.NewTicker(e.config.PruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			e.pruneConflictWindow()

		case <-ctx.Done():
			e.mu.Lock()
			e.slot.Cancel()
			e.mu.Unlock()
			e.logger.Info("sync engine stopping")
			return ctx.Err()
		}
	}
}

// Ingest runs one update through the decision pipeline and returns the
// typed outcome. It never blocks on network I/O: broadcasts and OS
// clipboard writes happen off the critical path with their failures
// contained per target.
func (e *Engine) Ingest(update Update) Result {
	return e.ingest(update)
}

func (e *Engine) ingest(update Update) Result {
	if update.Timestamp.IsZero() {
		update.Timestamp = time.Now()
	}

	e.mu.Lock()
	if update.seq == 0 {
		e.seq++
		update.seq = e.seq
	}
	now := time.Now()

	// Step 1: global gate. Sentinel sources bypass the pause so the
	// local clipboard and explicit API actions keep working while
	// device sync is suspended.
	if !e.autoSync && !isSentinelSource(update.SourceID) {
		e.mu.Unlock()
		atomic.AddUint64(&e.stats.Ignored, 1)
		e.logger.Debug("sync paused, ignoring device update", "source", update.SourceID)
		return Result{Status: StatusIgnored, Reason: ReasonPaused}
	}

	// Invalid updates are refused before fingerprinting.
	if update.Content == "" {
		e.mu.Unlock()
		atomic.AddUint64(&e.stats.Rejected, 1)
		return Result{Status: StatusRejected, Reason: "empty"}
	}

	fp := fingerprint.Sum(update.Content)

	// Step 2: echo suppression. A device reporting back the content it
	// just received is a no-op.
	if fp == e.lastFP {
		e.mu.Unlock()
		atomic.AddUint64(&e.stats.Ignored, 1)
		e.logger.Debug("echo suppressed", "source", update.SourceID, "fingerprint", fp.String())
		return Result{Status: StatusIgnored, Reason: ReasonEcho}
	}

	// Step 3: rate limiting. Defer the update for the remainder of the
	// interval; a newer arrival replaces it.
	if !update.Forced && !e.lastAcceptedAt.IsZero() {
		if elapsed := now.Sub(e.lastAcceptedAt); elapsed < e.config.MinSyncInterval {
			remaining := e.config.MinSyncInterval - elapsed
			e.slot.Arm(update, remaining, e.fireDeferred)
			e.mu.Unlock()
			atomic.AddUint64(&e.stats.Queued, 1)
			e.logger.Debug("update queued",
				"source", update.SourceID,
				"retry_in", remaining,
			)
			return Result{Status: StatusQueued}
		}
	}

	// Step 4: conflict window. A fingerprint seen again within the
	// window means two devices raced with the same content; one win is
	// enough. The entry is refreshed regardless of outcome, but an
	// update never conflicts with the entry it recorded itself.
	entry, seen := e.recent[fp]
	e.recent[fp] = windowEntry{at: now, seq: update.seq}
	if seen && now.Sub(entry.at) < e.config.ConflictWindow && entry.seq != update.seq {
		e.mu.Unlock()
		atomic.AddUint64(&e.stats.Ignored, 1)
		e.logger.Debug("conflict duplicate dropped", "source", update.SourceID, "fingerprint", fp.String())
		return Result{Status: StatusIgnored, Reason: ReasonDuplicate}
	}

	// Step 5: content filter. Rejected content is never stored or
	// broadcast, but it still becomes the latest known state so the
	// same value cannot re-trigger the pipeline.
	if reason, rejected := e.config.Filter.Check(update.Content); rejected {
		e.lastContent = update.Content
		e.lastFP = fp
		e.mu.Unlock()
		atomic.AddUint64(&e.stats.Rejected, 1)
		e.logger.Info("update rejected",
			"source", update.SourceID,
			"reason", reason,
			"length", len(update.Content),
		)
		return Result{Status: StatusRejected, Reason: string(reason)}
	}

	// Step 6: accept. State changes while holding the lock, so the
	// poller sees the new fingerprint before the OS write can land.
	e.lastContent = update.Content
	e.lastFP = fp
	e.acceptedContent = update.Content
	e.acceptedFP = fp
	e.lastAcceptedAt = now
	writeBack := update.AutoWrite && update.SourceID != SourceLocal
	e.mu.Unlock()

	atomic.AddUint64(&e.stats.Accepted, 1)
	e.logger.Info("update accepted",
		"source", update.SourceID,
		"length", len(update.Content),
		"fingerprint", fp.String(),
	)

	if writeBack {
		go e.writeClipboard(update.Content)
	}

	e.config.History.Record(update.Content, fp, update.Timestamp)

	e.fanOut(update.SourceID, Broadcast{
		Content:     update.Content,
		From:        update.SourceID,
		Timestamp:   update.Timestamp,
		Fingerprint: fp,
		AutoWrite:   true,
	})

	return Result{Status: StatusAccepted}
}

// fireDeferred re-submits the deferred update when its timer expires.
func (e *Engine) fireDeferred() {
	e.mu.Lock()
	update, ok := e.slot.Take()
	e.mu.Unlock()

	if !ok {
		return
	}
	e.ingest(update)
}

// fanOut sends the broadcast to every auto-sync device except the
// originator. Each send runs in its own goroutine with its failure
// contained, so one slow or dead device cannot block the rest.
func (e *Engine) fanOut(sourceID string, b Broadcast) {
	targets := e.config.Registry.AutoSyncTargets(sourceID)
	for _, target := range targets {
		go e.sendTo(target, b)
	}
}

func (e *Engine) sendTo(target string, b Broadcast) {
	if err := e.config.Broadcaster.Send(target, b); err != nil {
		atomic.AddUint64(&e.stats.SendErrors, 1)
		e.logger.Warn("broadcast failed", "device", target, "error", err)
		return
	}
	atomic.AddUint64(&e.stats.Broadcasts, 1)
}

// writeClipboard writes accepted content to the OS clipboard with a
// bounded wait. Failure is logged and never blocks the fan-out, which
// has already been dispatched.
func (e *Engine) writeClipboard(content string) {
	done := make(chan error, 1)
	go func() {
		done <- e.config.Clipboard.Write(content)
	}()

	select {
	case err := <-done:
		if err != nil {
			atomic.AddUint64(&e.stats.WriteErrors, 1)
			e.logger.Error("clipboard write failed", "error", err)
		}
	case <-time.After(e.config.WriteTimeout):
		atomic.AddUint64(&e.stats.WriteErrors, 1)
		e.logger.Error("clipboard write timed out", "timeout", e.config.WriteTimeout)
	}
}

// pruneConflictWindow deletes expired entries by age. Live entries are
// left untouched so pruning cannot race an insert into dropping one.
func (e *Engine) pruneConflictWindow() {
	cutoff := time.Now().Add(-e.config.ConflictWindow)

	e.mu.Lock()
	pruned := 0
	for fp, entry := range e.recent {
		if entry.at.Before(cutoff) {
			delete(e.recent, fp)
			pruned++
		}
	}
	remaining := len(e.recent)
	e.mu.Unlock()

	if pruned > 0 {
		e.logger.Debug("pruned conflict window", "removed", pruned, "remaining", remaining)
	}
}

// Rebroadcast re-sends the current accepted content to every auto-sync
// device except the excluded id, for explicit resync requests. Returns
// the number of targets. No engine state changes.
func (e *Engine) Rebroadcast(excluding string) int {
	e.mu.Lock()
	content, fp, at := e.acceptedContent, e.acceptedFP, e.lastAcceptedAt
	e.mu.Unlock()

	if fp.IsZero() || content == "" {
		return 0
	}

	targets := e.config.Registry.AutoSyncTargets(excluding)
	b := Broadcast{
		Content:     content,
		From:        SourceAPI,
		Timestamp:   at,
		Fingerprint: fp,
		AutoWrite:   true,
	}
	for _, target := range targets {
		go e.sendTo(target, b)
	}
	return len(targets)
}

// LastAcceptedFingerprint returns the fingerprint of the last accepted
// (or last rejected-but-latest-known) content. The poller compares
// against this to avoid re-reporting the engine's own writes.
func (e *Engine) LastAcceptedFingerprint() fingerprint.Fingerprint {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastFP
}

// Current returns the last accepted content, its fingerprint, and when
// it was accepted. Filter-rejected content is never returned here.
func (e *Engine) Current() (string, fingerprint.Fingerprint, time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.acceptedContent, e.acceptedFP, e.lastAcceptedAt
}

// SetAutoSync opens or closes the global gate. Pausing leaves devices
// connected; their updates are simply ignored until sync resumes.
func (e *Engine) SetAutoSync(enabled bool) {
	e.mu.Lock()
	e.autoSync = enabled
	e.mu.Unlock()
	e.logger.Info("auto-sync toggled", "enabled", enabled)
}

// AutoSyncEnabled reports the global gate state.
func (e *Engine) AutoSyncEnabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.autoSync
}

// isSentinelSource reports whether the source id is one of the trusted
// non-device paths.
func isSentinelSource(sourceID string) bool {
	switch sourceID {
	case SourceLocal, SourceAPI, SourceHistory:
		return true
	default:
		return false
	}
}
