// poller.go implements the local clipboard poller: a fixed-interval
// sampler that feeds OS clipboard changes into the engine as synthetic
// "local" updates. The poller only observes; it never causes a write
// back to the clipboard it just read (AutoWrite is false and the
// engine exempts the local source from write-back).

package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Veraticus/cliphub/pkg/clipboard"
	"github.com/Veraticus/cliphub/pkg/fingerprint"
)

const (
	// DefaultPollInterval is how often the OS clipboard is sampled.
	DefaultPollInterval = 100 * time.Millisecond

	// MinPollInterval is the floor for configurable polling.
	MinPollInterval = 50 * time.Millisecond
)

// Poller samples the OS clipboard and reports changes to the engine.
type Poller struct {
	engine    *Engine
	clipboard clipboard.Clipboard
	logger    Logger

	mu       sync.Mutex
	interval time.Duration
	reset    chan time.Duration
}

// NewPoller creates a poller. Interval defaults to DefaultPollInterval
// when zero and is clamped to MinPollInterval.
func NewPoller(engine *Engine, clip clipboard.Clipboard, interval time.Duration, logger Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if interval < MinPollInterval {
		interval = MinPollInterval
	}
	if logger == nil {
		logger = noopLogger{}
	}

	return &Poller{
		engine:    engine,
		clipboard: clip,
		logger:    logger,
		interval:  interval,
		reset:     make(chan time.Duration, 1),
	}
}

// Run polls until ctx is cancelled. Read errors skip the tick; the
// loop never exits on a clipboard failure.
func (p *Poller) Run(ctx context.Context) error {
	p.mu.Lock()
	interval := p.interval
	p.mu.Unlock()

	p.logger.Info("clipboard poller starting", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.poll()

		case interval := <-p.reset:
			ticker.Reset(interval)
			p.logger.Info("polling interval changed", "interval", interval)

		case <-ctx.Done():
			p.logger.Info("clipboard poller stopping")
			return ctx.Err()
		}
	}
}

// poll samples the clipboard once. The read happens outside any engine
// lock; the fingerprint comparison keeps unchanged content (including
// the engine's own just-written value) off the ingest path entirely.
func (p *Poller) poll() {
	content, err := p.clipboard.Read()
	if err != nil {
		// Permission denied, empty clipboard, transient OS error:
		// skip this tick.
		p.logger.Debug("clipboard read failed", "error", err)
		return
	}

	fp := fingerprint.Sum(content)
	if fp.IsZero() || fp == p.engine.LastAcceptedFingerprint() {
		return
	}

	p.engine.Ingest(Update{
		Content:   content,
		SourceID:  SourceLocal,
		Timestamp: time.Now(),
		AutoWrite: false,
	})
}

// SetInterval changes the polling interval, restarting the ticker.
// Intervals below MinPollInterval are refused.
func (p *Poller) SetInterval(interval time.Duration) error {
	if interval < MinPollInterval {
		return fmt.Errorf("polling interval %v below minimum %v", interval, MinPollInterval)
	}

	p.mu.Lock()
	p.interval = interval
	p.mu.Unlock()

	// Replace any pending reset; only the latest interval matters.
	select {
	case <-p.reset:
	default:
	}
	p.reset <- interval
	return nil
}

// Interval returns the current polling interval.
func (p *Poller) Interval() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.interval
}
