package engine

import (
	"sync/atomic"
	"time"
)

// Stats contains engine counters. Counter fields are updated atomically;
// read them through Engine.Stats which returns a consistent copy.
type Stats struct {
	StartTime    time.Time `json:"start_time"`
	LastAccepted time.Time `json:"last_accepted"`

	Accepted    uint64 `json:"accepted"`
	Queued      uint64 `json:"queued"`
	Rejected    uint64 `json:"rejected"`
	Ignored     uint64 `json:"ignored"`
	Broadcasts  uint64 `json:"broadcasts"`
	WriteErrors uint64 `json:"write_errors"`
	SendErrors  uint64 `json:"send_errors"`
}

// Stats returns a copy of the current engine statistics.
func (e *Engine) Stats() *Stats {
	e.mu.Lock()
	lastAccepted := e.lastAcceptedAt
	e.mu.Unlock()

	return &Stats{
		StartTime:    e.stats.StartTime,
		LastAccepted: lastAccepted,
		Accepted:     atomic.LoadUint64(&e.stats.Accepted),
		Queued:       atomic.LoadUint64(&e.stats.Queued),
		Rejected:     atomic.LoadUint64(&e.stats.Rejected),
		Ignored:      atomic.LoadUint64(&e.stats.Ignored),
		Broadcasts:   atomic.LoadUint64(&e.stats.Broadcasts),
		WriteErrors:  atomic.LoadUint64(&e.stats.WriteErrors),
		SendErrors:   atomic.LoadUint64(&e.stats.SendErrors),
	}
}
