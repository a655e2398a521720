// update.go defines the inbound update and the typed results of
// ingesting one. An Update is transient: it exists for a single pass
// through the engine's decision pipeline.

package engine

import (
	"time"

	"github.com/Veraticus/cliphub/pkg/fingerprint"
)

// Sentinel source ids. Everything else is a device/session id owned by
// the transport layer.
const (
	// SourceLocal marks updates from the OS clipboard poller. Local
	// updates observe the clipboard; they never write back to it.
	SourceLocal = "local"

	// SourceAPI marks programmatic updates injected over the REST
	// surface. Treated as fully remote for write-back purposes.
	SourceAPI = "api"

	// SourceHistory marks updates replayed from the history store.
	// Like SourceAPI, these command the OS clipboard.
	SourceHistory = "history"
)

// Update is a single inbound clipboard change.
type Update struct {
	// Content is the clipboard payload.
	Content string

	// SourceID is the originating device id or one of the sentinel
	// sources above.
	SourceID string

	// Timestamp is the creation time. The engine assigns it on ingest
	// when zero; device clocks are not trusted for ordering.
	Timestamp time.Time

	// AutoWrite tells recipients to write the content to their OS
	// clipboard. False for poller updates reporting what the OS
	// clipboard already holds.
	AutoWrite bool

	// Forced bypasses rate limiting; used for explicit resync requests
	// and history replay.
	Forced bool

	// seq is assigned by the engine on first ingest and survives
	// requeueing, so a deferred update never conflicts with the
	// window entry it recorded itself.
	seq uint64
}

// NewUpdate creates an update with AutoWrite enabled, the common case
// for device- and API-originated changes.
func NewUpdate(content, sourceID string) Update {
	return Update{
		Content:   content,
		SourceID:  sourceID,
		Timestamp: time.Now(),
		AutoWrite: true,
	}
}

// Status is the outcome class of an ingested update.
type Status int

const (
	// StatusAccepted means the update won and was fanned out.
	StatusAccepted Status = iota

	// StatusQueued means the update was deferred by rate limiting and
	// may be superseded by a newer one before it fires.
	StatusQueued

	// StatusRejected means the content filter refused the update.
	StatusRejected

	// StatusIgnored means the update was a no-op: an echo, a conflict
	// duplicate, or blocked by the global pause.
	StatusIgnored
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusAccepted:
		return "accepted"
	case StatusQueued:
		return "queued"
	case StatusRejected:
		return "rejected"
	case StatusIgnored:
		return "ignored"
	default:
		return "unknown"
	}
}

// Ignore/reject reasons reported in Result.
const (
	ReasonEcho      = "echo"
	ReasonDuplicate = "duplicate"
	ReasonPaused    = "paused"
)

// Result is the typed outcome of Ingest.
type Result struct {
	Status Status
	Reason string
}

// Broadcast is the outbound event delivered to each fan-out target.
type Broadcast struct {
	Content     string                  `json:"content"`
	From        string                  `json:"from"`
	Timestamp   time.Time               `json:"timestamp"`
	Fingerprint fingerprint.Fingerprint `json:"fingerprint"`
	AutoWrite   bool                    `json:"auto_write"`
}

// Broadcaster delivers an event to a single device. Failures must be
// isolated per target: one failing device never blocks fan-out to the
// others.
type Broadcaster interface {
	Send(deviceID string, b Broadcast) error
}
