// events.go defines the wire protocol spoken over each device channel.
// Inbound events form a closed set dispatched by exhaustive matching;
// an unknown kind is a protocol error, not a silently dropped message.
//
// Every frame is a JSON envelope: {"kind": ..., "payload": ...}.

package hub

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Veraticus/cliphub/pkg/history"
)

// Kind identifies an event on the device channel.
type Kind string

// Inbound kinds (device to hub).
const (
	KindRegister       Kind = "register"
	KindUpdate         Kind = "update"
	KindToggleAutoSync Kind = "toggle_autosync"
	KindRequestHistory Kind = "request_history"
	KindPing           Kind = "ping"
)

// Outbound kinds (hub to device).
const (
	KindClipboard   Kind = "clipboard"
	KindRegistered  Kind = "registered"
	KindHistory     Kind = "history"
	KindRejected    Kind = "rejected"
	KindPong        Kind = "pong"
	KindDeviceCount Kind = "device_count"
)

// ErrUnknownKind wraps the offending kind in a protocol error.
type ErrUnknownKind struct {
	Kind Kind
}

func (e *ErrUnknownKind) Error() string {
	return fmt.Sprintf("unknown event kind: %q", e.Kind)
}

// envelope is the base structure for all channel frames.
type envelope struct {
	Kind    Kind            `json:"kind"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// InboundEvent is implemented by every event a device may send.
type InboundEvent interface {
	inboundKind() Kind
}

// RegisterEvent announces a device and its metadata.
type RegisterEvent struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	AutoSync *bool  `json:"auto_sync,omitempty"` // defaults to true
}

func (*RegisterEvent) inboundKind() Kind { return KindRegister }

// UpdateEvent carries a clipboard change from a device.
type UpdateEvent struct {
	Content   string     `json:"content"`
	Timestamp *time.Time `json:"timestamp,omitempty"`  // hub assigns if absent
	AutoWrite *bool      `json:"auto_write,omitempty"` // defaults to true
	Forced    bool       `json:"forced,omitempty"`
}

func (*UpdateEvent) inboundKind() Kind { return KindUpdate }

// ToggleAutoSyncEvent flips the device's own fan-out preference.
type ToggleAutoSyncEvent struct {
	Enabled bool `json:"enabled"`
}

func (*ToggleAutoSyncEvent) inboundKind() Kind { return KindToggleAutoSync }

// RequestHistoryEvent asks for the current history snapshot.
type RequestHistoryEvent struct{}

func (*RequestHistoryEvent) inboundKind() Kind { return KindRequestHistory }

// PingEvent is a keepalive.
type PingEvent struct {
	Timestamp int64 `json:"timestamp,omitempty"`
}

func (*PingEvent) inboundKind() Kind { return KindPing }

// ParseInbound decodes a channel frame into its typed event.
func ParseInbound(data []byte) (InboundEvent, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("malformed event frame: %w", err)
	}

	var event InboundEvent
	switch env.Kind {
	case KindRegister:
		event = &RegisterEvent{}
	case KindUpdate:
		event = &UpdateEvent{}
	case KindToggleAutoSync:
		event = &ToggleAutoSyncEvent{}
	case KindRequestHistory:
		event = &RequestHistoryEvent{}
	case KindPing:
		event = &PingEvent{}
	default:
		return nil, &ErrUnknownKind{Kind: env.Kind}
	}

	if len(env.Payload) > 0 {
		if err := json.Unmarshal(env.Payload, event); err != nil {
			return nil, fmt.Errorf("malformed %s payload: %w", env.Kind, err)
		}
	}
	return event, nil
}

// Outbound payloads.

// RegisteredPayload acknowledges a registration with the assigned id.
type RegisteredPayload struct {
	DeviceID string `json:"device_id"`
}

// HistoryPayload carries a history snapshot.
type HistoryPayload struct {
	Items []history.Item `json:"items"`
}

// RejectedPayload tells the originating device why its update was
// refused. Other devices never see rejected content.
type RejectedPayload struct {
	Reason string `json:"reason"`
}

// PongPayload answers a ping with the echoed timestamp.
type PongPayload struct {
	Timestamp int64 `json:"timestamp,omitempty"`
}

// DeviceCountPayload reports connected-device totals.
type DeviceCountPayload struct {
	Count         int `json:"count"`
	AutoSyncCount int `json:"auto_sync_count"`
}

// MarshalEvent wraps a payload in its envelope.
func MarshalEvent(kind Kind, payload any) ([]byte, error) {
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s payload: %w", kind, err)
		}
		raw = data
	}
	return json.Marshal(envelope{Kind: kind, Payload: raw})
}
