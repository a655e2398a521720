package hub

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInbound(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	tests := []struct {
		name  string
		frame string
		want  InboundEvent
	}{
		{
			name:  "register with metadata",
			frame: `{"kind":"register","payload":{"name":"laptop","type":"desktop","auto_sync":false}}`,
			want:  &RegisterEvent{Name: "laptop", Type: "desktop", AutoSync: boolPtr(false)},
		},
		{
			name:  "register minimal",
			frame: `{"kind":"register"}`,
			want:  &RegisterEvent{},
		},
		{
			name:  "update with timestamp",
			frame: `{"kind":"update","payload":{"content":"hello","timestamp":"2026-03-14T09:26:53Z"}}`,
			want:  &UpdateEvent{Content: "hello", Timestamp: &ts},
		},
		{
			name:  "forced update",
			frame: `{"kind":"update","payload":{"content":"now","forced":true,"auto_write":false}}`,
			want:  &UpdateEvent{Content: "now", Forced: true, AutoWrite: boolPtr(false)},
		},
		{
			name:  "toggle autosync",
			frame: `{"kind":"toggle_autosync","payload":{"enabled":true}}`,
			want:  &ToggleAutoSyncEvent{Enabled: true},
		},
		{
			name:  "request history",
			frame: `{"kind":"request_history"}`,
			want:  &RequestHistoryEvent{},
		},
		{
			name:  "ping",
			frame: `{"kind":"ping","payload":{"timestamp":1234}}`,
			want:  &PingEvent{Timestamp: 1234},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := ParseInbound([]byte(tt.frame))
			require.NoError(t, err)
			assert.Equal(t, tt.want, event)
		})
	}
}

func TestParseInboundErrors(t *testing.T) {
	tests := []struct {
		name  string
		frame string
	}{
		{"unknown kind", `{"kind":"teleport"}`},
		{"outbound kind", `{"kind":"clipboard"}`},
		{"not json", `clipboard`},
		{"malformed payload", `{"kind":"update","payload":{"content":42}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseInbound([]byte(tt.frame))
			assert.Error(t, err)
		})
	}
}

func TestParseInboundUnknownKindError(t *testing.T) {
	_, err := ParseInbound([]byte(`{"kind":"teleport"}`))
	require.Error(t, err)

	var unknown *ErrUnknownKind
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, Kind("teleport"), unknown.Kind)
}

func TestMarshalEvent(t *testing.T) {
	data, err := MarshalEvent(KindRejected, RejectedPayload{Reason: "sensitive"})
	require.NoError(t, err)

	var env envelope
	require.NoError(t, json.Unmarshal(data, &env))
	assert.Equal(t, KindRejected, env.Kind)

	var payload RejectedPayload
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, "sensitive", payload.Reason)
}

func TestMarshalEventNoPayload(t *testing.T) {
	data, err := MarshalEvent(KindPong, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"pong"}`, string(data))
}

func boolPtr(b bool) *bool { return &b }
