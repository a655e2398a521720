package hub

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/cliphub/pkg/clipboard"
	"github.com/Veraticus/cliphub/pkg/engine"
	"github.com/Veraticus/cliphub/pkg/filter"
	"github.com/Veraticus/cliphub/pkg/history"
	"github.com/Veraticus/cliphub/pkg/registry"
)

// serverFixture wires a full stack on a mock clipboard for HTTP tests.
type serverFixture struct {
	server    *Server
	hub       *Hub
	engine    *engine.Engine
	registry  *registry.Registry
	history   *history.Store
	clipboard *clipboard.MockClipboard
	ts        *httptest.Server
}

func newServerFixture(t *testing.T) *serverFixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := registry.New()
	hist := history.New(history.DefaultCapacity)
	clip := clipboard.NewMockClipboard()
	h := New(reg, hist, logger)

	contentFilter, err := filter.New(filter.Config{})
	require.NoError(t, err)

	eng, err := engine.New(&engine.Config{
		Clipboard:   clip,
		Broadcaster: h,
		Registry:    reg,
		History:     hist,
		Filter:      contentFilter,
	})
	require.NoError(t, err)
	h.BindEngine(eng)

	poller := engine.NewPoller(eng, clip, 0, nil)

	srv, err := NewServer(&ServerConfig{
		Hub:      h,
		Engine:   eng,
		Poller:   poller,
		Registry: reg,
		History:  hist,
		Logger:   logger,
		Addr:     "127.0.0.1:0",
		Version:  "test",
	})
	require.NoError(t, err)

	ts := httptest.NewServer(srv.httpServer.Handler)
	t.Cleanup(ts.Close)

	return &serverFixture{
		server:    srv,
		hub:       h,
		engine:    eng,
		registry:  reg,
		history:   hist,
		clipboard: clip,
		ts:        ts,
	}
}

func (f *serverFixture) do(t *testing.T, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, f.ts.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var decoded map[string]any
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(data) > 0 {
		require.NoError(t, json.Unmarshal(data, &decoded))
	}
	return resp, decoded
}

func TestNewServerValidation(t *testing.T) {
	_, err := NewServer(&ServerConfig{})
	assert.Error(t, err)

	_, err = NewServer(&ServerConfig{Hub: &Hub{}})
	assert.Error(t, err)
}

func TestStatusEndpoint(t *testing.T) {
	f := newServerFixture(t)

	resp, body := f.do(t, http.MethodGet, "/api/status", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "test", body["version"])
	assert.Equal(t, true, body["auto_sync"])
	assert.Equal(t, float64(0), body["devices"])
	assert.NotNil(t, body["stats"])
}

func TestSetClipboardEndpoint(t *testing.T) {
	f := newServerFixture(t)

	resp, body := f.do(t, http.MethodPost, "/api/clipboard", map[string]string{"content": "from api"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "accepted", body["status"])

	// API updates command the local clipboard too.
	require.Eventually(t, func() bool {
		content, err := f.clipboard.Read()
		return err == nil && content == "from api"
	}, time.Second, 10*time.Millisecond)
}

func TestSetClipboardRejectsSensitive(t *testing.T) {
	f := newServerFixture(t)

	resp, body := f.do(t, http.MethodPost, "/api/clipboard", map[string]string{
		"content": "password = hunter2secret",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "rejected", body["status"])
	assert.Equal(t, "sensitive", body["reason"])
}

func TestSetClipboardRequiresContent(t *testing.T) {
	f := newServerFixture(t)

	resp, _ := f.do(t, http.MethodPost, "/api/clipboard", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHistoryEndpoints(t *testing.T) {
	f := newServerFixture(t)

	for i := 0; i < 3; i++ {
		content := fmt.Sprintf("entry %d", i)
		result := f.engine.Ingest(engine.Update{
			Content:   content,
			SourceID:  engine.SourceAPI,
			Timestamp: time.Now(),
			Forced:    true,
			AutoWrite: true,
		})
		require.Equal(t, engine.StatusAccepted, result.Status)
	}

	resp, body := f.do(t, http.MethodGet, "/api/history", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	items, ok := body["items"].([]any)
	require.True(t, ok)
	require.Len(t, items, 3)

	newest, ok := items[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "entry 2", newest["content"])

	// Replaying an older entry puts it back on the clipboard.
	resp, body = f.do(t, http.MethodPost, "/api/history/2/use", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "accepted", body["status"])
	require.Eventually(t, func() bool {
		content, err := f.clipboard.Read()
		return err == nil && content == "entry 0"
	}, time.Second, 10*time.Millisecond)

	resp, _ = f.do(t, http.MethodPost, "/api/history/99/use", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = f.do(t, http.MethodPost, "/api/history/nope/use", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = f.do(t, http.MethodDelete, "/api/history", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, 0, f.history.Len())
}

func TestDevicesEndpoint(t *testing.T) {
	f := newServerFixture(t)
	f.registry.Register("dev-1", registry.Info{Name: "phone", Type: registry.TypeMobile})

	resp, body := f.do(t, http.MethodGet, "/api/devices", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	devices, ok := body["devices"].([]any)
	require.True(t, ok)
	require.Len(t, devices, 1)

	device, ok := devices[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "phone", device["name"])
}

func TestSettingsEndpoints(t *testing.T) {
	f := newServerFixture(t)

	resp, body := f.do(t, http.MethodGet, "/api/settings", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["auto_sync"])
	assert.Equal(t, float64(100), body["polling_interval_ms"])

	resp, body = f.do(t, http.MethodPatch, "/api/settings", map[string]any{
		"auto_sync":           false,
		"polling_interval_ms": 250,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["auto_sync"])
	assert.Equal(t, float64(250), body["polling_interval_ms"])
	assert.False(t, f.engine.AutoSyncEnabled())

	// Intervals below the floor are refused and leave settings alone.
	resp, _ = f.do(t, http.MethodPatch, "/api/settings", map[string]any{
		"polling_interval_ms": 10,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, 250*time.Millisecond, f.server.poller.Interval())
}

func TestResyncEndpoint(t *testing.T) {
	f := newServerFixture(t)

	result := f.engine.Ingest(engine.NewUpdate("shared", engine.SourceAPI))
	require.Equal(t, engine.StatusAccepted, result.Status)

	// No devices registered, so a resync has no targets.
	resp, body := f.do(t, http.MethodPost, "/api/resync", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), body["targets"])
}
