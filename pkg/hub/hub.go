// Package hub owns the device-facing surface: one WebSocket channel per
// device plus the REST API. The hub is the engine's Broadcaster,
// delivering accepted updates to individual devices, and also its feed:
// inbound device events become Ingest calls.
//
// Connection ids are minted here (or accepted from a reconnecting
// client) and handed to the registry; the engine only ever reads them.
package hub

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/Veraticus/cliphub/pkg/engine"
	"github.com/Veraticus/cliphub/pkg/history"
	"github.com/Veraticus/cliphub/pkg/registry"
)

// ErrDeviceNotConnected indicates a broadcast target with no live channel.
var ErrDeviceNotConnected = errors.New("hub: device not connected")

// Hub manages device channels and fans accepted updates out to them.
type Hub struct {
	engine   *engine.Engine
	registry *registry.Registry
	history  *history.Store
	logger   *slog.Logger

	mu    sync.RWMutex
	conns map[string]*deviceConn
}

// New creates a hub. The hub and engine reference each other, so the
// hub is built first, passed to the engine as its Broadcaster, and then
// bound to the engine with BindEngine before serving begins.
func New(reg *registry.Registry, hist *history.Store, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		registry: reg,
		history:  hist,
		logger:   logger.With("component", "hub"),
		conns:    make(map[string]*deviceConn),
	}
}

// BindEngine attaches the engine that inbound updates feed into. Must
// be called before the hub accepts connections.
func (h *Hub) BindEngine(eng *engine.Engine) {
	h.engine = eng
}

// Send delivers a broadcast event to a single device. Implements
// engine.Broadcaster. A failure affects only this target.
func (h *Hub) Send(deviceID string, b engine.Broadcast) error {
	h.mu.RLock()
	conn, ok := h.conns[deviceID]
	h.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrDeviceNotConnected, deviceID)
	}

	return conn.send(context.Background(), KindClipboard, b)
}

// ConnectedCount returns the number of live channels.
func (h *Hub) ConnectedCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// HandleWebSocket upgrades an HTTP request to a device channel and
// serves it until the peer disconnects or ctx ends.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// LAN-local tool: the browser origin is whatever host the user
		// reached the hub on.
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.logger.Error("websocket accept failed", "error", err)
		return
	}

	// A reconnecting client may present its previous id; otherwise the
	// hub mints one.
	id := r.URL.Query().Get("id")
	if id == "" {
		id = uuid.NewString()
	}

	conn := newDeviceConn(id, ws)
	h.addConn(conn)
	h.logger.Info("device connected", "device", id, "remote", r.RemoteAddr)

	h.serve(r.Context(), conn)

	// A reconnect replaces the map entry for this id before the stale
	// socket closes; only the current owner may deregister the device.
	if h.removeConn(conn) {
		h.registry.Unregister(id)
		h.broadcastDeviceCount()
		h.logger.Info("device disconnected", "device", id)
	}
}

// serve runs the read loop for one device channel.
func (h *Hub) serve(ctx context.Context, conn *deviceConn) {
	defer conn.close(websocket.StatusNormalClosure, "")

	for {
		data, err := conn.read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == -1 && ctx.Err() == nil {
				h.logger.Debug("read failed", "device", conn.id, "error", err)
			}
			return
		}

		if !conn.limiter.Allow() {
			h.logger.Warn("device exceeds event rate limit, dropping event", "device", conn.id)
			continue
		}

		event, err := ParseInbound(data)
		if err != nil {
			h.logger.Warn("invalid event from device", "device", conn.id, "error", err)
			continue
		}

		h.dispatch(ctx, conn, event)
	}
}

// dispatch routes one inbound event. The switch is exhaustive over the
// closed InboundEvent set; ParseInbound already refused unknown kinds.
func (h *Hub) dispatch(ctx context.Context, conn *deviceConn, event InboundEvent) {
	switch ev := event.(type) {
	case *RegisterEvent:
		autoSync := true
		if ev.AutoSync != nil {
			autoSync = *ev.AutoSync
		}
		h.registry.Register(conn.id, registry.Info{
			Name:     ev.Name,
			Type:     registry.NormalizeType(ev.Type),
			AutoSync: autoSync,
		})
		if err := conn.send(ctx, KindRegistered, RegisteredPayload{DeviceID: conn.id}); err != nil {
			h.logger.Debug("registered ack failed", "device", conn.id, "error", err)
		}
		h.broadcastDeviceCount()

	case *UpdateEvent:
		update := engine.Update{
			Content:   ev.Content,
			SourceID:  conn.id,
			AutoWrite: true,
			Forced:    ev.Forced,
		}
		if ev.Timestamp != nil {
			update.Timestamp = *ev.Timestamp
		}
		if ev.AutoWrite != nil {
			update.AutoWrite = *ev.AutoWrite
		}

		result := h.engine.Ingest(update)
		if result.Status == engine.StatusRejected {
			// Only the originator learns about the rejection.
			if err := conn.send(ctx, KindRejected, RejectedPayload{Reason: result.Reason}); err != nil {
				h.logger.Debug("rejection notice failed", "device", conn.id, "error", err)
			}
		}

	case *ToggleAutoSyncEvent:
		if err := h.registry.SetAutoSync(conn.id, ev.Enabled); err != nil {
			h.logger.Warn("toggle for unregistered device", "device", conn.id)
			return
		}
		h.broadcastDeviceCount()

	case *RequestHistoryEvent:
		if err := conn.send(ctx, KindHistory, HistoryPayload{Items: h.history.List()}); err != nil {
			h.logger.Debug("history send failed", "device", conn.id, "error", err)
		}

	case *PingEvent:
		if err := conn.send(ctx, KindPong, PongPayload{Timestamp: ev.Timestamp}); err != nil {
			h.logger.Debug("pong failed", "device", conn.id, "error", err)
		}
	}
}

// broadcastDeviceCount pushes the connected-device totals to every
// channel, best effort.
func (h *Hub) broadcastDeviceCount() {
	payload := DeviceCountPayload{
		Count:         h.registry.Count(),
		AutoSyncCount: h.registry.AutoSyncCount(),
	}

	h.mu.RLock()
	conns := make([]*deviceConn, 0, len(h.conns))
	for _, conn := range h.conns {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		conn := conn
		go func() {
			if err := conn.send(context.Background(), KindDeviceCount, payload); err != nil {
				h.logger.Debug("device count push failed", "device", conn.id, "error", err)
			}
		}()
	}
}

func (h *Hub) addConn(conn *deviceConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn.id] = conn
}

// removeConn reports whether conn still owned its id's map entry and
// was removed. A false return means a newer connection took over the id.
func (h *Hub) removeConn(conn *deviceConn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if current, ok := h.conns[conn.id]; ok && current == conn {
		delete(h.conns, conn.id)
		return true
	}
	return false
}

// CloseAll tears down every channel, used on shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	conns := make([]*deviceConn, 0, len(h.conns))
	for _, conn := range h.conns {
		conns = append(conns, conn)
	}
	h.conns = make(map[string]*deviceConn)
	h.mu.Unlock()

	for _, conn := range conns {
		conn.close(websocket.StatusGoingAway, "server shutting down")
	}
}
