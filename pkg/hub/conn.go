package hub

import (
	"context"
	"fmt"
	"time"

	"github.com/coder/websocket"

	"github.com/Veraticus/cliphub/pkg/clipboard"
)

const (
	// sendTimeout bounds a single outbound frame. A device that cannot
	// drain within this window forfeits the frame, not the hub.
	sendTimeout = 5 * time.Second

	// maxFrameSize bounds inbound frames, sized for the content-length
	// cap plus envelope overhead.
	maxFrameSize = 1 << 20

	// inboundEventsPerSecond is the per-connection rate limit.
	inboundEventsPerSecond = 20
)

// deviceConn is one connected device channel.
type deviceConn struct {
	id      string
	ws      *websocket.Conn
	limiter *clipboard.RateLimiter
}

func newDeviceConn(id string, ws *websocket.Conn) *deviceConn {
	ws.SetReadLimit(maxFrameSize)
	return &deviceConn{
		id:      id,
		ws:      ws,
		limiter: clipboard.NewRateLimiter(inboundEventsPerSecond, time.Second),
	}
}

// send marshals and writes one event with a bounded wait.
func (c *deviceConn) send(ctx context.Context, kind Kind, payload any) error {
	data, err := MarshalEvent(kind, payload)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	if err := c.ws.Write(ctx, websocket.MessageText, data); err != nil {
		return fmt.Errorf("write to device %s: %w", c.id, err)
	}
	return nil
}

// read blocks for the next inbound frame.
func (c *deviceConn) read(ctx context.Context) ([]byte, error) {
	_, data, err := c.ws.Read(ctx)
	return data, err
}

// close tears the channel down with the given status.
func (c *deviceConn) close(code websocket.StatusCode, reason string) {
	_ = c.ws.Close(code, reason)
}
