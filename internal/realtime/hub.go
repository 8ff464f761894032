// Package realtime pushes frames to viewers over websocket connections.
package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/elecmate/commsdesk/internal/mailbox"
	"github.com/elecmate/commsdesk/internal/observ"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 32
)

// Hub tracks open connections per viewer and implements mailbox.Notifier.
type Hub struct {
	mu       sync.RWMutex
	conns    map[string]map[*Conn]struct{}
	fallback mailbox.Notifier
	logger   *zap.Logger
}

// NewHub returns a hub that hands notifications for viewers with no open
// connection to fallback.
func NewHub(fallback mailbox.Notifier, logger *zap.Logger) *Hub {
	return &Hub{
		conns:    make(map[string]map[*Conn]struct{}),
		fallback: fallback,
		logger:   logger,
	}
}

// Conn is one websocket connection owned by a viewer.
type Conn struct {
	ViewerID string
	ws       *websocket.Conn
	send     chan Frame
	done     chan struct{}
	once     sync.Once
}

// Register adds ws to the hub. The caller must run WritePump and call
// Unregister when the read side ends.
func (h *Hub) Register(viewerID string, ws *websocket.Conn) *Conn {
	c := &Conn{
		ViewerID: viewerID,
		ws:       ws,
		send:     make(chan Frame, sendBuffer),
		done:     make(chan struct{}),
	}

	h.mu.Lock()
	if h.conns[viewerID] == nil {
		h.conns[viewerID] = make(map[*Conn]struct{})
	}
	h.conns[viewerID][c] = struct{}{}
	h.mu.Unlock()

	observ.StreamConnections.Inc()
	h.logger.Debug("stream connected", zap.String("viewer_id", viewerID))
	return c
}

// Unregister removes c and stops its write pump. Safe to call twice.
func (h *Hub) Unregister(c *Conn) {
	c.once.Do(func() {
		h.mu.Lock()
		if set, ok := h.conns[c.ViewerID]; ok {
			delete(set, c)
			if len(set) == 0 {
				delete(h.conns, c.ViewerID)
			}
		}
		h.mu.Unlock()

		close(c.done)
		observ.StreamConnections.Dec()
		h.logger.Debug("stream disconnected", zap.String("viewer_id", c.ViewerID))
	})
}

// Connections returns how many connections viewerID has open.
func (h *Hub) Connections(viewerID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[viewerID])
}

// Notify pushes n to every connection of viewerID. Slow connections drop
// the frame rather than block the caller.
func (h *Hub) Notify(ctx context.Context, viewerID string, n mailbox.Notification) {
	h.mu.RLock()
	targets := make([]*Conn, 0, len(h.conns[viewerID]))
	for c := range h.conns[viewerID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	if len(targets) == 0 {
		if h.fallback != nil {
			h.fallback.Notify(ctx, viewerID, n)
		}
		return
	}
	for _, c := range targets {
		if !c.Send(NotificationFrame(n)) {
			h.logger.Warn("notification dropped", zap.String("viewer_id", viewerID), zap.String("title", n.Title))
		}
	}
}

// Send queues f without blocking. It reports false when the buffer is full
// or the connection is closed.
func (c *Conn) Send(f Frame) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- f:
		return true
	default:
		return false
	}
}

// WritePump owns all writes to the socket: queued frames and keepalive
// pings. It returns when the connection is unregistered, ctx ends or a
// write fails.
func (c *Conn) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case f := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteJSON(f); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// PrepareRead sets the read limits and pong handler for the read loop.
func (c *Conn) PrepareRead() {
	c.ws.SetReadLimit(4096)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})
}

// ReadTouch blocks for the next inbound frame.
func (c *Conn) ReadTouch() (TouchFrame, error) {
	var f TouchFrame
	err := c.ws.ReadJSON(&f)
	if err == nil {
		_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	}
	return f, err
}
