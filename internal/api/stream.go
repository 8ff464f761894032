package api

import (
	"context"
	"net/http"

	"github.com/elecmate/commsdesk/internal/mailbox"
	"github.com/elecmate/commsdesk/internal/middleware"
	"github.com/elecmate/commsdesk/internal/observ"
	"github.com/elecmate/commsdesk/internal/realtime"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// StreamHandler upgrades to a websocket that carries swipe gestures in and
// gesture results plus notifications out.
type StreamHandler struct {
	hub      *realtime.Hub
	store    *mailbox.Store
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

func NewStreamHandler(hub *realtime.Hub, store *mailbox.Store, logger *zap.Logger) *StreamHandler {
	return &StreamHandler{
		hub:   hub,
		store: store,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The bearer token is the access check; any origin may connect.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Serve handles GET /v1/stream
func (h *StreamHandler) Serve(c *gin.Context) {
	viewerID := middleware.GetViewerID(c)

	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the error response.
		h.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	conn := h.hub.Register(viewerID, ws)
	defer h.hub.Unregister(conn)
	go conn.WritePump(ctx)

	conn.PrepareRead()
	var g mailbox.Gesture
	for {
		frame, err := conn.ReadTouch()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("stream read", zap.String("viewer_id", viewerID), zap.Error(err))
			}
			return
		}
		h.handleTouch(ctx, conn, viewerID, &g, frame)
	}
}

func (h *StreamHandler) handleTouch(ctx context.Context, conn *realtime.Conn, viewerID string, g *mailbox.Gesture, f realtime.TouchFrame) {
	switch f.Type {
	case realtime.TouchStart:
		if f.RowID == "" {
			conn.Send(realtime.ErrorFrame("invalid_frame", "row_id is required"))
			return
		}
		if prev, ok := g.Dragging(); ok {
			conn.Send(realtime.CancelledFrame(prev))
		}
		g.Start(f.RowID, f.Point())

	case realtime.TouchMove:
		rowID, ok := g.Dragging()
		if !ok {
			return
		}
		offset, cancelled := g.Move(f.Point())
		if cancelled {
			conn.Send(realtime.CancelledFrame(rowID))
			return
		}
		conn.Send(realtime.OffsetFrame(rowID, offset))

	case realtime.TouchEnd:
		if _, ok := g.Dragging(); !ok {
			return
		}
		commit := g.End()
		if err := mailbox.ApplyCommit(ctx, h.store, viewerID, commit); err != nil {
			status, code, msg := classify(err)
			if status >= http.StatusInternalServerError {
				h.logger.Error("apply gesture", zap.String("row_id", commit.RowID), zap.Error(err))
			}
			conn.Send(realtime.ErrorFrame(code, msg))
			return
		}
		observ.GestureCommits.WithLabelValues(string(commit.Action)).Inc()
		conn.Send(realtime.CommitFrame(commit))

	default:
		conn.Send(realtime.ErrorFrame("invalid_frame", "unknown frame type "+f.Type))
	}
}
