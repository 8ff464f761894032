package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/elecmate/commsdesk/internal/mailbox"
	"github.com/elecmate/commsdesk/internal/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IdempotencyHeader carries the client's request id for a send.
const IdempotencyHeader = "Idempotency-Key"

// ComposeHandler sends and schedules messages, and runs the manual refresh.
type ComposeHandler struct {
	composer  *mailbox.Composer
	refresher *mailbox.Refresher
	logger    *zap.Logger
}

func NewComposeHandler(composer *mailbox.Composer, refresher *mailbox.Refresher, logger *zap.Logger) *ComposeHandler {
	return &ComposeHandler{composer: composer, refresher: refresher, logger: logger}
}

// Send handles POST /v1/messages
//
// The body is the compose form. A retried request carrying the same
// Idempotency-Key returns the message the first attempt created.
func (h *ComposeHandler) Send(c *gin.Context) {
	draft := mailbox.NewDraft()
	if err := c.ShouldBindJSON(draft); err != nil {
		badRequest(c, mailbox.CodeInvalidDraft, err.Error())
		return
	}
	draft.RequestID = c.GetHeader(IdempotencyHeader)

	msg, err := h.composer.Send(c.Request.Context(), middleware.GetViewerID(c), draft)
	if err != nil {
		respondError(c, h.logger, "send message", err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// Refresh handles POST /v1/messages/refresh
func (h *ComposeHandler) Refresh(c *gin.Context) {
	err := h.refresher.Refresh(c.Request.Context(), middleware.GetViewerID(c))
	if errors.Is(err, context.Canceled) {
		// Client went away; nobody is left to answer.
		c.Abort()
		return
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "refresh failed", "code": mailbox.CodeBackend})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "refreshed"})
}
