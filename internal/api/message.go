package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/elecmate/commsdesk/internal/mailbox"
	"github.com/elecmate/commsdesk/internal/middleware"
	"github.com/elecmate/commsdesk/internal/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MessageHandler serves the viewer's mailbox and the per-message actions.
type MessageHandler struct {
	store    *mailbox.Store
	location *time.Location
	opts     mailbox.GroupOptions
	now      func() time.Time
	logger   *zap.Logger
}

func NewMessageHandler(store *mailbox.Store, location *time.Location, opts mailbox.GroupOptions, logger *zap.Logger) *MessageHandler {
	if location == nil {
		location = time.UTC
	}
	return &MessageHandler{
		store:    store,
		location: location,
		opts:     opts,
		now:      time.Now,
		logger:   logger,
	}
}

type messageResponse struct {
	Message *models.Message  `json:"message"`
	Flags   mailbox.RowFlags `json:"flags"`
}

// List handles GET /v1/messages?tab=inbox&q=scaffold&unread=true
//
// Returns the grouped view: pinned section, recency buckets, per-row flags
// and unread counts for every tab.
func (h *MessageHandler) List(c *gin.Context) {
	tab, err := mailbox.ParseTab(c.Query("tab"))
	if err != nil {
		respondError(c, h.logger, "list messages", err)
		return
	}

	var unread bool
	if raw := c.Query("unread"); raw != "" {
		unread, err = strconv.ParseBool(raw)
		if err != nil {
			badRequest(c, "invalid_query", "invalid 'unread' parameter")
			return
		}
	}

	q := mailbox.Query{Tab: tab, Text: c.Query("q"), UnreadOnly: unread}
	view, err := h.store.View(c.Request.Context(), middleware.GetViewerID(c), q, h.now().In(h.location), h.opts)
	if err != nil {
		respondError(c, h.logger, "list messages", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Get handles GET /v1/messages/:id
func (h *MessageHandler) Get(c *gin.Context) {
	msg, flags, err := h.store.Detail(c.Request.Context(), middleware.GetViewerID(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "get message", err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: msg, Flags: flags})
}

// TogglePin handles POST /v1/messages/:id/pin
func (h *MessageHandler) TogglePin(c *gin.Context) {
	id := c.Param("id")
	pinned, err := h.store.TogglePin(c.Request.Context(), middleware.GetViewerID(c), id)
	if err != nil {
		respondError(c, h.logger, "toggle pin", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "pinned": pinned})
}

// ToggleRead handles POST /v1/messages/:id/read
func (h *MessageHandler) ToggleRead(c *gin.Context) {
	id := c.Param("id")
	read, err := h.store.ToggleRead(c.Request.Context(), middleware.GetViewerID(c), id)
	if err != nil {
		respondError(c, h.logger, "toggle read", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "read": read})
}

// SignOff handles POST /v1/messages/:id/signoff
func (h *MessageHandler) SignOff(c *gin.Context) {
	id := c.Param("id")
	if err := h.store.SignOff(c.Request.Context(), middleware.GetViewerID(c), id); err != nil {
		respondError(c, h.logger, "sign off", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "signed_off": true, "read": true})
}

// Delete handles DELETE /v1/messages/:id
func (h *MessageHandler) Delete(c *gin.Context) {
	if err := h.store.Delete(c.Request.Context(), middleware.GetViewerID(c), c.Param("id")); err != nil {
		respondError(c, h.logger, "delete message", err)
		return
	}
	c.Status(http.StatusNoContent)
}
