package api

import (
	"errors"
	"net/http"

	"github.com/elecmate/commsdesk/internal/mailbox"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const codeInternal = "internal"

// classify maps a mailbox error to an HTTP status and the client-facing
// code and message.
func classify(err error) (status int, code, msg string) {
	var e *mailbox.Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError, codeInternal, "internal error"
	}
	switch e.Kind {
	case mailbox.KindValidation:
		status = http.StatusBadRequest
	case mailbox.KindNotFound:
		status = http.StatusNotFound
	case mailbox.KindConflict:
		status = http.StatusConflict
	case mailbox.KindTransport:
		status = http.StatusServiceUnavailable
	default:
		status = http.StatusInternalServerError
	}
	return status, e.Code, e.Error()
}

// respondError writes {"error","code"} and logs anything that is not the
// client's fault.
func respondError(c *gin.Context, logger *zap.Logger, op string, err error) {
	status, code, msg := classify(err)
	if status >= http.StatusInternalServerError {
		logger.Error(op, zap.Error(err))
		_ = c.Error(err)
	}
	c.JSON(status, gin.H{"error": msg, "code": code})
}

func badRequest(c *gin.Context, code, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg, "code": code})
}
