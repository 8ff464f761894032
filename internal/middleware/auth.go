package middleware

import (
	"net/http"
	"strings"

	"github.com/elecmate/commsdesk/internal/auth"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Context keys for claims stored in gin.Context.
const (
	ContextKeyViewerID = "viewer_id"
	ContextKeyName     = "viewer_name"
	ContextKeyEmail    = "email"
)

// AuthMiddleware rejects requests without a valid bearer token and stores
// the viewer's claims for the handlers behind it. Browsers cannot set
// headers on a websocket handshake, so upgrade requests may pass the token
// as ?token= instead.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" && websocket.IsWebSocketUpgrade(c.Request) && c.Query("token") != "" {
			header = "Bearer " + c.Query("token")
		}
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing authorization header",
			})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid authorization format, expected: Bearer <token>",
			})
			return
		}

		claims, err := auth.ParseToken(parts[1], secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid or expired token",
			})
			return
		}

		c.Set(ContextKeyViewerID, claims.ViewerID)
		c.Set(ContextKeyName, claims.Name)
		c.Set(ContextKeyEmail, claims.Email)
		c.Next()
	}
}

// GetViewerID returns "" when the request did not pass AuthMiddleware.
func GetViewerID(c *gin.Context) string {
	return getString(c, ContextKeyViewerID)
}

func getString(c *gin.Context, key string) string {
	val, exists := c.Get(key)
	if !exists {
		return ""
	}
	s, ok := val.(string)
	if !ok {
		return ""
	}
	return s
}
