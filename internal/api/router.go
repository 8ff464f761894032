package api

import (
	"net/http"
	"time"

	"github.com/elecmate/commsdesk/internal/mailbox"
	"github.com/elecmate/commsdesk/internal/middleware"
	"github.com/elecmate/commsdesk/internal/realtime"
	"github.com/elecmate/commsdesk/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// RouterDeps is everything the HTTP surface needs.
type RouterDeps struct {
	Store     *mailbox.Store
	Composer  *mailbox.Composer
	Refresher *mailbox.Refresher
	Hub       *realtime.Hub
	Employees repository.EmployeeRepository
	Jobs      repository.JobRepository
	Limiter   *middleware.LimiterStore

	JWTSecret    string
	TokenTTL     time.Duration
	Location     *time.Location
	GroupOptions mailbox.GroupOptions
	Logger       *zap.Logger
}

// NewRouter wires handlers onto a gin engine.
func NewRouter(d RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(d.Logger))

	// Public: health, metrics and login.
	r.GET("/v1/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authHandler := NewAuthHandler(d.Employees, d.JWTSecret, d.TokenTTL, d.Logger)
	r.POST("/v1/auth/login", authHandler.Login)

	v1 := r.Group("/v1")
	v1.Use(middleware.AuthMiddleware(d.JWTSecret))

	dir := NewDirectoryHandler(d.Employees, d.Jobs, d.Logger)
	v1.GET("/users/me", dir.GetMe)
	v1.GET("/employees", dir.ListEmployees)
	v1.GET("/jobs", dir.ListJobs)

	msgs := NewMessageHandler(d.Store, d.Location, d.GroupOptions, d.Logger)
	v1.GET("/messages", msgs.List)
	v1.GET("/messages/:id", msgs.Get)
	v1.POST("/messages/:id/pin", msgs.TogglePin)
	v1.POST("/messages/:id/read", msgs.ToggleRead)
	v1.POST("/messages/:id/signoff", msgs.SignOff)
	v1.DELETE("/messages/:id", msgs.Delete)

	compose := NewComposeHandler(d.Composer, d.Refresher, d.Logger)
	if d.Limiter != nil {
		v1.POST("/messages", middleware.RateLimit(d.Limiter), compose.Send)
	} else {
		v1.POST("/messages", compose.Send)
	}
	v1.POST("/messages/refresh", compose.Refresh)

	stream := NewStreamHandler(d.Hub, d.Store, d.Logger)
	v1.GET("/stream", stream.Serve)

	return r
}
