package api

import (
	"net/http"
	"time"

	"github.com/elecmate/commsdesk/internal/auth"
	"github.com/elecmate/commsdesk/internal/repository"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler issues tokens. It is the only public endpoint besides health
// and metrics.
type AuthHandler struct {
	employees repository.EmployeeRepository
	jwtSecret string
	tokenTTL  time.Duration
	logger    *zap.Logger
}

func NewAuthHandler(employees repository.EmployeeRepository, jwtSecret string, tokenTTL time.Duration, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		employees: employees,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		logger:    logger,
	}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type authResponse struct {
	Token     string    `json:"token"`
	ViewerID  string    `json:"viewer_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid_request", err.Error())
		return
	}

	emp, err := h.employees.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		h.logger.Error("failed to find employee", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed", "code": codeInternal})
		return
	}

	// Same answer for unknown email and wrong password.
	if emp == nil || auth.CheckPassword(emp.PasswordHash, req.Password) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password", "code": "unauthorized"})
		return
	}

	token, err := auth.GenerateToken(emp.ID, emp.Name, emp.Email, string(emp.TeamRole), h.jwtSecret, h.tokenTTL)
	if err != nil {
		h.logger.Error("failed to generate token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed", "code": codeInternal})
		return
	}

	h.logger.Info("viewer logged in", zap.String("viewer_id", emp.ID))
	c.JSON(http.StatusOK, authResponse{
		Token:     token,
		ViewerID:  emp.ID,
		ExpiresAt: time.Now().Add(h.tokenTTL).UTC(),
	})
}
