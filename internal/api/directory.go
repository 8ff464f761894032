package api

import (
	"net/http"

	"github.com/elecmate/commsdesk/internal/middleware"
	"github.com/elecmate/commsdesk/internal/repository"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DirectoryHandler serves the employee and job lists the compose form
// picks from, plus the viewer's own profile.
type DirectoryHandler struct {
	employees repository.EmployeeRepository
	jobs      repository.JobRepository
	logger    *zap.Logger
}

func NewDirectoryHandler(employees repository.EmployeeRepository, jobs repository.JobRepository, logger *zap.Logger) *DirectoryHandler {
	return &DirectoryHandler{employees: employees, jobs: jobs, logger: logger}
}

// GetMe handles GET /v1/users/me
func (h *DirectoryHandler) GetMe(c *gin.Context) {
	emp, err := h.employees.GetByID(c.Request.Context(), middleware.GetViewerID(c))
	if err != nil {
		h.logger.Error("failed to get employee", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to get profile", "code": "backend_unavailable"})
		return
	}

	// A valid token for an employee that has since been removed.
	if emp == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "employee not found", "code": "employee_not_found"})
		return
	}
	c.JSON(http.StatusOK, emp)
}

// ListEmployees handles GET /v1/employees
func (h *DirectoryHandler) ListEmployees(c *gin.Context) {
	employees, err := h.employees.List(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list employees", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to list employees", "code": "backend_unavailable"})
		return
	}
	c.JSON(http.StatusOK, employees)
}

// ListJobs handles GET /v1/jobs
func (h *DirectoryHandler) ListJobs(c *gin.Context) {
	jobs, err := h.jobs.List(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list jobs", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to list jobs", "code": "backend_unavailable"})
		return
	}
	c.JSON(http.StatusOK, jobs)
}
