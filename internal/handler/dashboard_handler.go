package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/sei-backend/internal/response"
	"github.com/stemsi/sei-backend/internal/service"
)

// DashboardHandler handles the coordinator dashboard.
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetDashboardData godoc
// GET /api/v1/dashboard
// Returns risk level counts, intervention totals, the highest-risk students
// and how many students still owe a check-in this week.
func (h *DashboardHandler) GetDashboardData(c *gin.Context) {
	data, err := h.dashboardService.GetDashboardData(c.Request.Context())
	if err != nil {
		failFromService(c, err, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, data)
}
