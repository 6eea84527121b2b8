package handlers

import (
	"time"

	"agencydesk/internal/middleware"
	"agencydesk/internal/services"
	"agencydesk/pkg/response"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboard *services.DashboardService
}

func NewDashboardHandler(dashboard *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Overview 当月概览
func (h *DashboardHandler) Overview(c *gin.Context) {
	overview, err := h.dashboard.Overview(middleware.CurrentTenantID(c), time.Now())
	if err != nil {
		response.FromError(c, err, "查询概览失败")
		return
	}
	response.Success(c, overview)
}
