package handlers

import (
	"agencydesk/internal/middleware"
	"agencydesk/internal/services"
	"agencydesk/pkg/response"

	"github.com/gin-gonic/gin"
)

// ModuleHandler 租户模块开关
type ModuleHandler struct {
	settings *services.ModuleSettingService
}

func NewModuleHandler(settings *services.ModuleSettingService) *ModuleHandler {
	return &ModuleHandler{settings: settings}
}

func (h *ModuleHandler) List(c *gin.Context) {
	states, err := h.settings.List(middleware.CurrentTenantID(c))
	if err != nil {
		response.FromError(c, err, "查询模块设置失败")
		return
	}
	response.Success(c, states)
}

// Update PUT /modules/:module
func (h *ModuleHandler) Update(c *gin.Context) {
	var in services.ModuleSettingInput
	if !bindJSON(c, &in) {
		return
	}
	state, err := h.settings.Update(middleware.CurrentTenantID(c), c.Param("module"), &in)
	if err != nil {
		response.FromError(c, err, "更新模块设置失败")
		return
	}
	response.Success(c, state)
}
