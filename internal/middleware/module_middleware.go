package middleware

import (
	"agencydesk/internal/services"
	"agencydesk/pkg/response"

	"github.com/gin-gonic/gin"
)

// RequireModule 模块停用时返回 403，须在 ResolveTenant 之后使用
func RequireModule(settings *services.ModuleSettingService, module string) gin.HandlerFunc {
	return func(c *gin.Context) {
		enabled, err := settings.IsEnabled(CurrentTenantID(c), module)
		if err != nil {
			response.FromError(c, err, "获取模块设置失败")
			c.Abort()
			return
		}
		if !enabled {
			response.Forbidden(c, "模块 "+module+" 未启用")
			c.Abort()
			return
		}
		c.Next()
	}
}
