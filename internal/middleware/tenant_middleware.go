package middleware

import (
	"strconv"

	"agencydesk/internal/services"
	"agencydesk/pkg/logger"
	"agencydesk/pkg/response"

	"github.com/gin-gonic/gin"
)

// TenantCookie 当前租户 cookie 名
const TenantCookie = "tenant_id"

// ResolveTenant 解析当前租户：优先 tenant_id cookie，否则使用令牌中的当前租户。
// 非平台管理员只能访问自己所属的租户。
func ResolveTenant(tenants *services.TenantService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		claims := CurrentClaims(c)
		if user == nil || claims == nil {
			response.Unauthorized(c, "请先登录")
			c.Abort()
			return
		}

		tenantID := claims.CurrentTenantID
		if tenantID == 0 {
			tenantID = user.TenantID
		}
		if cookie, err := c.Cookie(TenantCookie); err == nil && cookie != "" {
			id, err := strconv.ParseUint(cookie, 10, 32)
			if err != nil {
				response.BadRequest(c, "租户ID格式错误")
				c.Abort()
				return
			}
			tenantID = uint(id)
		}

		if !user.IsPlatformAdmin && tenantID != user.TenantID {
			response.Forbidden(c, "无权访问其他租户的数据")
			c.Abort()
			return
		}

		tenant, err := tenants.GetActive(tenantID)
		if err != nil {
			response.FromError(c, err, "获取租户失败")
			c.Abort()
			return
		}

		c.Set(ContextTenant, tenant)
		c.Set(ContextTenantID, tenant.ID)
		c.Request = c.Request.WithContext(logger.WithTenant(c.Request.Context(), tenant.ID))
		c.Next()
	}
}
