package middleware

import (
	"agencydesk/internal/models"
	"agencydesk/pkg/jwt"

	"github.com/gin-gonic/gin"
)

// 上下文键
const (
	ContextUser      = "user"
	ContextClaims    = "claims"
	ContextTenant    = "tenant"
	ContextTenantID  = "current_tenant_id"
	ContextRequestID = "request_id"
)

// CurrentUser 当前登录用户
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(ContextUser); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

// CurrentClaims 当前令牌声明
func CurrentClaims(c *gin.Context) *jwt.JWTClaims {
	if v, ok := c.Get(ContextClaims); ok {
		if claims, ok := v.(*jwt.JWTClaims); ok {
			return claims
		}
	}
	return nil
}

// CurrentTenant 当前操作的租户
func CurrentTenant(c *gin.Context) *models.Tenant {
	if v, ok := c.Get(ContextTenant); ok {
		if tenant, ok := v.(*models.Tenant); ok {
			return tenant
		}
	}
	return nil
}

// CurrentTenantID 当前操作的租户ID，未解析时为 0
func CurrentTenantID(c *gin.Context) uint {
	return c.GetUint(ContextTenantID)
}
