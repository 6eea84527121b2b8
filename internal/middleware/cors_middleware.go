package middleware

import (
	"time"

	"agencydesk/pkg/config"
	"agencydesk/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupCORS 配置CORS中间件
func SetupCORS(cfg config.CORSConfig) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     cfg.AllowMethods,
		AllowHeaders:     cfg.AllowHeaders,
		ExposeHeaders:    cfg.ExposeHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           time.Duration(cfg.MaxAge) * time.Hour,
	}
	// 通配来源不携带凭证，会话 Cookie 只对明确列出的来源开放
	if cfg.AllowCredentials && allowsAnyOrigin(cfg.AllowOrigins) {
		logger.GetLogger().Warn("CORS_ALLOW_ORIGINS 包含 *，已忽略 CORS_ALLOW_CREDENTIALS，请配置具体来源")
		corsConfig.AllowCredentials = false
	}

	return cors.New(corsConfig)
}

func allowsAnyOrigin(origins []string) bool {
	for _, origin := range origins {
		if origin == "*" {
			return true
		}
	}
	return false
}
