package middleware

import (
	"runtime/debug"

	"agencydesk/pkg/logger"
	"agencydesk/pkg/response"

	"github.com/gin-gonic/gin"
)

// ErrorHandler 错误处理中间件，主要处理panic
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.FromContext(c.Request.Context()).
					WithField("stack", string(debug.Stack())).
					Errorf("Panic recovered: %v", err)
				response.ServerError(c, "服务器内部错误")
				c.Abort()
			}
		}()

		c.Next()
	}
}
