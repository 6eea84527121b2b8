package handlers

import (
	"strconv"

	"agencydesk/pkg/response"
	"agencydesk/pkg/validation"

	"github.com/gin-gonic/gin"
)

// parseID 解析路径中的 :id，失败时已写入 400
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		response.BadRequest(c, "ID格式错误")
		return 0, false
	}
	return uint(id), true
}

// bindJSON 绑定并校验请求体，失败时已写入 400
func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		response.BadRequest(c, validation.Describe(err))
		return false
	}
	return true
}
