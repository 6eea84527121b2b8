package handlers

import (
	"agencydesk/internal/middleware"
	"agencydesk/internal/services"
	"agencydesk/pkg/pagination"
	"agencydesk/pkg/response"

	"github.com/gin-gonic/gin"
)

// UserHandler 租户内用户管理
type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) List(c *gin.Context) {
	params := pagination.ParseListParams(c, "role", "status")
	users, total, err := h.userService.List(middleware.CurrentTenantID(c), params)
	if err != nil {
		response.FromError(c, err, "查询用户失败")
		return
	}
	response.SuccessWithPage(c, users, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

func (h *UserHandler) Create(c *gin.Context) {
	var in services.UserInput
	if !bindJSON(c, &in) {
		return
	}
	user, err := h.userService.Create(middleware.CurrentTenantID(c), &in)
	if err != nil {
		response.FromError(c, err, "创建用户失败")
		return
	}
	response.Created(c, user)
}

func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if current := middleware.CurrentUser(c); current != nil && current.ID == id {
		response.BadRequest(c, "不能删除当前登录用户")
		return
	}
	if err := h.userService.Delete(middleware.CurrentTenantID(c), id); err != nil {
		response.FromError(c, err, "删除用户失败")
		return
	}
	response.SuccessWithMessage(c, "删除成功", nil)
}
