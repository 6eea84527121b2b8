package handlers

import (
	"agencydesk/internal/middleware"
	"agencydesk/internal/models"
	"agencydesk/internal/services"
	"agencydesk/pkg/pagination"
	"agencydesk/pkg/response"

	"github.com/gin-gonic/gin"
)

// ResourceHandler 租户资源的通用增删改查接口
type ResourceHandler[T any, PT interface {
	*T
	models.TenantOwned
}] struct {
	service *services.ResourceService[T, PT]
}

func NewResourceHandler[T any, PT interface {
	*T
	models.TenantOwned
}](service *services.ResourceService[T, PT]) *ResourceHandler[T, PT] {
	return &ResourceHandler[T, PT]{service: service}
}

// Register 注册 GET/POST "" 与 GET/PUT/DELETE /:id
func (h *ResourceHandler[T, PT]) Register(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
}

// List 分页列表，支持 keyword 与白名单过滤
func (h *ResourceHandler[T, PT]) List(c *gin.Context) {
	params := pagination.ParseListParams(c, h.service.Query().FilterKeys()...)
	items, total, err := h.service.List(middleware.CurrentTenantID(c), params)
	if err != nil {
		response.FromError(c, err, "查询"+h.service.Name()+"失败")
		return
	}
	response.SuccessWithPage(c, items, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

func (h *ResourceHandler[T, PT]) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	item, err := h.service.Get(middleware.CurrentTenantID(c), id)
	if err != nil {
		response.FromError(c, err, "查询"+h.service.Name()+"失败")
		return
	}
	response.Success(c, item)
}

func (h *ResourceHandler[T, PT]) Create(c *gin.Context) {
	item := PT(new(T))
	if !bindJSON(c, item) {
		return
	}
	if err := h.service.Create(middleware.CurrentTenantID(c), item); err != nil {
		response.FromError(c, err, "创建"+h.service.Name()+"失败")
		return
	}
	response.Created(c, item)
}

// Update 请求体需通过完整校验，只写入非零字段
func (h *ResourceHandler[T, PT]) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	input := PT(new(T))
	if !bindJSON(c, input) {
		return
	}
	item, err := h.service.Update(middleware.CurrentTenantID(c), id, input)
	if err != nil {
		response.FromError(c, err, "更新"+h.service.Name()+"失败")
		return
	}
	response.Success(c, item)
}

func (h *ResourceHandler[T, PT]) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(middleware.CurrentTenantID(c), id); err != nil {
		response.FromError(c, err, "删除"+h.service.Name()+"失败")
		return
	}
	response.SuccessWithMessage(c, "删除成功", nil)
}
