package handlers

import (
	"agencydesk/internal/services"
	"agencydesk/pkg/pagination"
	"agencydesk/pkg/response"

	"github.com/gin-gonic/gin"
)

// TenantHandler 租户管理（平台管理员）
type TenantHandler struct {
	tenantService *services.TenantService
}

func NewTenantHandler(tenantService *services.TenantService) *TenantHandler {
	return &TenantHandler{tenantService: tenantService}
}

// List 租户列表，支持 keyword 与 status 过滤
func (h *TenantHandler) List(c *gin.Context) {
	params := pagination.ParseListParams(c, "status")
	tenants, total, err := h.tenantService.List(params)
	if err != nil {
		response.FromError(c, err, "查询租户失败")
		return
	}
	response.SuccessWithPage(c, tenants, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

func (h *TenantHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	tenant, err := h.tenantService.GetByID(id)
	if err != nil {
		response.FromError(c, err, "查询租户失败")
		return
	}
	response.Success(c, tenant)
}

func (h *TenantHandler) Create(c *gin.Context) {
	var in services.TenantInput
	if !bindJSON(c, &in) {
		return
	}
	tenant, err := h.tenantService.Create(&in)
	if err != nil {
		response.FromError(c, err, "创建租户失败")
		return
	}
	response.Created(c, tenant)
}

func (h *TenantHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var in services.TenantInput
	if !bindJSON(c, &in) {
		return
	}
	tenant, err := h.tenantService.Update(id, &in)
	if err != nil {
		response.FromError(c, err, "更新租户失败")
		return
	}
	response.Success(c, tenant)
}

func (h *TenantHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.tenantService.Delete(id); err != nil {
		response.FromError(c, err, "删除租户失败")
		return
	}
	response.SuccessWithMessage(c, "删除成功", nil)
}

func (h *TenantHandler) Activate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	tenant, err := h.tenantService.Activate(id)
	if err != nil {
		response.FromError(c, err, "启用租户失败")
		return
	}
	response.Success(c, tenant)
}

func (h *TenantHandler) Deactivate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	tenant, err := h.tenantService.Deactivate(id)
	if err != nil {
		response.FromError(c, err, "停用租户失败")
		return
	}
	response.Success(c, tenant)
}

// Stats 租户统计
func (h *TenantHandler) Stats(c *gin.Context) {
	stats, err := h.tenantService.GetStats()
	if err != nil {
		response.FromError(c, err, "查询租户统计失败")
		return
	}
	response.Success(c, stats)
}
