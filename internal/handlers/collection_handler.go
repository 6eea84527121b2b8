package handlers

import (
	"agencydesk/internal/middleware"
	"agencydesk/internal/models"
	"agencydesk/internal/services"
	"agencydesk/pkg/pagination"
	"agencydesk/pkg/response"

	"github.com/gin-gonic/gin"
)

// CollectionHandler 应收款接口
type CollectionHandler struct {
	collections *services.CollectionService
}

func NewCollectionHandler(collections *services.CollectionService) *CollectionHandler {
	return &CollectionHandler{collections: collections}
}

func (h *CollectionHandler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.POST("/:id/collect", h.Collect)
}

func (h *CollectionHandler) List(c *gin.Context) {
	params := pagination.ParseListParams(c, h.collections.Collections.Query().FilterKeys()...)
	items, total, err := h.collections.List(middleware.CurrentTenantID(c), params)
	if err != nil {
		response.FromError(c, err, "查询应收款失败")
		return
	}
	response.SuccessWithPage(c, items, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

func (h *CollectionHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	item, err := h.collections.Get(middleware.CurrentTenantID(c), id)
	if err != nil {
		response.FromError(c, err, "查询应收款失败")
		return
	}
	response.Success(c, item)
}

func (h *CollectionHandler) Create(c *gin.Context) {
	var item models.Collection
	if !bindJSON(c, &item) {
		return
	}
	if err := h.collections.Create(middleware.CurrentTenantID(c), &item); err != nil {
		response.FromError(c, err, "创建应收款失败")
		return
	}
	response.Created(c, item)
}

func (h *CollectionHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var input models.Collection
	if !bindJSON(c, &input) {
		return
	}
	item, err := h.collections.Update(middleware.CurrentTenantID(c), id, &input)
	if err != nil {
		response.FromError(c, err, "更新应收款失败")
		return
	}
	response.Success(c, item)
}

func (h *CollectionHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.collections.Delete(c.Request.Context(), middleware.CurrentTenantID(c), id); err != nil {
		response.FromError(c, err, "删除应收款失败")
		return
	}
	response.SuccessWithMessage(c, "删除成功", nil)
}

// Collect 登记收款并写入收入账目
func (h *CollectionHandler) Collect(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var in services.CollectInput
	if !bindJSON(c, &in) {
		return
	}
	item, err := h.collections.MarkCollected(c.Request.Context(), middleware.CurrentTenantID(c), id, in.Method)
	if err != nil {
		response.FromError(c, err, "登记收款失败")
		return
	}
	response.Success(c, item)
}
