package handlers

import (
	"context"
	"fmt"
	"net/http"

	"agencydesk/internal/middleware"
	"agencydesk/internal/models"
	"agencydesk/internal/services"
	"agencydesk/pkg/pagination"
	"agencydesk/pkg/response"
	"agencydesk/pkg/voucher"

	"github.com/gin-gonic/gin"
)

// StatusRequest 预订状态变更
type StatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending confirmed active completed cancelled"`
}

// BookingHandler 预订通用接口，In 为创建请求体
type BookingHandler[T any, PT interface {
	*T
	services.Booking
}, In any] struct {
	service *services.BookingService[T, PT]
	create  func(ctx context.Context, tenantID uint, in *In) (PT, error)
}

func NewBookingHandler[T any, PT interface {
	*T
	services.Booking
}, In any](service *services.BookingService[T, PT], create func(ctx context.Context, tenantID uint, in *In) (PT, error)) *BookingHandler[T, PT, In] {
	return &BookingHandler[T, PT, In]{service: service, create: create}
}

// Register 注册列表、创建、详情、客户信息修改、状态变更、凭证与删除
func (h *BookingHandler[T, PT, In]) Register(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.UpdateContact)
	rg.PUT("/:id/status", h.UpdateStatus)
	rg.GET("/:id/voucher", h.Voucher)
	rg.DELETE("/:id", h.Delete)
}

func (h *BookingHandler[T, PT, In]) List(c *gin.Context) {
	params := pagination.ParseListParams(c, h.service.Query().FilterKeys()...)
	items, total, err := h.service.List(middleware.CurrentTenantID(c), params)
	if err != nil {
		response.FromError(c, err, "查询"+h.service.Name()+"失败")
		return
	}
	response.SuccessWithPage(c, items, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

func (h *BookingHandler[T, PT, In]) Get(c *gin.Context) {
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

func (h *BookingHandler[T, PT, In]) Create(c *gin.Context) {
	in := new(In)
	if !bindJSON(c, in) {
		return
	}
	booking, err := h.create(c.Request.Context(), middleware.CurrentTenantID(c), in)
	if err != nil {
		response.FromError(c, err, "创建"+h.service.Name()+"失败")
		return
	}
	response.Created(c, booking)
}

// UpdateContact 只允许修改客户信息与备注
func (h *BookingHandler[T, PT, In]) UpdateContact(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var contact models.BookingContact
	if !bindJSON(c, &contact) {
		return
	}
	booking, err := h.service.UpdateContact(c.Request.Context(), middleware.CurrentTenantID(c), id, contact)
	if err != nil {
		response.FromError(c, err, "更新"+h.service.Name()+"失败")
		return
	}
	response.Success(c, booking)
}

func (h *BookingHandler[T, PT, In]) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req StatusRequest
	if !bindJSON(c, &req) {
		return
	}
	booking, err := h.service.UpdateStatus(c.Request.Context(), middleware.CurrentTenantID(c), id, req.Status)
	if err != nil {
		response.FromError(c, err, "更新"+h.service.Name()+"状态失败")
		return
	}
	response.Success(c, booking)
}

// Voucher 下载 PDF 凭证
func (h *BookingHandler[T, PT, In]) Voucher(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	v, err := h.service.Voucher(middleware.CurrentTenantID(c), id)
	if err != nil {
		response.FromError(c, err, "生成凭证失败")
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="voucher-%d.pdf"`, id))
	c.Status(http.StatusOK)
	if err := voucher.Render(c.Writer, v); err != nil {
		// 头部已写出，只能记录
		_ = c.Error(err)
	}
}

func (h *BookingHandler[T, PT, In]) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), middleware.CurrentTenantID(c), id); err != nil {
		response.FromError(c, err, "删除"+h.service.Name()+"失败")
		return
	}
	response.SuccessWithMessage(c, "删除成功", nil)
}
