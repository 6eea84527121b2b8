package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"agencydesk/internal/middleware"
	"agencydesk/internal/models"
	"agencydesk/internal/services"
	"agencydesk/pkg/errors"
	"agencydesk/pkg/pagination"
	"agencydesk/pkg/response"

	"github.com/gin-gonic/gin"
)

const queryDateLayout = "2006-01-02"

// TransactionHandler 账目接口
type TransactionHandler struct {
	ledger *services.LedgerService
}

func NewTransactionHandler(ledger *services.LedgerService) *TransactionHandler {
	return &TransactionHandler{ledger: ledger}
}

// parseDateRange 解析 from/to 查询参数，to 当天包含在内
func parseDateRange(c *gin.Context) (from, to *time.Time, err error) {
	if raw := c.Query("from"); raw != "" {
		t, perr := time.Parse(queryDateLayout, raw)
		if perr != nil {
			return nil, nil, errors.BadRequest("from 日期格式应为 YYYY-MM-DD")
		}
		from = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, perr := time.Parse(queryDateLayout, raw)
		if perr != nil {
			return nil, nil, errors.BadRequest("to 日期格式应为 YYYY-MM-DD")
		}
		t = t.AddDate(0, 0, 1)
		to = &t
	}
	if from != nil && to != nil && !from.Before(*to) {
		return nil, nil, errors.BadRequest("from 不能晚于 to")
	}
	return from, to, nil
}

func parseFilter(c *gin.Context) (services.TransactionFilter, error) {
	from, to, err := parseDateRange(c)
	if err != nil {
		return services.TransactionFilter{}, err
	}
	return services.TransactionFilter{
		Type:     c.Query("type"),
		Category: c.Query("category"),
		Status:   c.Query("status"),
		Currency: c.Query("currency"),
		Keyword:  c.Query("keyword"),
		From:     from,
		To:       to,
	}, nil
}

// List 分页查询，支持 type/category/status/currency/keyword/from/to
func (h *TransactionHandler) List(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		response.FromError(c, err, "查询账目失败")
		return
	}
	page := pagination.ParsePageParams(c)
	rows, total, err := h.ledger.List(middleware.CurrentTenantID(c), filter, page)
	if err != nil {
		response.FromError(c, err, "查询账目失败")
		return
	}
	response.SuccessWithPage(c, rows, pagination.NewPageInfo(page.Page, page.PageSize, total))
}

func (h *TransactionHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	txn, err := h.ledger.Get(middleware.CurrentTenantID(c), id)
	if err != nil {
		response.FromError(c, err, "查询账目失败")
		return
	}
	response.Success(c, txn)
}

// Create 手工记账
func (h *TransactionHandler) Create(c *gin.Context) {
	var txn models.Transaction
	if !bindJSON(c, &txn) {
		return
	}
	if err := h.ledger.Create(c.Request.Context(), middleware.CurrentTenantID(c), &txn); err != nil {
		response.FromError(c, err, "创建账目失败")
		return
	}
	response.Created(c, txn)
}

func (h *TransactionHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var input models.Transaction
	if !bindJSON(c, &input) {
		return
	}
	txn, err := h.ledger.Update(c.Request.Context(), middleware.CurrentTenantID(c), id, &input)
	if err != nil {
		response.FromError(c, err, "更新账目失败")
		return
	}
	response.Success(c, txn)
}

func (h *TransactionHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.ledger.Delete(c.Request.Context(), middleware.CurrentTenantID(c), id); err != nil {
		response.FromError(c, err, "删除账目失败")
		return
	}
	response.SuccessWithMessage(c, "删除成功", nil)
}

// Summary 区间汇总
func (h *TransactionHandler) Summary(c *gin.Context) {
	from, to, err := parseDateRange(c)
	if err != nil {
		response.FromError(c, err, "查询账目汇总失败")
		return
	}
	summary, err := h.ledger.Summary(middleware.CurrentTenantID(c), from, to)
	if err != nil {
		response.FromError(c, err, "查询账目汇总失败")
		return
	}
	response.Success(c, summary)
}

// Export 导出 CSV，过滤条件与列表相同
func (h *TransactionHandler) Export(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		response.FromError(c, err, "导出账目失败")
		return
	}

	var buf bytes.Buffer
	if err := h.ledger.ExportCSV(middleware.CurrentTenantID(c), filter, &buf); err != nil {
		response.FromError(c, errors.Internal(err, "导出账目失败"), "导出账目失败")
		return
	}

	filename := fmt.Sprintf("transactions-%s.csv", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
