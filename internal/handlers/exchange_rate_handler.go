package handlers

import (
	"strings"

	"agencydesk/internal/middleware"
	"agencydesk/internal/services"
	"agencydesk/pkg/response"
	"agencydesk/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ExchangeRateHandler 汇率查询与换算
type ExchangeRateHandler struct {
	rates *services.ExchangeRateService
}

func NewExchangeRateHandler(rates *services.ExchangeRateService) *ExchangeRateHandler {
	return &ExchangeRateHandler{rates: rates}
}

// baseCurrency 查询参数 base，缺省为当前租户的本位币
func baseCurrency(c *gin.Context) (string, bool) {
	base := strings.ToUpper(c.Query("base"))
	if base == "" {
		if tenant := middleware.CurrentTenant(c); tenant != nil {
			base = tenant.BaseCurrency
		}
	}
	if !validation.IsCurrencyCode(base) {
		response.BadRequest(c, "币种代码无效")
		return "", false
	}
	return base, true
}

// Rates GET /exchange-rates?base=EUR
func (h *ExchangeRateHandler) Rates(c *gin.Context) {
	base, ok := baseCurrency(c)
	if !ok {
		return
	}
	table, err := h.rates.GetRates(c.Request.Context(), base)
	if err != nil {
		response.FromError(c, err, "获取汇率失败")
		return
	}
	response.Success(c, table)
}

// Refresh 强制刷新缓存
func (h *ExchangeRateHandler) Refresh(c *gin.Context) {
	base, ok := baseCurrency(c)
	if !ok {
		return
	}
	table, err := h.rates.Refresh(c.Request.Context(), base)
	if err != nil {
		response.FromError(c, err, "刷新汇率失败")
		return
	}
	response.Success(c, table)
}

// Convert GET /exchange-rates/convert?amount=100&from=EUR&to=TRY
func (h *ExchangeRateHandler) Convert(c *gin.Context) {
	amount, err := decimal.NewFromString(c.Query("amount"))
	if err != nil || amount.IsNegative() {
		response.BadRequest(c, "金额无效")
		return
	}
	from := strings.ToUpper(c.Query("from"))
	to := strings.ToUpper(c.Query("to"))
	if !validation.IsCurrencyCode(from) || !validation.IsCurrencyCode(to) {
		response.BadRequest(c, "币种代码无效")
		return
	}

	converted, rate, err := h.rates.Convert(c.Request.Context(), amount, from, to)
	if err != nil {
		response.FromError(c, err, "换算失败")
		return
	}
	response.Success(c, gin.H{
		"amount":    amount,
		"from":      from,
		"to":        to,
		"rate":      rate,
		"converted": converted,
	})
}
