package services

import (
	"strings"
	"time"

	"agencydesk/internal/models"
	"agencydesk/pkg/errors"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// ParseDate 解析 YYYY-MM-DD 日期（UTC）
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, errors.BadRequest("日期格式错误: %s", value)
	}
	return t, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// RentalDays 计算两个日期之间的整天数，最少 1 天
func RentalDays(start, end time.Time) (int, error) {
	s, e := truncateDay(start), truncateDay(end)
	if e.Before(s) {
		return 0, errors.BadRequest("结束日期不能早于开始日期")
	}
	days := int(e.Sub(s).Hours() / 24)
	if days < 1 {
		days = 1
	}
	return days, nil
}

// BookingTotal units * rate，保留两位小数
func BookingTotal(units int, rate decimal.Decimal) decimal.Decimal {
	return rate.Mul(decimal.NewFromInt(int64(units))).Round(2)
}

// SplitDeposit 按付款时机拆分定金与尾款
//
// now: 支付 deposit（为零或超过总额时支付全额），剩余 total - paid
// later: 支付 0，剩余 total
func SplitDeposit(total decimal.Decimal, timing string, deposit decimal.Decimal) (paid, remaining decimal.Decimal, err error) {
	switch timing {
	case models.PaymentTimingNow:
		paid = deposit
		if paid.Sign() <= 0 || paid.GreaterThan(total) {
			paid = total
		}
		return paid, total.Sub(paid), nil
	case models.PaymentTimingLater:
		return decimal.Zero, total, nil
	default:
		return decimal.Zero, decimal.Zero, errors.BadRequest("无效的付款时机: %s", timing)
	}
}

// addMonths 保单/租约结束日期
func addMonths(start time.Time, months int) time.Time {
	return start.AddDate(0, months, 0)
}
