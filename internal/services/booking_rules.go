package services

import (
	"time"

	"agencydesk/internal/models"
	"agencydesk/pkg/errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// setResourceStatus 在事务内修改资源状态
func setResourceStatus(tx *gorm.DB, model interface{}, tenantID, id uint, status string) error {
	return tx.Model(model).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Update("status", status).Error
}

// checkOverlap 同一资源的有效预订日期不可重叠
//
// 按计费区间比较：[start, end)，同一天起止的预订按 [start, start+1天) 计，首尾相接不算冲突
func checkOverlap(tx *gorm.DB, model interface{}, tenantID uint, column string, resourceID uint, start, end time.Time) error {
	start, end = billedRange(start, end)

	var count int64
	err := tx.Model(model).
		Where("tenant_id = ? AND "+column+" = ? AND status IN ?", tenantID, resourceID, models.ActiveBookingStatuses).
		Where("start_date < ?", end).
		Where("(end_date > ? OR (end_date = start_date AND start_date >= ?))", start, start).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return errors.BadRequest("所选日期与已有预订冲突")
	}
	return nil
}

// billedRange 计费区间，至少一天
func billedRange(start, end time.Time) (time.Time, time.Time) {
	start, end = truncateDay(start), truncateDay(end)
	if !end.After(start) {
		end = start.AddDate(0, 0, 1)
	}
	return start, end
}

// bookedUnits 统计有效预订已占用的数量（人数、座位等）
func bookedUnits(tx *gorm.DB, model interface{}, sumColumn string, where string, args ...interface{}) (int64, error) {
	var booked int64
	err := tx.Model(model).
		Where(where, args...).
		Where("status IN ?", models.ActiveBookingStatuses).
		Select("COALESCE(SUM(" + sumColumn + "), 0)").
		Scan(&booked).Error
	return booked, err
}

// rateOrDefault 未指定价格时使用资源价格
func rateOrDefault(rate, fallback decimal.Decimal) (decimal.Decimal, error) {
	if rate.Sign() > 0 {
		return rate, nil
	}
	if fallback.Sign() > 0 {
		return fallback, nil
	}
	return decimal.Zero, errors.BadRequest("请填写价格")
}

// parseRange 解析起止日期并计算天数
func parseRange(startValue, endValue string) (models.DateRange, int, error) {
	start, err := ParseDate(startValue)
	if err != nil {
		return models.DateRange{}, 0, err
	}
	end, err := ParseDate(endValue)
	if err != nil {
		return models.DateRange{}, 0, err
	}
	days, err := RentalDays(start, end)
	if err != nil {
		return models.DateRange{}, 0, err
	}
	return models.DateRange{StartDate: start, EndDate: end}, days, nil
}

// releasesResource 预订结束（完成或取消）时释放资源
func releasesResource(to string) bool {
	return to == models.BookingStatusCompleted || to == models.BookingStatusCancelled
}

func isActiveStatus(status string) bool {
	for _, s := range models.ActiveBookingStatuses {
		if s == status {
			return true
		}
	}
	return false
}
