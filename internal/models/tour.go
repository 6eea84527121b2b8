package models

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Tour 旅游线路
type Tour struct {
	TenantModel
	Name         string          `json:"name" gorm:"size:150;not null;index" binding:"required"`
	Destination  string          `json:"destination" gorm:"size:100;index"`
	DurationDays int             `json:"duration_days" binding:"omitempty,gte=1"`
	Price        decimal.Decimal `json:"price" gorm:"type:numeric(12,2);not null" binding:"gt=0"`
	Currency     string          `json:"currency" gorm:"size:3;not null" binding:"required,currency"`
	Capacity     int             `json:"capacity" gorm:"not null" binding:"gte=1"`
	Description  string          `json:"description" gorm:"type:text"`
	Status       string          `json:"status" gorm:"size:20;not null" binding:"omitempty,oneof=active inactive"`
}

func (t *Tour) BeforeCreate(tx *gorm.DB) error {
	if t.Status == "" {
		t.Status = "active"
	}
	return nil
}

// TourBooking 线路报名，同一出发日人数不超过容量
type TourBooking struct {
	TenantModel
	BookingBase
	TourID       uint            `json:"tour_id" gorm:"not null;index"`
	TourDate     time.Time       `json:"tour_date" gorm:"not null;index"`
	Participants int             `json:"participants" gorm:"not null"`
	UnitPrice    decimal.Decimal `json:"unit_price" gorm:"type:numeric(12,2);not null"`
}

func (b *TourBooking) BeforeCreate(tx *gorm.DB) error {
	if b.Status == "" {
		b.Status = BookingStatusPending
	}
	return nil
}

func (b *TourBooking) LedgerKind() string     { return "tour_booking" }
func (b *TourBooking) LedgerCategory() string { return ModuleTours }

func (b *TourBooking) VoucherDetails() []DetailLine {
	return []DetailLine{
		{Label: "Tour ID", Value: strconv.FormatUint(uint64(b.TourID), 10)},
		{Label: "Date", Value: dateLabel(b.TourDate)},
		{Label: "Participants", Value: strconv.Itoa(b.Participants)},
		{Label: "Unit price", Value: b.UnitPrice.StringFixed(2)},
	}
}
