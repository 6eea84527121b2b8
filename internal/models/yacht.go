package models

import (
	"strconv"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	YachtStatusAvailable   = "available"
	YachtStatusRented      = "rented"
	YachtStatusMaintenance = "maintenance"
)

// Yacht 游艇
type Yacht struct {
	TenantModel
	Name      string          `json:"name" gorm:"size:100;not null;index" binding:"required"`
	Type      string          `json:"type" gorm:"size:30"`
	LengthM   decimal.Decimal `json:"length_m" gorm:"type:numeric(6,2)"`
	Cabins    int             `json:"cabins"`
	Capacity  int             `json:"capacity" gorm:"not null" binding:"gte=1"`
	Port      string          `json:"port" gorm:"size:100"`
	DailyRate decimal.Decimal `json:"daily_rate" gorm:"type:numeric(12,2);not null" binding:"gt=0"`
	Currency  string          `json:"currency" gorm:"size:3;not null" binding:"required,currency"`
	Status    string          `json:"status" gorm:"size:20;not null;index" binding:"omitempty,oneof=available rented maintenance"`
}

func (y *Yacht) BeforeCreate(tx *gorm.DB) error {
	if y.Status == "" {
		y.Status = YachtStatusAvailable
	}
	return nil
}

// YachtRental 游艇即时出租
type YachtRental struct {
	TenantModel
	BookingBase
	DateRange
	YachtID   uint            `json:"yacht_id" gorm:"not null;index"`
	Days      int             `json:"days" gorm:"not null"`
	Guests    int             `json:"guests" gorm:"not null"`
	DailyRate decimal.Decimal `json:"daily_rate" gorm:"type:numeric(12,2);not null"`
	WithCrew  bool            `json:"with_crew"`
}

func (r *YachtRental) BeforeCreate(tx *gorm.DB) error {
	if r.Status == "" {
		r.Status = BookingStatusActive
	}
	return nil
}

func (r *YachtRental) LedgerKind() string     { return "yacht_rental" }
func (r *YachtRental) LedgerCategory() string { return ModuleYachts }

func (r *YachtRental) VoucherDetails() []DetailLine {
	crew := "no"
	if r.WithCrew {
		crew = "yes"
	}
	return []DetailLine{
		{Label: "Yacht ID", Value: strconv.FormatUint(uint64(r.YachtID), 10)},
		{Label: "From", Value: dateLabel(r.StartDate)},
		{Label: "To", Value: dateLabel(r.EndDate)},
		{Label: "Days", Value: strconv.Itoa(r.Days)},
		{Label: "Guests", Value: strconv.Itoa(r.Guests)},
		{Label: "Crew", Value: crew},
	}
}

// YachtBooking 游艇包船预约
type YachtBooking struct {
	TenantModel
	BookingBase
	DateRange
	YachtID   uint            `json:"yacht_id" gorm:"not null;index"`
	Days      int             `json:"days" gorm:"not null"`
	Guests    int             `json:"guests" gorm:"not null"`
	DailyRate decimal.Decimal `json:"daily_rate" gorm:"type:numeric(12,2);not null"`
}

func (b *YachtBooking) BeforeCreate(tx *gorm.DB) error {
	if b.Status == "" {
		b.Status = BookingStatusPending
	}
	return nil
}

func (b *YachtBooking) LedgerKind() string     { return "yacht_booking" }
func (b *YachtBooking) LedgerCategory() string { return ModuleYachts }

func (b *YachtBooking) VoucherDetails() []DetailLine {
	return []DetailLine{
		{Label: "Yacht ID", Value: strconv.FormatUint(uint64(b.YachtID), 10)},
		{Label: "From", Value: dateLabel(b.StartDate)},
		{Label: "To", Value: dateLabel(b.EndDate)},
		{Label: "Days", Value: strconv.Itoa(b.Days)},
		{Label: "Guests", Value: strconv.Itoa(b.Guests)},
	}
}
