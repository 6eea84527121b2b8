package models

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Hotel 合作酒店
type Hotel struct {
	TenantModel
	Name        string          `json:"name" gorm:"size:150;not null;index" binding:"required"`
	City        string          `json:"city" gorm:"size:80;index"`
	Country     string          `json:"country" gorm:"size:80"`
	Address     string          `json:"address" gorm:"size:255"`
	Stars       int             `json:"stars" binding:"omitempty,gte=1,lte=5"`
	Phone       string          `json:"phone" gorm:"size:30"`
	Email       string          `json:"email" gorm:"size:100" binding:"omitempty,email"`
	NightlyRate decimal.Decimal `json:"nightly_rate" gorm:"type:numeric(12,2);not null" binding:"gte=0"`
	Currency    string          `json:"currency" gorm:"size:3;not null" binding:"required,currency"`
	Status      string          `json:"status" gorm:"size:20;not null" binding:"omitempty,oneof=active inactive"`
}

func (h *Hotel) BeforeCreate(tx *gorm.DB) error {
	if h.Status == "" {
		h.Status = "active"
	}
	return nil
}

// 付款时机
const (
	PaymentTimingNow   = "now"
	PaymentTimingLater = "later"
)

// HotelReservation 酒店预订，含定金/尾款拆分及本位币换算
type HotelReservation struct {
	TenantModel
	BookingBase
	HotelID         uint            `json:"hotel_id" gorm:"not null;index"`
	CheckIn         time.Time       `json:"check_in" gorm:"not null;index"`
	CheckOut        time.Time       `json:"check_out" gorm:"not null"`
	Nights          int             `json:"nights" gorm:"not null"`
	RoomType        string          `json:"room_type" gorm:"size:50"`
	Rooms           int             `json:"rooms" gorm:"not null"`
	Adults          int             `json:"adults" gorm:"not null"`
	Children        int             `json:"children"`
	NightlyRate     decimal.Decimal `json:"nightly_rate" gorm:"type:numeric(12,2);not null"`
	PaymentTiming   string          `json:"payment_timing" gorm:"size:10;not null"`
	DepositAmount   decimal.Decimal `json:"deposit_amount" gorm:"type:numeric(12,2);not null"`
	RemainingAmount decimal.Decimal `json:"remaining_amount" gorm:"type:numeric(12,2);not null"`
	BaseCurrency    string          `json:"base_currency" gorm:"size:3;not null"`
	ExchangeRate    decimal.Decimal `json:"exchange_rate" gorm:"type:numeric(18,8);not null"`
	BaseTotal       decimal.Decimal `json:"base_total" gorm:"type:numeric(12,2);not null"`
}

func (r *HotelReservation) BeforeCreate(tx *gorm.DB) error {
	if r.Status == "" {
		r.Status = BookingStatusPending
	}
	return nil
}

func (r *HotelReservation) LedgerKind() string     { return "hotel_reservation" }
func (r *HotelReservation) LedgerCategory() string { return ModuleHotels }

// LedgerAmount 按租户本位币记账
func (r *HotelReservation) LedgerAmount() (decimal.Decimal, string) {
	if r.BaseCurrency == "" {
		return r.TotalAmount, r.Currency
	}
	return r.BaseTotal, r.BaseCurrency
}

func (r *HotelReservation) VoucherDetails() []DetailLine {
	lines := []DetailLine{
		{Label: "Hotel ID", Value: strconv.FormatUint(uint64(r.HotelID), 10)},
		{Label: "Check-in", Value: dateLabel(r.CheckIn)},
		{Label: "Check-out", Value: dateLabel(r.CheckOut)},
		{Label: "Nights", Value: strconv.Itoa(r.Nights)},
		{Label: "Rooms", Value: strconv.Itoa(r.Rooms) + " " + r.RoomType},
		{Label: "Guests", Value: strconv.Itoa(r.Adults) + " adults, " + strconv.Itoa(r.Children) + " children"},
		{Label: "Paid", Value: r.DepositAmount.StringFixed(2) + " " + r.Currency},
		{Label: "Due at hotel", Value: r.RemainingAmount.StringFixed(2) + " " + r.Currency},
	}
	if r.BaseCurrency != "" && r.BaseCurrency != r.Currency {
		lines = append(lines, DetailLine{Label: "Base total", Value: r.BaseTotal.StringFixed(2) + " " + r.BaseCurrency})
	}
	return lines
}
