package models

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	PropertyStatusAvailable = "available"
	PropertyStatusRented    = "rented"
	PropertyStatusSold      = "sold"
)

// Property 房源
type Property struct {
	TenantModel
	Title      string          `json:"title" gorm:"size:150;not null;index" binding:"required"`
	Type       string          `json:"type" gorm:"size:30" binding:"omitempty,oneof=apartment villa house office land"`
	Address    string          `json:"address" gorm:"size:255"`
	City       string          `json:"city" gorm:"size:80;index"`
	Rooms      int             `json:"rooms"`
	AreaM2     int             `json:"area_m2"`
	RentPrice  decimal.Decimal `json:"rent_price" gorm:"type:numeric(12,2)" binding:"gte=0"`
	SalePrice  decimal.Decimal `json:"sale_price" gorm:"type:numeric(14,2)" binding:"gte=0"`
	Currency   string          `json:"currency" gorm:"size:3;not null" binding:"required,currency"`
	OwnerName  string          `json:"owner_name" gorm:"size:100"`
	OwnerPhone string          `json:"owner_phone" gorm:"size:30"`
	Status     string          `json:"status" gorm:"size:20;not null;index" binding:"omitempty,oneof=available rented sold"`
}

func (p *Property) BeforeCreate(tx *gorm.DB) error {
	if p.Status == "" {
		p.Status = PropertyStatusAvailable
	}
	return nil
}

// PropertyRental 房屋出租合同
type PropertyRental struct {
	TenantModel
	BookingBase
	DateRange
	PropertyID  uint            `json:"property_id" gorm:"not null;index"`
	Months      int             `json:"months" gorm:"not null"`
	MonthlyRent decimal.Decimal `json:"monthly_rent" gorm:"type:numeric(12,2);not null"`
	Deposit     decimal.Decimal `json:"deposit" gorm:"type:numeric(12,2);not null"`
}

func (r *PropertyRental) BeforeCreate(tx *gorm.DB) error {
	if r.Status == "" {
		r.Status = BookingStatusActive
	}
	return nil
}

func (r *PropertyRental) LedgerKind() string     { return "property_rental" }
func (r *PropertyRental) LedgerCategory() string { return ModuleProperty }

func (r *PropertyRental) VoucherDetails() []DetailLine {
	return []DetailLine{
		{Label: "Property ID", Value: strconv.FormatUint(uint64(r.PropertyID), 10)},
		{Label: "From", Value: dateLabel(r.StartDate)},
		{Label: "To", Value: dateLabel(r.EndDate)},
		{Label: "Months", Value: strconv.Itoa(r.Months)},
		{Label: "Monthly rent", Value: r.MonthlyRent.StringFixed(2)},
		{Label: "Deposit", Value: r.Deposit.StringFixed(2)},
	}
}

// PropertySale 房屋买卖，账目记录代理佣金
type PropertySale struct {
	TenantModel
	BookingBase
	PropertyID uint            `json:"property_id" gorm:"not null;index"`
	SalePrice  decimal.Decimal `json:"sale_price" gorm:"type:numeric(14,2);not null"`
	Commission decimal.Decimal `json:"commission" gorm:"type:numeric(12,2);not null"`
	SaleDate   time.Time       `json:"sale_date" gorm:"not null"`
}

func (s *PropertySale) BeforeCreate(tx *gorm.DB) error {
	if s.Status == "" {
		s.Status = BookingStatusPending
	}
	return nil
}

func (s *PropertySale) LedgerKind() string     { return "property_sale" }
func (s *PropertySale) LedgerCategory() string { return ModuleProperty }

// LedgerAmount 代理收入为佣金
func (s *PropertySale) LedgerAmount() (decimal.Decimal, string) {
	return s.Commission, s.Currency
}

func (s *PropertySale) VoucherDetails() []DetailLine {
	return []DetailLine{
		{Label: "Property ID", Value: strconv.FormatUint(uint64(s.PropertyID), 10)},
		{Label: "Sale date", Value: dateLabel(s.SaleDate)},
		{Label: "Sale price", Value: s.SalePrice.StringFixed(2)},
		{Label: "Commission", Value: s.Commission.StringFixed(2)},
	}
}
