package models

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Cruise 邮轮航次
type Cruise struct {
	TenantModel
	Name          string          `json:"name" gorm:"size:150;not null;index" binding:"required"`
	CruiseLine    string          `json:"cruise_line" gorm:"size:80"`
	Ship          string          `json:"ship" gorm:"size:80"`
	DeparturePort string          `json:"departure_port" gorm:"size:100"`
	DepartureDate time.Time       `json:"departure_date" gorm:"not null;index" binding:"required"`
	ReturnDate    time.Time       `json:"return_date" gorm:"not null" binding:"required,gtefield=DepartureDate"`
	Price         decimal.Decimal `json:"price" gorm:"type:numeric(12,2);not null" binding:"gt=0"`
	Currency      string          `json:"currency" gorm:"size:3;not null" binding:"required,currency"`
	Capacity      int             `json:"capacity" gorm:"not null" binding:"gte=1"`
	Status        string          `json:"status" gorm:"size:20;not null" binding:"omitempty,oneof=active inactive"`
}

func (c *Cruise) BeforeCreate(tx *gorm.DB) error {
	if c.Status == "" {
		c.Status = "active"
	}
	return nil
}

// CruiseBooking 邮轮预订
type CruiseBooking struct {
	TenantModel
	BookingBase
	CruiseID   uint            `json:"cruise_id" gorm:"not null;index"`
	CabinType  string          `json:"cabin_type" gorm:"size:30"`
	Cabins     int             `json:"cabins" gorm:"not null"`
	Passengers int             `json:"passengers" gorm:"not null"`
	UnitPrice  decimal.Decimal `json:"unit_price" gorm:"type:numeric(12,2);not null"`
}

func (b *CruiseBooking) BeforeCreate(tx *gorm.DB) error {
	if b.Status == "" {
		b.Status = BookingStatusPending
	}
	return nil
}

func (b *CruiseBooking) LedgerKind() string     { return "cruise_booking" }
func (b *CruiseBooking) LedgerCategory() string { return ModuleCruises }

func (b *CruiseBooking) VoucherDetails() []DetailLine {
	return []DetailLine{
		{Label: "Cruise ID", Value: strconv.FormatUint(uint64(b.CruiseID), 10)},
		{Label: "Cabins", Value: strconv.Itoa(b.Cabins) + " " + b.CabinType},
		{Label: "Passengers", Value: strconv.Itoa(b.Passengers)},
		{Label: "Price per passenger", Value: b.UnitPrice.StringFixed(2)},
	}
}
