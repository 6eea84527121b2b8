package models

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Flight 航班（包机或代理库存）
type Flight struct {
	TenantModel
	Airline      string          `json:"airline" gorm:"size:80;not null" binding:"required"`
	FlightNumber string          `json:"flight_number" gorm:"size:20;not null;index" binding:"required"`
	Origin       string          `json:"origin" gorm:"size:10;not null" binding:"required"`
	Destination  string          `json:"destination" gorm:"size:10;not null" binding:"required"`
	DepartureAt  time.Time       `json:"departure_at" gorm:"not null;index" binding:"required"`
	ArrivalAt    time.Time       `json:"arrival_at" gorm:"not null" binding:"required,gtfield=DepartureAt"`
	Price        decimal.Decimal `json:"price" gorm:"type:numeric(12,2);not null" binding:"gt=0"`
	Currency     string          `json:"currency" gorm:"size:3;not null" binding:"required,currency"`
	Seats        int             `json:"seats" gorm:"not null" binding:"gte=1"`
	Status       string          `json:"status" gorm:"size:20;not null" binding:"omitempty,oneof=scheduled cancelled"`
}

func (f *Flight) BeforeCreate(tx *gorm.DB) error {
	if f.Status == "" {
		f.Status = "scheduled"
	}
	return nil
}

// FlightBooking 机票预订
type FlightBooking struct {
	TenantModel
	BookingBase
	FlightID   uint            `json:"flight_id" gorm:"not null;index"`
	PNR        string          `json:"pnr" gorm:"size:10;not null;index"`
	Passengers int             `json:"passengers" gorm:"not null"`
	CabinClass string          `json:"cabin_class" gorm:"size:20"`
	UnitPrice  decimal.Decimal `json:"unit_price" gorm:"type:numeric(12,2);not null"`
}

func (b *FlightBooking) BeforeCreate(tx *gorm.DB) error {
	if b.Status == "" {
		b.Status = BookingStatusPending
	}
	return nil
}

func (b *FlightBooking) LedgerKind() string     { return "flight_booking" }
func (b *FlightBooking) LedgerCategory() string { return ModuleFlights }

func (b *FlightBooking) VoucherDetails() []DetailLine {
	return []DetailLine{
		{Label: "Flight ID", Value: strconv.FormatUint(uint64(b.FlightID), 10)},
		{Label: "PNR", Value: b.PNR},
		{Label: "Passengers", Value: strconv.Itoa(b.Passengers)},
		{Label: "Cabin", Value: b.CabinClass},
		{Label: "Fare", Value: b.UnitPrice.StringFixed(2)},
	}
}
