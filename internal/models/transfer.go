package models

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Transfer 接送线路
type Transfer struct {
	TenantModel
	FromLocation string          `json:"from_location" gorm:"size:100;not null" binding:"required"`
	ToLocation   string          `json:"to_location" gorm:"size:100;not null" binding:"required"`
	VehicleType  string          `json:"vehicle_type" gorm:"size:30"`
	Capacity     int             `json:"capacity" gorm:"not null" binding:"gte=1"`
	Price        decimal.Decimal `json:"price" gorm:"type:numeric(12,2);not null" binding:"gt=0"`
	Currency     string          `json:"currency" gorm:"size:3;not null" binding:"required,currency"`
	Status       string          `json:"status" gorm:"size:20;not null" binding:"omitempty,oneof=active inactive"`
}

func (t *Transfer) BeforeCreate(tx *gorm.DB) error {
	if t.Status == "" {
		t.Status = "active"
	}
	return nil
}

// TransferBooking 接送预订，往返价格翻倍
type TransferBooking struct {
	TenantModel
	BookingBase
	TransferID     uint       `json:"transfer_id" gorm:"not null;index"`
	PickupAt       time.Time  `json:"pickup_at" gorm:"not null;index"`
	PickupAddress  string     `json:"pickup_address" gorm:"size:255"`
	FlightNumber   string     `json:"flight_number" gorm:"size:20"`
	Passengers     int        `json:"passengers" gorm:"not null"`
	RoundTrip      bool       `json:"round_trip"`
	ReturnPickupAt *time.Time `json:"return_pickup_at"`
}

func (b *TransferBooking) BeforeCreate(tx *gorm.DB) error {
	if b.Status == "" {
		b.Status = BookingStatusPending
	}
	return nil
}

func (b *TransferBooking) LedgerKind() string     { return "transfer_booking" }
func (b *TransferBooking) LedgerCategory() string { return ModuleTransfers }

func (b *TransferBooking) VoucherDetails() []DetailLine {
	lines := []DetailLine{
		{Label: "Transfer ID", Value: strconv.FormatUint(uint64(b.TransferID), 10)},
		{Label: "Pick-up", Value: b.PickupAt.Format("2006-01-02 15:04") + " " + b.PickupAddress},
		{Label: "Passengers", Value: strconv.Itoa(b.Passengers)},
	}
	if b.FlightNumber != "" {
		lines = append(lines, DetailLine{Label: "Flight", Value: b.FlightNumber})
	}
	if b.RoundTrip && b.ReturnPickupAt != nil {
		lines = append(lines, DetailLine{Label: "Return pick-up", Value: b.ReturnPickupAt.Format("2006-01-02 15:04")})
	}
	return lines
}
