package models

import (
	"strconv"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	VehicleStatusAvailable   = "available"
	VehicleStatusRented      = "rented"
	VehicleStatusMaintenance = "maintenance"
)

// Vehicle 租赁车辆
type Vehicle struct {
	TenantModel
	Plate        string          `json:"plate" gorm:"size:20;not null;index" binding:"required"`
	Brand        string          `json:"brand" gorm:"size:50;not null" binding:"required"`
	Model        string          `json:"model" gorm:"size:50"`
	Year         int             `json:"year" binding:"omitempty,gte=1950,lte=2100"`
	Category     string          `json:"category" gorm:"size:30"`
	Transmission string          `json:"transmission" gorm:"size:20" binding:"omitempty,oneof=manual automatic"`
	Seats        int             `json:"seats" binding:"omitempty,gte=1,lte=60"`
	DailyRate    decimal.Decimal `json:"daily_rate" gorm:"type:numeric(12,2);not null" binding:"gt=0"`
	Currency     string          `json:"currency" gorm:"size:3;not null" binding:"required,currency"`
	Status       string          `json:"status" gorm:"size:20;not null;index" binding:"omitempty,oneof=available rented maintenance"`
}

func (v *Vehicle) BeforeCreate(tx *gorm.DB) error {
	if v.Status == "" {
		v.Status = VehicleStatusAvailable
	}
	return nil
}

// VehicleRental 即时租车，创建后车辆标记为已出租
type VehicleRental struct {
	TenantModel
	BookingBase
	DateRange
	VehicleID     uint            `json:"vehicle_id" gorm:"not null;index"`
	Days          int             `json:"days" gorm:"not null"`
	DailyRate     decimal.Decimal `json:"daily_rate" gorm:"type:numeric(12,2);not null"`
	DriverLicense string          `json:"driver_license" gorm:"size:50"`
	PickupPlace   string          `json:"pickup_place" gorm:"size:100"`
	ReturnPlace   string          `json:"return_place" gorm:"size:100"`
}

func (r *VehicleRental) BeforeCreate(tx *gorm.DB) error {
	if r.Status == "" {
		r.Status = BookingStatusActive
	}
	return nil
}

func (r *VehicleRental) LedgerKind() string     { return "vehicle_rental" }
func (r *VehicleRental) LedgerCategory() string { return ModuleVehicles }

func (r *VehicleRental) VoucherDetails() []DetailLine {
	return []DetailLine{
		{Label: "Vehicle ID", Value: strconv.FormatUint(uint64(r.VehicleID), 10)},
		{Label: "Pick-up", Value: dateLabel(r.StartDate) + " " + r.PickupPlace},
		{Label: "Return", Value: dateLabel(r.EndDate) + " " + r.ReturnPlace},
		{Label: "Days", Value: strconv.Itoa(r.Days)},
		{Label: "Daily rate", Value: r.DailyRate.StringFixed(2)},
	}
}

// VehicleBooking 车辆预约，不改变车辆状态，但日期不可与其他有效预约重叠
type VehicleBooking struct {
	TenantModel
	BookingBase
	DateRange
	VehicleID uint            `json:"vehicle_id" gorm:"not null;index"`
	Days      int             `json:"days" gorm:"not null"`
	DailyRate decimal.Decimal `json:"daily_rate" gorm:"type:numeric(12,2);not null"`
}

func (b *VehicleBooking) BeforeCreate(tx *gorm.DB) error {
	if b.Status == "" {
		b.Status = BookingStatusPending
	}
	return nil
}

func (b *VehicleBooking) LedgerKind() string     { return "vehicle_booking" }
func (b *VehicleBooking) LedgerCategory() string { return ModuleVehicles }

func (b *VehicleBooking) VoucherDetails() []DetailLine {
	return []DetailLine{
		{Label: "Vehicle ID", Value: strconv.FormatUint(uint64(b.VehicleID), 10)},
		{Label: "From", Value: dateLabel(b.StartDate)},
		{Label: "To", Value: dateLabel(b.EndDate)},
		{Label: "Days", Value: strconv.Itoa(b.Days)},
		{Label: "Daily rate", Value: b.DailyRate.StringFixed(2)},
	}
}
