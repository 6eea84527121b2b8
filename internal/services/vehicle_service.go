package services

import (
	"context"

	"agencydesk/internal/models"
	"agencydesk/pkg/errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// VehicleRentalInput 即时租车请求
type VehicleRentalInput struct {
	models.BookingContact
	VehicleID     uint            `json:"vehicle_id" binding:"required"`
	StartDate     string          `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate       string          `json:"end_date" binding:"required,datetime=2006-01-02"`
	DailyRate     decimal.Decimal `json:"daily_rate" binding:"gte=0"`
	DriverLicense string          `json:"driver_license" binding:"max=50"`
	PickupPlace   string          `json:"pickup_place" binding:"max=100"`
	ReturnPlace   string          `json:"return_place" binding:"max=100"`
}

// VehicleBookingInput 车辆预约请求
type VehicleBookingInput struct {
	models.BookingContact
	VehicleID uint            `json:"vehicle_id" binding:"required"`
	StartDate string          `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate   string          `json:"end_date" binding:"required,datetime=2006-01-02"`
	DailyRate decimal.Decimal `json:"daily_rate" binding:"gte=0"`
}

// VehicleService 车辆、租车与车辆预约
type VehicleService struct {
	Vehicles *ResourceService[models.Vehicle, *models.Vehicle]
	Rentals  *BookingService[models.VehicleRental, *models.VehicleRental]
	Bookings *BookingService[models.VehicleBooking, *models.VehicleBooking]
}

// NewVehicleService 创建车辆服务
func NewVehicleService(db *gorm.DB, ledger *LedgerService) *VehicleService {
	s := &VehicleService{}
	s.Vehicles = NewResourceService[models.Vehicle](db, "车辆", ListQuery{
		SearchColumns: []string{"plate", "brand", "model"},
		FilterColumns: []string{"status", "category", "currency"},
	},
		ActiveBookings(&models.VehicleRental{}, "vehicle_id"),
		ActiveBookings(&models.VehicleBooking{}, "vehicle_id"),
	)
	s.Rentals = NewBookingService[models.VehicleRental](db, ledger, "租车记录", ListQuery{
		SearchColumns: []string{"customer_name", "customer_phone", "driver_license"},
		FilterColumns: []string{"status", "vehicle_id"},
	}, BookingHooks[models.VehicleRental]{
		OnStatusChange: func(tx *gorm.DB, r *models.VehicleRental, from, to string) error {
			if releasesResource(to) {
				return setResourceStatus(tx, &models.Vehicle{}, r.TenantID, r.VehicleID, models.VehicleStatusAvailable)
			}
			return nil
		},
		OnDelete: func(tx *gorm.DB, r *models.VehicleRental) error {
			if isActiveStatus(r.Status) {
				return setResourceStatus(tx, &models.Vehicle{}, r.TenantID, r.VehicleID, models.VehicleStatusAvailable)
			}
			return nil
		},
	})
	s.Bookings = NewBookingService[models.VehicleBooking](db, ledger, "车辆预约", ListQuery{
		SearchColumns: []string{"customer_name", "customer_phone"},
		FilterColumns: []string{"status", "vehicle_id"},
		Order:         "start_date DESC, id DESC",
	}, BookingHooks[models.VehicleBooking]{
		// 预约生效即取车，车辆转为出租
		OnStatusChange: func(tx *gorm.DB, b *models.VehicleBooking, from, to string) error {
			switch {
			case to == models.BookingStatusActive:
				vehicle, err := getScoped[models.Vehicle](tx, b.TenantID, b.VehicleID, "车辆")
				if err != nil {
					return err
				}
				if vehicle.Status != models.VehicleStatusAvailable {
					return errors.BadRequest("车辆 %s 当前不可用", vehicle.Plate)
				}
				return setResourceStatus(tx, &models.Vehicle{}, b.TenantID, b.VehicleID, models.VehicleStatusRented)
			case from == models.BookingStatusActive && releasesResource(to):
				return setResourceStatus(tx, &models.Vehicle{}, b.TenantID, b.VehicleID, models.VehicleStatusAvailable)
			}
			return nil
		},
		OnDelete: func(tx *gorm.DB, b *models.VehicleBooking) error {
			if b.Status == models.BookingStatusActive {
				return setResourceStatus(tx, &models.Vehicle{}, b.TenantID, b.VehicleID, models.VehicleStatusAvailable)
			}
			return nil
		},
	})
	return s
}

// CreateRental 即时租车：车辆须空闲，金额为天数乘日租金，车辆转为已出租
func (s *VehicleService) CreateRental(ctx context.Context, tenantID uint, in *VehicleRentalInput) (*models.VehicleRental, error) {
	dates, days, err := parseRange(in.StartDate, in.EndDate)
	if err != nil {
		return nil, err
	}

	rental := &models.VehicleRental{
		DateRange:     dates,
		VehicleID:     in.VehicleID,
		Days:          days,
		DriverLicense: in.DriverLicense,
		PickupPlace:   in.PickupPlace,
		ReturnPlace:   in.ReturnPlace,
	}
	rental.ApplyContact(in.BookingContact)

	return s.Rentals.Create(ctx, tenantID, rental, func(tx *gorm.DB, r *models.VehicleRental) error {
		vehicle, err := lockScoped[models.Vehicle](tx, tenantID, in.VehicleID, "车辆")
		if err != nil {
			return err
		}
		if vehicle.Status != models.VehicleStatusAvailable {
			return errors.BadRequest("车辆 %s 当前不可出租", vehicle.Plate)
		}
		if err := checkOverlap(tx, &models.VehicleBooking{}, tenantID, "vehicle_id", vehicle.ID, dates.StartDate, dates.EndDate); err != nil {
			return err
		}

		rate, err := rateOrDefault(in.DailyRate, vehicle.DailyRate)
		if err != nil {
			return err
		}
		r.DailyRate = rate
		r.TotalAmount = BookingTotal(days, rate)
		r.Currency = vehicle.Currency

		return setResourceStatus(tx, &models.Vehicle{}, tenantID, vehicle.ID, models.VehicleStatusRented)
	})
}

// CreateBooking 车辆预约：日期不得与其他有效预约或租车重叠
func (s *VehicleService) CreateBooking(ctx context.Context, tenantID uint, in *VehicleBookingInput) (*models.VehicleBooking, error) {
	dates, days, err := parseRange(in.StartDate, in.EndDate)
	if err != nil {
		return nil, err
	}

	booking := &models.VehicleBooking{
		DateRange: dates,
		VehicleID: in.VehicleID,
		Days:      days,
	}
	booking.ApplyContact(in.BookingContact)

	return s.Bookings.Create(ctx, tenantID, booking, func(tx *gorm.DB, b *models.VehicleBooking) error {
		vehicle, err := lockScoped[models.Vehicle](tx, tenantID, in.VehicleID, "车辆")
		if err != nil {
			return err
		}
		if vehicle.Status == models.VehicleStatusMaintenance {
			return errors.BadRequest("车辆 %s 正在维修", vehicle.Plate)
		}
		if err := checkOverlap(tx, &models.VehicleBooking{}, tenantID, "vehicle_id", vehicle.ID, dates.StartDate, dates.EndDate); err != nil {
			return err
		}
		if err := checkOverlap(tx, &models.VehicleRental{}, tenantID, "vehicle_id", vehicle.ID, dates.StartDate, dates.EndDate); err != nil {
			return err
		}

		rate, err := rateOrDefault(in.DailyRate, vehicle.DailyRate)
		if err != nil {
			return err
		}
		b.DailyRate = rate
		b.TotalAmount = BookingTotal(days, rate)
		b.Currency = vehicle.Currency
		return nil
	})
}
