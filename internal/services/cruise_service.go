package services

import (
	"context"

	"agencydesk/internal/models"
	"agencydesk/pkg/errors"

	"gorm.io/gorm"
)

// CruiseBookingInput 邮轮预订请求
type CruiseBookingInput struct {
	models.BookingContact
	CruiseID   uint   `json:"cruise_id" binding:"required"`
	CabinType  string `json:"cabin_type" binding:"omitempty,oneof=inside oceanview balcony suite"`
	Cabins     int    `json:"cabins" binding:"omitempty,gte=1"`
	Passengers int    `json:"passengers" binding:"required,gte=1"`
}

// CruiseService 邮轮航次与预订
type CruiseService struct {
	Cruises  *ResourceService[models.Cruise, *models.Cruise]
	Bookings *BookingService[models.CruiseBooking, *models.CruiseBooking]
}

func NewCruiseService(db *gorm.DB, ledger *LedgerService) *CruiseService {
	return &CruiseService{
		Cruises: NewResourceService[models.Cruise](db, "邮轮航次", ListQuery{
			SearchColumns: []string{"name", "cruise_line", "ship", "departure_port"},
			FilterColumns: []string{"status", "cruise_line"},
			Order:         "departure_date DESC, id DESC",
		}, ActiveBookings(&models.CruiseBooking{}, "cruise_id")),
		Bookings: NewBookingService[models.CruiseBooking](db, ledger, "邮轮预订", ListQuery{
			SearchColumns: []string{"customer_name", "customer_phone"},
			FilterColumns: []string{"status", "cruise_id", "cabin_type"},
		}, BookingHooks[models.CruiseBooking]{}),
	}
}

// CreateBooking 金额为人数乘票价，人数不超过剩余容量
func (s *CruiseService) CreateBooking(ctx context.Context, tenantID uint, in *CruiseBookingInput) (*models.CruiseBooking, error) {
	cabins := in.Cabins
	if cabins == 0 {
		cabins = 1
	}
	booking := &models.CruiseBooking{
		CruiseID:   in.CruiseID,
		CabinType:  in.CabinType,
		Cabins:     cabins,
		Passengers: in.Passengers,
	}
	booking.ApplyContact(in.BookingContact)

	return s.Bookings.Create(ctx, tenantID, booking, func(tx *gorm.DB, b *models.CruiseBooking) error {
		cruise, err := lockScoped[models.Cruise](tx, tenantID, in.CruiseID, "邮轮航次")
		if err != nil {
			return err
		}
		if cruise.Status != "active" {
			return errors.BadRequest("邮轮航次 %s 已停售", cruise.Name)
		}

		booked, err := bookedUnits(tx, &models.CruiseBooking{}, "passengers", "tenant_id = ? AND cruise_id = ?", tenantID, cruise.ID)
		if err != nil {
			return err
		}
		if booked+int64(in.Passengers) > int64(cruise.Capacity) {
			return errors.BadRequest("舱位不足，剩余 %d 人", maxInt64(int64(cruise.Capacity)-booked, 0))
		}

		b.UnitPrice = cruise.Price
		b.TotalAmount = BookingTotal(in.Passengers, cruise.Price)
		b.Currency = cruise.Currency
		return nil
	})
}
