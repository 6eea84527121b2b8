package services

import (
	"context"
	"strings"

	"agencydesk/internal/models"
	"agencydesk/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FlightBookingInput 机票预订请求
type FlightBookingInput struct {
	models.BookingContact
	FlightID   uint   `json:"flight_id" binding:"required"`
	Passengers int    `json:"passengers" binding:"required,gte=1,lte=9"`
	CabinClass string `json:"cabin_class" binding:"omitempty,oneof=economy premium business first"`
}

// FlightService 航班与机票预订
type FlightService struct {
	Flights  *ResourceService[models.Flight, *models.Flight]
	Bookings *BookingService[models.FlightBooking, *models.FlightBooking]
}

func NewFlightService(db *gorm.DB, ledger *LedgerService) *FlightService {
	return &FlightService{
		Flights: NewResourceService[models.Flight](db, "航班", ListQuery{
			SearchColumns: []string{"airline", "flight_number", "origin", "destination"},
			FilterColumns: []string{"status", "origin", "destination"},
			Order:         "departure_at DESC, id DESC",
		}, ActiveBookings(&models.FlightBooking{}, "flight_id")),
		Bookings: NewBookingService[models.FlightBooking](db, ledger, "机票预订", ListQuery{
			SearchColumns: []string{"customer_name", "customer_phone", "pnr"},
			FilterColumns: []string{"status", "flight_id", "pnr"},
		}, BookingHooks[models.FlightBooking]{}),
	}
}

// NewPNR 6 位订座记录编号
func NewPNR() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
}

// CreateBooking 乘客数不超过剩余座位，生成 PNR
func (s *FlightService) CreateBooking(ctx context.Context, tenantID uint, in *FlightBookingInput) (*models.FlightBooking, error) {
	cabin := in.CabinClass
	if cabin == "" {
		cabin = "economy"
	}
	booking := &models.FlightBooking{
		FlightID:   in.FlightID,
		PNR:        NewPNR(),
		Passengers: in.Passengers,
		CabinClass: cabin,
	}
	booking.ApplyContact(in.BookingContact)

	return s.Bookings.Create(ctx, tenantID, booking, func(tx *gorm.DB, b *models.FlightBooking) error {
		flight, err := lockScoped[models.Flight](tx, tenantID, in.FlightID, "航班")
		if err != nil {
			return err
		}
		if flight.Status != "scheduled" {
			return errors.BadRequest("航班 %s 已取消", flight.FlightNumber)
		}

		booked, err := bookedUnits(tx, &models.FlightBooking{}, "passengers", "tenant_id = ? AND flight_id = ?", tenantID, flight.ID)
		if err != nil {
			return err
		}
		if booked+int64(in.Passengers) > int64(flight.Seats) {
			return errors.BadRequest("座位不足，剩余 %d 个", maxInt64(int64(flight.Seats)-booked, 0))
		}

		b.UnitPrice = flight.Price
		b.TotalAmount = BookingTotal(in.Passengers, flight.Price)
		b.Currency = flight.Currency
		return nil
	})
}
