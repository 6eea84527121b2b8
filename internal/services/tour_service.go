package services

import (
	"context"

	"agencydesk/internal/models"
	"agencydesk/pkg/errors"

	"gorm.io/gorm"
)

// TourBookingInput 线路报名请求
type TourBookingInput struct {
	models.BookingContact
	TourID       uint   `json:"tour_id" binding:"required"`
	TourDate     string `json:"tour_date" binding:"required,datetime=2006-01-02"`
	Participants int    `json:"participants" binding:"required,gte=1"`
}

// TourService 旅游线路与报名
type TourService struct {
	Tours    *ResourceService[models.Tour, *models.Tour]
	Bookings *BookingService[models.TourBooking, *models.TourBooking]
}

func NewTourService(db *gorm.DB, ledger *LedgerService) *TourService {
	return &TourService{
		Tours: NewResourceService[models.Tour](db, "线路", ListQuery{
			SearchColumns: []string{"name", "destination"},
			FilterColumns: []string{"status", "destination"},
		}, ActiveBookings(&models.TourBooking{}, "tour_id")),
		Bookings: NewBookingService[models.TourBooking](db, ledger, "线路报名", ListQuery{
			SearchColumns: []string{"customer_name", "customer_phone"},
			FilterColumns: []string{"status", "tour_id"},
			Order:         "tour_date DESC, id DESC",
		}, BookingHooks[models.TourBooking]{}),
	}
}

// CreateBooking 同一出发日的报名人数不能超过线路容量
func (s *TourService) CreateBooking(ctx context.Context, tenantID uint, in *TourBookingInput) (*models.TourBooking, error) {
	tourDate, err := ParseDate(in.TourDate)
	if err != nil {
		return nil, err
	}

	booking := &models.TourBooking{
		TourID:       in.TourID,
		TourDate:     tourDate,
		Participants: in.Participants,
	}
	booking.ApplyContact(in.BookingContact)

	return s.Bookings.Create(ctx, tenantID, booking, func(tx *gorm.DB, b *models.TourBooking) error {
		tour, err := lockScoped[models.Tour](tx, tenantID, in.TourID, "线路")
		if err != nil {
			return err
		}
		if tour.Status != "active" {
			return errors.BadRequest("线路 %s 已停售", tour.Name)
		}

		booked, err := bookedUnits(tx, &models.TourBooking{}, "participants",
			"tenant_id = ? AND tour_id = ? AND tour_date = ?", tenantID, tour.ID, tourDate)
		if err != nil {
			return err
		}
		if booked+int64(in.Participants) > int64(tour.Capacity) {
			return errors.BadRequest("名额不足，剩余 %d 人", maxInt64(int64(tour.Capacity)-booked, 0))
		}

		b.UnitPrice = tour.Price
		b.TotalAmount = BookingTotal(in.Participants, tour.Price)
		b.Currency = tour.Currency
		return nil
	})
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
