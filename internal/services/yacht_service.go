package services

import (
	"context"

	"agencydesk/internal/models"
	"agencydesk/pkg/errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// YachtRentalInput 游艇即时出租请求
type YachtRentalInput struct {
	models.BookingContact
	YachtID   uint            `json:"yacht_id" binding:"required"`
	StartDate string          `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate   string          `json:"end_date" binding:"required,datetime=2006-01-02"`
	Guests    int             `json:"guests" binding:"required,gte=1"`
	DailyRate decimal.Decimal `json:"daily_rate" binding:"gte=0"`
	WithCrew  bool            `json:"with_crew"`
}

// YachtBookingInput 游艇预约请求
type YachtBookingInput struct {
	models.BookingContact
	YachtID   uint            `json:"yacht_id" binding:"required"`
	StartDate string          `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate   string          `json:"end_date" binding:"required,datetime=2006-01-02"`
	Guests    int             `json:"guests" binding:"required,gte=1"`
	DailyRate decimal.Decimal `json:"daily_rate" binding:"gte=0"`
}

// YachtService 游艇、出租与预约
type YachtService struct {
	Yachts   *ResourceService[models.Yacht, *models.Yacht]
	Rentals  *BookingService[models.YachtRental, *models.YachtRental]
	Bookings *BookingService[models.YachtBooking, *models.YachtBooking]
}

func NewYachtService(db *gorm.DB, ledger *LedgerService) *YachtService {
	release := func(tx *gorm.DB, tenantID, yachtID uint) error {
		return setResourceStatus(tx, &models.Yacht{}, tenantID, yachtID, models.YachtStatusAvailable)
	}
	return &YachtService{
		Yachts: NewResourceService[models.Yacht](db, "游艇", ListQuery{
			SearchColumns: []string{"name", "type", "port"},
			FilterColumns: []string{"status", "type", "port"},
		},
			ActiveBookings(&models.YachtRental{}, "yacht_id"),
			ActiveBookings(&models.YachtBooking{}, "yacht_id"),
		),
		Rentals: NewBookingService[models.YachtRental](db, ledger, "游艇出租", ListQuery{
			SearchColumns: []string{"customer_name", "customer_phone"},
			FilterColumns: []string{"status", "yacht_id"},
		}, BookingHooks[models.YachtRental]{
			OnStatusChange: func(tx *gorm.DB, r *models.YachtRental, from, to string) error {
				if releasesResource(to) {
					return release(tx, r.TenantID, r.YachtID)
				}
				return nil
			},
			OnDelete: func(tx *gorm.DB, r *models.YachtRental) error {
				if isActiveStatus(r.Status) {
					return release(tx, r.TenantID, r.YachtID)
				}
				return nil
			},
		}),
		Bookings: NewBookingService[models.YachtBooking](db, ledger, "游艇预约", ListQuery{
			SearchColumns: []string{"customer_name", "customer_phone"},
			FilterColumns: []string{"status", "yacht_id"},
			Order:         "start_date DESC, id DESC",
		}, BookingHooks[models.YachtBooking]{}),
	}
}

func (s *YachtService) loadForCharter(tx *gorm.DB, tenantID, yachtID uint, guests int) (*models.Yacht, error) {
	yacht, err := lockScoped[models.Yacht](tx, tenantID, yachtID, "游艇")
	if err != nil {
		return nil, err
	}
	if yacht.Status == models.YachtStatusMaintenance {
		return nil, errors.BadRequest("游艇 %s 正在维护", yacht.Name)
	}
	if guests > yacht.Capacity {
		return nil, errors.BadRequest("人数超过游艇容量 %d", yacht.Capacity)
	}
	return yacht, nil
}

// CreateRental 游艇须空闲，出租后标记为已出租
func (s *YachtService) CreateRental(ctx context.Context, tenantID uint, in *YachtRentalInput) (*models.YachtRental, error) {
	dates, days, err := parseRange(in.StartDate, in.EndDate)
	if err != nil {
		return nil, err
	}
	rental := &models.YachtRental{
		DateRange: dates,
		YachtID:   in.YachtID,
		Days:      days,
		Guests:    in.Guests,
		WithCrew:  in.WithCrew,
	}
	rental.ApplyContact(in.BookingContact)

	return s.Rentals.Create(ctx, tenantID, rental, func(tx *gorm.DB, r *models.YachtRental) error {
		yacht, err := s.loadForCharter(tx, tenantID, in.YachtID, in.Guests)
		if err != nil {
			return err
		}
		if yacht.Status != models.YachtStatusAvailable {
			return errors.BadRequest("游艇 %s 当前不可出租", yacht.Name)
		}
		if err := checkOverlap(tx, &models.YachtBooking{}, tenantID, "yacht_id", yacht.ID, dates.StartDate, dates.EndDate); err != nil {
			return err
		}

		rate, err := rateOrDefault(in.DailyRate, yacht.DailyRate)
		if err != nil {
			return err
		}
		r.DailyRate = rate
		r.TotalAmount = BookingTotal(days, rate)
		r.Currency = yacht.Currency
		return setResourceStatus(tx, &models.Yacht{}, tenantID, yacht.ID, models.YachtStatusRented)
	})
}

// CreateBooking 日期不得与其他有效预约或出租重叠
func (s *YachtService) CreateBooking(ctx context.Context, tenantID uint, in *YachtBookingInput) (*models.YachtBooking, error) {
	dates, days, err := parseRange(in.StartDate, in.EndDate)
	if err != nil {
		return nil, err
	}
	booking := &models.YachtBooking{
		DateRange: dates,
		YachtID:   in.YachtID,
		Days:      days,
		Guests:    in.Guests,
	}
	booking.ApplyContact(in.BookingContact)

	return s.Bookings.Create(ctx, tenantID, booking, func(tx *gorm.DB, b *models.YachtBooking) error {
		yacht, err := s.loadForCharter(tx, tenantID, in.YachtID, in.Guests)
		if err != nil {
			return err
		}
		if err := checkOverlap(tx, &models.YachtBooking{}, tenantID, "yacht_id", yacht.ID, dates.StartDate, dates.EndDate); err != nil {
			return err
		}
		if err := checkOverlap(tx, &models.YachtRental{}, tenantID, "yacht_id", yacht.ID, dates.StartDate, dates.EndDate); err != nil {
			return err
		}

		rate, err := rateOrDefault(in.DailyRate, yacht.DailyRate)
		if err != nil {
			return err
		}
		b.DailyRate = rate
		b.TotalAmount = BookingTotal(days, rate)
		b.Currency = yacht.Currency
		return nil
	})
}
