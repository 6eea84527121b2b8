package services

import (
	"context"
	"strings"

	"agencydesk/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// HotelReservationInput 酒店预订请求
type HotelReservationInput struct {
	models.BookingContact
	HotelID       uint            `json:"hotel_id" binding:"required"`
	CheckIn       string          `json:"check_in" binding:"required,datetime=2006-01-02"`
	CheckOut      string          `json:"check_out" binding:"required,datetime=2006-01-02"`
	RoomType      string          `json:"room_type" binding:"max=50"`
	Rooms         int             `json:"rooms" binding:"omitempty,gte=1,lte=50"`
	Adults        int             `json:"adults" binding:"omitempty,gte=1"`
	Children      int             `json:"children" binding:"gte=0"`
	NightlyRate   decimal.Decimal `json:"nightly_rate" binding:"gte=0"`
	Currency      string          `json:"currency" binding:"omitempty,currency"`
	PaymentTiming string          `json:"payment_timing" binding:"required,oneof=now later"`
	DepositAmount decimal.Decimal `json:"deposit_amount" binding:"gte=0"`
}

// HotelService 酒店与酒店预订
type HotelService struct {
	db           *gorm.DB
	converter    CurrencyConverter
	Hotels       *ResourceService[models.Hotel, *models.Hotel]
	Reservations *BookingService[models.HotelReservation, *models.HotelReservation]
}

// NewHotelService 创建酒店服务
func NewHotelService(db *gorm.DB, ledger *LedgerService, converter CurrencyConverter) *HotelService {
	return &HotelService{
		db:        db,
		converter: converter,
		Hotels: NewResourceService[models.Hotel](db, "酒店", ListQuery{
			SearchColumns: []string{"name", "city", "country"},
			FilterColumns: []string{"status", "city", "country"},
		}, ActiveBookings(&models.HotelReservation{}, "hotel_id")),
		Reservations: NewBookingService[models.HotelReservation](db, ledger, "酒店预订", ListQuery{
			SearchColumns: []string{"customer_name", "customer_phone", "room_type"},
			FilterColumns: []string{"status", "hotel_id", "payment_timing"},
			Order:         "check_in DESC, id DESC",
		}, BookingHooks[models.HotelReservation]{}),
	}
}

// CreateReservation 酒店预订：晚数 x 房价 x 房间数，按付款时机拆分定金，并换算为租户本位币
func (s *HotelService) CreateReservation(ctx context.Context, tenantID uint, in *HotelReservationInput) (*models.HotelReservation, error) {
	checkIn, err := ParseDate(in.CheckIn)
	if err != nil {
		return nil, err
	}
	checkOut, err := ParseDate(in.CheckOut)
	if err != nil {
		return nil, err
	}
	nights, err := RentalDays(checkIn, checkOut)
	if err != nil {
		return nil, err
	}

	hotel, err := s.Hotels.Get(tenantID, in.HotelID)
	if err != nil {
		return nil, err
	}
	var tenant models.Tenant
	if err := s.db.WithContext(ctx).First(&tenant, tenantID).Error; err != nil {
		return nil, err
	}

	rate, err := rateOrDefault(in.NightlyRate, hotel.NightlyRate)
	if err != nil {
		return nil, err
	}
	rooms := in.Rooms
	if rooms == 0 {
		rooms = 1
	}
	adults := in.Adults
	if adults == 0 {
		adults = 1
	}
	currency := strings.ToUpper(in.Currency)
	if currency == "" {
		currency = hotel.Currency
	}

	total := BookingTotal(nights*rooms, rate)
	paid, remaining, err := SplitDeposit(total, in.PaymentTiming, in.DepositAmount)
	if err != nil {
		return nil, err
	}

	baseCurrency := tenant.BaseCurrency
	if baseCurrency == "" {
		baseCurrency = currency
	}
	baseTotal, exchangeRate, err := s.converter.Convert(ctx, total, currency, baseCurrency)
	if err != nil {
		return nil, err
	}

	reservation := &models.HotelReservation{
		HotelID:         hotel.ID,
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		Nights:          nights,
		RoomType:        in.RoomType,
		Rooms:           rooms,
		Adults:          adults,
		Children:        in.Children,
		NightlyRate:     rate,
		PaymentTiming:   in.PaymentTiming,
		DepositAmount:   paid,
		RemainingAmount: remaining,
		BaseCurrency:    baseCurrency,
		ExchangeRate:    exchangeRate,
		BaseTotal:       baseTotal,
	}
	reservation.ApplyContact(in.BookingContact)
	reservation.TotalAmount = total
	reservation.Currency = currency

	return s.Reservations.Create(ctx, tenantID, reservation, func(tx *gorm.DB, r *models.HotelReservation) error {
		// 事务内确认酒店仍存在
		_, err := getScoped[models.Hotel](tx, tenantID, r.HotelID, "酒店")
		return err
	})
}
