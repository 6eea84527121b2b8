package services

import (
	"context"
	"time"

	"agencydesk/internal/models"
	"agencydesk/pkg/errors"

	"gorm.io/gorm"
)

// TransferBookingInput 接送预订请求
type TransferBookingInput struct {
	models.BookingContact
	TransferID     uint       `json:"transfer_id" binding:"required"`
	PickupAt       time.Time  `json:"pickup_at" binding:"required"`
	PickupAddress  string     `json:"pickup_address" binding:"max=255"`
	FlightNumber   string     `json:"flight_number" binding:"max=20"`
	Passengers     int        `json:"passengers" binding:"required,gte=1"`
	RoundTrip      bool       `json:"round_trip"`
	ReturnPickupAt *time.Time `json:"return_pickup_at"`
}

// TransferService 接送线路与预订
type TransferService struct {
	Transfers *ResourceService[models.Transfer, *models.Transfer]
	Bookings  *BookingService[models.TransferBooking, *models.TransferBooking]
}

func NewTransferService(db *gorm.DB, ledger *LedgerService) *TransferService {
	return &TransferService{
		Transfers: NewResourceService[models.Transfer](db, "接送线路", ListQuery{
			SearchColumns: []string{"from_location", "to_location", "vehicle_type"},
			FilterColumns: []string{"status", "vehicle_type"},
		}, ActiveBookings(&models.TransferBooking{}, "transfer_id")),
		Bookings: NewBookingService[models.TransferBooking](db, ledger, "接送预订", ListQuery{
			SearchColumns: []string{"customer_name", "customer_phone", "flight_number"},
			FilterColumns: []string{"status", "transfer_id"},
			Order:         "pickup_at DESC, id DESC",
		}, BookingHooks[models.TransferBooking]{}),
	}
}

// CreateBooking 往返价格翻倍，乘客数不超过车辆容量
func (s *TransferService) CreateBooking(ctx context.Context, tenantID uint, in *TransferBookingInput) (*models.TransferBooking, error) {
	if in.RoundTrip && in.ReturnPickupAt != nil && !in.ReturnPickupAt.After(in.PickupAt) {
		return nil, errors.BadRequest("返程时间必须晚于接送时间")
	}
	returnAt := in.ReturnPickupAt
	if !in.RoundTrip {
		returnAt = nil
	}

	booking := &models.TransferBooking{
		TransferID:     in.TransferID,
		PickupAt:       in.PickupAt.UTC(),
		PickupAddress:  in.PickupAddress,
		FlightNumber:   in.FlightNumber,
		Passengers:     in.Passengers,
		RoundTrip:      in.RoundTrip,
		ReturnPickupAt: returnAt,
	}
	booking.ApplyContact(in.BookingContact)

	return s.Bookings.Create(ctx, tenantID, booking, func(tx *gorm.DB, b *models.TransferBooking) error {
		transfer, err := getScoped[models.Transfer](tx, tenantID, in.TransferID, "接送线路")
		if err != nil {
			return err
		}
		if transfer.Status != "active" {
			return errors.BadRequest("接送线路已停用")
		}
		if in.Passengers > transfer.Capacity {
			return errors.BadRequest("乘客数超过车辆容量 %d", transfer.Capacity)
		}

		legs := 1
		if in.RoundTrip {
			legs = 2
		}
		b.TotalAmount = BookingTotal(legs, transfer.Price)
		b.Currency = transfer.Currency
		return nil
	})
}
