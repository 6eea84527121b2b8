package services

import (
	"context"
	"testing"

	"agencydesk/internal/models"
	"agencydesk/pkg/errors"
	"agencydesk/pkg/pagination"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createVehicle(t *testing.T, svc *VehicleService, tenantID uint, plate string) *models.Vehicle {
	t.Helper()
	vehicle := &models.Vehicle{
		Plate:     plate,
		Brand:     "Fiat",
		Model:     "Egea",
		DailyRate: decimal.RequireFromString("50"),
		Currency:  "EUR",
	}
	require.NoError(t, svc.Vehicles.Create(tenantID, vehicle))
	return vehicle
}

func reloadVehicle(t *testing.T, db *gorm.DB, id uint) models.Vehicle {
	t.Helper()
	var v models.Vehicle
	require.NoError(t, db.First(&v, id).Error)
	return v
}

func TestVehicleRentalLifecycle(t *testing.T) {
	db := newTestDB(t)
	tenant := createTenant(t, db, "acme", "EUR")
	notifier := &recordingNotifier{}
	svc := NewVehicleService(db, NewLedgerService(db, notifier))
	ctx := context.Background()

	vehicle := createVehicle(t, svc, tenant.ID, "34 ABC 123")
	assert.Equal(t, models.VehicleStatusAvailable, vehicle.Status)

	rental, err := svc.CreateRental(ctx, tenant.ID, &VehicleRentalInput{
		BookingContact: models.BookingContact{CustomerName: "Ada"},
		VehicleID:      vehicle.ID,
		StartDate:      "2025-06-01",
		EndDate:        "2025-06-04",
	})
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusActive, rental.Status)
	assert.Equal(t, 3, rental.Days)
	assert.Equal(t, "150.00", rental.TotalAmount.StringFixed(2))
	assert.Equal(t, "EUR", rental.Currency)
	assert.Equal(t, models.VehicleStatusRented, reloadVehicle(t, db, vehicle.ID).Status)

	rows := ledgerRows(t, db, tenant.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, models.TransactionTypeIncome, rows[0].Type)
	assert.Equal(t, models.ModuleVehicles, rows[0].Category)
	assert.Equal(t, models.TransactionStatusPending, rows[0].Status)
	assert.Equal(t, LedgerReference("vehicle_rental", rental.ID), rows[0].ReferenceValue())

	// 已出租车辆不能再次出租
	_, err = svc.CreateRental(ctx, tenant.ID, &VehicleRentalInput{
		BookingContact: models.BookingContact{CustomerName: "Bob"},
		VehicleID:      vehicle.ID,
		StartDate:      "2025-06-10",
		EndDate:        "2025-06-12",
	})
	assert.True(t, errors.Is(err, errors.CodeInvalidParam))

	// 有效租车时车辆不能删除
	assert.True(t, errors.Is(svc.Vehicles.Delete(tenant.ID, vehicle.ID), errors.CodeInvalidParam))

	completed, err := svc.Rentals.UpdateStatus(ctx, tenant.ID, rental.ID, models.BookingStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCompleted, completed.Status)
	assert.Equal(t, models.VehicleStatusAvailable, reloadVehicle(t, db, vehicle.ID).Status)

	rows = ledgerRows(t, db, tenant.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, models.TransactionStatusCompleted, rows[0].Status)

	_, err = svc.Rentals.UpdateStatus(ctx, tenant.ID, rental.ID, models.BookingStatusCancelled)
	assert.True(t, errors.Is(err, errors.CodeInvalidParam))

	require.NoError(t, svc.Vehicles.Delete(tenant.ID, vehicle.ID))
	assert.Len(t, notifier.all(), 2)
}

func TestVehicleRentalRejectsInvalidInput(t *testing.T) {
	db := newTestDB(t)
	tenant := createTenant(t, db, "acme", "EUR")
	other := createTenant(t, db, "other", "EUR")
	svc := NewVehicleService(db, NewLedgerService(db, nil))
	ctx := context.Background()

	vehicle := createVehicle(t, svc, other.ID, "06 XYZ 99")

	// 其他租户的车辆视为不存在
	_, err := svc.CreateRental(ctx, tenant.ID, &VehicleRentalInput{
		BookingContact: models.BookingContact{CustomerName: "Ada"},
		VehicleID:      vehicle.ID,
		StartDate:      "2025-06-01",
		EndDate:        "2025-06-02",
	})
	assert.True(t, errors.Is(err, errors.CodeNotFound))

	_, err = svc.CreateRental(ctx, other.ID, &VehicleRentalInput{
		BookingContact: models.BookingContact{CustomerName: "Ada"},
		VehicleID:      vehicle.ID,
		StartDate:      "2025-06-05",
		EndDate:        "2025-06-01",
	})
	assert.True(t, errors.Is(err, errors.CodeInvalidParam))

	// 失败的创建不留下任何记录
	assert.Empty(t, ledgerRows(t, db, other.ID))
	assert.Equal(t, models.VehicleStatusAvailable, reloadVehicle(t, db, vehicle.ID).Status)
}

func TestVehicleBookingOverlap(t *testing.T) {
	db := newTestDB(t)
	tenant := createTenant(t, db, "acme", "EUR")
	svc := NewVehicleService(db, NewLedgerService(db, nil))
	ctx := context.Background()
	vehicle := createVehicle(t, svc, tenant.ID, "34 ABC 123")

	book := func(start, end string) (*models.VehicleBooking, error) {
		return svc.CreateBooking(ctx, tenant.ID, &VehicleBookingInput{
			BookingContact: models.BookingContact{CustomerName: "Ada"},
			VehicleID:      vehicle.ID,
			StartDate:      start,
			EndDate:        end,
			DailyRate:      decimal.RequireFromString("40"),
		})
	}

	first, err := book("2025-07-01", "2025-07-05")
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusPending, first.Status)
	assert.Equal(t, "160.00", first.TotalAmount.StringFixed(2))

	_, err = book("2025-07-03", "2025-07-08")
	assert.True(t, errors.Is(err, errors.CodeInvalidParam))

	// 首尾相接不冲突
	_, err = book("2025-07-05", "2025-07-07")
	require.NoError(t, err)

	// 取消后日期释放
	_, err = svc.Bookings.UpdateStatus(ctx, tenant.ID, first.ID, models.BookingStatusCancelled)
	require.NoError(t, err)
	_, err = book("2025-07-02", "2025-07-04")
	require.NoError(t, err)

	items, total, err := svc.Bookings.List(tenant.ID, &pagination.ListParams{
		PageParams: pagination.PageParams{Page: 1, PageSize: 10},
		Filters:    map[string]string{"status": models.BookingStatusPending},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, items, 2)
}

func TestVehicleSameDayBookingOverlap(t *testing.T) {
	db := newTestDB(t)
	tenant := createTenant(t, db, "acme", "EUR")
	svc := NewVehicleService(db, NewLedgerService(db, nil))
	ctx := context.Background()
	vehicle := createVehicle(t, svc, tenant.ID, "34 ABC 123")

	book := func(start, end string) (*models.VehicleBooking, error) {
		return svc.CreateBooking(ctx, tenant.ID, &VehicleBookingInput{
			BookingContact: models.BookingContact{CustomerName: "Ada"},
			VehicleID:      vehicle.ID,
			StartDate:      start,
			EndDate:        end,
			DailyRate:      decimal.RequireFromString("40"),
		})
	}

	sameDay, err := book("2025-07-01", "2025-07-01")
	require.NoError(t, err)
	assert.Equal(t, 1, sameDay.Days)
	assert.Equal(t, "40.00", sameDay.TotalAmount.StringFixed(2))

	// 同一天按一整天占用
	_, err = book("2025-07-01", "2025-07-01")
	assert.True(t, errors.Is(err, errors.CodeInvalidParam))
	_, err = book("2025-06-30", "2025-07-02")
	assert.True(t, errors.Is(err, errors.CodeInvalidParam))
	_, err = book("2025-07-01", "2025-07-03")
	assert.True(t, errors.Is(err, errors.CodeInvalidParam))

	// 前一天还车、后一天取车均不冲突
	_, err = book("2025-06-30", "2025-07-01")
	require.NoError(t, err)
	_, err = book("2025-07-02", "2025-07-02")
	require.NoError(t, err)

	// 多日预订内的单日预订同样冲突
	_, err = book("2025-07-10", "2025-07-12")
	require.NoError(t, err)
	_, err = book("2025-07-11", "2025-07-11")
	assert.True(t, errors.Is(err, errors.CodeInvalidParam))

	_, err = svc.CreateRental(ctx, tenant.ID, &VehicleRentalInput{
		BookingContact: models.BookingContact{CustomerName: "Bob"},
		VehicleID:      vehicle.ID,
		StartDate:      "2025-07-01",
		EndDate:        "2025-07-01",
	})
	assert.True(t, errors.Is(err, errors.CodeInvalidParam))
}

func TestVehicleBookingActivationFlipsVehicle(t *testing.T) {
	db := newTestDB(t)
	tenant := createTenant(t, db, "acme", "EUR")
	svc := NewVehicleService(db, NewLedgerService(db, nil))
	ctx := context.Background()
	vehicle := createVehicle(t, svc, tenant.ID, "34 ABC 123")

	booking, err := svc.CreateBooking(ctx, tenant.ID, &VehicleBookingInput{
		BookingContact: models.BookingContact{CustomerName: "Ada"},
		VehicleID:      vehicle.ID,
		StartDate:      "2025-07-01",
		EndDate:        "2025-07-03",
	})
	require.NoError(t, err)
	assert.Equal(t, "100.00", booking.TotalAmount.StringFixed(2))

	_, err = svc.Bookings.UpdateStatus(ctx, tenant.ID, booking.ID, models.BookingStatusActive)
	require.NoError(t, err)
	assert.Equal(t, models.VehicleStatusRented, reloadVehicle(t, db, vehicle.ID).Status)

	_, err = svc.Bookings.UpdateStatus(ctx, tenant.ID, booking.ID, models.BookingStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.VehicleStatusAvailable, reloadVehicle(t, db, vehicle.ID).Status)
}

func TestDeleteRentalRemovesLedgerAndReleasesVehicle(t *testing.T) {
	db := newTestDB(t)
	tenant := createTenant(t, db, "acme", "EUR")
	notifier := &recordingNotifier{}
	svc := NewVehicleService(db, NewLedgerService(db, notifier))
	ctx := context.Background()
	vehicle := createVehicle(t, svc, tenant.ID, "34 ABC 123")

	rental, err := svc.CreateRental(ctx, tenant.ID, &VehicleRentalInput{
		BookingContact: models.BookingContact{CustomerName: "Ada"},
		VehicleID:      vehicle.ID,
		StartDate:      "2025-06-01",
		EndDate:        "2025-06-02",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Rentals.Delete(ctx, tenant.ID, rental.ID))
	assert.Empty(t, ledgerRows(t, db, tenant.ID))
	assert.Equal(t, models.VehicleStatusAvailable, reloadVehicle(t, db, vehicle.ID).Status)

	_, err = svc.Rentals.Get(tenant.ID, rental.ID)
	assert.True(t, errors.Is(err, errors.CodeNotFound))

	published := notifier.all()
	require.Len(t, published, 2)
	assert.Equal(t, LedgerActionDeleted, published[1].Action)
}

func TestRentalVoucherAndContactUpdate(t *testing.T) {
	db := newTestDB(t)
	tenant := createTenant(t, db, "acme", "EUR")
	svc := NewVehicleService(db, NewLedgerService(db, nil))
	ctx := context.Background()
	vehicle := createVehicle(t, svc, tenant.ID, "34 ABC 123")

	rental, err := svc.CreateRental(ctx, tenant.ID, &VehicleRentalInput{
		BookingContact: models.BookingContact{CustomerName: "Ada"},
		VehicleID:      vehicle.ID,
		StartDate:      "2025-06-01",
		EndDate:        "2025-06-03",
		PickupPlace:    "Airport",
	})
	require.NoError(t, err)

	updated, err := svc.Rentals.UpdateContact(ctx, tenant.ID, rental.ID, models.BookingContact{
		CustomerName:  "Ada Lovelace",
		CustomerPhone: "+90 555 000 0000",
		Notes:         "child seat",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", updated.CustomerName)
	assert.Equal(t, "100.00", updated.TotalAmount.StringFixed(2))
	assert.Contains(t, ledgerRows(t, db, tenant.ID)[0].Description, "Ada Lovelace")

	v, err := svc.Rentals.Voucher(tenant.ID, rental.ID)
	require.NoError(t, err)
	assert.Equal(t, "acme", v.Agency)
	assert.Equal(t, "Vehicle rental voucher", v.Title)
	assert.Equal(t, "vehicle_rental#1", v.Reference)
	assert.Equal(t, "100.00", v.Total)
	assert.NotEmpty(t, v.Lines)
}
