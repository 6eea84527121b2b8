package services

import (
	"context"
	"testing"
	"time"

	"agencydesk/internal/models"
	"agencydesk/pkg/errors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contact(name string) models.BookingContact {
	return models.BookingContact{CustomerName: name}
}

func TestTourBookingCapacityPerDate(t *testing.T) {
	db := newTestDB(t)
	tenant := createTenant(t, db, "acme", "EUR")
	svc := NewTourService(db, NewLedgerService(db, nil))
	ctx := context.Background()

	tour := &models.Tour{Name: "Cappadocia", Price: decimal.RequireFromString("80"), Currency: "EUR", Capacity: 5}
	require.NoError(t, svc.Tours.Create(tenant.ID, tour))

	b, err := svc.CreateBooking(ctx, tenant.ID, &TourBookingInput{BookingContact: contact("Ada"), TourID: tour.ID, TourDate: "2025-09-01", Participants: 3})
	require.NoError(t, err)
	assert.Equal(t, "240.00", b.TotalAmount.StringFixed(2))
	assert.Equal(t, "80.00", b.UnitPrice.StringFixed(2))

	_, err = svc.CreateBooking(ctx, tenant.ID, &TourBookingInput{BookingContact: contact("Bob"), TourID: tour.ID, TourDate: "2025-09-01", Participants: 3})
	assert.True(t, errors.Is(err, errors.CodeInvalidParam))

	// 其他日期单独计算
	_, err = svc.CreateBooking(ctx, tenant.ID, &TourBookingInput{BookingContact: contact("Bob"), TourID: tour.ID, TourDate: "2025-09-02", Participants: 5})
	require.NoError(t, err)

	// 取消后名额释放
	_, err = svc.Bookings.UpdateStatus(ctx, tenant.ID, b.ID, models.BookingStatusCancelled)
	require.NoError(t, err)
	_, err = svc.CreateBooking(ctx, tenant.ID, &TourBookingInput{BookingContact: contact("Cy"), TourID: tour.ID, TourDate: "2025-09-01", Participants: 5})
	require.NoError(t, err)
}

func TestTransferRoundTripDoublesPrice(t *testing.T) {
	db := newTestDB(t)
	tenant := createTenant(t, db, "acme", "EUR")
	svc := NewTransferService(db, NewLedgerService(db, nil))
	ctx := context.Background()

	transfer := &models.Transfer{FromLocation: "AYT", ToLocation: "Kemer", Capacity: 4, Price: decimal.RequireFromString("45"), Currency: "EUR"}
	require.NoError(t, svc.Transfers.Create(tenant.ID, transfer))

	pickup := time.Date(2025, 9, 1, 14, 30, 0, 0, time.UTC)
	back := pickup.Add(7 * 24 * time.Hour)

	oneWay, err := svc.CreateBooking(ctx, tenant.ID, &TransferBookingInput{BookingContact: contact("Ada"), TransferID: transfer.ID, PickupAt: pickup, Passengers: 2})
	require.NoError(t, err)
	assert.Equal(t, "45.00", oneWay.TotalAmount.StringFixed(2))

	roundTrip, err := svc.CreateBooking(ctx, tenant.ID, &TransferBookingInput{BookingContact: contact("Ada"), TransferID: transfer.ID, PickupAt: pickup, Passengers: 2, RoundTrip: true, ReturnPickupAt: &back})
	require.NoError(t, err)
	assert.Equal(t, "90.00", roundTrip.TotalAmount.StringFixed(2))

	_, err = svc.CreateBooking(ctx, tenant.ID, &TransferBookingInput{BookingContact: contact("Ada"), TransferID: transfer.ID, PickupAt: pickup, Passengers: 5})
	assert.True(t, errors.Is(err, errors.CodeInvalidParam))

	early := pickup.Add(-time.Hour)
	_, err = svc.CreateBooking(ctx, tenant.ID, &TransferBookingInput{BookingContact: contact("Ada"), TransferID: transfer.ID, PickupAt: pickup, Passengers: 1, RoundTrip: true, ReturnPickupAt: &early})
	assert.True(t, errors.Is(err, errors.CodeInvalidParam))
}

func TestFlightBookingSeatsAndPNR(t *testing.T) {
	db := newTestDB(t)
	tenant := createTenant(t, db, "acme", "EUR")
	svc := NewFlightService(db, NewLedgerService(db, nil))
	ctx := context.Background()

	departure := time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)
	flight := &models.Flight{
		Airline: "Blue Air", FlightNumber: "BA123", Origin: "IST", Destination: "AYT",
		DepartureAt: departure, ArrivalAt: departure.Add(90 * time.Minute),
		Price: decimal.RequireFromString("120"), Currency: "EUR", Seats: 3,
	}
	require.NoError(t, svc.Flights.Create(tenant.ID, flight))

	b, err := svc.CreateBooking(ctx, tenant.ID, &FlightBookingInput{BookingContact: contact("Ada"), FlightID: flight.ID, Passengers: 2})
	require.NoError(t, err)
	assert.Len(t, b.PNR, 6)
	assert.Equal(t, "economy", b.CabinClass)
	assert.Equal(t, "240.00", b.TotalAmount.StringFixed(2))

	_, err = svc.CreateBooking(ctx, tenant.ID, &FlightBookingInput{BookingContact: contact("Bob"), FlightID: flight.ID, Passengers: 2})
	assert.True(t, errors.Is(err, errors.CodeInvalidParam))

	last, err := svc.CreateBooking(ctx, tenant.ID, &FlightBookingInput{BookingContact: contact("Bob"), FlightID: flight.ID, Passengers: 1})
	require.NoError(t, err)
	assert.NotEqual(t, b.PNR, last.PNR)
}

func TestCruiseBookingCapacity(t *testing.T) {
	db := newTestDB(t)
	tenant := createTenant(t, db, "acme", "EUR")
	svc := NewCruiseService(db, NewLedgerService(db, nil))
	ctx := context.Background()

	departure := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)
	cruise := &models.Cruise{
		Name: "Aegean Dream", DepartureDate: departure, ReturnDate: departure.AddDate(0, 0, 7),
		Price: decimal.RequireFromString("999.90"), Currency: "EUR", Capacity: 4,
	}
	require.NoError(t, svc.Cruises.Create(tenant.ID, cruise))

	b, err := svc.CreateBooking(ctx, tenant.ID, &CruiseBookingInput{BookingContact: contact("Ada"), CruiseID: cruise.ID, Passengers: 3})
	require.NoError(t, err)
	assert.Equal(t, "2999.70", b.TotalAmount.StringFixed(2))
	assert.Equal(t, 1, b.Cabins)

	_, err = svc.CreateBooking(ctx, tenant.ID, &CruiseBookingInput{BookingContact: contact("Bob"), CruiseID: cruise.ID, Passengers: 2})
	assert.True(t, errors.Is(err, errors.CodeInvalidParam))
}

func TestCapacityBookingsLockParentRow(t *testing.T) {
	db := newTestDB(t)
	tenant := createTenant(t, db, "acme", "EUR")
	ledger := NewLedgerService(db, nil)
	ctx := context.Background()
	locked := lockedTables(t, db)

	tours := NewTourService(db, ledger)
	tour := &models.Tour{Name: "Cappadocia", Price: decimal.RequireFromString("80"), Currency: "EUR", Capacity: 5}
	require.NoError(t, tours.Tours.Create(tenant.ID, tour))
	_, err := tours.CreateBooking(ctx, tenant.ID, &TourBookingInput{BookingContact: contact("Ada"), TourID: tour.ID, TourDate: "2025-09-01", Participants: 2})
	require.NoError(t, err)

	flights := NewFlightService(db, ledger)
	departure := time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)
	flight := &models.Flight{
		Airline: "Blue Air", FlightNumber: "BA123", Origin: "IST", Destination: "AYT",
		DepartureAt: departure, ArrivalAt: departure.Add(90 * time.Minute),
		Price: decimal.RequireFromString("120"), Currency: "EUR", Seats: 3,
	}
	require.NoError(t, flights.Flights.Create(tenant.ID, flight))
	_, err = flights.CreateBooking(ctx, tenant.ID, &FlightBookingInput{BookingContact: contact("Ada"), FlightID: flight.ID, Passengers: 1})
	require.NoError(t, err)

	cruises := NewCruiseService(db, ledger)
	cruise := &models.Cruise{
		Name: "Aegean Dream", DepartureDate: departure, ReturnDate: departure.AddDate(0, 0, 7),
		Price: decimal.RequireFromString("999.90"), Currency: "EUR", Capacity: 4,
	}
	require.NoError(t, cruises.Cruises.Create(tenant.ID, cruise))
	_, err = cruises.CreateBooking(ctx, tenant.ID, &CruiseBookingInput{BookingContact: contact("Ada"), CruiseID: cruise.ID, Passengers: 1})
	require.NoError(t, err)

	assert.Equal(t, []string{"tours", "flights", "cruises"}, locked())
}

func TestYachtRentalAndBooking(t *testing.T) {
	db := newTestDB(t)
	tenant := createTenant(t, db, "acme", "EUR")
	svc := NewYachtService(db, NewLedgerService(db, nil))
	ctx := context.Background()

	yacht := &models.Yacht{Name: "Blue Pearl", Capacity: 8, DailyRate: decimal.RequireFromString("1500"), Currency: "EUR"}
	require.NoError(t, svc.Yachts.Create(tenant.ID, yacht))

	_, err := svc.CreateRental(ctx, tenant.ID, &YachtRentalInput{BookingContact: contact("Ada"), YachtID: yacht.ID, StartDate: "2025-07-01", EndDate: "2025-07-03", Guests: 10})
	assert.True(t, errors.Is(err, errors.CodeInvalidParam))

	booking, err := svc.CreateBooking(ctx, tenant.ID, &YachtBookingInput{BookingContact: contact("Bob"), YachtID: yacht.ID, StartDate: "2025-07-10", EndDate: "2025-07-12", Guests: 6})
	require.NoError(t, err)
	assert.Equal(t, "3000.00", booking.TotalAmount.StringFixed(2))

	// 出租日期与预约冲突
	_, err = svc.CreateRental(ctx, tenant.ID, &YachtRentalInput{BookingContact: contact("Ada"), YachtID: yacht.ID, StartDate: "2025-07-11", EndDate: "2025-07-13", Guests: 4})
	assert.True(t, errors.Is(err, errors.CodeInvalidParam))

	rental, err := svc.CreateRental(ctx, tenant.ID, &YachtRentalInput{BookingContact: contact("Ada"), YachtID: yacht.ID, StartDate: "2025-07-01", EndDate: "2025-07-03", Guests: 4, WithCrew: true})
	require.NoError(t, err)

	var reloaded models.Yacht
	require.NoError(t, db.First(&reloaded, yacht.ID).Error)
	assert.Equal(t, models.YachtStatusRented, reloaded.Status)

	_, err = svc.Rentals.UpdateStatus(ctx, tenant.ID, rental.ID, models.BookingStatusCancelled)
	require.NoError(t, err)
	require.NoError(t, db.First(&reloaded, yacht.ID).Error)
	assert.Equal(t, models.YachtStatusAvailable, reloaded.Status)
	assert.Equal(t, models.TransactionStatusCancelled, ledgerRows(t, db, tenant.ID)[1].Status)

	// 单日出海按一整天占用
	_, err = svc.CreateBooking(ctx, tenant.ID, &YachtBookingInput{BookingContact: contact("Cem"), YachtID: yacht.ID, StartDate: "2025-08-01", EndDate: "2025-08-01", Guests: 2})
	require.NoError(t, err)
	_, err = svc.CreateBooking(ctx, tenant.ID, &YachtBookingInput{BookingContact: contact("Dia"), YachtID: yacht.ID, StartDate: "2025-08-01", EndDate: "2025-08-01", Guests: 2})
	assert.True(t, errors.Is(err, errors.CodeInvalidParam))
	_, err = svc.CreateRental(ctx, tenant.ID, &YachtRentalInput{BookingContact: contact("Eda"), YachtID: yacht.ID, StartDate: "2025-07-31", EndDate: "2025-08-02", Guests: 2})
	assert.True(t, errors.Is(err, errors.CodeInvalidParam))
	_, err = svc.CreateBooking(ctx, tenant.ID, &YachtBookingInput{BookingContact: contact("Dia"), YachtID: yacht.ID, StartDate: "2025-08-02", EndDate: "2025-08-02", Guests: 2})
	require.NoError(t, err)
}

func TestHealthPolicyFromPlan(t *testing.T) {
	db := newTestDB(t)
	tenant := createTenant(t, db, "acme", "EUR")
	notifier := &recordingNotifier{}
	svc := NewHealthService(db, NewLedgerService(db, notifier))
	ctx := context.Background()

	plan := &models.HealthInsurance{Provider: "Allianz", PlanName: "Travel Basic", Premium: decimal.RequireFromString("49.90"), Currency: "EUR", DurationMonths: 12}
	require.NoError(t, svc.Plans.Create(tenant.ID, plan))

	policy, err := svc.CreatePolicy(ctx, tenant.ID, &HealthPolicyInput{BookingContact: contact("Ada"), HealthInsuranceID: plan.ID, StartDate: "2024-01-15"})
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusActive, policy.Status)
	assert.Equal(t, "49.90", policy.TotalAmount.StringFixed(2))
	assert.Equal(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), policy.EndDate)
	assert.Regexp(t, `^HP-[0-9A-F]{8}$`, policy.PolicyNumber)

	custom, err := svc.CreatePolicy(ctx, tenant.ID, &HealthPolicyInput{BookingContact: contact("Bob"), HealthInsuranceID: plan.ID, StartDate: "2030-01-01", Premium: decimal.RequireFromString("60")})
	require.NoError(t, err)
	assert.Equal(t, "60.00", custom.TotalAmount.StringFixed(2))

	expired, err := svc.ExpireDue(ctx, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, expired)

	reloaded, err := svc.Policies.Get(tenant.ID, policy.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusExpired, reloaded.Status)

	// 期满的保单保费仍计入收入
	rows := ledgerRows(t, db, tenant.ID)
	assert.Equal(t, models.TransactionStatusPending, rows[0].Status)
	assert.Equal(t, "49.90", rows[0].Amount.StringFixed(2))

	// 过期保单不能再变更
	_, err = svc.Policies.UpdateStatus(ctx, tenant.ID, policy.ID, models.BookingStatusActive)
	assert.True(t, errors.Is(err, errors.CodeInvalidParam))
	assert.Len(t, notifier.all(), 2)
}

func TestPropertyRentalAndSale(t *testing.T) {
	db := newTestDB(t)
	tenant := createTenant(t, db, "acme", "EUR")
	svc := NewPropertyService(db, NewLedgerService(db, nil))
	ctx := context.Background()

	flat := &models.Property{Title: "Sea flat", City: "Alanya", RentPrice: decimal.RequireFromString("700"), SalePrice: decimal.RequireFromString("150000"), Currency: "EUR"}
	require.NoError(t, svc.Properties.Create(tenant.ID, flat))

	rental, err := svc.CreateRental(ctx, tenant.ID, &PropertyRentalInput{BookingContact: contact("Ada"), PropertyID: flat.ID, StartDate: "2025-01-31", Months: 6, Deposit: decimal.RequireFromString("1400")})
	require.NoError(t, err)
	assert.Equal(t, "4200.00", rental.TotalAmount.StringFixed(2))
	assert.Equal(t, time.Date(2025, 7, 31, 0, 0, 0, 0, time.UTC), rental.EndDate)

	_, err = svc.CreateRental(ctx, tenant.ID, &PropertyRentalInput{BookingContact: contact("Bob"), PropertyID: flat.ID, StartDate: "2025-03-01", Months: 1})
	assert.True(t, errors.Is(err, errors.CodeInvalidParam))

	_, err = svc.Rentals.UpdateStatus(ctx, tenant.ID, rental.ID, models.BookingStatusCompleted)
	require.NoError(t, err)

	sale, err := svc.CreateSale(ctx, tenant.ID, &PropertySaleInput{BookingContact: contact("Cy"), PropertyID: flat.ID, SaleDate: "2025-08-01", Commission: decimal.RequireFromString("4500")})
	require.NoError(t, err)
	assert.Equal(t, "150000.00", sale.SalePrice.StringFixed(2))

	rows := ledgerRows(t, db, tenant.ID)
	require.Len(t, rows, 2)
	assert.Equal(t, "4500.00", rows[1].Amount.StringFixed(2))
	assert.Equal(t, "property_sale#1", rows[1].ReferenceValue())

	_, err = svc.Sales.UpdateStatus(ctx, tenant.ID, sale.ID, models.BookingStatusCompleted)
	require.NoError(t, err)
	var reloaded models.Property
	require.NoError(t, db.First(&reloaded, flat.ID).Error)
	assert.Equal(t, models.PropertyStatusSold, reloaded.Status)

	_, err = svc.CreateSale(ctx, tenant.ID, &PropertySaleInput{BookingContact: contact("Dan"), PropertyID: flat.ID, SaleDate: "2025-09-01", Commission: decimal.RequireFromString("100")})
	assert.True(t, errors.Is(err, errors.CodeInvalidParam))
}

func TestCollectionLifecycle(t *testing.T) {
	db := newTestDB(t)
	tenant := createTenant(t, db, "acme", "EUR")
	svc := NewCollectionService(db, NewLedgerService(db, nil))
	ctx := context.Background()

	due := &models.Collection{CustomerName: "Ada", Amount: decimal.RequireFromString("250"), Currency: "EUR", DueDate: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)}
	later := &models.Collection{CustomerName: "Bob", Amount: decimal.RequireFromString("80"), Currency: "EUR", DueDate: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, svc.Create(tenant.ID, due))
	require.NoError(t, svc.Create(tenant.ID, later))

	n, err := svc.MarkOverdue(ctx, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	collected, err := svc.MarkCollected(ctx, tenant.ID, due.ID, "card")
	require.NoError(t, err)
	assert.Equal(t, models.CollectionStatusCollected, collected.Status)
	assert.NotNil(t, collected.CollectedAt)

	rows := ledgerRows(t, db, tenant.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, models.TransactionStatusCompleted, rows[0].Status)
	assert.Equal(t, models.ModuleFinance, rows[0].Category)
	assert.Equal(t, "250.00", rows[0].Amount.StringFixed(2))

	_, err = svc.MarkCollected(ctx, tenant.ID, due.ID, "cash")
	assert.True(t, errors.Is(err, errors.CodeInvalidParam))

	_, err = svc.Update(tenant.ID, due.ID, &models.Collection{CustomerName: "Ada", Amount: decimal.NewFromInt(1), Currency: "EUR"})
	assert.True(t, errors.Is(err, errors.CodeInvalidParam))

	require.NoError(t, svc.Delete(ctx, tenant.ID, due.ID))
	assert.Empty(t, ledgerRows(t, db, tenant.ID))
}

func TestResourceServiceTenantIsolationAndSearch(t *testing.T) {
	db := newTestDB(t)
	acme := createTenant(t, db, "acme", "EUR")
	other := createTenant(t, db, "other", "EUR")
	svc := NewOfferService(db)

	require.NoError(t, svc.Offers.Create(acme.ID, &models.Offer{CustomerName: "Ada", Title: "Summer in Bodrum", Currency: "EUR"}))
	require.NoError(t, svc.Offers.Create(acme.ID, &models.Offer{CustomerName: "Bob", Title: "Ski week", Currency: "EUR"}))
	foreign := &models.Offer{CustomerName: "Eve", Title: "Summer in Paris", Currency: "EUR"}
	require.NoError(t, svc.Offers.Create(other.ID, foreign))
	assert.Equal(t, "draft", foreign.Status)

	items, total, err := svc.Offers.List(acme.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, items, 2)

	_, err = svc.Offers.Get(acme.ID, foreign.ID)
	assert.True(t, errors.Is(err, errors.CodeNotFound))
	assert.True(t, errors.Is(svc.Offers.Delete(acme.ID, foreign.ID), errors.CodeNotFound))

	updated, err := svc.Offers.Update(other.ID, foreign.ID, &models.Offer{Title: "Autumn in Paris", Status: "sent"})
	require.NoError(t, err)
	assert.Equal(t, "Autumn in Paris", updated.Title)
	assert.Equal(t, "Eve", updated.CustomerName)
	assert.Equal(t, other.ID, updated.TenantID)
}
