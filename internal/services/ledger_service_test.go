package services

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"agencydesk/internal/models"
	"agencydesk/pkg/errors"
	"agencydesk/pkg/pagination"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestLedgerStatusFor(t *testing.T) {
	assert.Equal(t, "pending", LedgerStatusFor(models.BookingStatusPending))
	assert.Equal(t, "pending", LedgerStatusFor(models.BookingStatusConfirmed))
	assert.Equal(t, "pending", LedgerStatusFor(models.BookingStatusActive))
	assert.Equal(t, "completed", LedgerStatusFor(models.BookingStatusCompleted))
	assert.Equal(t, "cancelled", LedgerStatusFor(models.BookingStatusCancelled))
	assert.Equal(t, "cancelled", LedgerStatusFor(models.BookingStatusExpired))
}

func TestLedgerUpsertKeepsOneRowPerReference(t *testing.T) {
	db := newTestDB(t)
	tenant := createTenant(t, db, "acme", "EUR")
	ledger := NewLedgerService(db, nil)

	entry := LedgerEntry{
		TenantID:  tenant.ID,
		Type:      models.TransactionTypeIncome,
		Category:  models.ModuleVehicles,
		Reference: LedgerReference("vehicle_rental", 7),
		Amount:    decimal.RequireFromString("150"),
		Currency:  "EUR",
		Status:    models.TransactionStatusPending,
		Date:      time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	first, err := ledger.Upsert(db, entry)
	require.NoError(t, err)

	entry.Status = models.TransactionStatusCompleted
	entry.Amount = decimal.RequireFromString("175.5")
	second, err := ledger.Upsert(db, entry)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	rows := ledgerRows(t, db, tenant.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, "completed", rows[0].Status)
	assert.Equal(t, "175.50", rows[0].Amount.StringFixed(2))
	assert.Equal(t, "vehicle_rental#7", rows[0].ReferenceValue())

	// 其他租户的相同引用互不影响
	other := createTenant(t, db, "other", "EUR")
	entry.TenantID = other.ID
	_, err = ledger.Upsert(db, entry)
	require.NoError(t, err)
	assert.Len(t, ledgerRows(t, db, tenant.ID), 1)
	assert.Len(t, ledgerRows(t, db, other.ID), 1)
}

func TestLedgerDeleteByReference(t *testing.T) {
	db := newTestDB(t)
	tenant := createTenant(t, db, "acme", "EUR")
	ledger := NewLedgerService(db, nil)

	_, err := ledger.Upsert(db, LedgerEntry{
		TenantID: tenant.ID, Type: "income", Category: models.ModuleTours,
		Reference: "tour_booking#1", Amount: decimal.NewFromInt(10), Currency: "EUR", Status: "pending",
	})
	require.NoError(t, err)

	deleted, err := ledger.DeleteByReference(db, tenant.ID, models.ModuleTours, "tour_booking#1")
	require.NoError(t, err)
	require.NotNil(t, deleted)
	assert.Empty(t, ledgerRows(t, db, tenant.ID))

	deleted, err = ledger.DeleteByReference(db, tenant.ID, models.ModuleTours, "tour_booking#1")
	require.NoError(t, err)
	assert.Nil(t, deleted)
}

func TestLedgerUpsertRollsBackWithTransaction(t *testing.T) {
	db := newTestDB(t)
	tenant := createTenant(t, db, "acme", "EUR")
	ledger := NewLedgerService(db, nil)

	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := ledger.Upsert(tx, LedgerEntry{
			TenantID: tenant.ID, Type: "income", Category: models.ModuleTours,
			Reference: "tour_booking#2", Amount: decimal.NewFromInt(10), Currency: "EUR", Status: "pending",
		}); err != nil {
			return err
		}
		return errors.BadRequest("boom")
	})
	require.Error(t, err)
	assert.Empty(t, ledgerRows(t, db, tenant.ID))
}

func TestLedgerManualTransactions(t *testing.T) {
	db := newTestDB(t)
	tenant := createTenant(t, db, "acme", "EUR")
	notifier := &recordingNotifier{}
	ledger := NewLedgerService(db, notifier)
	ctx := context.Background()

	rent := &models.Transaction{
		Type:        models.TransactionTypeExpense,
		Category:    models.ModuleFinance,
		Amount:      decimal.RequireFromString("1200"),
		Currency:    "eur",
		Description: "Office rent",
		Date:        time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, ledger.Create(ctx, tenant.ID, rent))
	assert.Equal(t, tenant.ID, rent.TenantID)
	assert.Equal(t, "EUR", rent.Currency)
	assert.Equal(t, models.TransactionStatusPending, rent.Status)

	bad := "vehicle_rental#1"
	err := ledger.Create(ctx, tenant.ID, &models.Transaction{
		Type: "income", Category: "finance", Amount: decimal.NewFromInt(1), Currency: "EUR", Reference: &bad,
	})
	assert.True(t, errors.Is(err, errors.CodeInvalidParam))

	invoice := "INV-1"
	require.NoError(t, ledger.Create(ctx, tenant.ID, &models.Transaction{
		Type: "income", Category: "finance", Amount: decimal.NewFromInt(5), Currency: "EUR", Reference: &invoice,
	}))
	err = ledger.Create(ctx, tenant.ID, &models.Transaction{
		Type: "income", Category: "finance", Amount: decimal.NewFromInt(5), Currency: "EUR", Reference: &invoice,
	})
	assert.True(t, errors.Is(err, errors.CodeConflict))

	updated, err := ledger.Update(ctx, tenant.ID, rent.ID, &models.Transaction{
		Type: "expense", Category: "finance", Amount: decimal.RequireFromString("1250"), Currency: "EUR",
		Status: "completed", Description: "Office rent (June)",
	})
	require.NoError(t, err)
	assert.Equal(t, "completed", updated.Status)
	assert.Equal(t, "1250.00", updated.Amount.StringFixed(2))

	_, err = ledger.Get(tenant.ID+1, rent.ID)
	assert.True(t, errors.Is(err, errors.CodeNotFound))

	require.NoError(t, ledger.Delete(ctx, tenant.ID, rent.ID))
	_, err = ledger.Get(tenant.ID, rent.ID)
	assert.True(t, errors.Is(err, errors.CodeNotFound))

	published := notifier.all()
	require.Len(t, published, 4)
	assert.Equal(t, LedgerActionDeleted, published[3].Action)
	assert.Equal(t, "1250.00", published[3].Amount)
}

func TestLedgerBookingRowsAreReadOnly(t *testing.T) {
	db := newTestDB(t)
	tenant := createTenant(t, db, "acme", "EUR")
	ledger := NewLedgerService(db, nil)

	txn, err := ledger.Upsert(db, LedgerEntry{
		TenantID: tenant.ID, Type: "income", Category: models.ModuleHotels,
		Reference: "hotel_reservation#3", Amount: decimal.NewFromInt(80), Currency: "EUR", Status: "pending",
	})
	require.NoError(t, err)

	_, err = ledger.Update(context.Background(), tenant.ID, txn.ID, &models.Transaction{
		Type: "income", Category: "hotels", Amount: decimal.NewFromInt(1), Currency: "EUR",
	})
	assert.True(t, errors.Is(err, errors.CodeInvalidParam))
	assert.True(t, errors.Is(ledger.Delete(context.Background(), tenant.ID, txn.ID), errors.CodeInvalidParam))
}

func seedLedger(t *testing.T, db *gorm.DB, tenantID uint) {
	t.Helper()
	rows := []models.Transaction{
		{TenantID: tenantID, Type: "income", Category: "vehicles", Amount: decimal.RequireFromString("100.10"), Currency: "EUR", Status: "completed", Description: "rental", Date: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
		{TenantID: tenantID, Type: "income", Category: "hotels", Amount: decimal.RequireFromString("200.20"), Currency: "EUR", Status: "pending", Description: "hotel", Date: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)},
		{TenantID: tenantID, Type: "income", Category: "hotels", Amount: decimal.RequireFromString("50"), Currency: "EUR", Status: "cancelled", Description: "cancelled hotel", Date: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)},
		{TenantID: tenantID, Type: "expense", Category: "finance", Amount: decimal.RequireFromString("30"), Currency: "EUR", Status: "completed", Description: "fuel", Date: time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC)},
		{TenantID: tenantID, Type: "income", Category: "tours", Amount: decimal.RequireFromString("90"), Currency: "USD", Status: "completed", Description: "tour", Date: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)},
	}
	require.NoError(t, db.Create(&rows).Error)
}

func TestLedgerSummary(t *testing.T) {
	db := newTestDB(t)
	tenant := createTenant(t, db, "acme", "EUR")
	seedLedger(t, db, tenant.ID)
	ledger := NewLedgerService(db, nil)

	summary, err := ledger.Summary(tenant.ID, nil, nil)
	require.NoError(t, err)
	require.Len(t, summary.Net, 2)

	net := map[string]NetTotal{}
	for _, n := range summary.Net {
		net[n.Currency] = n
	}
	assert.Equal(t, "300.30", net["EUR"].Income.StringFixed(2))
	assert.Equal(t, "30.00", net["EUR"].Expense.StringFixed(2))
	assert.Equal(t, "270.30", net["EUR"].Net.StringFixed(2))
	assert.Equal(t, "90.00", net["USD"].Net.StringFixed(2))

	for _, c := range summary.Categories {
		if c.Category == "hotels" {
			assert.Equal(t, int64(1), c.Count)
			assert.Equal(t, "200.20", c.Total.StringFixed(2))
		}
	}

	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	june, err := ledger.Summary(tenant.ID, &from, &to)
	require.NoError(t, err)
	require.Len(t, june.Net, 1)
	assert.Equal(t, "EUR", june.Net[0].Currency)
}

func TestLedgerListAndExport(t *testing.T) {
	db := newTestDB(t)
	tenant := createTenant(t, db, "acme", "EUR")
	seedLedger(t, db, tenant.ID)
	ledger := NewLedgerService(db, nil)

	rows, total, err := ledger.List(tenant.ID, TransactionFilter{Type: "income"}, &pagination.PageParams{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	require.Len(t, rows, 2)
	// 按日期倒序
	assert.Equal(t, "tour", rows[0].Description)

	_, total, err = ledger.List(tenant.ID, TransactionFilter{Keyword: "HOTEL"}, &pagination.PageParams{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	var buf bytes.Buffer
	require.NoError(t, ledger.ExportCSV(tenant.ID, TransactionFilter{Currency: "eur"}, &buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "id,date,type,category,status,amount,currency,reference,description", lines[0])
	assert.Contains(t, lines[1], ",2025-06-01,income,vehicles,completed,100.10,EUR,,rental")
}
