package services

import (
	"context"
	"testing"
	"time"

	"agencydesk/internal/models"
	"agencydesk/pkg/errors"
	"agencydesk/pkg/jwt"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTenantServiceCreateAndUpdate(t *testing.T) {
	db := newTestDB(t)
	svc := NewTenantService(db, "eur")

	tenant, err := svc.Create(&TenantInput{Name: "Sun Travel", Code: "sun"})
	require.NoError(t, err)
	assert.Equal(t, "EUR", tenant.BaseCurrency)
	assert.Equal(t, models.TenantStatusActive, tenant.Status)

	_, err = svc.Create(&TenantInput{Name: "Other", Code: "sun"})
	assert.True(t, errors.Is(err, errors.CodeConflict))

	_, err = svc.Create(&TenantInput{Name: "Bad", Code: "a-b"})
	assert.True(t, errors.Is(err, errors.CodeInvalidParam))

	updated, err := svc.Update(tenant.ID, &TenantInput{Name: "Sun Travel Ltd", BaseCurrency: "try", Status: models.TenantStatusInactive})
	require.NoError(t, err)
	assert.Equal(t, "TRY", updated.BaseCurrency)
	assert.Equal(t, "sun", updated.Code)

	_, err = svc.GetActive(tenant.ID)
	assert.True(t, errors.Is(err, errors.CodeForbidden))

	_, err = svc.Activate(tenant.ID)
	require.NoError(t, err)
	stats, err := svc.GetStats()
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Active)

	_, err = svc.GetByID(999)
	assert.True(t, errors.Is(err, errors.CodeNotFound))
}

func TestUserLoginAndSwitchTenant(t *testing.T) {
	db := newTestDB(t)
	home := createTenant(t, db, "home", "EUR")
	other := createTenant(t, db, "other", "USD")
	manager := jwt.NewJWTManager("test-secret", time.Hour)
	svc := NewUserService(db, manager)

	admin, created, err := svc.EnsurePlatformAdmin(home.ID, "admin", "admin@example.com", "secret123")
	require.NoError(t, err)
	assert.True(t, created)
	_, created, err = svc.EnsurePlatformAdmin(home.ID, "admin", "admin@example.com", "changed")
	require.NoError(t, err)
	assert.False(t, created)

	agent, err := svc.Create(home.ID, &UserInput{Username: "ayse", Email: "Ayse@Example.com", Password: "pass1234", Name: "Ayşe"})
	require.NoError(t, err)
	assert.Equal(t, models.UserRoleAgent, agent.Role)
	assert.Equal(t, "ayse@example.com", agent.Email)

	_, err = svc.Create(home.ID, &UserInput{Username: "ayse", Email: "x@example.com", Password: "pass1234", Name: "Dup"})
	assert.True(t, errors.Is(err, errors.CodeConflict))

	_, err = svc.Login("ayse", "wrong")
	assert.True(t, errors.Is(err, errors.CodeUnauthorized))

	result, err := svc.Login("ayse@example.com", "pass1234")
	require.NoError(t, err)
	claims, err := manager.VerifyToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, agent.ID, claims.UserID)
	assert.Equal(t, home.ID, claims.CurrentTenantID)

	reloaded, err := svc.GetByID(agent.ID)
	require.NoError(t, err)
	assert.NotNil(t, reloaded.LastLoginAt)

	// 普通用户不能切换到其他租户
	_, err = svc.SwitchTenant(agent.ID, other.ID)
	assert.True(t, errors.Is(err, errors.CodeForbidden))

	switched, err := svc.SwitchTenant(admin.ID, other.ID)
	require.NoError(t, err)
	claims, err = manager.VerifyToken(switched.Token)
	require.NoError(t, err)
	assert.Equal(t, home.ID, claims.TenantID)
	assert.Equal(t, other.ID, claims.CurrentTenantID)
	assert.True(t, claims.IsPlatformAdmin)

	assert.True(t, errors.Is(svc.Delete(home.ID, admin.ID), errors.CodeInvalidParam))
	assert.True(t, errors.Is(svc.Delete(other.ID, agent.ID), errors.CodeNotFound))
	require.NoError(t, svc.Delete(home.ID, agent.ID))
}

func TestModuleSettingsDefaultEnabled(t *testing.T) {
	db := newTestDB(t)
	tenant := createTenant(t, db, "acme", "EUR")
	svc := NewModuleSettingService(db)

	states, err := svc.List(tenant.ID)
	require.NoError(t, err)
	require.Len(t, states, len(models.AllModules))
	for _, state := range states {
		assert.True(t, state.Enabled, state.Module)
	}

	disabled := false
	state, err := svc.Update(tenant.ID, models.ModuleYachts, &ModuleSettingInput{Enabled: &disabled})
	require.NoError(t, err)
	assert.False(t, state.Enabled)

	enabled, err := svc.IsEnabled(tenant.ID, models.ModuleYachts)
	require.NoError(t, err)
	assert.False(t, enabled)

	// 再次写入走更新分支
	on := true
	_, err = svc.Update(tenant.ID, models.ModuleYachts, &ModuleSettingInput{Enabled: &on})
	require.NoError(t, err)
	enabled, err = svc.IsEnabled(tenant.ID, models.ModuleYachts)
	require.NoError(t, err)
	assert.True(t, enabled)

	_, err = svc.Update(tenant.ID, "casino", &ModuleSettingInput{Enabled: &on})
	assert.True(t, errors.Is(err, errors.CodeNotFound))
}

func TestDashboardOverview(t *testing.T) {
	db := newTestDB(t)
	tenant := createTenant(t, db, "acme", "EUR")
	ledger := NewLedgerService(db, nil)
	modules := NewModuleSettingService(db)
	vehicles := NewVehicleService(db, ledger)
	ctx := context.Background()

	vehicle := &models.Vehicle{Plate: "34 ABC 1", Brand: "Fiat", Model: "Egea", DailyRate: decimal.RequireFromString("50"), Currency: "EUR"}
	require.NoError(t, vehicles.Vehicles.Create(tenant.ID, vehicle))
	_, err := vehicles.CreateRental(ctx, tenant.ID, &VehicleRentalInput{
		BookingContact: models.BookingContact{CustomerName: "Ada"},
		VehicleID:      vehicle.ID,
		StartDate:      "2025-06-01",
		EndDate:        "2025-06-03",
	})
	require.NoError(t, err)

	off := false
	_, err = modules.Update(tenant.ID, models.ModuleCruises, &ModuleSettingInput{Enabled: &off})
	require.NoError(t, err)

	dashboard, err := NewDashboardService(db, ledger, modules).Overview(tenant.ID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, time.Now().UTC().Format("2006-01"), dashboard.Month)
	require.NotEmpty(t, dashboard.Modules)
	assert.Equal(t, ModuleCount{Module: models.ModuleVehicles, Resources: 1, ActiveBookings: 1}, dashboard.Modules[0])
	for _, m := range dashboard.Modules {
		assert.NotEqual(t, models.ModuleCruises, m.Module)
	}
	require.Len(t, dashboard.Recent, 1)
	require.Len(t, dashboard.Ledger.Net, 1)
	assert.Equal(t, "100.00", dashboard.Ledger.Net[0].Income.StringFixed(2))
}

type countingRefresher struct {
	bases []string
}

func (r *countingRefresher) Refresh(ctx context.Context, base string) (*RateTable, error) {
	r.bases = append(r.bases, base)
	return &RateTable{Base: base}, nil
}

func TestMaintenanceJobs(t *testing.T) {
	db := newTestDB(t)
	acme := createTenant(t, db, "acme", "EUR")
	createTenant(t, db, "sun", "TRY")
	createTenant(t, db, "moon", "EUR")
	ledger := NewLedgerService(db, nil)

	refresher := &countingRefresher{}
	collections := NewCollectionService(db, ledger)
	insurance := NewInsuranceService(db)
	scheduler := NewMaintenanceScheduler(refresher, NewTenantService(db, "EUR"), NewHealthService(db, ledger), insurance, collections)
	scheduler.now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	require.NoError(t, scheduler.RefreshRates(ctx))
	assert.ElementsMatch(t, []string{"EUR", "TRY"}, refresher.bases)

	policy := &models.Policy{
		PolicyNumber: "P-1", PolicyType: "travel", Insurer: "Axa", CustomerName: "Ada",
		Premium: decimal.RequireFromString("30"), Currency: "EUR",
		StartDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, insurance.Policies.Create(acme.ID, policy))
	require.NoError(t, scheduler.ExpirePolicies(ctx))
	reloaded, err := insurance.Policies.Get(acme.ID, policy.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PolicyStatusExpired, reloaded.Status)

	due := &models.Collection{CustomerName: "Ada", Amount: decimal.RequireFromString("10"), Currency: "EUR", DueDate: time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, collections.Create(acme.ID, due))
	require.NoError(t, scheduler.MarkOverdueCollections(ctx))
	got, err := collections.Get(acme.ID, due.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CollectionStatusOverdue, got.Status)

	require.NoError(t, scheduler.Start())
	assert.Error(t, scheduler.Start())
	scheduler.Stop()
}
