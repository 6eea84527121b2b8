package services

import (
	"agencydesk/pkg/config"
	"agencydesk/pkg/events"
	"agencydesk/pkg/jwt"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// Container 进程内共享的服务实例
type Container struct {
	Tenants   *TenantService
	Users     *UserService
	Modules   *ModuleSettingService
	Ledger    *LedgerService
	Rates     *ExchangeRateService
	Dashboard *DashboardService

	Vehicles    *VehicleService
	Hotels      *HotelService
	Tours       *TourService
	Transfers   *TransferService
	Flights     *FlightService
	Yachts      *YachtService
	Cruises     *CruiseService
	Health      *HealthService
	Property    *PropertyService
	Insurance   *InsuranceService
	Offers      *OfferService
	Collections *CollectionService
}

// NewContainer 组装全部服务，bus 为 nil 时不发布账目事件也不使用 Redis 汇率缓存
func NewContainer(cfg *config.Config, db *gorm.DB, bus *events.RedisBus, jwtManager *jwt.JWTManager) *Container {
	var (
		notifier    LedgerNotifier
		redisClient *redis.Client
		prefix      = cfg.Redis.Prefix
	)
	if bus != nil {
		notifier = bus
		redisClient = bus.Client()
		prefix = bus.Prefix()
	}

	ledger := NewLedgerService(db, notifier)
	rates := NewExchangeRateService(cfg.ExchangeRate, redisClient, prefix)
	modules := NewModuleSettingService(db)

	return &Container{
		Tenants:   NewTenantService(db, cfg.Server.DefaultCurrency),
		Users:     NewUserService(db, jwtManager),
		Modules:   modules,
		Ledger:    ledger,
		Rates:     rates,
		Dashboard: NewDashboardService(db, ledger, modules),

		Vehicles:    NewVehicleService(db, ledger),
		Hotels:      NewHotelService(db, ledger, rates),
		Tours:       NewTourService(db, ledger),
		Transfers:   NewTransferService(db, ledger),
		Flights:     NewFlightService(db, ledger),
		Yachts:      NewYachtService(db, ledger),
		Cruises:     NewCruiseService(db, ledger),
		Health:      NewHealthService(db, ledger),
		Property:    NewPropertyService(db, ledger),
		Insurance:   NewInsuranceService(db),
		Offers:      NewOfferService(db),
		Collections: NewCollectionService(db, ledger),
	}
}

// Scheduler 定时维护任务
func (c *Container) Scheduler() *MaintenanceScheduler {
	return NewMaintenanceScheduler(c.Rates, c.Tenants, c.Health, c.Insurance, c.Collections)
}
