package router

import (
	"agencydesk/internal/handlers"
	"agencydesk/internal/middleware"
	"agencydesk/internal/models"
	"agencydesk/internal/services"
	"agencydesk/pkg/config"
	"agencydesk/pkg/events"
	"agencydesk/pkg/jwt"
	"agencydesk/pkg/response"
	"agencydesk/pkg/validation"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter 设置路由，bus 为 nil 时实时推送返回 503
func SetupRouter(cfg *config.Config, db *gorm.DB, bus *events.RedisBus, jwtManager *jwt.JWTManager, svc *services.Container) *gin.Engine {
	validation.Setup()

	router := gin.New()

	// 中间件
	router.Use(middleware.RequestLogger())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.SetupCORS(cfg.CORS))

	router.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "接口不存在")
	})

	registerRoutes(router, cfg, db, bus, jwtManager, svc)
	return router
}

// 注册所有路由
func registerRoutes(router *gin.Engine, cfg *config.Config, db *gorm.DB, bus *events.RedisBus, jwtManager *jwt.JWTManager, svc *services.Container) {
	auth := middleware.NewAuthMiddleware(svc.Users, jwtManager)
	tenantScope := middleware.ResolveTenant(svc.Tenants)

	api := router.Group("/api/v1")
	{
		healthHandler := handlers.NewHealthHandler(db, bus)
		api.GET("/health", healthHandler.Check)

		authHandler := handlers.NewAuthHandler(svc.Users, cfg.Server)
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/logout", authHandler.Logout)
			authGroup.GET("/me", auth.RequireLogin(), tenantScope, authHandler.Me)
			authGroup.POST("/switch-tenant", auth.RequireLogin(), authHandler.SwitchTenant)
		}

		// 租户管理（平台管理员）
		tenantHandler := handlers.NewTenantHandler(svc.Tenants)
		tenants := api.Group("/tenants", auth.RequireLogin(), auth.RequirePlatformAdmin())
		{
			tenants.GET("", tenantHandler.List)
			tenants.POST("", tenantHandler.Create)
			tenants.GET("/stats", tenantHandler.Stats)
			tenants.GET("/:id", tenantHandler.Get)
			tenants.PUT("/:id", tenantHandler.Update)
			tenants.DELETE("/:id", tenantHandler.Delete)
			tenants.POST("/:id/activate", tenantHandler.Activate)
			tenants.POST("/:id/deactivate", tenantHandler.Deactivate)
		}

		// 以下接口均在当前租户内
		scoped := api.Group("", auth.RequireLogin(), tenantScope)

		userHandler := handlers.NewUserHandler(svc.Users)
		users := scoped.Group("/users", auth.RequireTenantAdmin())
		{
			users.GET("", userHandler.List)
			users.POST("", userHandler.Create)
			users.DELETE("/:id", userHandler.Delete)
		}

		moduleHandler := handlers.NewModuleHandler(svc.Modules)
		scoped.GET("/modules", moduleHandler.List)
		scoped.PUT("/modules/:module", auth.RequireTenantAdmin(), moduleHandler.Update)

		dashboardHandler := handlers.NewDashboardHandler(svc.Dashboard)
		scoped.GET("/dashboard", dashboardHandler.Overview)

		rateHandler := handlers.NewExchangeRateHandler(svc.Rates)
		rates := scoped.Group("/exchange-rates")
		{
			rates.GET("", rateHandler.Rates)
			rates.GET("/convert", rateHandler.Convert)
			rates.POST("/refresh", auth.RequireTenantAdmin(), rateHandler.Refresh)
		}

		wsHandler := handlers.NewWebSocketHandler(bus, cfg.CORS)
		scoped.GET("/ws/ledger", wsHandler.LedgerEvents)

		registerModuleRoutes(scoped, svc)
	}
}

// registerModuleRoutes 业务模块路由，模块停用时返回 403
func registerModuleRoutes(scoped *gin.RouterGroup, svc *services.Container) {
	module := func(name string) *gin.RouterGroup {
		return scoped.Group("/"+name, middleware.RequireModule(svc.Modules, name))
	}

	vehicles := module(models.ModuleVehicles)
	handlers.NewResourceHandler(svc.Vehicles.Vehicles).Register(vehicles.Group("/vehicles"))
	handlers.NewBookingHandler(svc.Vehicles.Rentals, svc.Vehicles.CreateRental).Register(vehicles.Group("/rentals"))
	handlers.NewBookingHandler(svc.Vehicles.Bookings, svc.Vehicles.CreateBooking).Register(vehicles.Group("/bookings"))

	hotels := module(models.ModuleHotels)
	handlers.NewResourceHandler(svc.Hotels.Hotels).Register(hotels.Group("/hotels"))
	handlers.NewBookingHandler(svc.Hotels.Reservations, svc.Hotels.CreateReservation).Register(hotels.Group("/reservations"))

	tours := module(models.ModuleTours)
	handlers.NewResourceHandler(svc.Tours.Tours).Register(tours.Group("/tours"))
	handlers.NewBookingHandler(svc.Tours.Bookings, svc.Tours.CreateBooking).Register(tours.Group("/bookings"))

	transfers := module(models.ModuleTransfers)
	handlers.NewResourceHandler(svc.Transfers.Transfers).Register(transfers.Group("/transfers"))
	handlers.NewBookingHandler(svc.Transfers.Bookings, svc.Transfers.CreateBooking).Register(transfers.Group("/bookings"))

	flights := module(models.ModuleFlights)
	handlers.NewResourceHandler(svc.Flights.Flights).Register(flights.Group("/flights"))
	handlers.NewBookingHandler(svc.Flights.Bookings, svc.Flights.CreateBooking).Register(flights.Group("/bookings"))

	yachts := module(models.ModuleYachts)
	handlers.NewResourceHandler(svc.Yachts.Yachts).Register(yachts.Group("/yachts"))
	handlers.NewBookingHandler(svc.Yachts.Rentals, svc.Yachts.CreateRental).Register(yachts.Group("/rentals"))
	handlers.NewBookingHandler(svc.Yachts.Bookings, svc.Yachts.CreateBooking).Register(yachts.Group("/bookings"))

	cruises := module(models.ModuleCruises)
	handlers.NewResourceHandler(svc.Cruises.Cruises).Register(cruises.Group("/cruises"))
	handlers.NewBookingHandler(svc.Cruises.Bookings, svc.Cruises.CreateBooking).Register(cruises.Group("/bookings"))

	health := module(models.ModuleHealth)
	handlers.NewResourceHandler(svc.Health.Plans).Register(health.Group("/plans"))
	handlers.NewBookingHandler(svc.Health.Policies, svc.Health.CreatePolicy).Register(health.Group("/policies"))

	property := module(models.ModuleProperty)
	handlers.NewResourceHandler(svc.Property.Properties).Register(property.Group("/properties"))
	handlers.NewBookingHandler(svc.Property.Rentals, svc.Property.CreateRental).Register(property.Group("/rentals"))
	handlers.NewBookingHandler(svc.Property.Sales, svc.Property.CreateSale).Register(property.Group("/sales"))

	insurance := module(models.ModuleInsurance)
	handlers.NewResourceHandler(svc.Insurance.Policies).Register(insurance.Group("/policies"))

	offers := module(models.ModuleOffers)
	handlers.NewResourceHandler(svc.Offers.Offers).Register(offers.Group("/offers"))

	finance := module(models.ModuleFinance)
	handlers.NewCollectionHandler(svc.Collections).Register(finance.Group("/collections"))

	transactionHandler := handlers.NewTransactionHandler(svc.Ledger)
	transactions := scoped.Group("/transactions", middleware.RequireModule(svc.Modules, models.ModuleFinance))
	{
		transactions.GET("", transactionHandler.List)
		transactions.POST("", transactionHandler.Create)
		transactions.GET("/summary", transactionHandler.Summary)
		transactions.GET("/export", transactionHandler.Export)
		transactions.GET("/:id", transactionHandler.Get)
		transactions.PUT("/:id", transactionHandler.Update)
		transactions.DELETE("/:id", transactionHandler.Delete)
	}
}
