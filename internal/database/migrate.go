package database

import (
	"agencydesk/internal/models"
	"agencydesk/pkg/logger"

	"gorm.io/gorm"
)

// AllModels 需要迁移的全部模型
func AllModels() []interface{} {
	return []interface{}{
		// 平台
		&models.Tenant{},
		&models.User{},
		&models.ModuleSetting{},
		// 账目
		&models.Transaction{},
		&models.Collection{},
		// 车辆
		&models.Vehicle{},
		&models.VehicleRental{},
		&models.VehicleBooking{},
		// 酒店
		&models.Hotel{},
		&models.HotelReservation{},
		// 线路与接送
		&models.Tour{},
		&models.TourBooking{},
		&models.Transfer{},
		&models.TransferBooking{},
		// 机票
		&models.Flight{},
		&models.FlightBooking{},
		// 游艇与邮轮
		&models.Yacht{},
		&models.YachtRental{},
		&models.YachtBooking{},
		&models.Cruise{},
		&models.CruiseBooking{},
		// 保险
		&models.HealthInsurance{},
		&models.HealthPolicy{},
		&models.Policy{},
		// 房产
		&models.Property{},
		&models.PropertyRental{},
		&models.PropertySale{},
		// 报价
		&models.Offer{},
	}
}

// Migrate 执行数据库迁移
func Migrate() error {
	return MigrateDB(DB)
}

// MigrateDB 对指定连接执行迁移
func MigrateDB(db *gorm.DB) error {
	appLogger := logger.GetLogger()
	appLogger.Info("Starting database migration...")

	if err := db.AutoMigrate(AllModels()...); err != nil {
		appLogger.Errorf("Database migration failed: %v", err)
		return err
	}

	appLogger.Info("Database migration completed successfully")
	return nil
}
