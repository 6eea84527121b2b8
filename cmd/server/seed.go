package main

import (
	"fmt"

	"agencydesk/internal/database"
	"agencydesk/internal/models"
	"agencydesk/internal/services"
	"agencydesk/pkg/config"
	"agencydesk/pkg/jwt"
	"agencydesk/pkg/logger"

	"github.com/spf13/cobra"
)

const defaultTenantCode = "default"

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the default tenant and platform admin",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := bootstrap()
			if err != nil {
				return err
			}
			defer shutdown()

			if err := database.Migrate(); err != nil {
				return err
			}
			container := services.NewContainer(cfg, database.GetDB(), nil, jwt.GetJWTManager())
			return seedData(cfg, container)
		},
	}
}

// seedData 初始化默认租户与平台管理员，可重复执行
func seedData(cfg *config.Config, container *services.Container) error {
	appLogger := logger.GetLogger()
	appLogger.Info("Starting seed data initialization...")

	tenant, err := ensureDefaultTenant(cfg, container.Tenants)
	if err != nil {
		return fmt.Errorf("创建默认租户失败: %w", err)
	}

	admin, created, err := container.Users.EnsurePlatformAdmin(tenant.ID, cfg.Admin.Username, cfg.Admin.Email, cfg.Admin.Password)
	if err != nil {
		return fmt.Errorf("创建默认管理员失败: %w", err)
	}
	if created {
		appLogger.Infof("默认管理员已创建: %s", admin.Username)
	} else {
		appLogger.Info("默认管理员已存在，跳过创建")
	}

	appLogger.Info("Seed data initialization completed successfully")
	return nil
}

// ensureDefaultTenant 默认租户不存在时创建
func ensureDefaultTenant(cfg *config.Config, tenants *services.TenantService) (*models.Tenant, error) {
	var tenant models.Tenant
	err := database.GetDB().Where("code = ?", defaultTenantCode).Limit(1).Find(&tenant).Error
	if err != nil {
		return nil, err
	}
	if tenant.ID != 0 {
		logger.GetLogger().Info("默认租户已存在，跳过创建")
		return &tenant, nil
	}

	return tenants.Create(&services.TenantInput{
		Name:         "默认租户",
		Code:         defaultTenantCode,
		BaseCurrency: cfg.Server.DefaultCurrency,
		Status:       models.TenantStatusActive,
	})
}
