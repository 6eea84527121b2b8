package main

import (
	"fmt"

	"agencydesk/internal/database"
	"agencydesk/pkg/config"
	"agencydesk/pkg/logger"
)

// bootstrap 加载配置、初始化日志与数据库
func bootstrap() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := logger.Initialize(cfg); err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}
	if err := database.Initialize(cfg); err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}
	return cfg, nil
}

func shutdown() {
	appLogger := logger.GetLogger()
	if err := database.Close(); err != nil {
		appLogger.Errorf("Failed to close database: %v", err)
	}
	if err := database.CloseRedisBus(); err != nil {
		appLogger.Errorf("Failed to close Redis: %v", err)
	}
}
