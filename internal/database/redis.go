package database

import (
	"agencydesk/pkg/config"
	"agencydesk/pkg/events"
	"agencydesk/pkg/logger"
	"context"
	"sync"
	"time"
)

var (
	redisBusInstance *events.RedisBus
	redisBusOnce     sync.Once
)

// GetRedisBus 获取Redis事件总线单例，未启用或连接失败时返回nil
func GetRedisBus() *events.RedisBus {
	redisBusOnce.Do(func() {
		cfg := config.GetConfig()
		if !cfg.Redis.Enabled {
			return
		}
		bus := events.NewRedisBus(&events.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := bus.Ping(ctx); err != nil {
			logger.GetLogger().Warnf("Redis unavailable, continuing without it: %v", err)
			bus.Close()
			return
		}
		redisBusInstance = bus
	})
	return redisBusInstance
}

// CloseRedisBus 关闭Redis连接
func CloseRedisBus() error {
	if redisBusInstance != nil {
		return redisBusInstance.Close()
	}
	return nil
}
