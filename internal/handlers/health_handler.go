package handlers

import (
	"context"
	"net/http"
	"time"

	"agencydesk/pkg/events"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// HealthHandler 存活检查，数据库不可用时返回 503
type HealthHandler struct {
	db  *gorm.DB
	bus *events.RedisBus
}

func NewHealthHandler(db *gorm.DB, bus *events.RedisBus) *HealthHandler {
	return &HealthHandler{db: db, bus: bus}
}

func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := gin.H{"database": "ok", "redis": "disabled"}
	status := http.StatusOK

	if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		checks["database"] = "unavailable"
		status = http.StatusServiceUnavailable
	}
	// Redis 只影响实时推送与汇率缓存，不影响整体状态
	if h.bus != nil {
		checks["redis"] = "ok"
		if err := h.bus.Ping(ctx); err != nil {
			checks["redis"] = "unavailable"
		}
	}

	message := "ok"
	if status != http.StatusOK {
		message = "unhealthy"
	}
	c.JSON(status, gin.H{"code": status, "message": message, "data": checks})
}
