package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"agencydesk/internal/middleware"
	"agencydesk/pkg/config"
	"agencydesk/pkg/events"
	"agencydesk/pkg/logger"
	"agencydesk/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 300 * time.Second
	pingInterval = 60 * time.Second
)

// WebSocketHandler 账目实时推送
type WebSocketHandler struct {
	upgrader websocket.Upgrader
	bus      *events.RedisBus
	log      *logrus.Logger
}

// NewWebSocketHandler bus 为 nil 时（未启用 Redis）连接返回 503
func NewWebSocketHandler(bus *events.RedisBus, cors config.CORSConfig) *WebSocketHandler {
	allowedOrigins := cors.AllowOrigins
	return &WebSocketHandler{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				// 同源请求
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == "*" || matchOrigin(origin, allowed) {
						return true
					}
				}
				logger.GetLogger().Warnf("WebSocket连接被拒绝，非法Origin: %s", origin)
				return false
			},
			ReadBufferSize:  1024 * 4,
			WriteBufferSize: 1024 * 16,
		},
		bus: bus,
		log: logger.GetLogger(),
	}
}

// LedgerEvents 推送当前租户的账目变更
func (h *WebSocketHandler) LedgerEvents(c *gin.Context) {
	if h.bus == nil {
		response.Error(c, http.StatusServiceUnavailable, "实时推送未启用")
		return
	}
	tenantID := middleware.CurrentTenantID(c)

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// 升级前订阅，订阅失败仍可返回 JSON 错误
	pubsub, err := h.bus.SubscribeLedger(ctx, tenantID)
	if err != nil {
		h.log.WithError(err).Error("订阅账目事件失败")
		response.Error(c, http.StatusServiceUnavailable, "实时推送不可用")
		return
	}
	defer pubsub.Close()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithError(err).Error("WebSocket升级失败")
		return
	}
	defer conn.Close()

	log := h.log.WithField("tenant_id", tenantID)
	log.Info("账目推送连接已建立")
	defer log.Info("账目推送连接已关闭")

	go h.readPump(conn, cancel)

	ch := pubsub.Channel()
	pingTicker := time.NewTicker(pingInterval)
	defer pingTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-pingTicker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case msg, ok := <-ch:
			if !ok {
				return
			}
			var event events.LedgerEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.WithError(err).Warn("账目事件格式错误")
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(gin.H{"type": "ledger", "data": event}); err != nil {
				log.WithError(err).Debug("推送账目事件失败")
				return
			}
		}
	}
}

// readPump 读取客户端消息以处理 pong 与关闭，连接断开时取消推送
func (h *WebSocketHandler) readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()

	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// matchOrigin 精确匹配或 *.example.com 通配子域名
func matchOrigin(origin, allowed string) bool {
	if origin == allowed {
		return true
	}
	if !strings.HasPrefix(allowed, "*.") {
		return false
	}

	domain := allowed[2:]
	host := origin
	if idx := strings.Index(host, "://"); idx != -1 {
		host = host[idx+3:]
	}
	if idx := strings.Index(host, ":"); idx != -1 {
		host = host[:idx]
	}
	return host == domain || strings.HasSuffix(host, "."+domain)
}
