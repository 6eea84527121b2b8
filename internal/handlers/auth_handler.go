package handlers

import (
	"net/http"
	"strconv"
	"time"

	"agencydesk/internal/middleware"
	"agencydesk/internal/services"
	"agencydesk/pkg/config"
	"agencydesk/pkg/response"

	"github.com/gin-gonic/gin"
)

// AuthHandler 登录、登出与租户切换
type AuthHandler struct {
	userService *services.UserService
	cookie      config.ServerConfig
}

func NewAuthHandler(userService *services.UserService, server config.ServerConfig) *AuthHandler {
	return &AuthHandler{userService: userService, cookie: server}
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SwitchTenantRequest 切换租户请求
type SwitchTenantRequest struct {
	TenantID uint `json:"tenant_id" binding:"required"`
}

func (h *AuthHandler) setCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", h.cookie.CookieDomain, h.cookie.CookieSecure, true)
}

func (h *AuthHandler) setSession(c *gin.Context, result *services.LoginResult, tenantID uint) {
	maxAge := int(time.Until(result.ExpiresAt).Seconds())
	h.setCookie(c, middleware.SessionCookie, result.Token, maxAge)
	h.setCookie(c, middleware.TenantCookie, strconv.FormatUint(uint64(tenantID), 10), maxAge)
}

// Login 用户登录，令牌同时写入 cookie 与响应体
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.userService.Login(req.Username, req.Password)
	if err != nil {
		response.FromError(c, err, "登录失败")
		return
	}

	h.setSession(c, result, result.User.TenantID)
	response.Success(c, result)
}

// Logout 清除会话 cookie
func (h *AuthHandler) Logout(c *gin.Context) {
	h.setCookie(c, middleware.SessionCookie, "", -1)
	h.setCookie(c, middleware.TenantCookie, "", -1)
	response.SuccessWithMessage(c, "已退出登录", nil)
}

// Me 当前用户与当前租户
func (h *AuthHandler) Me(c *gin.Context) {
	response.Success(c, gin.H{
		"user":   middleware.CurrentUser(c),
		"tenant": middleware.CurrentTenant(c),
	})
}

// SwitchTenant 切换当前租户并重新签发令牌
func (h *AuthHandler) SwitchTenant(c *gin.Context) {
	var req SwitchTenantRequest
	if !bindJSON(c, &req) {
		return
	}

	user := middleware.CurrentUser(c)
	result, err := h.userService.SwitchTenant(user.ID, req.TenantID)
	if err != nil {
		response.FromError(c, err, "切换租户失败")
		return
	}

	h.setSession(c, result, req.TenantID)
	response.Success(c, result)
}
