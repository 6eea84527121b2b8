package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"agencydesk/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func corsEngine(cfg config.CORSConfig) *gin.Engine {
	engine := gin.New()
	engine.Use(SetupCORS(cfg))
	engine.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return engine
}

func corsRequest(engine *gin.Engine, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", origin)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestCORSWildcardDropsCredentials(t *testing.T) {
	engine := corsEngine(config.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET"},
		AllowCredentials: true,
	})

	w := corsRequest(engine, "https://evil.example.net")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORSExplicitOriginsKeepCredentials(t *testing.T) {
	engine := corsEngine(config.CORSConfig{
		AllowOrigins:     []string{"https://app.agency.test"},
		AllowMethods:     []string{"GET"},
		AllowCredentials: true,
	})

	w := corsRequest(engine, "https://app.agency.test")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://app.agency.test", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	blocked := corsRequest(engine, "https://evil.example.net")
	assert.Equal(t, http.StatusForbidden, blocked.Code)
	assert.Empty(t, blocked.Header().Get("Access-Control-Allow-Credentials"))
}
