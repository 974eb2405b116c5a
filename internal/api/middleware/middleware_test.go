package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(handlers...)
	router.POST("/modes/change", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func post(router *gin.Engine, remote string) int {
	req := httptest.NewRequest(http.MethodPost, "/modes/change", nil)
	req.RemoteAddr = remote
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec.Code
}

func TestRateLimitPerClient(t *testing.T) {
	router := newRouter(RateLimit(RateLimitConfig{RequestsPerSecond: 1, Burst: 2}))

	assert.Equal(t, http.StatusOK, post(router, "10.0.0.1:1000"))
	assert.Equal(t, http.StatusOK, post(router, "10.0.0.1:1000"))
	assert.Equal(t, http.StatusTooManyRequests, post(router, "10.0.0.1:1000"))

	assert.Equal(t, http.StatusOK, post(router, "10.0.0.2:1000"), "other clients keep their own bucket")
}

func TestGlobalRateLimit(t *testing.T) {
	router := newRouter(GlobalRateLimit(RateLimitConfig{RequestsPerSecond: 1, Burst: 1}))

	assert.Equal(t, http.StatusOK, post(router, "10.0.0.1:1000"))
	assert.Equal(t, http.StatusTooManyRequests, post(router, "10.0.0.2:1000"))
}

func TestLimiterSetForgetsIdleClients(t *testing.T) {
	now := time.Unix(0, 0)
	set := newLimiterSet(RateLimitConfig{RequestsPerSecond: 10, Burst: 10, IdleTTL: time.Minute})
	set.now = func() time.Time { return now }

	set.allow("a")
	set.allow("b")
	assert.Equal(t, 2, set.size())

	now = now.Add(2 * time.Minute)
	set.allow("c")
	assert.Equal(t, 1, set.size())
}

func TestCORSPreflight(t *testing.T) {
	router := newRouter(CORS(DefaultCORSConfig()))

	req := httptest.NewRequest(http.MethodOptions, "/modes/change", nil)
	req.Header.Set("Origin", "http://hmi.local")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
