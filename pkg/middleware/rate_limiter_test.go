package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimitedRouter(cfg RateLimiterConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(NewRateLimiter(cfg, nil).Middleware())
	router.POST("/alert", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func doRequest(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = "10.1.2.3:12345"
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimiterDeniesOverLimit(t *testing.T) {
	router := newLimitedRouter(RateLimiterConfig{Rate: "2-M"})

	assert.Equal(t, http.StatusOK, doRequest(router, http.MethodPost, "/alert").Code)
	assert.Equal(t, http.StatusOK, doRequest(router, http.MethodPost, "/alert").Code)

	w := doRequest(router, http.MethodPost, "/alert")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestRateLimiterHeaders(t *testing.T) {
	router := newLimitedRouter(RateLimiterConfig{Rate: "5-M"})

	w := doRequest(router, http.MethodPost, "/alert")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "4", w.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimiterSkipPaths(t *testing.T) {
	router := newLimitedRouter(RateLimiterConfig{Rate: "1-M", SkipPaths: []string{"/health"}})

	require.Equal(t, http.StatusOK, doRequest(router, http.MethodPost, "/alert").Code)
	require.Equal(t, http.StatusTooManyRequests, doRequest(router, http.MethodPost, "/alert").Code)

	// 跳过的路径不受限
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, doRequest(router, http.MethodGet, "/health").Code)
	}
}

func TestRateLimiterBadRateFallsBack(t *testing.T) {
	router := newLimitedRouter(RateLimiterConfig{Rate: "nonsense"})

	// 非法速率回退到默认值，请求仍被处理
	assert.Equal(t, http.StatusOK, doRequest(router, http.MethodPost, "/alert").Code)
}
