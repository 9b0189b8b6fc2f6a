package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewRateLimiter(1, 2)
	r := gin.New()
	r.POST("/login", limiter.Middleware(), func(ctx *gin.Context) {
		ctx.Status(http.StatusNoContent)
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code, "other clients keep their own bucket")
}

func TestRateLimiterCleanup(t *testing.T) {
	limiter := NewRateLimiter(60, 1)
	limiter.allow("10.0.0.1", time.Now().Add(-time.Hour))

	stop := make(chan struct{})
	go limiter.Cleanup(10*time.Millisecond, time.Minute, stop)
	assert.Eventually(t, func() bool {
		limiter.mu.Lock()
		defer limiter.mu.Unlock()
		return len(limiter.clients) == 0
	}, time.Second, 10*time.Millisecond)
	close(stop)
}
