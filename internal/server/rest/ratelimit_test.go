package rest

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func limitedRouter(l *RateLimiter) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies(nil)
	r.POST("/login", l.Handler(), func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestNewRateLimiter_DisabledIsPassThrough(t *testing.T) {
	assert.Nil(t, NewRateLimiter(0))
	assert.Nil(t, NewRateLimiter(-5))

	r := limitedRouter(nil)
	for i := 0; i < 100; i++ {
		require.Equal(t, http.StatusOK, do(r, http.MethodPost, "/login", "").Code)
	}
}

func TestRateLimiter_PerClientBudget(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewRateLimiter(60) // 1 per second, burst 6
	l.now = func() time.Time { return now }
	r := limitedRouter(l)

	for i := 0; i < 6; i++ {
		require.Equal(t, http.StatusOK, do(r, http.MethodPost, "/login", "").Code, "request %d", i)
	}

	w := do(r, http.MethodPost, "/login", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"message":"Too many requests"}`, w.Body.String())

	// Another client has its own bucket.
	assert.Equal(t, http.StatusOK, postFrom(r, "/login", "203.0.113.9:5000", ""))

	now = now.Add(time.Second)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/login", "").Code)
}

func TestRateLimiter_CleanupDropsIdleClients(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewRateLimiter(10)
	l.now = func() time.Time { return now }

	l.getLimiter("a", now)
	l.getLimiter("b", now.Add(10*time.Minute))

	assert.NotContains(t, l.clients, "a")
	assert.Contains(t, l.clients, "b")
}

func TestRateLimiter_CleanupRunsOncePerWindow(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewRateLimiter(10)

	l.getLimiter("x", t0)
	l.getLimiter("a", t0.Add(5*time.Minute))
	l.getLimiter("b", t0.Add(7*time.Minute))
	assert.Contains(t, l.clients, "x")

	l.getLimiter("c", t0.Add(10*time.Minute))
	assert.NotContains(t, l.clients, "x")
	assert.Contains(t, l.clients, "a")
}
