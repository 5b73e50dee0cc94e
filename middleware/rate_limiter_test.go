package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newLimitedRouter(t *testing.T, trusted []string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	require.NoError(t, r.SetTrustedProxies(trusted))
	r.Use(RateLimitMiddleware(2))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func ping(r *gin.Engine, remote, forwarded string) int {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = remote + ":40000"
	if forwarded != "" {
		req.Header.Set("X-Forwarded-For", forwarded)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimitMiddlewarePerIP(t *testing.T) {
	r := newLimitedRouter(t, nil)

	assert.Equal(t, http.StatusOK, ping(r, "10.0.0.1", ""))
	assert.Equal(t, http.StatusOK, ping(r, "10.0.0.1", ""))
	assert.Equal(t, http.StatusTooManyRequests, ping(r, "10.0.0.1", ""))
	assert.Equal(t, http.StatusOK, ping(r, "10.0.0.2", ""))
}

func TestRateLimitIgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	r := newLimitedRouter(t, nil)

	assert.Equal(t, http.StatusOK, ping(r, "10.0.0.1", "1.1.1.1"))
	assert.Equal(t, http.StatusOK, ping(r, "10.0.0.1", "2.2.2.2"))
	assert.Equal(t, http.StatusTooManyRequests, ping(r, "10.0.0.1", "3.3.3.3"))
}

func TestRateLimitUsesForwardedForBehindTrustedProxy(t *testing.T) {
	r := newLimitedRouter(t, []string{"10.0.0.254"})

	assert.Equal(t, http.StatusOK, ping(r, "10.0.0.254", "1.1.1.1"))
	assert.Equal(t, http.StatusOK, ping(r, "10.0.0.254", "1.1.1.1"))
	assert.Equal(t, http.StatusTooManyRequests, ping(r, "10.0.0.254", "1.1.1.1"))
	assert.Equal(t, http.StatusOK, ping(r, "10.0.0.254", "2.2.2.2"))
}

func TestRateLimiterStoreEvictsIdleClients(t *testing.T) {
	store := newRateLimiterStore(2, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	store.lastSweep = now

	for i := 0; i < 100; i++ {
		store.getLimiter(fmt.Sprintf("10.0.%d.%d", i/256, i%256))
	}
	assert.Equal(t, 100, store.size())

	now = now.Add(30 * time.Second)
	store.getLimiter("10.0.0.0")

	now = now.Add(45 * time.Second)
	store.getLimiter("192.168.0.1")
	// Only the client seen 45s ago and the new one survive the sweep.
	assert.Equal(t, 2, store.size())
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger(zap.NewNop()))
	r.GET("/ping", func(c *gin.Context) {
		_, ok := c.Get("logger")
		assert.True(t, ok)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))
}
