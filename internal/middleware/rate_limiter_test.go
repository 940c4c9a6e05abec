package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rateLimitedRequest(t *testing.T, e *echo.Echo, h echo.HandlerFunc, remoteAddr string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	return rec.Code
}

func okHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func TestRateLimiter_BurstThenLimited(t *testing.T) {
	e := echo.New()
	rl := NewRateLimiter(2, 4)
	frozen := time.Now()
	rl.now = func() time.Time { return frozen }
	h := rl.Middleware()(okHandler)

	for i := 0; i < 4; i++ {
		assert.Equal(t, http.StatusOK, rateLimitedRequest(t, e, h, "192.168.1.2:12345"), "request %d", i)
	}
	assert.Equal(t, http.StatusTooManyRequests, rateLimitedRequest(t, e, h, "192.168.1.2:12345"))

	// half a second at 2 req/s refills one token
	frozen = frozen.Add(500 * time.Millisecond)
	assert.Equal(t, http.StatusOK, rateLimitedRequest(t, e, h, "192.168.1.2:12345"))
}

func TestRateLimiter_Defaults(t *testing.T) {
	rl := NewRateLimiter(0, -1)
	assert.Equal(t, defaultBurstSize, rl.burst)
	assert.InDelta(t, float64(defaultRequestsPerSecond), float64(rl.limit), 0)
}

func TestRateLimiter_IndependentIPs(t *testing.T) {
	e := echo.New()
	rl := NewRateLimiter(1, 2)
	frozen := time.Now()
	rl.now = func() time.Time { return frozen }
	h := rl.Middleware()(okHandler)

	for _, ip := range []string{"10.0.0.1:1", "10.0.0.2:1", "10.0.0.3:1"} {
		assert.Equal(t, http.StatusOK, rateLimitedRequest(t, e, h, ip))
		assert.Equal(t, http.StatusOK, rateLimitedRequest(t, e, h, ip))
		assert.Equal(t, http.StatusTooManyRequests, rateLimitedRequest(t, e, h, ip))
	}
	assert.Equal(t, 3, rl.visitorCount())
}

func TestRateLimiter_SweepsIdleVisitors(t *testing.T) {
	e := echo.New()
	rl := NewRateLimiter(5, 10)
	start := time.Now()
	clock := start
	rl.now = func() time.Time { return clock }
	rl.lastSweep = start
	h := rl.Middleware()(okHandler)

	rateLimitedRequest(t, e, h, "10.0.0.1:1")
	rateLimitedRequest(t, e, h, "10.0.0.2:1")
	require.Equal(t, 2, rl.visitorCount())

	clock = start.Add(visitorTTL + sweepInterval)
	rateLimitedRequest(t, e, h, "10.0.0.3:1")

	assert.Equal(t, 1, rl.visitorCount())
}

func TestGetIP(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		want       string
	}{
		{
			name:       "first forwarded hop",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.1"},
			remoteAddr: "10.0.0.1:1234",
			want:       "203.0.113.5",
		},
		{
			name:       "real ip header",
			headers:    map[string]string{"X-Real-IP": "198.51.100.7"},
			remoteAddr: "10.0.0.1:1234",
			want:       "198.51.100.7",
		},
		{
			name:       "remote address",
			remoteAddr: "192.0.2.44:5678",
			want:       "192.0.2.44",
		},
	}

	e := echo.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, getIP(e.NewContext(req, httptest.NewRecorder())))
		})
	}
}
