package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveWithSecurityHeaders(t *testing.T, hsts bool, path string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, path, nil), rec)
	require.NoError(t, SecurityHeaders(hsts)(okHandler)(c))
	return rec
}

func TestSecurityHeaders_API(t *testing.T) {
	rec := serveWithSecurityHeaders(t, false, "/api/v1/transactions")

	assert.Equal(t, http.StatusOK, rec.Code)
	h := rec.Header()
	assert.Equal(t, "nosniff", h.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", h.Get("X-Frame-Options"))
	assert.Equal(t, "no-referrer", h.Get("Referrer-Policy"))
	assert.Equal(t, apiCSP, h.Get("Content-Security-Policy"))
	assert.Equal(t, "no-store", h.Get("Cache-Control"))
	assert.Empty(t, h.Get("Strict-Transport-Security"))
}

func TestSecurityHeaders_HSTS(t *testing.T) {
	rec := serveWithSecurityHeaders(t, true, "/health")
	assert.Equal(t, "max-age=31536000; includeSubDomains", rec.Header().Get("Strict-Transport-Security"))
}

func TestSecurityHeaders_DocsAllowScalarAndCaching(t *testing.T) {
	rec := serveWithSecurityHeaders(t, false, "/docs")

	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "https://cdn.jsdelivr.net")
	assert.Empty(t, rec.Header().Get("Cache-Control"), "docs handlers set their own caching")
}

func TestSecurityHeaders_HandlerErrorPropagates(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	err := SecurityHeaders(false)(func(echo.Context) error {
		return echo.ErrTeapot
	})(c)

	assert.ErrorIs(t, err, echo.ErrTeapot)
}
