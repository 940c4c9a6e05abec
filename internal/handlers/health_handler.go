package handlers

import (
	"net/http"
	"time"

	apierrors "finance-ledger/internal/errors"

	"github.com/labstack/echo/v4"
)

// HealthChecker is satisfied by the database handle
type HealthChecker interface {
	HealthCheck() error
	Driver() string
}

// HealthCheckHandler handles the health check endpoint
type HealthCheckHandler struct {
	db       HealthChecker
	provider string
	now      func() time.Time
}

// NewHealthCheckHandler creates a new health check handler
func NewHealthCheckHandler(db HealthChecker, provider string) *HealthCheckHandler {
	return &HealthCheckHandler{db: db, provider: provider, now: time.Now}
}

// HealthCheck reports API and store connectivity
//
// Method: GET /health
//
// Success Response: 200 OK with status, time, database driver and suggestion provider
// Error Responses:
//   - 503: SYSTEM_003 when the store does not answer a ping
func (h *HealthCheckHandler) HealthCheck(c echo.Context) error {
	if err := h.db.HealthCheck(); err != nil {
		return SendError(c, apierrors.SystemServiceUnavailable,
			apierrors.WithDetails("Database connection failed"))
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status":     "healthy",
		"time":       h.now().UTC().Format(time.RFC3339),
		"database":   h.db.Driver(),
		"suggestion": h.provider,
	})
}
