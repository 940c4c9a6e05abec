package handlers

import (
	"fmt"
	"strings"

	apierrors "finance-ledger/internal/errors"

	"github.com/labstack/echo/v4"
)

// sendInvalidID answers a malformed UUID path parameter
func sendInvalidID(c echo.Context, name string) error {
	return SendError(c, apierrors.ValidationInvalidID,
		apierrors.WithDetails(fmt.Sprintf("%s must be a valid UUID", name)))
}

// sendInvalidBody answers a body that could not be decoded
func sendInvalidBody(c echo.Context) error {
	return SendError(c, apierrors.ValidationGeneral, apierrors.WithDetails("Invalid request body"))
}

func getClientIP(c echo.Context) string {
	xff := c.Request().Header.Get("X-Forwarded-For")
	if xff != "" {
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	xri := c.Request().Header.Get("X-Real-IP")
	if xri != "" {
		return xri
	}

	return c.Request().RemoteAddr
}
