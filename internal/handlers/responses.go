package handlers

import (
	"log/slog"
	"net/http"

	apierrors "finance-ledger/internal/errors"

	"github.com/labstack/echo/v4"
)

// STANDARDIZED ERROR HANDLING PATTERNS
//
// Handlers report failures through the helpers below:
//
// 1. SendLedgerError - For anything returned by a service
//    The LedgerError kind and code select the status; storage failures are
//    reported without their internal detail.
//
// 2. SendError - For failures detected in the handler itself
//    Use cases:
//    - Malformed ids: SendError(c, apierrors.ValidationInvalidID)
//    - Unparseable bodies: SendError(c, apierrors.ValidationGeneral, apierrors.WithDetails("..."))
//
// 3. SendSystemError - For unexpected errors that must not leak details
//
// Validator errors are returned as-is and formatted by the HTTP error handler.

const (
	// TraceIDContextKey is the context key for storing the trace ID
	TraceIDContextKey = "trace_id"
)

// ErrorResponse is an alias for the standardized error response type
type ErrorResponse = apierrors.ErrorResponse

// getTraceID extracts the trace ID from the Echo context
func getTraceID(c echo.Context) string {
	traceID, ok := c.Get(TraceIDContextKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

// SendError sends a standardized error response with trace ID from context
func SendError(c echo.Context, code apierrors.ErrorCode, opts ...apierrors.ErrorOption) error {
	errorResponse := apierrors.NewErrorResponse(code, getTraceID(c), opts...)
	return c.JSON(errorResponse.HTTPStatus(), errorResponse)
}

// SendSystemError wraps a system error with generic message and logs the internal error
func SendSystemError(c echo.Context, err error) error {
	traceID := getTraceID(c)
	slog.ErrorContext(c.Request().Context(), "internal error",
		slog.String("trace_id", traceID),
		slog.String("path", c.Path()),
		slog.String("client_ip", getClientIP(c)),
		slog.String("error", err.Error()),
	)
	return c.JSON(http.StatusInternalServerError, apierrors.Redacted(apierrors.SystemInternalError, traceID))
}

func sendDatabaseError(c echo.Context, err error) error {
	traceID := getTraceID(c)
	slog.ErrorContext(c.Request().Context(), "storage error",
		slog.String("trace_id", traceID),
		slog.String("path", c.Path()),
		slog.String("error", err.Error()),
	)
	return c.JSON(http.StatusInternalServerError, apierrors.Redacted(apierrors.SystemDatabaseError, traceID))
}

// SendLedgerError reports a service error with the code its kind maps to.
// Errors outside the ledger taxonomy become system errors.
func SendLedgerError(c echo.Context, err error) error {
	ledgerErr, ok := apierrors.AsLedgerError(err)
	if !ok {
		return SendSystemError(c, err)
	}
	if ledgerErr.Kind == apierrors.KindInternalStorage {
		return sendDatabaseError(c, err)
	}

	opts := []apierrors.ErrorOption{}
	if ledgerErr.Message != "" {
		opts = append(opts, apierrors.WithMessage(ledgerErr.Message))
	}
	return SendError(c, apierrors.CodeFor(err), opts...)
}
