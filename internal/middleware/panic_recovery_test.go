package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"finance-ledger/internal/errors"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
)

type PanicRecoveryTestSuite struct {
	suite.Suite
	echo   *echo.Echo
	logs   *bytes.Buffer
	logger *slog.Logger
}

func (s *PanicRecoveryTestSuite) SetupTest() {
	s.echo = echo.New()
	s.logs = &bytes.Buffer{}
	s.logger = slog.New(slog.NewJSONHandler(s.logs, nil))
}

func TestPanicRecoveryTestSuite(t *testing.T) {
	suite.Run(t, new(PanicRecoveryTestSuite))
}

func (s *PanicRecoveryTestSuite) TestRecoversWithStandardError() {
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(httptest.NewRequest(http.MethodGet, "/api/v1/rules", nil), rec)
	c.Set(TraceIDContextKey, "test-trace-id")

	handler := PanicRecovery(s.logger)(func(c echo.Context) error {
		panic("nil category")
	})

	s.NotPanics(func() {
		s.NoError(handler(c))
	})

	s.Equal(http.StatusInternalServerError, rec.Code)
	var resp errors.ErrorResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal(string(errors.SystemInternalError), resp.Error.Code)
	s.Equal("test-trace-id", resp.Error.TraceID)
	s.NotContains(rec.Body.String(), "nil category")

	s.Contains(s.logs.String(), `"panic":"nil category"`)
	s.Contains(s.logs.String(), `"path":"/api/v1/rules"`)
}

func (s *PanicRecoveryTestSuite) TestUnknownTraceID() {
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	_ = PanicRecovery(s.logger)(func(c echo.Context) error {
		panic(42)
	})(c)

	var resp errors.ErrorResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal("unknown", resp.Error.TraceID)
}

func (s *PanicRecoveryTestSuite) TestPassesThroughWithoutPanic() {
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	s.NoError(PanicRecovery(s.logger)(okHandler)(c))

	s.Equal(http.StatusOK, rec.Code)
	s.Zero(s.logs.Len())
}

func (s *PanicRecoveryTestSuite) TestAbortHandlerIsRepanicked() {
	c := s.echo.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	s.PanicsWithValue(http.ErrAbortHandler, func() {
		_ = PanicRecovery(s.logger)(func(c echo.Context) error {
			panic(http.ErrAbortHandler)
		})(c)
	})
}
