package errors

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ResponseTestSuite struct {
	suite.Suite
	traceID string
}

func (s *ResponseTestSuite) SetupTest() {
	s.traceID = "550e8400-e29b-41d4-a716-446655440000"
}

func TestResponseTestSuite(t *testing.T) {
	suite.Run(t, new(ResponseTestSuite))
}

func (s *ResponseTestSuite) TestNewErrorResponse_DefaultMessage() {
	response := NewErrorResponse(CategoryNotFound, s.traceID)

	s.Equal("CATEGORY_001", response.Error.Code)
	s.Equal("Category not found", response.Error.Message)
	s.Equal(s.traceID, response.Error.TraceID)
	s.Empty(response.Error.Details)
}

func (s *ResponseTestSuite) TestNewErrorResponse_Options() {
	details := []string{"category 4f0c... is referenced by 3 transaction(s)"}
	response := NewErrorResponse(
		CategoryInUse,
		s.traceID,
		WithMessage("Cannot delete category"),
		WithDetails(details...),
	)

	s.Equal("CATEGORY_003", response.Error.Code)
	s.Equal("Cannot delete category", response.Error.Message)
	s.Equal(details, response.Error.Details)
}

func (s *ResponseTestSuite) TestWithDetails_LastInvocationWins() {
	response := NewErrorResponse(ValidationGeneral, s.traceID,
		WithDetails("detail1", "detail2"),
		WithDetails("detail3"),
	)

	s.Equal([]string{"detail3"}, response.Error.Details)
}

func (s *ResponseTestSuite) TestNewValidationError_KeepsOrder() {
	response := NewValidationError(s.traceID,
		"transactions[0].description: is required",
		"transactions[3].date: is required",
	)

	s.Equal("VALIDATION_001", response.Error.Code)
	s.Equal([]string{
		"transactions[0].description: is required",
		"transactions[3].date: is required",
	}, response.Error.Details)
	s.Equal(http.StatusBadRequest, response.HTTPStatus())
}

func (s *ResponseTestSuite) TestRedacted_UsesDefaultMessageOnly() {
	response := Redacted(SystemDatabaseError, s.traceID)

	s.Equal("SYSTEM_002", response.Error.Code)
	s.Equal("Database connection error", response.Error.Message)
	s.Empty(response.Error.Details)
	s.Equal(http.StatusInternalServerError, response.HTTPStatus())
}

func (s *ResponseTestSuite) TestJSON_EmptyDetailsOmitted() {
	body, err := json.Marshal(NewErrorResponse(RuleNotFound, s.traceID))
	s.Require().NoError(err)

	var envelope map[string]map[string]interface{}
	s.Require().NoError(json.Unmarshal(body, &envelope))

	_, hasDetails := envelope["error"]["details"]
	s.False(hasDetails)
	s.Equal("RULE_001", envelope["error"]["code"])
	s.Equal(s.traceID, envelope["error"]["trace_id"])
}

func (s *ResponseTestSuite) TestGetHTTPStatus() {
	testCases := []struct {
		code           ErrorCode
		expectedStatus int
	}{
		{ValidationGeneral, http.StatusBadRequest},
		{ValidationInvalidID, http.StatusBadRequest},
		{RuleInvalidPattern, http.StatusBadRequest},
		{CredentialInvalidType, http.StatusBadRequest},
		{AuthMissingToken, http.StatusUnauthorized},
		{AuthExpiredToken, http.StatusUnauthorized},
		{CategoryNotFound, http.StatusNotFound},
		{TransactionNotFound, http.StatusNotFound},
		{RuleNotFound, http.StatusNotFound},
		{CredentialNotFound, http.StatusNotFound},
		{CategoryAlreadyExists, http.StatusConflict},
		{CategoryInUse, http.StatusConflict},
		{SystemRateLimitExceeded, http.StatusTooManyRequests},
		{AIServiceUnavailable, http.StatusBadGateway},
		{AIInvalidResponse, http.StatusBadGateway},
		{AINotConfigured, http.StatusServiceUnavailable},
		{SystemServiceUnavailable, http.StatusServiceUnavailable},
		{SystemInternalError, http.StatusInternalServerError},
		{SystemDatabaseError, http.StatusInternalServerError},
		{ErrorCode("UNKNOWN_999"), http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		s.Run(string(tc.code), func() {
			s.Equal(tc.expectedStatus, GetHTTPStatus(tc.code))
		})
	}
}
