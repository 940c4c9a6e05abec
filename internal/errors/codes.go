package errors

import "net/http"

// ErrorCode represents a standardized error code used throughout the API
type ErrorCode string

// Authentication error codes (AUTH_*)
const (
	AuthMissingToken       ErrorCode = "AUTH_001"
	AuthExpiredToken       ErrorCode = "AUTH_002"
	AuthInvalidTokenFormat ErrorCode = "AUTH_003"
)

// Validation error codes (VALIDATION_*)
const (
	ValidationGeneral       ErrorCode = "VALIDATION_001"
	ValidationRequiredField ErrorCode = "VALIDATION_002"
	ValidationInvalidFormat ErrorCode = "VALIDATION_003"
	ValidationOutOfRange    ErrorCode = "VALIDATION_004"
	ValidationInvalidDate   ErrorCode = "VALIDATION_005"
	ValidationInvalidID     ErrorCode = "VALIDATION_006"
)

// Category error codes (CATEGORY_*)
const (
	CategoryNotFound      ErrorCode = "CATEGORY_001"
	CategoryAlreadyExists ErrorCode = "CATEGORY_002"
	CategoryInUse         ErrorCode = "CATEGORY_003"
	CategoryInvalid       ErrorCode = "CATEGORY_004"
)

// Transaction error codes (TRANSACTION_*)
const (
	TransactionNotFound         ErrorCode = "TRANSACTION_001"
	TransactionValidationFailed ErrorCode = "TRANSACTION_002"
)

// Categorization rule error codes (RULE_*)
const (
	RuleNotFound       ErrorCode = "RULE_001"
	RuleInvalidPattern ErrorCode = "RULE_002"
	RuleInvalid        ErrorCode = "RULE_003"
)

// AI suggestion error codes (AI_*)
const (
	AIServiceUnavailable ErrorCode = "AI_001"
	AINotConfigured      ErrorCode = "AI_002"
	AIInvalidResponse    ErrorCode = "AI_003"
)

// Credential error codes (CREDENTIAL_*)
const (
	CredentialNotFound    ErrorCode = "CREDENTIAL_001"
	CredentialInvalidType ErrorCode = "CREDENTIAL_002"
)

// System error codes (SYSTEM_*)
const (
	SystemInternalError      ErrorCode = "SYSTEM_001"
	SystemDatabaseError      ErrorCode = "SYSTEM_002"
	SystemServiceUnavailable ErrorCode = "SYSTEM_003"
	SystemConfigurationError ErrorCode = "SYSTEM_004"
	SystemUnexpectedError    ErrorCode = "SYSTEM_005"
	SystemRateLimitExceeded  ErrorCode = "SYSTEM_006"
	SystemNotFound           ErrorCode = "SYSTEM_007"
)

type codeInfo struct {
	status  int
	message string
}

// registry holds the HTTP status and default message of every code
var registry = map[ErrorCode]codeInfo{
	AuthMissingToken:       {http.StatusUnauthorized, "Authorization token is required"},
	AuthExpiredToken:       {http.StatusUnauthorized, "Authorization token has expired"},
	AuthInvalidTokenFormat: {http.StatusUnauthorized, "Invalid authorization token format"},

	ValidationGeneral:       {http.StatusBadRequest, "Validation failed"},
	ValidationRequiredField: {http.StatusBadRequest, "Required field is missing"},
	ValidationInvalidFormat: {http.StatusBadRequest, "Invalid field format"},
	ValidationOutOfRange:    {http.StatusBadRequest, "Field value is out of allowed range"},
	ValidationInvalidDate:   {http.StatusBadRequest, "Invalid date format or range"},
	ValidationInvalidID:     {http.StatusBadRequest, "Invalid identifier format"},

	CategoryNotFound:      {http.StatusNotFound, "Category not found"},
	CategoryAlreadyExists: {http.StatusConflict, "A category with this name already exists"},
	CategoryInUse:         {http.StatusConflict, "Category is referenced by existing transactions"},
	CategoryInvalid:       {http.StatusBadRequest, "Category validation failed"},

	TransactionNotFound:         {http.StatusNotFound, "Transaction not found"},
	TransactionValidationFailed: {http.StatusBadRequest, "Transaction validation failed"},

	RuleNotFound:       {http.StatusNotFound, "Categorization rule not found"},
	RuleInvalidPattern: {http.StatusBadRequest, "Rule pattern is not a valid regular expression"},
	RuleInvalid:        {http.StatusBadRequest, "Categorization rule validation failed"},

	// upstream failures are the provider's fault, a missing key is ours
	AIServiceUnavailable: {http.StatusBadGateway, "Suggestion service is unavailable"},
	AINotConfigured:      {http.StatusServiceUnavailable, "Suggestion service is not configured"},
	AIInvalidResponse:    {http.StatusBadGateway, "Suggestion service returned an unreadable response"},

	CredentialNotFound:    {http.StatusNotFound, "Credential not found"},
	CredentialInvalidType: {http.StatusBadRequest, "Unknown credential type"},

	SystemInternalError:      {http.StatusInternalServerError, "An unexpected error occurred. Please contact support with trace ID"},
	SystemDatabaseError:      {http.StatusInternalServerError, "Database connection error"},
	SystemServiceUnavailable: {http.StatusServiceUnavailable, "Service temporarily unavailable"},
	SystemConfigurationError: {http.StatusInternalServerError, "System configuration error"},
	SystemUnexpectedError:    {http.StatusInternalServerError, "An unexpected error occurred"},
	SystemRateLimitExceeded:  {http.StatusTooManyRequests, "Rate limit exceeded. Please try again later"},
	SystemNotFound:           {http.StatusNotFound, "Resource not found"},
}

// GetErrorMessage returns the default message for code, or a generic one
// for unregistered codes
func GetErrorMessage(code ErrorCode) string {
	if info, ok := registry[code]; ok {
		return info.message
	}
	return "An error occurred"
}

// GetHTTPStatus returns the status a response with code is sent with.
// Unregistered codes are treated as server errors.
func GetHTTPStatus(code ErrorCode) int {
	if info, ok := registry[code]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

func IsValidErrorCode(code ErrorCode) bool {
	_, ok := registry[code]
	return ok
}
