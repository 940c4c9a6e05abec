package errors

// ErrorResponse is the envelope every API error is sent in
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
	TraceID string   `json:"trace_id"`
}

// ErrorOption adjusts a response built by NewErrorResponse
type ErrorOption func(*ErrorResponse)

// WithDetails replaces the detail lines of the response
func WithDetails(details ...string) ErrorOption {
	return func(er *ErrorResponse) {
		er.Error.Details = details
	}
}

// WithMessage overrides the default message for the error code
func WithMessage(message string) ErrorOption {
	return func(er *ErrorResponse) {
		er.Error.Message = message
	}
}

// NewErrorResponse builds the envelope for code with its default message
func NewErrorResponse(code ErrorCode, traceID string, opts ...ErrorOption) *ErrorResponse {
	response := &ErrorResponse{
		Error: ErrorDetail{
			Code:    string(code),
			Message: GetErrorMessage(code),
			TraceID: traceID,
		},
	}

	for _, opt := range opts {
		opt(response)
	}

	return response
}

// NewValidationError reports request validation failures, one detail line
// per offending field in the order given
func NewValidationError(traceID string, details ...string) *ErrorResponse {
	return NewErrorResponse(ValidationGeneral, traceID, WithDetails(details...))
}

// Redacted builds a response that carries only the default message for code.
// Use it for storage and internal failures so driver errors, SQL or file
// paths never reach the client; the caller logs the cause.
func Redacted(code ErrorCode, traceID string) *ErrorResponse {
	return NewErrorResponse(code, traceID)
}

// HTTPStatus returns the status the response is sent with
func (er *ErrorResponse) HTTPStatus() int {
	return GetHTTPStatus(ErrorCode(er.Error.Code))
}
