package dto

import (
	"errors"
	"net/http"

	"github.com/activityhub/backend/internal/domain/shared"
)

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation and input error codes
const (
	ErrCodeValidation   = "ERR_VALIDATION"
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// Authentication error codes
const (
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
	ErrCodeTokenRevoked = "ERR_TOKEN_REVOKED"
)

// Authorization and resource error codes
const (
	ErrCodePermissionDenied = "ERR_PERMISSION_DENIED"
	ErrCodeNotFound         = "ERR_NOT_FOUND"
	ErrCodeConflict         = "ERR_CONFLICT"
)

// Attendance and state error codes
const (
	ErrCodeNotOnGoing        = "ERR_NOT_ON_GOING"
	ErrCodeOutOfRange        = "ERR_OUT_OF_RANGE"
	ErrCodeMissingLocation   = "ERR_MISSING_LOCATION"
	ErrCodeInvalidRange      = "ERR_INVALID_RANGE"
	ErrCodeInvalidState      = "ERR_INVALID_STATE"
	ErrCodeInvalidTransition = "ERR_INVALID_TRANSITION"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Input errors -> 400 Bad Request
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	// Auth errors
	ErrCodeUnauthorized:     http.StatusUnauthorized,
	ErrCodeTokenExpired:     http.StatusUnauthorized,
	ErrCodeTokenInvalid:     http.StatusUnauthorized,
	ErrCodeTokenRevoked:     http.StatusUnauthorized,
	ErrCodePermissionDenied: http.StatusForbidden,

	// Resource errors
	ErrCodeNotFound: http.StatusNotFound,
	ErrCodeConflict: http.StatusConflict,

	// Attendance: missing or inconsistent input is the caller's fault,
	// a well-formed request the current state rejects is 422
	ErrCodeMissingLocation:   http.StatusBadRequest,
	ErrCodeInvalidRange:      http.StatusBadRequest,
	ErrCodeNotOnGoing:        http.StatusUnprocessableEntity,
	ErrCodeOutOfRange:        http.StatusUnprocessableEntity,
	ErrCodeInvalidState:      http.StatusUnprocessableEntity,
	ErrCodeInvalidTransition: http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to API error codes
var DomainErrorCodeMapping = map[string]string{
	shared.CodePermissionDenied:  ErrCodePermissionDenied,
	shared.CodeNotFound:          ErrCodeNotFound,
	shared.CodeNotOnGoing:        ErrCodeNotOnGoing,
	shared.CodeOutOfRange:        ErrCodeOutOfRange,
	shared.CodeMissingLocation:   ErrCodeMissingLocation,
	shared.CodeInvalidRange:      ErrCodeInvalidRange,
	shared.CodeConflict:          ErrCodeConflict,
	shared.CodeInvalidInput:      ErrCodeInvalidInput,
	shared.CodeInvalidState:      ErrCodeInvalidState,
	shared.CodeInvalidTransition: ErrCodeInvalidTransition,
	shared.CodeUnauthorized:      ErrCodeUnauthorized,
	"VALIDATION_ERROR":           ErrCodeValidation,
	"INTERNAL_ERROR":             ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to the API format.
// Codes already in the API format, or unknown, are returned as-is.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := DomainErrorCodeMapping[code]; ok {
		return apiCode
	}
	return code
}

// FromError converts err into a status code and error envelope. Domain
// errors keep their message; anything else is reported as an internal
// error without details.
func FromError(err error, requestID string) (int, Response) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := NormalizeErrorCode(domainErr.Code)
		return GetHTTPStatus(code), NewErrorResponseWithRequestID(code, domainErr.Message, requestID)
	}
	return http.StatusInternalServerError,
		NewErrorResponseWithRequestID(ErrCodeInternal, "An internal error occurred", requestID)
}
