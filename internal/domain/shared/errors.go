package shared

import "errors"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches domain errors by code so that errors built with a custom
// message still satisfy errors.Is against the sentinels below.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Error codes
const (
	CodePermissionDenied  = "PERMISSION_DENIED"
	CodeNotFound          = "NOT_FOUND"
	CodeNotOnGoing        = "NOT_ON_GOING"
	CodeOutOfRange        = "OUT_OF_RANGE"
	CodeMissingLocation   = "MISSING_LOCATION"
	CodeInvalidRange      = "INVALID_RANGE"
	CodeConflict          = "CONFLICT"
	CodeInvalidInput      = "INVALID_INPUT"
	CodeInvalidState      = "INVALID_STATE"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeUnauthorized      = "UNAUTHORIZED"
)

// Common domain errors
var (
	ErrPermissionDenied = NewDomainError(CodePermissionDenied, "You do not have permission to perform this action")
	ErrNotFound         = NewDomainError(CodeNotFound, "Resource not found")
	ErrNotOnGoing       = NewDomainError(CodeNotOnGoing, "Activity is not ongoing")
	ErrOutOfRange       = NewDomainError(CodeOutOfRange, "You are not within range of any check-in location")
	ErrMissingLocation  = NewDomainError(CodeMissingLocation, "Location or QR token is required")
	ErrInvalidRange     = NewDomainError(CodeInvalidRange, "End time must be after start time")
	ErrConflict         = NewDomainError(CodeConflict, "Resource was modified by another request")
	ErrInvalidInput     = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrInvalidState     = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrUnauthorized     = NewDomainError(CodeUnauthorized, "Authentication required")
)
