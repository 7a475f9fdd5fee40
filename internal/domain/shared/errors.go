package shared

import (
	"errors"
	"net/http"
)

// DomainError represents a domain-level error that is safe to show to API clients
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches domain errors by code so wrapped sentinels compare equal
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// HTTPStatus returns the HTTP status the error maps to, defaulting to 400
func (e *DomainError) HTTPStatus() int {
	if e.Status == 0 {
		return http.StatusBadRequest
	}
	return e.Status
}

// NewDomainError creates a new domain error with a 400 status
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

// NewDomainErrorWithStatus creates a new domain error with an explicit HTTP status
func NewDomainErrorWithStatus(status int, code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Status:  status,
	}
}

// Error codes
const (
	CodeInvalidInput        = "INVALID_INPUT"
	CodeMissingParameter    = "MISSING_PARAMETER"
	CodeNotFound            = "NOT_FOUND"
	CodeUpstreamFailed      = "UPSTREAM_FAILED"
	CodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	CodeToolFailed          = "TOOL_FAILED"
	CodeOutdatedVersion     = "OUTDATED_API_VERSION"
	CodeInvalidVersion      = "INVALID_API_VERSION"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeRateLimited         = "RATE_LIMITED"
	CodeUnavailable         = "SERVICE_UNAVAILABLE"
	CodeMethodNotAllowed    = "METHOD_NOT_ALLOWED"
	CodeInternal            = "INTERNAL_ERROR"
)

// Common domain errors
var (
	ErrNotFound            = NewDomainErrorWithStatus(http.StatusNotFound, CodeNotFound, "Resource not found")
	ErrUnauthorized        = NewDomainErrorWithStatus(http.StatusUnauthorized, CodeUnauthorized, "Not authorized to perform this action")
	ErrUpstreamUnavailable = NewDomainErrorWithStatus(http.StatusServiceUnavailable, CodeUpstreamUnavailable, "The upstream service is temporarily unavailable. Please try again later.")
	ErrOutdatedAPIVersion  = NewDomainError(CodeOutdatedVersion, "This version is outdated. Please use the latest version of the API to be able to use our services.")
	ErrInvalidAPIVersion   = NewDomainError(CodeInvalidVersion, "This version does not exist. Please use the latest version of the API to be able to use our services.")
	ErrMissingQuery        = NewDomainError(CodeMissingParameter, `No "query" parameter found in the request.`)
	ErrOnlineRequestFailed = NewDomainErrorWithStatus(http.StatusInternalServerError, CodeUpstreamFailed, "This request failed, please try again or report this error at https://github.com/Henrique-Coder/everytoolsapi/issues.")
	ErrSearchFailed        = NewDomainErrorWithStatus(http.StatusInternalServerError, CodeUpstreamFailed, "Some error occurred in our systems during the data search. Please try again later.")
	ErrExternalFailure     = NewDomainErrorWithStatus(http.StatusInternalServerError, CodeUpstreamFailed, "Some external error occurred during the data search. Please try again later.")
	ErrUnexpected          = NewDomainErrorWithStatus(http.StatusInternalServerError, CodeInternal, "An unexpected error occurred.")
	ErrRateLimited         = NewDomainErrorWithStatus(http.StatusTooManyRequests, CodeRateLimited, "You have exceeded the request limit of this endpoint. Please try again later.")
	ErrEndpointUnavailable = NewDomainErrorWithStatus(http.StatusServiceUnavailable, CodeUnavailable, "This endpoint is not available at the moment. Please try again later.")
	ErrRouteNotFound       = NewDomainErrorWithStatus(http.StatusNotFound, CodeNotFound, "The requested endpoint does not exist.")
	ErrMethodNotAllowed    = NewDomainErrorWithStatus(http.StatusMethodNotAllowed, CodeMethodNotAllowed, "The request method is not allowed for this endpoint.")
)

// Invalid creates a 400 error with the INVALID_INPUT code
func Invalid(message string) *DomainError {
	return NewDomainError(CodeInvalidInput, message)
}

// Missing creates a 400 error with the MISSING_PARAMETER code
func Missing(message string) *DomainError {
	return NewDomainError(CodeMissingParameter, message)
}

// Upstream creates a 500 error for failures of an external service
func Upstream(message string) *DomainError {
	return NewDomainErrorWithStatus(http.StatusInternalServerError, CodeUpstreamFailed, message)
}

// ToolFailure creates a 500 error for failures of a local tool or subprocess
func ToolFailure(message string) *DomainError {
	return NewDomainErrorWithStatus(http.StatusInternalServerError, CodeToolFailed, message)
}
