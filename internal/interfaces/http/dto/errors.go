package dto

import (
	"net/http"
	"strings"
)

// Transport-level error codes
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeValidation is used when request binding or validation fails
	ErrCodeValidation = "VALIDATION_ERROR"
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "UNAUTHORIZED"
	// ErrCodeForbidden is used when the user lacks permission
	ErrCodeForbidden = "FORBIDDEN"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "NOT_FOUND"
	// ErrCodeRateLimited is used when the rate limit is exceeded
	ErrCodeRateLimited = "RATE_LIMITED"
	// ErrCodePayloadTooLarge is used when the request body exceeds the limit
	ErrCodePayloadTooLarge = "PAYLOAD_TOO_LARGE"
)

// domainCodeHTTPStatus maps domain error codes to HTTP status codes.
// Codes not listed here fall back to the INVALID_ prefix rule, then 422.
var domainCodeHTTPStatus = map[string]int{
	ErrCodeInternal:     http.StatusInternalServerError,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeNotFound:     http.StatusNotFound,
	ErrCodeRateLimited:  http.StatusTooManyRequests,

	ErrCodePayloadTooLarge: http.StatusRequestEntityTooLarge,

	// Conflicts
	"ALREADY_EXISTS":       http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,

	// Auth failures are reported uniformly as 401
	"INVALID_CREDENTIALS": http.StatusUnauthorized,
	"INVALID_TOKEN":       http.StatusUnauthorized,
	"TOKEN_EXPIRED":       http.StatusUnauthorized,
	"ACCOUNT_DEACTIVATED": http.StatusForbidden,
	"TENANT_SUSPENDED":    http.StatusForbidden,

	// Document business rule rejections are reported as 400, the same
	// as validation failures
	"NOT_YET_DUE":        http.StatusBadRequest,
	"TEMPLATE_EXPIRED":   http.StatusBadRequest,
	"TEMPLATE_INACTIVE":  http.StatusBadRequest,
	"EXCEEDS_AMOUNT_DUE": http.StatusBadRequest,
	"ALREADY_CONVERTED":  http.StatusBadRequest,
	"ALREADY_INVOICED":   http.StatusBadRequest,

	// Other business rule violations -> 422 Unprocessable Entity
	"INVALID_STATE":       http.StatusUnprocessableEntity,
	"NO_RECIPIENT":        http.StatusUnprocessableEntity,
	"OUTSTANDING_BALANCE": http.StatusUnprocessableEntity,
	"DEFAULT_COMPANY":     http.StatusUnprocessableEntity,
	"SEQUENCE_EXHAUSTED":  http.StatusUnprocessableEntity,
	"RENDER_FAILED":       http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for a domain error code.
// INVALID_* codes are rejected input (400); anything else unknown is a
// business rule violation (422).
func GetHTTPStatus(code string) int {
	if status, ok := domainCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusUnprocessableEntity
}
