package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeValidationRequired is used when a required field is missing
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	// ErrCodeValidationFormat is used when a field has invalid format
	ErrCodeValidationFormat = "ERR_VALIDATION_FORMAT"
)

// Authentication error codes
const (
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	// ErrCodeForbidden is used when the user lacks permission
	ErrCodeForbidden = "ERR_FORBIDDEN"
	// ErrCodeTokenExpired is used when the auth token has expired
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	// ErrCodeTokenInvalid is used when the auth token is invalid
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeBusinessRule is used for generic business rule violations
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
	// ErrCodeInsufficientStock is used when stock is insufficient
	ErrCodeInsufficientStock = "ERR_INSUFFICIENT_STOCK"
	// ErrCodeInvariantViolation is used when a ledger before/after check fails
	ErrCodeInvariantViolation = "ERR_INVARIANT_VIOLATION"
	// ErrCodeGatewayError is used when an upstream payment gateway call fails
	ErrCodeGatewayError = "ERR_GATEWAY_ERROR"
	// ErrCodeServiceUnavailable is used when a required integration is not configured
	ErrCodeServiceUnavailable = "ERR_SERVICE_UNAVAILABLE"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,

	// Auth errors
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	// Resource errors
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:       http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:       http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock:  http.StatusUnprocessableEntity,
	ErrCodeInvariantViolation: http.StatusUnprocessableEntity,

	// Upstream gateway failures -> 502 Bad Gateway
	ErrCodeGatewayError: http.StatusBadGateway,

	// Missing integration -> 503 Service Unavailable
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to the standardized
// transport codes. Codes not listed here fall through NormalizeErrorCode
// unchanged and default to 422 via domainFallbackStatus.
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":              ErrCodeNotFound,
	"LINE_NOT_FOUND":         ErrCodeNotFound,
	"PAYMENT_NOT_FOUND":      ErrCodeNotFound,
	"ALREADY_EXISTS":         ErrCodeAlreadyExists,
	"DUPLICATE_REQUEST":      ErrCodeConflict,
	"CONCURRENCY_CONFLICT":   ErrCodeConcurrencyConflict,
	"OPTIMISTIC_LOCK_FAILED": ErrCodeConcurrencyConflict,
	"INSUFFICIENT_STOCK":     ErrCodeInsufficientStock,
	"INVARIANT_VIOLATION":    ErrCodeInvariantViolation,
	"INVALID_STATE":          ErrCodeInvalidState,
	"INVALID_STATUS":         ErrCodeInvalidState,
	"GATEWAY_ERROR":          ErrCodeGatewayError,
	"MPESA_NOT_CONFIGURED":   ErrCodeServiceUnavailable,
	"VALIDATION_ERROR":       ErrCodeValidation,
	"SELF_APPROVAL":          ErrCodeForbidden,
	"INVALID_APPROVER":       ErrCodeForbidden,
}

// domainValidationPrefixes are domain code prefixes treated as input errors
var domainValidationPrefixes = []string{"INVALID_", "MISSING_", "NO_"}

// NormalizeErrorCode converts a domain error code to the standardized format.
// If the code is already in the new format or unknown, returns it as-is.
func NormalizeErrorCode(code string) string {
	if newCode, ok := DomainErrorCodeMapping[code]; ok {
		return newCode
	}
	for _, prefix := range domainValidationPrefixes {
		if len(code) > len(prefix) && code[:len(prefix)] == prefix {
			return ErrCodeInvalidInput
		}
	}
	return code
}

// DomainFallbackStatus is the status for domain codes with no explicit
// mapping. Unmapped domain errors are business rule rejections, not server
// faults.
const DomainFallbackStatus = http.StatusUnprocessableEntity

// GetDomainHTTPStatus resolves the status for a raw domain error code
func GetDomainHTTPStatus(code string) int {
	normalized := NormalizeErrorCode(code)
	if status, ok := ErrorCodeHTTPStatus[normalized]; ok {
		return status
	}
	return DomainFallbackStatus
}
