package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code   string
		status int
	}{
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeConcurrencyConflict, http.StatusConflict},
		{ErrCodeInsufficientStock, http.StatusUnprocessableEntity},
		{ErrCodeInvariantViolation, http.StatusUnprocessableEntity},
		{ErrCodeGatewayError, http.StatusBadGateway},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeForbidden, http.StatusForbidden},
		{ErrCodeInvalidInput, http.StatusBadRequest},
		{"SOMETHING_NOBODY_MAPPED", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.status, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected string
	}{
		{"mapped not found", "NOT_FOUND", ErrCodeNotFound},
		{"optimistic lock maps to concurrency conflict", "OPTIMISTIC_LOCK_FAILED", ErrCodeConcurrencyConflict},
		{"insufficient stock", "INSUFFICIENT_STOCK", ErrCodeInsufficientStock},
		{"self approval is forbidden", "SELF_APPROVAL", ErrCodeForbidden},
		{"invalid prefix collapses to invalid input", "INVALID_PHONE", ErrCodeInvalidInput},
		{"missing prefix collapses to invalid input", "MISSING_UNIT_COST", ErrCodeInvalidInput},
		{"no prefix collapses to invalid input", "NO_ITEMS", ErrCodeInvalidInput},
		{"already normalized passes through", ErrCodeConflict, ErrCodeConflict},
		{"unknown passes through", "BATCH_MISMATCH", "BATCH_MISMATCH"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeErrorCode(tt.code))
		})
	}
}

func TestGetDomainHTTPStatus(t *testing.T) {
	// Unmapped domain codes are business rule rejections
	assert.Equal(t, http.StatusUnprocessableEntity, GetDomainHTTPStatus("BATCH_MISMATCH"))
	assert.Equal(t, http.StatusUnprocessableEntity, GetDomainHTTPStatus("RETURN_EXCEEDS_QUANTITY"))

	// Mapped codes resolve through the standard table
	assert.Equal(t, http.StatusNotFound, GetDomainHTTPStatus("NOT_FOUND"))
	assert.Equal(t, http.StatusConflict, GetDomainHTTPStatus("OPTIMISTIC_LOCK_FAILED"))
	assert.Equal(t, http.StatusBadRequest, GetDomainHTTPStatus("INVALID_QUANTITY"))
	assert.Equal(t, http.StatusBadGateway, GetDomainHTTPStatus("GATEWAY_ERROR"))
}

func TestNewErrorResponseWithRequestID(t *testing.T) {
	resp := NewErrorResponseWithRequestID(ErrCodeNotFound, "Sale not found", "req-123")
	assert.False(t, resp.Success)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
	assert.Equal(t, "Sale not found", resp.Error.Message)
	assert.Equal(t, "req-123", resp.Error.RequestID)
}

func TestNewValidationErrorResponse(t *testing.T) {
	details := []ValidationDetail{
		{Field: "phone_number", Message: "required"},
	}
	resp := NewValidationErrorResponse("Request validation failed", "req-456", details)
	assert.False(t, resp.Success)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Len(t, resp.Error.Details, 1)
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]string{"a", "b"}, 45, 2, 20)
	assert.True(t, resp.Success)
	assert.Equal(t, int64(45), resp.Meta.Total)
	assert.Equal(t, 3, resp.Meta.TotalPages)
}
