package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus_ExplicitCodes(t *testing.T) {
	testCases := []struct {
		code     string
		expected int
	}{
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeBadRequest, http.StatusBadRequest},
		{"EMPTY_CART", http.StatusBadRequest},
		{"EMPTY_GUEST_CART", http.StatusBadRequest},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{"INVALID_CREDENTIALS", http.StatusUnauthorized},
		{"TOKEN_EXPIRED", http.StatusUnauthorized},
		{"TOKEN_REVOKED", http.StatusUnauthorized},
		{ErrCodeForbidden, http.StatusForbidden},
		{"ACCOUNT_LOCKED", http.StatusForbidden},
		{"REVIEW_NOT_ALLOWED", http.StatusForbidden},
		{ErrCodeNotFound, http.StatusNotFound},
		{"NO_CART_TO_MERGE", http.StatusNotFound},
		{ErrCodeAlreadyExists, http.StatusConflict},
		{"CONCURRENCY_CONFLICT", http.StatusConflict},
		{"INVALID_STATE", http.StatusUnprocessableEntity},
		{"CHECKOUT_NOT_PAID", http.StatusUnprocessableEntity},
		{"CHECKOUT_FINALIZED", http.StatusUnprocessableEntity},
		{"PAYMENT_FAILED", http.StatusUnprocessableEntity},
		{"PAYMENT_VERIFICATION_FAILED", http.StatusBadGateway},
		{"FILE_TOO_LARGE", http.StatusRequestEntityTooLarge},
		{"UNSUPPORTED_MEDIA_TYPE", http.StatusUnsupportedMediaType},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{ErrCodeInternal, http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.code, func(t *testing.T) {
			assert.Equal(t, tc.expected, GetHTTPStatus(tc.code))
		})
	}
}

func TestGetHTTPStatus_FamilyFallbacks(t *testing.T) {
	testCases := []struct {
		code     string
		expected int
	}{
		{"PRODUCT_NOT_FOUND", http.StatusNotFound},
		{"CART_NOT_FOUND", http.StatusNotFound},
		{"ITEM_NOT_FOUND", http.StatusNotFound},
		{"USER_NOT_FOUND", http.StatusNotFound},
		{"ORDER_NOT_FOUND", http.StatusNotFound},
		{"CHECKOUT_NOT_FOUND", http.StatusNotFound},
		{"INVALID_PRICE", http.StatusBadRequest},
		{"INVALID_QUANTITY", http.StatusBadRequest},
		{"INVALID_SIZE", http.StatusBadRequest},
		{"ALREADY_PAID", http.StatusConflict},
		{"ALREADY_REVIEWED", http.StatusConflict},
	}

	for _, tc := range testCases {
		t.Run(tc.code, func(t *testing.T) {
			assert.Equal(t, tc.expected, GetHTTPStatus(tc.code))
		})
	}
}

func TestGetHTTPStatus_ExplicitBeatsFamily(t *testing.T) {
	// INVALID_STATE would fall in the 400 family by prefix but is a
	// business rule violation, not a malformed request
	assert.Equal(t, http.StatusUnprocessableEntity, GetHTTPStatus("INVALID_STATE"))
	assert.Equal(t, http.StatusUnauthorized, GetHTTPStatus("INVALID_CREDENTIALS"))
}

func TestGetHTTPStatus_UnknownCode(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus("SOMETHING_ODD"))
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus(""))
}

func TestNewErrorResponseWithRequestID(t *testing.T) {
	resp := NewErrorResponseWithRequestID(ErrCodeNotFound, "product not found", "req-123")

	assert.False(t, resp.Success)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
	assert.Equal(t, "product not found", resp.Error.Message)
	assert.Equal(t, "req-123", resp.Error.RequestID)
	assert.Empty(t, resp.Error.Details)
}

func TestNewValidationErrorResponse(t *testing.T) {
	details := []ValidationDetail{
		{Field: "email", Message: "Invalid email format"},
		{Field: "password", Message: "Must be at least 8 characters"},
	}

	resp := NewValidationErrorResponse("Request validation failed", "req-456", details)

	assert.False(t, resp.Success)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-456", resp.Error.RequestID)
	assert.Len(t, resp.Error.Details, 2)
	assert.Equal(t, "email", resp.Error.Details[0].Field)
}

func TestNewSuccessResponseWithMeta_TotalPages(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]string{"a", "b"}, 45, 2, 20)

	assert.True(t, resp.Success)
	assert.Equal(t, int64(45), resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.Page)
	assert.Equal(t, 20, resp.Meta.PageSize)
	assert.Equal(t, 3, resp.Meta.TotalPages)
}
