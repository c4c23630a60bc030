package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type createProductRequest struct {
	Name  string `json:"name" binding:"required,min=3"`
	Email string `json:"email" binding:"required,email"`
	Stock int    `json:"stock" binding:"gte=0"`
}

func validationRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	SetupValidator()

	router := gin.New()
	router.POST("/products", func(c *gin.Context) {
		var req createProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router
}

func TestSetupValidator_UsesJSONFieldNames(t *testing.T) {
	router := validationRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(`{"name":"ab","email":"bad"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	// Field names come from the json tags, not the Go struct fields.
	assert.Contains(t, w.Body.String(), `"name"`)
	assert.Contains(t, w.Body.String(), `"email"`)
	assert.NotContains(t, w.Body.String(), `"Name"`)
}

func TestHandleValidationError_ValidRequest(t *testing.T) {
	router := validationRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(`{"name":"mug","email":"shop@example.com","stock":5}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestFormatValidationErrors_NonValidatorError(t *testing.T) {
	resp := FormatValidationErrors(assert.AnError, "req-1")

	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Empty(t, resp.Error.Details)
}

func TestFieldErrorMessages(t *testing.T) {
	type form struct {
		Required string `validate:"required"`
		Email    string `validate:"omitempty,email"`
		Min      string `validate:"omitempty,min=5"`
		MinNum   int    `validate:"omitempty,min=5"`
		Max      string `validate:"omitempty,max=3"`
		Len      string `validate:"omitempty,len=4"`
		UUID     string `validate:"omitempty,uuid"`
		OneOf    string `validate:"omitempty,oneof=draft published"`
		GTE      int    `validate:"omitempty,gte=10"`
		LT       int    `validate:"lt=1000"`
		Custom   string `validate:"omitempty,alphanum"`
	}

	v := validator.New()
	err := v.Struct(form{
		Email:  "nope",
		Min:    "ab",
		MinNum: 2,
		Max:    "long",
		Len:    "ab",
		UUID:   "nope",
		OneOf:  "archived",
		GTE:    3,
		LT:     5000,
		Custom: "no spaces!",
	})
	require.Error(t, err)

	want := map[string]string{
		"Required": "This field is required",
		"Email":    "Invalid email format",
		"Min":      "Must be at least 5 characters",
		"MinNum":   "Must be at least 5",
		"Max":      "Must be at most 3 characters",
		"Len":      "Must be exactly 4 characters",
		"UUID":     "Invalid UUID format",
		"OneOf":    "Must be one of: draft published",
		"GTE":      "Must be greater than or equal to 10",
		"LT":       "Must be less than 1000",
		"Custom":   "Must be alphanumeric",
	}

	verrs := err.(validator.ValidationErrors)
	require.Len(t, verrs, len(want))
	for _, fe := range verrs {
		assert.Equal(t, want[fe.Field()], fieldErrorMessage(fe), "field %s", fe.Field())
	}
}

func TestHandleValidationError_IncludesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	SetupValidator()

	router := gin.New()
	router.Use(RequestID())
	router.POST("/products", func(c *gin.Context) {
		var req createProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", "req-777")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "req-777")
}
