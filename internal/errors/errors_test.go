package errors

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestToAppErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		category ErrorCategory
		status   int
	}{
		{"already app error passes through", NewValidationError("bad input"), CategoryValidation, http.StatusBadRequest},
		{"deadline", context.DeadlineExceeded, CategoryTransientTool, http.StatusGatewayTimeout},
		{"missing file", fmt.Errorf("open x: no such file or directory"), CategoryMissingInput, http.StatusUnprocessableEntity},
		{"connection refused", fmt.Errorf("dial tcp: connection refused"), CategoryTransientTool, http.StatusBadGateway},
		{"unknown", fmt.Errorf("boom"), CategoryInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := ToAppError(tt.err)
			assert.Equal(t, tt.category, appErr.Category)
			assert.Equal(t, tt.status, appErr.HTTPStatus)
		})
	}
}

func TestToAppErrorNil(t *testing.T) {
	assert.Nil(t, ToAppError(nil))
}

func TestAppErrorMessage(t *testing.T) {
	err := NewMissingInputError("test file not found", "check the tests directory")
	assert.Contains(t, err.Error(), "MISSING_INPUT")
	assert.Contains(t, err.Error(), "test file not found")
	assert.Equal(t, "check the tests directory", err.Hint)
}

func TestErrorHandlerMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/boom", func(c *gin.Context) {
		c.Error(NewMissingInputError("artifact missing", "run a review"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "artifact missing")
	assert.Contains(t, w.Body.String(), "run a review")
}

func TestRecoveryHandlerMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RecoveryHandler())
	r.GET("/panic", func(c *gin.Context) {
		panic("unexpected")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "panic recovered")
}
