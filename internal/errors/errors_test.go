package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		category    ErrorCategory
		httpStatus  int
		messagePart string
	}{
		{
			name:        "validation error",
			err:         NewValidationError("invalid change request", "change_id is required"),
			category:    CategoryValidation,
			httpStatus:  http.StatusBadRequest,
			messagePart: "VALIDATION_ERROR",
		},
		{
			name:        "graph load error",
			err:         NewGraphLoadError("self-loop detected", nil),
			category:    CategoryGraphLoad,
			httpStatus:  http.StatusInternalServerError,
			messagePart: "GRAPH_LOAD_ERROR",
		},
		{
			name:        "assessment error",
			err:         NewAssessmentError("dependency graph is not loaded", nil),
			category:    CategoryAssessment,
			httpStatus:  http.StatusServiceUnavailable,
			messagePart: "ASSESSMENT_ERROR",
		},
		{
			name:        "timeout error",
			err:         NewTimeoutError("request timed out", errors.New("deadline exceeded")),
			category:    CategoryTimeout,
			httpStatus:  http.StatusGatewayTimeout,
			messagePart: "TIMEOUT_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.category, tt.err.Category)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
			assert.Contains(t, tt.err.Error(), tt.messagePart)
			assert.False(t, tt.err.Timestamp.IsZero())
		})
	}
}

func TestIsGraphLoadError(t *testing.T) {
	graphErr := NewGraphLoadError("malformed dependency source", nil)

	assert.True(t, IsGraphLoadError(graphErr))
	assert.True(t, IsGraphLoadError(fmt.Errorf("startup failed: %w", graphErr)))
	assert.False(t, IsGraphLoadError(NewValidationError("bad input")))
	assert.False(t, IsGraphLoadError(errors.New("plain error")))
	assert.False(t, IsGraphLoadError(nil))
}

func TestToAppError(t *testing.T) {
	appErr := NewAssessmentError("graph unavailable", nil)
	assert.Same(t, appErr, ToAppError(appErr))

	converted := ToAppError(errors.New("connection timeout"))
	assert.Equal(t, CategoryTimeout, converted.Category)

	internal := ToAppError(errors.New("something broke"))
	assert.Equal(t, CategoryInternal, internal.Category)
	assert.Equal(t, http.StatusInternalServerError, internal.HTTPStatus)

	assert.Nil(t, ToAppError(nil))
}
