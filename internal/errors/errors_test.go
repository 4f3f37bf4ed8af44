package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeValidation, http.StatusUnprocessableEntity},
		{CodeNotFound, http.StatusNotFound},
		{CodeBadRequest, http.StatusBadRequest},
		{CodeRateLimited, http.StatusTooManyRequests},
		{CodeStorage, http.StatusInternalServerError},
		{Code("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.HTTPStatus())
		})
	}
}

func TestError_IsMatchesByCode(t *testing.T) {
	err := Validation("Please provide a location.")

	assert.True(t, Is(err, ErrValidation))
	assert.False(t, Is(err, ErrNotFound))
	assert.True(t, IsValidation(fmt.Errorf("add event: %w", err)))
}

func TestError_WrapKeepsCause(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Storage(cause, "save events")

	assert.Equal(t, "save events: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, CodeStorage, CodeOf(err))
}

func TestError_WithDetails(t *testing.T) {
	base := Validation("Please select a date.")
	withDetails := base.WithDetails(map[string]string{"field": "date"})

	assert.Nil(t, base.Details)
	assert.Equal(t, map[string]string{"field": "date"}, withDetails.Details)
	assert.Equal(t, base.Message, withDetails.Message)
}

func TestCodeOf_PlainError(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(fmt.Errorf("boom")))
}
