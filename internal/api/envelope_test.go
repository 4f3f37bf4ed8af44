package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/eventboard/eventboard-server/internal/errors"
	"github.com/eventboard/eventboard-server/internal/http/response"
	"github.com/eventboard/eventboard-server/internal/store"
)

func TestEnvelopeTransformer_AlwaysIncludesVersion(t *testing.T) {
	tests := []struct {
		name   string
		status string
		input  any
	}{
		{name: "success response", status: "200", input: map[string]string{"key": "value"}},
		{name: "created response", status: "201", input: map[string]int{"id": 6}},
		{name: "no content response", status: "204", input: nil},
		{name: "plain error", status: "400", input: errors.New("invalid input")},
		{name: "api error", status: "422", input: &APIError{Code: "VALIDATION_ERROR", Message: "Please select a date."}},
		{name: "internal error", status: "500", input: errors.New("internal error")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := EnvelopeTransformer(nil, tt.status, tt.input)
			require.NoError(t, err)

			jsonBytes, err := json.Marshal(result)
			require.NoError(t, err)

			var envelope map[string]any
			require.NoError(t, json.Unmarshal(jsonBytes, &envelope))

			require.Contains(t, envelope, "v", "Envelope must contain version field 'v'")
			assert.Equal(t, float64(EnvelopeVersion), envelope["v"])
		})
	}
}

func TestEnvelopeTransformer_SuccessResponse(t *testing.T) {
	data := map[string]string{"name": "Farmers Market"}

	result, err := EnvelopeTransformer(nil, "200", data)
	require.NoError(t, err)

	envelope, ok := result.(response.Envelope)
	require.True(t, ok, "Expected response.Envelope")
	assert.True(t, envelope.Success)
	assert.Equal(t, data, envelope.Data)
	assert.Empty(t, envelope.Code)
}

func TestEnvelopeTransformer_ErrorWithDetails(t *testing.T) {
	apiErr := &APIError{
		Code:    "VALIDATION_ERROR",
		Message: "Please provide a location.",
		Details: map[string]string{"field": "location"},
	}

	result, err := EnvelopeTransformer(nil, "422", apiErr)
	require.NoError(t, err)

	envelope, ok := result.(response.Envelope)
	require.True(t, ok)
	assert.False(t, envelope.Success)
	assert.Nil(t, envelope.Data)
	assert.Equal(t, "VALIDATION_ERROR", envelope.Code)
	assert.Equal(t, "Please provide a location.", envelope.Message)
	assert.Equal(t, map[string]string{"field": "location"}, envelope.Details)
}

func TestEnvelopeTransformer_PlainErrorUsesStatusCode(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "404", errors.New("gone"))
	require.NoError(t, err)

	envelope := result.(response.Envelope)
	assert.Equal(t, "NOT_FOUND", envelope.Code)
	assert.Equal(t, "gone", envelope.Message)
}

func TestStatusToCode(t *testing.T) {
	tests := []struct {
		status int
		want   domainerrors.Code
	}{
		{http.StatusBadRequest, domainerrors.CodeBadRequest},
		{http.StatusNotFound, domainerrors.CodeNotFound},
		{http.StatusMethodNotAllowed, domainerrors.CodeBadRequest},
		{http.StatusUnprocessableEntity, domainerrors.CodeValidation},
		{http.StatusTooManyRequests, domainerrors.CodeRateLimited},
		{http.StatusInternalServerError, domainerrors.CodeInternal},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, statusToCode(tt.status), "status %d", tt.status)
	}
}

func TestToAPIError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", domainerrors.Validation("Please select a date."), http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"not found", domainerrors.NotFoundf("event %d not found", 8), http.StatusNotFound, "NOT_FOUND"},
		{"store not found", store.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"store write", store.ErrStorageWrite, http.StatusInternalServerError, "STORAGE_ERROR"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var se huma.StatusError
			require.True(t, errors.As(toAPIError(tt.err), &se))
			assert.Equal(t, tt.status, se.GetStatus())
			apiErr := se.(*APIError)
			assert.Equal(t, tt.code, apiErr.Code)
		})
	}

	assert.NoError(t, toAPIError(nil))
}

func TestRegisterErrorHandler_MapsDomainErrors(t *testing.T) {
	RegisterErrorHandler()

	se := huma.NewError(http.StatusInternalServerError, "wrapped", domainerrors.NotFound("event 3 not found"))
	assert.Equal(t, http.StatusNotFound, se.GetStatus())
	assert.Equal(t, "event 3 not found", se.(*APIError).Message)

	plain := huma.NewError(http.StatusUnprocessableEntity, "validation failed", &huma.ErrorDetail{
		Location: "query.limit", Message: "expected number <= 100", Value: 500,
	})
	apiErr := plain.(*APIError)
	assert.Equal(t, "VALIDATION_ERROR", apiErr.Code)
	assert.Equal(t, "validation failed", apiErr.Message)
	assert.NotNil(t, apiErr.Details)
}
