package api

import (
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/eventboard/eventboard-server/internal/errors"
	"github.com/eventboard/eventboard-server/internal/store"
)

// APIError is a custom error type that implements huma.StatusError.
// It maps domain errors to HTTP responses with consistent structure.
type APIError struct { //nolint:revive // API prefix is intentional for clarity
	status  int
	Code    string `json:"code" doc:"Machine-readable error code"`
	Message string `json:"message" doc:"Human-readable error message"`
	Details any    `json:"details,omitempty" doc:"Additional error details"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int {
	return e.status
}

// ContentType returns the content type for the error response.
func (e *APIError) ContentType(_ string) string {
	return "application/json"
}

// RegisterErrorHandler configures huma to use domain errors.
// Call this after creating the huma.API but before registering routes.
func RegisterErrorHandler() {
	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		var details []map[string]any
		for _, err := range errs {
			if apiErr := fromError(err); apiErr != nil {
				return apiErr
			}

			// Request validation failures from huma itself.
			var detail *huma.ErrorDetail
			if errors.As(err, &detail) {
				details = append(details, map[string]any{
					"location": detail.Location,
					"message":  detail.Message,
					"value":    detail.Value,
				})
			}
		}

		apiErr := &APIError{
			status:  status,
			Code:    string(statusToCode(status)),
			Message: message,
		}
		if len(details) > 0 {
			apiErr.Details = details
		}
		return apiErr
	}
}

// toAPIError converts err for return from a huma handler.
func toAPIError(err error) error {
	if err == nil {
		return nil
	}
	if apiErr := fromError(err); apiErr != nil {
		return apiErr
	}
	return &APIError{
		status:  http.StatusInternalServerError,
		Code:    string(domainerrors.CodeInternal),
		Message: "internal server error",
	}
}

// fromError maps domain and store errors, or returns nil for anything else.
func fromError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		return &APIError{
			status:  domainErr.HTTPStatus(),
			Code:    string(domainErr.Code),
			Message: domainErr.Message,
			Details: domainErr.Details,
		}
	}

	var storeErr *store.Error
	if errors.As(err, &storeErr) {
		code := domainerrors.CodeStorage
		if storeErr.HTTPCode() == http.StatusNotFound {
			code = domainerrors.CodeNotFound
		}
		return &APIError{
			status:  storeErr.HTTPCode(),
			Code:    string(code),
			Message: storeErr.Message,
		}
	}

	return nil
}

// statusToCode maps HTTP status codes to our domain error codes.
func statusToCode(status int) domainerrors.Code {
	switch status {
	case http.StatusNotFound:
		return domainerrors.CodeNotFound
	case http.StatusUnprocessableEntity:
		return domainerrors.CodeValidation
	case http.StatusTooManyRequests:
		return domainerrors.CodeRateLimited
	}
	if status >= 400 && status < 500 {
		return domainerrors.CodeBadRequest
	}
	return domainerrors.CodeInternal
}
