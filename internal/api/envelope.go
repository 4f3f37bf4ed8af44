package api

import (
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	"github.com/eventboard/eventboard-server/internal/http/response"
)

// EnvelopeVersion is the schema version of every JSON body.
const EnvelopeVersion = response.Version

// EnvelopeTransformer wraps huma response bodies in the shared envelope.
// Success bodies go under "data"; errors become code, message and details.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	code, _ := strconv.Atoi(status)

	switch e := v.(type) {
	case response.Envelope:
		return e, nil
	case *APIError:
		return response.Fail(e.Code, e.Message, e.Details), nil
	case error:
		return response.Fail(string(statusToCode(code)), e.Error(), nil), nil
	}

	if code >= 400 {
		return response.Fail(string(statusToCode(code)), "", v), nil
	}
	return response.OK(v), nil
}
