package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"finboard/internal/core"
	"finboard/internal/middleware/trace"
)

// JSONResponse builds a JSON reply with a fluent API.
type JSONResponse struct {
	statusCode int
	payload    any
	headers    map[string]string
}

func NewJSONResponse() *JSONResponse {
	return &JSONResponse{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponse) Status(code int) *JSONResponse {
	b.statusCode = code
	return b
}

func (b *JSONResponse) Header(name, value string) *JSONResponse {
	b.headers[name] = value
	return b
}

// Body sets the value encoded as the response body.
func (b *JSONResponse) Body(v any) *JSONResponse {
	b.payload = v
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponse) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	if b.payload != nil {
		_ = json.NewEncoder(w).Encode(b.payload)
	}
}

type errorBody struct {
	Error     string `json:"error"`
	Field     string `json:"field,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse creates a JSON error reply carrying the request id.
func ErrorResponse(r *http.Request, statusCode int, message string) *JSONResponse {
	return NewJSONResponse().
		Status(statusCode).
		Body(errorBody{Error: message, RequestID: trace.GetRequestID(r.Context())})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var fe *fieldError
	switch {
	case errors.As(err, &fe), errors.Is(err, errBadBody):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrMutationInFlight):
		return http.StatusConflict
	case errors.Is(err, core.ErrMutationFailed), errors.Is(err, core.ErrFetchFailed):
		return http.StatusBadGateway
	case errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrEmptyCategory),
		errors.Is(err, core.ErrDescriptionLength):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// errorFor renders err with its mapped status. Remote failure details stay
// in the logs; clients get a generic message.
func errorFor(r *http.Request, err error) *JSONResponse {
	status := statusFor(err)
	body := errorBody{Error: err.Error(), RequestID: trace.GetRequestID(r.Context())}

	var fe *fieldError
	if errors.As(err, &fe) {
		body.Field = fe.Field
		body.Error = fe.Err.Error()
	}
	switch status {
	case http.StatusBadGateway:
		body.Error = "remote store unavailable, changes were not saved"
		if errors.Is(err, core.ErrFetchFailed) {
			body.Error = "remote store unavailable, showing last loaded data"
		}
	case http.StatusNotFound:
		body.Error = "transaction not found"
	case http.StatusInternalServerError:
		body.Error = "internal error"
	}
	return NewJSONResponse().Status(status).Body(body)
}
