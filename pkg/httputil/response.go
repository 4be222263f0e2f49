// Package httputil writes the JSON envelope every endpoint responds with:
// {"data": ...} on success and {"error": {...}} on failure.
package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/ratemystudyspots/studyspots/pkg/errors"
	"github.com/ratemystudyspots/studyspots/pkg/logger"
	"github.com/ratemystudyspots/studyspots/pkg/validator"
)

// Response is the JSON envelope.
type Response struct {
	Data  any            `json:"data,omitempty"`
	Error *ErrorResponse `json:"error,omitempty"`
}

// ErrorResponse is the error half of the envelope. RequestID echoes the
// request's correlation id.
type ErrorResponse struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// WriteJSON encodes v with the given status. Encoding errors are dropped since
// the header has already gone out.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteErrorCode writes an error envelope tagged with the request's
// correlation id.
func WriteErrorCode(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	WriteJSON(w, status, Response{Error: &ErrorResponse{
		Code:      code,
		Message:   message,
		RequestID: logger.CorrelationIDFromContext(r.Context()),
	}})
}

// WriteError translates err into an error envelope. Server-side failures are
// logged with the request-scoped logger when RequestLogger is mounted, else
// with fallback.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	status, code, message := apperrors.Classify(err)

	if status >= http.StatusInternalServerError && status != http.StatusNotImplemented {
		l := logger.FromContext(r.Context())
		if l == slog.Default() && fallback != nil {
			l = fallback
		}
		l.ErrorContext(r.Context(), "request failed",
			slog.String("code", code),
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}

	WriteErrorCode(w, r, status, code, message)
}

// WriteValidationError answers 400 with the per-field failures of a
// validator error, or with err's text for a request that could not be
// decoded at all.
func WriteValidationError(w http.ResponseWriter, r *http.Request, err error) {
	resp := &ErrorResponse{
		Code:      "INVALID_INPUT",
		Message:   err.Error(),
		RequestID: logger.CorrelationIDFromContext(r.Context()),
	}
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		resp.Code = "VALIDATION_ERROR"
		resp.Message = "request validation failed"
		resp.Fields = valErr.Fields()
	}
	WriteJSON(w, http.StatusBadRequest, Response{Error: resp})
}
