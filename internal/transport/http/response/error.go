package response

import (
	"errors"
	"net/http"

	"github.com/baechuer/signup-service/internal/domain"
	"github.com/baechuer/signup-service/internal/logger"
)

// ErrorBody keeps "message" at the top level; browsers already built
// against this API read it directly.
type ErrorBody struct {
	Message   string            `json:"message"`
	Code      string            `json:"code,omitempty"`
	Detail    string            `json:"detail,omitempty"`
	Meta      map[string]string `json:"meta,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

const serverErrorMessage = "Server error"

// WriteError converts an error into a JSON HTTP error response.
// Every 5xx answers "Server error" with the cause as detail, and is logged.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	body := ErrorBody{
		Code:      "internal_error",
		RequestID: RequestIDFromContext(r),
	}

	var de *domain.Error
	if errors.As(err, &de) {
		status = statusFromKind(de.Kind)
		body.Code = de.Code
		body.Message = de.Message
		body.Meta = de.Meta
	}

	if status >= http.StatusInternalServerError {
		body.Message = serverErrorMessage
		body.Meta = nil
		body.Detail = detailOf(err)

		logger.Ctx(r.Context()).Error().
			Err(err).
			Str("code", body.Code).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
	}

	JSON(w, status, body)
}

// detailOf prefers the underlying cause so the client sees the real failure.
func detailOf(err error) string {
	var de *domain.Error
	if errors.As(err, &de) {
		if de.Cause != nil {
			return de.Cause.Error()
		}
		return de.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// statusFromKind maps domain error kinds to HTTP status codes.
func statusFromKind(kind domain.ErrKind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindRateLimited:
		return http.StatusTooManyRequests
	case domain.KindInfrastructure, domain.KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
