package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrKind is used to map domain errors to HTTP status codes consistently.
type ErrKind string

const (
	KindValidation       ErrKind = "validation"         // 400
	KindNotFound         ErrKind = "not_found"          // 404
	KindMethodNotAllowed ErrKind = "method_not_allowed" // 405
	KindConflict         ErrKind = "conflict"           // 409
	KindRateLimited      ErrKind = "rate_limited"       // 429
	KindInfrastructure   ErrKind = "infrastructure"     // 500
	KindInternal         ErrKind = "internal"           // 500
)

// Error is a structured domain error.
// - Kind: high-level category for HTTP mapping
// - Code: stable machine code
// - Message: client-facing summary
// - Meta: optional details (field, scope, etc.)
// - Cause: wrapped internal error, surfaced as "detail" on 5xx responses
type Error struct {
	Kind    ErrKind
	Code    string
	Message string
	Meta    map[string]string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Kind, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Kind, e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func New(kind ErrKind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

func Wrap(kind ErrKind, code, msg string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Message: msg, Cause: cause}
}

func WithMeta(err *Error, meta map[string]string) *Error {
	err.Meta = meta
	return err
}

func Is(err error, code string) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// ----------------------
// Validation errors (400)
// ----------------------

func ErrInvalidJSON(cause error) *Error {
	return Wrap(KindValidation, "invalid_json", "invalid JSON body", cause)
}

// ErrMissingFields reports every required registration field that was absent.
// The message is the one browsers already render for this form.
func ErrMissingFields(fields ...string) *Error {
	return WithMeta(New(KindValidation, "missing_field", "name, email and password are required"), map[string]string{
		"fields": strings.Join(fields, ","),
	})
}

func ErrInvalidField(field, reason string) *Error {
	return WithMeta(New(KindValidation, "invalid_field", field+" "+reason), map[string]string{
		"field":  field,
		"reason": reason,
	})
}

// ----------------------
// Routing (404 / 405)
// ----------------------

func ErrRouteNotFound(path string) *Error {
	return WithMeta(New(KindNotFound, "not_found", "Not found"), map[string]string{
		"path": path,
	})
}

func ErrMethodNotAllowed(method string) *Error {
	return WithMeta(New(KindMethodNotAllowed, "method_not_allowed", "Method not allowed"), map[string]string{
		"method": method,
	})
}

// ----------------------
// Conflict (409)
// ----------------------

func ErrEmailAlreadyExists() *Error {
	return New(KindConflict, "email_already_exists", "Email already registered")
}

// ----------------------
// Rate limit (429)
// ----------------------

func ErrRateLimited(scope string) *Error {
	return WithMeta(New(KindRateLimited, "rate_limited", "Too many requests"), map[string]string{
		"scope": scope,
	})
}

// ----------------------
// Infrastructure / internal (5xx)
// ----------------------

func ErrDBUnavailable(cause error) *Error {
	return Wrap(KindInfrastructure, "db_unavailable", "database unavailable", cause)
}

func ErrHashFailed(cause error) *Error {
	return Wrap(KindInternal, "hash_failed", "password hashing failed", cause)
}

func ErrInternal(cause error) *Error {
	return Wrap(KindInternal, "internal_error", "internal error", cause)
}
