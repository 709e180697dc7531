// Package errs defines the error types returned to API clients.
//
// Every failure that reaches the HTTP boundary is (or is converted into)
// an *HTTPError. The Code field tags the kind of failure and Status carries
// the HTTP status it maps to, so handlers never pick status codes by hand.
package errs

import "strings"

// FieldError represents a field-level validation error.
//
//	{ "field": "title", "error": "must not exceed 20 characters" }
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// HTTPError is the error type understood by the global error handler.
//
//   - Code: machine-friendly kind tag (e.g. "VALIDATION_ERROR").
//   - Message: human-friendly message, sent to the client as-is.
//   - Status: HTTP status code.
//   - Override: whether the message is safe to show even for 5xx errors.
//   - Errors: per-field validation details (logged, not rendered).
type HTTPError struct {
	Code     string       `json:"code"`
	Message  string       `json:"message"`
	Status   int          `json:"status"`
	Override bool         `json:"override"`
	Errors   []FieldError `json:"errors"`
}

// Error makes *HTTPError satisfy the error interface.
func (e *HTTPError) Error() string {
	return e.Message
}

// Is reports whether target is an *HTTPError of the same kind.
//
// Two HTTPErrors match when their codes match, or when target carries no
// code at all, which lets callers write errors.Is(err, &errs.HTTPError{}).
func (e *HTTPError) Is(target error) bool {
	t, ok := target.(*HTTPError)
	if !ok {
		return false
	}
	return t.Code == "" || t.Code == e.Code
}

// WithMessage returns a copy of the error with Message replaced.
func (e *HTTPError) WithMessage(message string) *HTTPError {
	return &HTTPError{
		Code:     e.Code,
		Message:  message,
		Status:   e.Status,
		Override: e.Override,
		Errors:   e.Errors,
	}
}

// ErrorResponse is the body written for every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MakeUpperCaseWithUnderscores converts "Bad Request" into "BAD_REQUEST".
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
