package errs

import (
	"net/http"
	"strings"
)

// Kind tags used in HTTPError.Code.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeBusinessRule = "BUSINESS_RULE_VIOLATION"
	CodeMalformed    = "MALFORMED_INPUT"
)

// NewBadRequestError creates a 400 Bad Request HTTPError.
//
// code is optional; when nil it defaults to "BAD_REQUEST".
func NewBadRequestError(message string, override bool, code *string, errors []FieldError) *HTTPError {
	formattedCode := MakeUpperCaseWithUnderscores(http.StatusText(http.StatusBadRequest))
	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Code:     formattedCode,
		Message:  message,
		Status:   http.StatusBadRequest,
		Override: override,
		Errors:   errors,
	}
}

// NewNotFoundError creates a 404 Not Found HTTPError.
func NewNotFoundError(message string, override bool, code *string) *HTTPError {
	formattedCode := MakeUpperCaseWithUnderscores(http.StatusText(http.StatusNotFound))
	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Code:     formattedCode,
		Message:  message,
		Status:   http.StatusNotFound,
		Override: override,
	}
}

// NewInternalServerError creates a 500 with the generic status text.
// The real cause is logged by the error handler, never sent to clients.
func NewInternalServerError() *HTTPError {
	return &HTTPError{
		Code:     MakeUpperCaseWithUnderscores(http.StatusText(http.StatusInternalServerError)),
		Message:  http.StatusText(http.StatusInternalServerError),
		Status:   http.StatusInternalServerError,
		Override: false,
	}
}

// NewValidationError creates a 400 for a field that violates a format,
// length or non-blank constraint. The message lists every field error:
//
//	Validation failed: title must not exceed 20 characters
func NewValidationError(fieldErrors []FieldError) *HTTPError {
	parts := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		parts = append(parts, fe.Field+" "+fe.Error)
	}

	message := "Validation failed"
	if len(parts) > 0 {
		message += ": " + strings.Join(parts, "; ")
	}

	code := CodeValidation
	return NewBadRequestError(message, true, &code, fieldErrors)
}

// NewBusinessRuleError creates a 400 for a request that is well-formed but
// rejected by a domain rule.
func NewBusinessRuleError(message string) *HTTPError {
	code := CodeBusinessRule
	return NewBadRequestError(message, true, &code, nil)
}

// NewMalformedInputError creates a 400 for input that could not be parsed
// at all (bad JSON, wrong types, unparseable UUID).
func NewMalformedInputError(message string) *HTTPError {
	code := CodeMalformed
	return NewBadRequestError(message, true, &code, nil)
}
