package domain

import "fmt"

// ValidationCode classifies why model output was rejected.
type ValidationCode string

// Validation codes.
const (
	CodeMalformedJSON ValidationCode = "MALFORMED_JSON"
	CodeMissingStore  ValidationCode = "MISSING_STORE"
	CodeInvalidTotal  ValidationCode = "INVALID_TOTAL"
	CodeInvalidDate   ValidationCode = "INVALID_DATE"
	CodeInvalidItems  ValidationCode = "INVALID_ITEMS"
	CodeInvalidItem   ValidationCode = "INVALID_ITEM"
)

// ValidationError reports a shape or required-field violation in model output.
type ValidationError struct {
	Code    ValidationCode
	Field   string
	Message string
}

// NewValidationError builds a ValidationError.
func NewValidationError(code ValidationCode, field, format string, args ...any) *ValidationError {
	return &ValidationError{
		Code:    code,
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}

// Error implements error.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s (%s): %s", e.Code, e.Field, e.Message)
}

// Is makes every ValidationError match ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
