package services

import (
	"fmt"
	"strings"
)

// ValidationError reports every violated field of a request at once, so a
// client can fix a whole form in one round trip instead of field by field.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Fields, "; "))
}

// NewValidationError builds a ValidationError from the collected messages.
func NewValidationError(fields ...string) *ValidationError {
	return &ValidationError{Fields: fields}
}
