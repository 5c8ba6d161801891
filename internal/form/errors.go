package form

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes extraction errors
type ErrorKind int

const (
	// ErrorKindInput marks an undecodable or empty source raster. Fatal for
	// the document; batch callers record it and continue with the rest.
	ErrorKindInput ErrorKind = iota
	// ErrorKindSchema marks a field declaration the engine cannot use. Fatal
	// for that field only; the remaining fields are still extracted.
	ErrorKindSchema
)

// ExtractionError is a typed error raised by the normalizer or region mapper.
// Ambiguous marks are NOT errors; they surface as low-confidence results.
type ExtractionError struct {
	Kind    ErrorKind
	Field   string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ExtractionError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] field %s: %s", e.Kind.String(), e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Kind.String(), e.Message)
}

// Unwrap exposes the wrapped cause
func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// String returns a string representation of the ErrorKind
func (k ErrorKind) String() string {
	switch k {
	case ErrorKindInput:
		return "INPUT_ERROR"
	case ErrorKindSchema:
		return "SCHEMA_ERROR"
	default:
		return "UNKNOWN"
	}
}

// NewInputError creates a document-fatal input error
func NewInputError(message string, err error) *ExtractionError {
	return &ExtractionError{Kind: ErrorKindInput, Message: message, Err: err}
}

// NewSchemaError creates a field-fatal schema error
func NewSchemaError(field, message string) *ExtractionError {
	return &ExtractionError{Kind: ErrorKindSchema, Field: field, Message: message}
}

// IsInputError reports whether err is a document-fatal input error
func IsInputError(err error) bool {
	var ee *ExtractionError
	return errors.As(err, &ee) && ee.Kind == ErrorKindInput
}

// IsSchemaError reports whether err is a field-fatal schema error
func IsSchemaError(err error) bool {
	var ee *ExtractionError
	return errors.As(err, &ee) && ee.Kind == ErrorKindSchema
}
