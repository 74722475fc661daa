package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents the category of a definition error
type ErrorType int

const (
	// ErrTypeRead indicates the definition file could not be read
	ErrTypeRead ErrorType = iota
	// ErrTypeParse indicates malformed YAML or TOML
	ErrTypeParse
	// ErrTypeFormat indicates an unsupported file extension
	ErrTypeFormat
	// ErrTypeSchema indicates the document does not match the definition schema
	ErrTypeSchema
	// ErrTypeValidation indicates a semantically invalid definition
	ErrTypeValidation
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeRead:
		return "Read Error"
	case ErrTypeParse:
		return "Parse Error"
	case ErrTypeFormat:
		return "Format Error"
	case ErrTypeSchema:
		return "Schema Error"
	case ErrTypeValidation:
		return "Validation Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// DefinitionError is returned for any problem loading or validating a
// wizard definition.
type DefinitionError struct {
	Type       ErrorType // Category of error
	File       string    // Definition file, empty for in-memory definitions
	Violations []string  // One entry per schema or validation failure
	Err        error     // Underlying error, if any
}

// Error implements the error interface
func (e *DefinitionError) Error() string {
	var b strings.Builder
	b.WriteString(strings.ToLower(e.Type.String()))
	if e.File != "" {
		b.WriteString(" in ")
		b.WriteString(e.File)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if len(e.Violations) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Violations, "; "))
	}
	return b.String()
}

// Unwrap returns the underlying error
func (e *DefinitionError) Unwrap() error {
	return e.Err
}

// IsValidationError reports whether err is a schema or semantic validation
// failure, as opposed to an I/O or parse failure.
func IsValidationError(err error) bool {
	var defErr *DefinitionError
	if errors.As(err, &defErr) {
		return defErr.Type == ErrTypeSchema || defErr.Type == ErrTypeValidation
	}
	return false
}

// Violations returns the violations carried by err, if any.
func Violations(err error) []string {
	var defErr *DefinitionError
	if errors.As(err, &defErr) {
		return defErr.Violations
	}
	return nil
}
