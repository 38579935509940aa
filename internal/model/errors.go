package model

import (
	"fmt"
	"strings"
)

// FieldError is the one error shape fatal conditions use across config
// loading, spec ingestion, and the doctor: a field, why it's wrong, and
// (optionally) how to fix it.
type FieldError struct {
	File       string
	Field      string
	Reason     string
	Suggestion string
}

func (e *FieldError) Error() string {
	var sb strings.Builder
	if e.File != "" {
		sb.WriteString(e.File)
		sb.WriteString(": ")
	}
	if e.Field != "" {
		sb.WriteString(e.Field)
		sb.WriteString(": ")
	}
	sb.WriteString(e.Reason)
	if e.Suggestion != "" {
		sb.WriteString("\n  Hint: ")
		sb.WriteString(e.Suggestion)
	}
	return sb.String()
}

// NewFieldError creates a FieldError for the given field and reason.
func NewFieldError(field, reason string) *FieldError {
	return &FieldError{Field: field, Reason: reason}
}

func (e *FieldError) WithFile(file string) *FieldError {
	e.File = file
	return e
}

func (e *FieldError) WithSuggestion(s string) *FieldError {
	e.Suggestion = s
	return e
}

// Errorf builds a FieldError with a formatted reason.
func Errorf(field, format string, args ...interface{}) *FieldError {
	return &FieldError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
