package types

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrEntryNotFound = errors.New("entry not found")
	ErrUnauthorized  = errors.New("anonymous actors cannot perform this action")
	ErrForbidden     = errors.New("actor is not allowed to modify this entry")
	ErrBadRequest    = errors.New("bad request")
	ErrVoteConflict  = errors.New("concurrent vote on the same entry")
	ErrUnknownKind   = errors.New("unknown entry kind")
)

// FieldErrors maps a form field name to the messages describing what is wrong with it.
type FieldErrors map[string][]string

// Add appends a message for the given field.
func (f FieldErrors) Add(field, message string) {
	f[field] = append(f[field], message)
}

// ValidationError reports invalid input. No mutation happens when it is returned.
type ValidationError struct {
	Fields FieldErrors
}

// NewValidationError creates a validation error with a single field message.
func NewValidationError(field, message string) *ValidationError {
	fields := make(FieldErrors)
	fields.Add(field, message)
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+strings.Join(e.Fields[name], ", "))
	}

	return "validation failed: " + strings.Join(parts, "; ")
}
