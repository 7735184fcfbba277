package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// ErrIntegrity marks a collaborator contract violation, such as a stored
	// task reference that no longer resolves to a task record.
	ErrIntegrity = errors.New("data integrity fault")
)

// NotFound wraps ErrNotFound with the kind and id of the missing record.
func NotFound(kind, id string) error {
	return fmt.Errorf("%s with ID %s: %w", kind, id, ErrNotFound)
}

// ValidationError collects per-field messages, one message per field.
type ValidationError struct {
	Fields map[string]string `json:"errors"`
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
}

// OrNil returns nil when no field failed, so callers can return it directly.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func IsValidation(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}
