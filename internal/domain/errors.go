package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors for errors.Is() checking.
var (
	ErrNotFound      = errors.New("not found")
	ErrValidation    = errors.New("validation error")
	ErrForbidden     = errors.New("forbidden")
	ErrUnavailable   = errors.New("unavailable")
	ErrInvalidEntity = errors.New("invalid entity")
)

// MsgRequired is the field message used when a required value is absent or blank.
const MsgRequired = "is required"

// ValidationError provides programmatic access to field-level validation failures.
// Use errors.Is(err, ErrValidation) for simple checks, or errors.As(err, &verr) to
// access verr.Fields for per-field error details.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		keys = append(keys, field)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, field := range keys {
		parts = append(parts, field+": "+e.Fields[field])
	}
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
