package models

import (
	"errors"
	"fmt"
)

// ErrMissingField is matched by every MissingFieldError via errors.Is.
var ErrMissingField = errors.New("missing required field")

// MissingFieldError reports a stored record that lacks a required attribute.
type MissingFieldError struct {
	Entity string
	Field  string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s record: missing required field %q", e.Entity, e.Field)
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

// requireFields returns the first field absent from rec (or explicitly null).
func requireFields(entity string, rec map[string]any, fields ...string) error {
	for _, f := range fields {
		if v, ok := rec[f]; !ok || v == nil {
			return &MissingFieldError{Entity: entity, Field: f}
		}
	}
	return nil
}
