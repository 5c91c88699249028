package dsl

import (
	"errors"
	"fmt"
)

// ErrUnknownField classifies fields the resolver could not map to a column.
var ErrUnknownField = errors.New("unknown field")

// UnknownFieldError reports the field that could not be resolved.
type UnknownFieldError struct {
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnknownField, e.Field)
}

func (e *UnknownFieldError) Unwrap() error {
	return ErrUnknownField
}
