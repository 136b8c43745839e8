package core

import (
	"errors"
	"fmt"
)

// Sentinel errors, matched with errors.Is.
var (
	// ErrValidation reports a failed structural precondition.
	ErrValidation = errors.New("validation error")
	// ErrNoModel is returned when a program has no stable model.
	ErrNoModel = errors.New("no model")
	// ErrMultipleModels is returned when a program has more than one
	// (optimal) stable model.
	ErrMultipleModels = errors.New("multiple models")
)

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
