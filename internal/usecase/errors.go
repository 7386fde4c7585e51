package usecase

import (
	"errors"
	"fmt"

	"phone-repair/pkg/utils"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

// ValidationError carries per-field messages and matches ErrValidation.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return e.Message + ": " + utils.FormatValidationErrors(e.Fields)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(message string, fields map[string]string) error {
	return &ValidationError{Message: message, Fields: fields}
}

func invalidf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// validate runs struct tag validation and returns a ValidationError on failure.
func validate(req any) error {
	if fields := utils.ValidateStruct(req); len(fields) > 0 {
		return invalid("validation failed", fields)
	}
	return nil
}
