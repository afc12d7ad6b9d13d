package domain

import (
	"errors"
	"strings"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrConflict        = errors.New("record already exists")
	ErrInvalidDocument = errors.New("invalid import document")
)

// ValidationError reports request fields that failed validation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid fields: " + strings.Join(e.Fields, ", ")
}

func NewValidationError(fields ...string) error {
	return &ValidationError{Fields: fields}
}
