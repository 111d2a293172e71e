package service

import (
	"errors"
	"fmt"

	"github.com/stemsi/sei-backend/internal/repository"
)

var (
	// ErrValidation marks malformed input. Nothing is persisted when it is returned.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is the repository sentinel, re-exported so handlers only
	// depend on this package.
	ErrNotFound = repository.ErrNotFound
	// ErrDuplicateID is returned when creating a record whose id is taken.
	ErrDuplicateID = repository.ErrDuplicateID
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func notFound(entity, id string) error {
	return fmt.Errorf("%s %q: %w", entity, id, ErrNotFound)
}

func checkRange(field string, v, lo, hi int) error {
	if v < lo || v > hi {
		return validationError("%s must be between %d and %d, got %d", field, lo, hi, v)
	}
	return nil
}

func checkNonNegative(field string, v int) error {
	if v < 0 {
		return validationError("%s must not be negative, got %d", field, v)
	}
	return nil
}
