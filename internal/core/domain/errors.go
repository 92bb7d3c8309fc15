package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrQuoteNotFound = errors.New("quote not found")
	ErrForbidden     = errors.New("permission denied")
	ErrMissingScope  = errors.New("original draft missing scope of work")
	ErrGeneration    = errors.New("generation failed")
	ErrQuoteLimit    = errors.New("monthly quote limit reached")
	ErrTemporary     = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
