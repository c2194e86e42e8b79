package domain

import (
	"errors"
	"fmt"
)

var (
	ErrVerificationNotFound = errors.New("verification not found")
	ErrInvalidInput         = errors.New("invalid input")
	ErrTemporary            = errors.New("temporary failure")
	ErrConflict             = errors.New("conflicting state")

	ErrDocumentOpen         = errors.New("document cannot be opened")
	ErrRender               = errors.New("page rendering failed")
	ErrInferenceUnavailable = errors.New("inference service unavailable")
	ErrUnknownDocumentType  = errors.New("unknown document type")
	ErrCancelled            = errors.New("verification cancelled")
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
