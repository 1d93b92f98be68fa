package core

import (
	"errors"
	"fmt"

	"grantmatch-backend-go/internal/db"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrDuplicate          = errors.New("already exists")
	ErrAccessDenied       = errors.New("access denied")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
)

func validationErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// repoError maps repository sentinels onto the service ones. Errors returned
// from inside a mutate callback pass through unchanged.
func repoError(err error, what string) error {
	switch {
	case errors.Is(err, db.ErrNotFound):
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	case errors.Is(err, db.ErrDuplicate):
		return fmt.Errorf("%s: %w", what, ErrDuplicate)
	case errors.Is(err, ErrValidation), errors.Is(err, ErrAccessDenied):
		return err
	default:
		return fmt.Errorf("failed to access %s: %w", what, err)
	}
}
