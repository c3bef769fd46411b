package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates a referenced plan, task, request or user is absent.
	ErrNotFound = errors.New("not found")

	// ErrForbidden indicates the caller's role does not permit the action.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation indicates a required field is missing or malformed.
	ErrValidation = errors.New("validation failed")

	// ErrAuth is the parent of every identity provider failure.
	ErrAuth = errors.New("authentication failed")

	ErrInvalidCredential = fmt.Errorf("%w: invalid email or password", ErrAuth)
	ErrEmailInUse        = fmt.Errorf("%w: email already in use", ErrAuth)
	ErrWeakPassword      = fmt.Errorf("%w: password must be at least %d characters", ErrAuth, MinPasswordLen)
	ErrInvalidEmail      = fmt.Errorf("%w: invalid email address", ErrAuth)
	ErrNotSignedIn       = fmt.Errorf("%w: not signed in", ErrAuth)

	// ErrTransport indicates the backing store could not be reached.
	ErrTransport = errors.New("store unavailable")

	// ErrAlreadyApproved is returned when approving a request that is no longer pending.
	ErrAlreadyApproved = fmt.Errorf("%w: change request already approved", ErrValidation)
)

// MinPasswordLen is the shortest password the identity provider accepts.
const MinPasswordLen = 6

// Validationf builds an error that matches ErrValidation.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFoundf builds an error that matches ErrNotFound.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}

// Forbiddenf builds an error that matches ErrForbidden.
func Forbiddenf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrForbidden, fmt.Sprintf(format, args...))
}
