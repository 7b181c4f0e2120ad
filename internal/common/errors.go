// Package common defines sentinel errors shared by the repositories, the
// services and the HTTP boundary. Callers should use errors.Is to match them.
package common

import (
	"errors"
	"strings"
)

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrAlreadyExists   = errors.New("already exists")
	ErrorInternal      = errors.New("internal error")
	ErrInvalidToken    = errors.New("invalid token")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")

	// A transaction kept losing races with concurrent writers. Safe to retry.
	ErrConflict = errors.New("conflicting concurrent update, try again")

	// Login failures. Unknown account and wrong password are reported the same way.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Administrator invariant.
	ErrInvariantViolation  = errors.New("cannot remove the last administrator")
	ErrUseSelfServiceRoute = errors.New("administrators must delete their own account through the self-service route")
	ErrAlreadyAdmin        = errors.New("user is already admin")
	ErrNotAdmin            = errors.New("user is not an admin")

	// Resource linking.
	ErrAlreadyLinked         = errors.New("job already exists and has a rating for user")
	ErrIDNotAllowedForCreate = errors.New("job id is not allowed for new job")
)

// ValidationError carries every policy problem found in a request so the
// client can fix them in one round trip.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Problems, "; ")
}

// NewValidationError returns nil when there is nothing to report.
func NewValidationError(problems ...string) error {
	if len(problems) == 0 {
		return nil
	}
	return &ValidationError{Problems: problems}
}
