package auth

import (
	"fmt"

	"github.com/go-faster/errors"
)

// ErrAuthTimeout sygnalizuje wyczerpanie budżetu odpytywania o wynik
// uwierzytelnienia. Recovery is the same as for AuthError: the next
// GetCredential call retries renewal from scratch.
var ErrAuthTimeout = errors.New("authentication confirmation timed out")

// AuthError marks a failed renewal step. The previous (expired) credential
// stays in place and the next caller retries.
type AuthError struct {
	Op  string
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed at %s: %v", e.Op, e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}
