package domain

import "errors"

// Domain errors. The messages are the exact strings the web client matches
// on, so they are user-facing and deliberately capitalized.
var (
	ErrDuplicateEmail     = errors.New("Email already registered")
	ErrMissingField       = errors.New("Username is required")
	ErrInvalidCredentials = errors.New("Invalid email or password")
	ErrInvalidInput       = errors.New("invalid score or mode")
	ErrNotFound           = errors.New("not found")
	ErrInternal           = errors.New("internal server error")
)

// IsDomainError reports whether an error belongs to the recoverable taxonomy
// surfaced to clients as success:false rather than a transport failure.
func IsDomainError(err error) bool {
	return errors.Is(err, ErrDuplicateEmail) ||
		errors.Is(err, ErrMissingField) ||
		errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrInvalidInput)
}
