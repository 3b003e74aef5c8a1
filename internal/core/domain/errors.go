package domain

import "errors"

// Failure taxonomy shared by every layer. Adapters wrap these with detail
// using fmt.Errorf("...: %w", ErrX); callers match with errors.Is.
var (
	ErrMissingCredential     = errors.New("missing credential")
	ErrInvalidCredentials    = errors.New("invalid username or password")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	ErrForbidden             = errors.New("access forbidden")
	ErrNotFound              = errors.New("not found")
	ErrConflict              = errors.New("conflict")
	ErrInvalidOperation      = errors.New("invalid operation")
	ErrValidationFailed      = errors.New("validation failed")
	ErrUnavailable           = errors.New("service unavailable")
)

// ValidationError carries a client-facing message for malformed input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Is makes a ValidationError match ErrValidationFailed.
func (e *ValidationError) Is(target error) bool { return target == ErrValidationFailed }

// Invalid builds a ValidationError.
func Invalid(msg string) error {
	return &ValidationError{Msg: msg}
}
