package errs

import (
	"errors"
	"fmt"
)

// Sentinel errors for conditions handlers translate into HTTP statuses.
var (
	// ErrNotFound signals that a referenced user, cart or order is absent.
	ErrNotFound = errors.New("not found")

	// ErrConflict signals a uniqueness violation, e.g. a duplicate email at signup.
	ErrConflict = errors.New("already exists")

	// ErrEmptyCart signals an order attempted with no line items.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrInvalidOrExpiredCode signals an OTP mismatch or a code past its expiry.
	ErrInvalidOrExpiredCode = errors.New("invalid or expired code")

	// ErrRateLimited signals that reset-code issuance was throttled for an account.
	ErrRateLimited = errors.New("too many requests")
)

// ValidationError reports a missing or malformed required field. It is
// always raised before any state is mutated.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

// Validation builds a ValidationError for the named field.
func Validation(field string) error {
	return &ValidationError{Field: field}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// StorageError wraps a persistence-layer failure so callers can distinguish
// transient storage trouble from domain conditions.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Storage wraps err as a StorageError for the given operation. Returns nil
// when err is nil.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}
