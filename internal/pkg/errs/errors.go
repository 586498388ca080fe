// internal/pkg/errs/errors.go
package errs

import (
	"errors"
	"fmt"
)

// Sentinel errors for the business-rule taxonomy. Services wrap these with
// context via fmt.Errorf and %w; the HTTP layer maps them to status codes.
var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidState      = errors.New("invalid state")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrValidationFailed  = errors.New("validation failed")
	ErrLimitExceeded     = errors.New("limit exceeded")
	ErrExpired           = errors.New("expired")
)

// NotFoundf wraps ErrNotFound with a formatted message.
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

// Forbiddenf wraps ErrForbidden with a formatted message.
func Forbiddenf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrForbidden)...)
}

// InvalidStatef wraps ErrInvalidState with a formatted message.
func InvalidStatef(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalidState)...)
}

// Validationf wraps ErrValidationFailed with a formatted message.
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrValidationFailed)...)
}

// LimitExceededf wraps ErrLimitExceeded with a formatted message.
func LimitExceededf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrLimitExceeded)...)
}
