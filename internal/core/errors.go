package core

import (
	"errors"
	"fmt"
)

// ValidationError marks malformed input: missing fields, inconsistent split
// totals, out-of-range percentages, non-positive amounts. The HTTP boundary
// maps it to 400.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

// NewValidationError creates a ValidationError with a formatted message.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// NotFoundError marks an unresolvable reference (unknown user email) or an
// empty query result. The HTTP boundary maps it to 404.
type NotFoundError struct {
	msg string
}

func (e *NotFoundError) Error() string { return e.msg }

// NewNotFoundError creates a NotFoundError with a formatted message.
func NewNotFoundError(format string, args ...any) *NotFoundError {
	return &NotFoundError{msg: fmt.Sprintf(format, args...)}
}

var (
	ErrEmptyDescription  = NewValidationError("description is required")
	ErrInvalidAmount     = NewValidationError("amount must be greater than zero")
	ErrNoParticipants    = NewValidationError("participants must be a non-empty list")
	ErrMissingOwedAmount = NewValidationError("each participant needs an amountOwed for exact splits")
	ErrMissingPercentage = NewValidationError("each participant needs a percentage for percentage splits")
)

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nfe *NotFoundError
	return errors.As(err, &nfe)
}
