package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("restaurant not found")

	// ErrDuplicateSubmission: a record with the same (name, address) is
	// already on file, whatever its status.
	ErrDuplicateSubmission = errors.New("restaurant already submitted")

	// ErrInvalidReviewState covers both "no such record" and "already
	// reviewed"; the two are deliberately not distinguished.
	ErrInvalidReviewState = errors.New("restaurant not found or not in pending status")

	// ErrInvalidCredentials carries a single generic message regardless of
	// which of username/password was wrong.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// ValidationError marks malformed input on a specific field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
