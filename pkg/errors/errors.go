package errors

import (
	"errors"
	"fmt"
	"time"
)

// NotFoundError reports a missing theme, template, component, preview, or
// history version.
type NotFoundError struct {
	Kind string
	ID   string
	Err  error
}

// NewNotFoundError constructs a NotFoundError for the given entity kind and id.
func NewNotFoundError(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

func (e *NotFoundError) Error() string {
	if e == nil {
		return ""
	}
	if e.ID != "" {
		return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Kind)
}

// Unwrap exposes the underlying error.
func (e *NotFoundError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ValidationError captures a missing required field or malformed input.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError constructs a ValidationError.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// WrapValidationError constructs a ValidationError around an underlying cause.
func WrapValidationError(field string, err error) error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ValidationError{Field: field, Message: message, Err: err}
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// Unwrap exposes the underlying error.
func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ExpiredError indicates a preview or cache entry whose TTL has elapsed.
type ExpiredError struct {
	Kind      string
	ID        string
	ExpiredAt time.Time
}

// NewExpiredError constructs an ExpiredError.
func NewExpiredError(kind, id string, expiredAt time.Time) error {
	return &ExpiredError{Kind: kind, ID: id, ExpiredAt: expiredAt}
}

func (e *ExpiredError) Error() string {
	if e == nil {
		return ""
	}
	if e.ExpiredAt.IsZero() {
		return fmt.Sprintf("%s expired: %s", e.Kind, e.ID)
	}
	return fmt.Sprintf("%s expired: %s (at %s)", e.Kind, e.ID, e.ExpiredAt.Format(time.RFC3339))
}

// StoreError represents a backing-store read or write failure.
type StoreError struct {
	Op   string
	Path string
	Err  error
}

// NewStoreError constructs a StoreError wrapping the underlying I/O failure.
func NewStoreError(op, path string, err error) error {
	return &StoreError{Op: op, Path: path, Err: err}
}

func (e *StoreError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("store %s failed: %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap exposes the root error.
func (e *StoreError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsNotFound reports whether err (or anything it wraps) is a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsExpired reports whether err is an ExpiredError.
func IsExpired(err error) bool {
	var target *ExpiredError
	return errors.As(err, &target)
}

// IsStore reports whether err is a StoreError.
func IsStore(err error) bool {
	var target *StoreError
	return errors.As(err, &target)
}
