package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrCourseNotFound = errors.New("course not found")

	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")

	// ErrServiceUnavailable marks a missing or failing external dependency
	// (similarity index, completion function).
	ErrServiceUnavailable = errors.New("service unavailable")

	ErrSnapshotMissing = errors.New("snapshot missing")
)

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Code    string
	Details any
}

func (e *CustomError) Error() string {
	if e.Message == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *CustomError) Unwrap() error { return e.Err }

// NewValidationError reports a request that failed validation.
func NewValidationError(message string, details any) error {
	return &CustomError{Err: ErrValidationFailed, Message: message, Details: details}
}

// NewUnavailableError wraps cause as a service-unavailable condition for
// the named dependency.
func NewUnavailableError(dependency string, cause error) error {
	msg := dependency + " unavailable"
	if cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, cause)
	}
	return &CustomError{Err: ErrServiceUnavailable, Message: msg, Details: dependency}
}

// NewNotFoundError reports a missing course code.
func NewNotFoundError(code string) error {
	return &CustomError{Err: ErrCourseNotFound, Message: code}
}

// Is returns whether err matches target or any of errList.
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}
	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}
