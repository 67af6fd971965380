package errors

import (
	"errors"
	"fmt"
)

// Common error types for the Collaborate integration
var (
	// Precondition errors, detected before any network call
	ErrInvalidRequest = errors.New("invalid request")

	// Vendor errors
	ErrTokenAcquisition = errors.New("access token acquisition failed")
	ErrRemoteCall       = errors.New("collaborate call failed")

	// Expected absence, distinct from failure
	ErrNotFound = errors.New("not found")

	// Registration errors
	ErrEnrolmentFailed   = errors.New("enrolment failed")
	ErrInvalidTransition = errors.New("invalid registration status transition")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
