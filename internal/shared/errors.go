package shared

import (
	"errors"
	"fmt"
)

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrSignUpFailed     = fmt.Errorf("account creation failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrTokenExpired     = fmt.Errorf("session token expired")
	ErrAccountExists    = fmt.Errorf("account already exists")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrTimeout            = fmt.Errorf("operation timed out")

	// Lookup errors
	ErrDocumentNotFound = fmt.Errorf("document not found")
	ErrUserNotFound     = fmt.Errorf("user not found")
	ErrFavoriteNotFound = fmt.Errorf("favorite not found")

	// Input validation errors
	ErrInvalidInput     = fmt.Errorf("invalid input")
	ErrEmptyQuery       = fmt.Errorf("empty search query")
	ErrPasswordMismatch = fmt.Errorf("passwords don't match")
	ErrWeakPassword     = fmt.Errorf("password must be at least 6 characters")
	ErrMissingArgument  = fmt.Errorf("missing required argument")
)

// ErrorClass groups errors by how the front ends react to them.
type ErrorClass int

const (
	ClassUnknown ErrorClass = iota
	ClassAuth
	ClassNetwork
	ClassNotFound
	ClassValidation
)

func (c ErrorClass) String() string {
	switch c {
	case ClassAuth:
		return "auth"
	case ClassNetwork:
		return "network"
	case ClassNotFound:
		return "not_found"
	case ClassValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// Classify maps a (possibly wrapped) error onto its [ErrorClass].
func Classify(err error) ErrorClass {
	switch {
	case err == nil:
		return ClassUnknown
	case errors.Is(err, ErrAuthFailed), errors.Is(err, ErrSignUpFailed),
		errors.Is(err, ErrNotAuthenticated), errors.Is(err, ErrTokenExpired),
		errors.Is(err, ErrAccountExists):
		return ClassAuth
	case errors.Is(err, ErrAPIRequest), errors.Is(err, ErrServiceUnavailable), errors.Is(err, ErrTimeout):
		return ClassNetwork
	case errors.Is(err, ErrDocumentNotFound), errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrFavoriteNotFound):
		return ClassNotFound
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrEmptyQuery),
		errors.Is(err, ErrPasswordMismatch), errors.Is(err, ErrWeakPassword),
		errors.Is(err, ErrMissingArgument):
		return ClassValidation
	default:
		return ClassUnknown
	}
}
