// Package service holds the reservation workflow and admin account logic.
// Handlers decode requests into the input types defined here; services
// validate them, talk to the stores and collaborators, and return either a
// result or one of the errors below.
package service

import (
	"errors"
	"strings"
)

var (
	// ErrUnauthenticated covers every rejected credential: absent, unknown,
	// badly signed or expired.  Callers must not tell them apart.
	ErrUnauthenticated = errors.New("unauthenticated")

	ErrReservationNotFound = errors.New("reservation not found")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrSignupDisabled      = errors.New("sign-up is disabled")
	ErrEmailExists         = errors.New("email already registered")
)

// Validation codes returned to API clients.
const (
	CodeMissingRequiredFields = "MISSING_REQUIRED_FIELDS"
	CodeEmptyRequiredFields   = "EMPTY_REQUIRED_FIELDS"
	CodeFieldTooLong          = "FIELD_TOO_LONG"
	CodeMissingStatus         = "MISSING_STATUS"
	CodeInvalidStatus         = "INVALID_STATUS"
	CodeInvalidEmail          = "INVALID_EMAIL"
	CodeWeakPassword          = "WEAK_PASSWORD"
)

// ValidationError reports input that failed validation.  Code is stable
// and machine readable; Fields lists the offending json field names when
// known.
type ValidationError struct {
	Code    string
	Message string
	Fields  []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return e.Message + " (" + strings.Join(e.Fields, ", ") + ")"
}

// NewValidationError is a shorthand for handlers that validate query
// parameters themselves.
func NewValidationError(code, msg string) *ValidationError {
	return &ValidationError{Code: code, Message: msg}
}
