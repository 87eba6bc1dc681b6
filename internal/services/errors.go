package services

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an operation references a giveaway that
	// does not exist or is already in a terminal state for that operation.
	// Callers routinely probe for existence, so this is a result, not a bug.
	ErrNotFound = errors.New("giveaway not found")

	// ErrMalformedAnnouncement is returned when the announcement message does
	// not carry exactly one embed and its display cannot be updated.
	ErrMalformedAnnouncement = errors.New("announcement does not contain exactly one embed")

	// ErrInvalidCredentials is returned on failed admin login
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError reports the first unmet constraint of a create request
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
