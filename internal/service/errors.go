// Package service implements the business rules of the system: session
// issuance and resolution, account management, the report lifecycle
// and the read-only report queries. Services depend only on the
// storage ports in the repository package, so tests can run them
// against the in-memory store.
package service

import "errors"

// ErrUnauthorized is returned when a request carries no token, or a
// token that does not resolve to a user. Handlers translate it to 401.
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden is returned when an authenticated user attempts an
// operation on a report they do not own (and, for delete, lack the
// admin role for). Handlers translate it to 403.
var ErrForbidden = errors.New("forbidden")

// ErrSessionActive is returned by login under the "reject" session
// policy when the user already holds a live token.
var ErrSessionActive = errors.New("user already has an active session")

// ValidationError carries a short human-readable reason for rejecting
// a request before any mutation is attempted. Handlers translate it
// to 400 with the reason as the body.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func invalid(reason string) *ValidationError { return &ValidationError{Reason: reason} }
