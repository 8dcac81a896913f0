// Package repository contains the persistence gateway: storage port
// interfaces consumed by the service layer, a MySQL implementation of
// each port, and sentinel errors shared across them. Higher layers
// match these sentinels to pick HTTP status codes; nothing in this
// package knows about HTTP.
package repository

import "errors"

// ErrUserNotFound is returned when no user matches the given id or email.
var ErrUserNotFound = errors.New("user not found")

// ErrEmailExists is returned when registration hits the unique
// constraint on users.email.
var ErrEmailExists = errors.New("email already exists")

// ErrTokenNotFound is returned when a session token does not exist,
// either because it was never issued or because logout removed it.
var ErrTokenNotFound = errors.New("token not found")

// ErrReportNotFound is returned when no report matches the given id.
var ErrReportNotFound = errors.New("report not found")

// ErrLocationNotFound is returned when a location row is absent, which
// after a cascade delete is the expected outcome for the former
// location of a removed report.
var ErrLocationNotFound = errors.New("location not found")

// ErrImageNotFound is the image counterpart of ErrLocationNotFound.
var ErrImageNotFound = errors.New("image not found")
