// Package repository defines error types that are reused across
// multiple repositories. These sentinel values allow higher layers
// such as services and handlers to distinguish between different
// failure scenarios. For example, ErrEventFull indicates that the
// atomic seat claim found no remaining capacity, while
// ErrDuplicateRegistration signals that the unique key on
// (email, event_id) rejected an insert.
package repository

import "errors"

// ErrEventNotFound indicates that no event exists for the given ID.
// Handlers should translate this into an HTTP 404 response.
var ErrEventNotFound = errors.New("event not found")

// ErrRegistrationNotFound indicates that no registration exists for
// the given ID. Handlers should translate this into an HTTP 404
// response.
var ErrRegistrationNotFound = errors.New("registration not found")

// ErrDuplicateRegistration is returned when an insert violates the
// unique constraint on (email, event_id). It covers both the
// application-level pre-check and the race where two requests for the
// same pair pass the pre-check concurrently.
var ErrDuplicateRegistration = errors.New("duplicate registration")

// ErrEventFull is returned when the conditional counter increment
// affects no rows because registered_users has reached seat_limit.
var ErrEventFull = errors.New("event full")
