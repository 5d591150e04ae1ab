package booking

import "errors"

var (
	// ErrBookingNotFound is returned when no booking matches the lookup.
	ErrBookingNotFound = errors.New("booking not found")

	// ErrCodeExists is returned when a generated code is already taken.
	ErrCodeExists = errors.New("booking code already exists")

	// ErrEmailMismatch is returned when the email does not match the
	// booking being changed.
	ErrEmailMismatch = errors.New("email does not match booking")

	// ErrInvalidTransition is returned for a disallowed status change.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrNotOffered is returned when the chosen lab does not offer the test.
	ErrNotOffered = errors.New("lab does not offer this test")

	// ErrBookingClosed is returned when changing a booking in a
	// terminal state.
	ErrBookingClosed = errors.New("booking is no longer active")
)
