package catalog

import "errors"

var (
	// ErrTestNotFound is returned when no test matches the lookup.
	ErrTestNotFound = errors.New("test not found")

	// ErrLabNotFound is returned when no lab matches the lookup.
	ErrLabNotFound = errors.New("lab not found")

	// ErrDuplicateOffering is returned when a lab already offers the test.
	ErrDuplicateOffering = errors.New("lab already offers this test")
)
