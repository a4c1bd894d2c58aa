package entities

import "errors"

// Sentinel errors for the simulation domain. Use errors.Is() to check these.
var (
	// ErrConfiguration indicates the catalog is inconsistent or could not be loaded.
	ErrConfiguration = errors.New("configuration error")

	// ErrInvalidState indicates a lifecycle transition that is not allowed from the current state.
	ErrInvalidState = errors.New("invalid state")

	// ErrValidation indicates caller-supplied input was rejected at the boundary.
	ErrValidation = errors.New("validation error")
)
