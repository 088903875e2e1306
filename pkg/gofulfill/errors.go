package gofulfill

import "errors"

var (
	// ErrInvalidInput is returned when a user ID, feature or plan is empty
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoResult is returned by storage when an existence query yields no row at all
	ErrNoResult = errors.New("no result")

	// ErrStorageUnavailable is returned when the storage client is not initialized
	ErrStorageUnavailable = errors.New("storage unavailable")
)
