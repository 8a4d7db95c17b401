package errors

import "errors"

var (
	// ErrNotFound indicates the reservation does not exist or is deleted.
	ErrNotFound = errors.New("reservation not found")

	// ErrInvalidID indicates the reservation ID is not a valid ObjectID.
	ErrInvalidID = errors.New("invalid reservation ID")
)
