package errors

import "errors"

var (
	ErrPrizeNotFound = errors.New("prize not found")

	// ErrNotAvailable means the conditional claim matched no document: the
	// prize raced to zero between the eligibility read and the claim. An
	// expected outcome, not an infrastructure failure.
	ErrNotAvailable = errors.New("prize not available")

	ErrReservationNotFound = errors.New("reservation not found")

	ErrAlreadyConfirmed = errors.New("reservation already confirmed")

	ErrAlreadyReleased = errors.New("reservation already released")
)
