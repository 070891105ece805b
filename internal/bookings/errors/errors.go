package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrDuplicateBooking = errors.New("client already has an active booking for this session")

	ErrDuplicateReference = errors.New("booking reference already exists")

	ErrReferenceExhausted = errors.New("could not generate a unique booking reference")
)
