package errors

import "errors"

var (
	ErrNotFound = errors.New("client not found")

	ErrDuplicateEmail = errors.New("client email already registered")
)
