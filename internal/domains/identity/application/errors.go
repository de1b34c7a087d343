package application

import "errors"

var (
	// ErrUnauthenticated covers missing, unknown, and expired tokens.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrInvalidInput signals a malformed static token entry.
	ErrInvalidInput = errors.New("invalid identity input")
)
