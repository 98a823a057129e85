package session

import "errors"

var (
	// ErrNotFound is returned when no session matches the given token or ID.
	ErrNotFound = errors.New("session: not found")

	// ErrExpired is returned when a session exists but its lifetime has passed.
	ErrExpired = errors.New("session: expired")

	// ErrTokenGeneration is returned when secure random bytes cannot be read.
	ErrTokenGeneration = errors.New("session: token generation failed")

	// ErrStoreFailed wraps storage backend failures.
	ErrStoreFailed = errors.New("session: store operation failed")
)
