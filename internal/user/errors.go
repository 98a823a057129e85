package user

import "errors"

var (
	// ErrInvalidCredentials is returned for both unknown usernames and wrong
	// passwords so callers cannot distinguish the two.
	ErrInvalidCredentials = errors.New("user: invalid credentials")

	// ErrNotFound is returned when the user does not exist, in management
	// operations where existence is not a secret.
	ErrNotFound = errors.New("user: not found")

	// ErrUsernameTaken is returned on create when the username exists.
	ErrUsernameTaken = errors.New("user: username already taken")

	// ErrInvalidUsername is returned when the username has characters outside
	// [A-Za-z0-9_-] or is empty.
	ErrInvalidUsername = errors.New("user: invalid username")

	// ErrPasswordTooShort is returned when the password has fewer than the
	// minimum number of characters.
	ErrPasswordTooShort = errors.New("user: password too short")

	// ErrLastUser is returned when deleting the only remaining user.
	ErrLastUser = errors.New("user: cannot delete the last user")

	// ErrSelfDelete is returned when a user attempts to delete themselves.
	ErrSelfDelete = errors.New("user: cannot delete own account")
)
