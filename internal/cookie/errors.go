package cookie

import "errors"

var (
	// ErrNoSecret is returned when the manager is created without any secret.
	ErrNoSecret = errors.New("cookie: at least one secret is required")

	// ErrSecretTooShort is returned when a secret is shorter than the minimum
	// required for HMAC-SHA256.
	ErrSecretTooShort = errors.New("cookie: secret too short")

	// ErrCookieNotFound is returned when the requested cookie is absent.
	ErrCookieNotFound = errors.New("cookie: not found")

	// ErrCookieTooLarge is returned when the serialized cookie exceeds the
	// browser limit.
	ErrCookieTooLarge = errors.New("cookie: too large")

	// ErrInvalidFormat is returned when a signed cookie value is malformed.
	ErrInvalidFormat = errors.New("cookie: invalid format")

	// ErrInvalidSignature is returned when signature verification fails for
	// every configured secret.
	ErrInvalidSignature = errors.New("cookie: invalid signature")
)
