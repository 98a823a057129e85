// Package session provides token-based sessions with a pluggable storage
// backend and a typed data payload.
package session

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const tokenBytes = 32

// Session holds authentication state and an application-defined payload.
// UserID is uuid.Nil for anonymous sessions.
type Session[Data any] struct {
	ID        uuid.UUID `json:"id"`
	Token     string    `json:"token"`
	UserID    uuid.UUID `json:"user_id"`
	Data      Data      `json:"data"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsAuthenticated reports whether the session belongs to a signed-in user.
func (s Session[Data]) IsAuthenticated() bool {
	return s.UserID != uuid.Nil
}

// IsExpired reports whether the session lifetime has passed.
func (s Session[Data]) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// New creates an anonymous session with a fresh token and the given lifetime.
func New[Data any](ttl time.Duration) (Session[Data], error) {
	token, err := generateToken()
	if err != nil {
		return Session[Data]{}, err
	}

	now := time.Now()
	return Session[Data]{
		ID:        uuid.New(),
		Token:     token,
		UserID:    uuid.Nil,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Authenticate binds the session to a user and rotates the token to prevent
// session fixation.
func (s *Session[Data]) Authenticate(userID uuid.UUID, ttl time.Duration) error {
	token, err := generateToken()
	if err != nil {
		return err
	}

	now := time.Now()
	s.Token = token
	s.UserID = userID
	s.ExpiresAt = now.Add(ttl)
	s.UpdatedAt = now
	return nil
}

func generateToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("%w: %w", ErrTokenGeneration, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
