package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Store persists sessions keyed by token and by ID.
type Store[Data any] interface {
	Save(ctx context.Context, s Session[Data]) error
	GetByToken(ctx context.Context, token string) (Session[Data], error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteExpired(ctx context.Context) error
}

// Manager coordinates session lifecycle against a Store. Sessions carry a
// fixed lifetime from issuance; authenticating rotates the token and restarts
// the clock.
type Manager[Data any] struct {
	store Store[Data]
	ttl   time.Duration
}

// NewManager creates a manager with the given store and session lifetime.
func NewManager[Data any](store Store[Data], ttl time.Duration) (*Manager[Data], error) {
	if store == nil {
		return nil, errors.New("session: store is required")
	}
	if ttl <= 0 {
		return nil, errors.New("session: ttl must be positive")
	}
	return &Manager[Data]{store: store, ttl: ttl}, nil
}

// New creates and persists a fresh anonymous session.
func (m *Manager[Data]) New(ctx context.Context) (Session[Data], error) {
	s, err := New[Data](m.ttl)
	if err != nil {
		return Session[Data]{}, err
	}
	if err := m.store.Save(ctx, s); err != nil {
		return Session[Data]{}, fmt.Errorf("%w: %w", ErrStoreFailed, err)
	}
	return s, nil
}

// GetByToken loads a session by its token. Expired sessions are deleted and
// reported as ErrExpired.
func (m *Manager[Data]) GetByToken(ctx context.Context, token string) (Session[Data], error) {
	s, err := m.store.GetByToken(ctx, token)
	if err != nil {
		return Session[Data]{}, err
	}
	if s.IsExpired() {
		_ = m.store.Delete(ctx, s.ID)
		return Session[Data]{}, ErrExpired
	}
	return s, nil
}

// Authenticate binds the session to a user, rotating the token. The previous
// token stops resolving immediately.
func (m *Manager[Data]) Authenticate(ctx context.Context, s *Session[Data], userID uuid.UUID) error {
	if err := s.Authenticate(userID, m.ttl); err != nil {
		return err
	}
	if err := m.store.Save(ctx, *s); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreFailed, err)
	}
	return nil
}

// Save persists session mutations such as data payload changes.
func (m *Manager[Data]) Save(ctx context.Context, s Session[Data]) error {
	if err := m.store.Save(ctx, s); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreFailed, err)
	}
	return nil
}

// Delete removes the session from the store.
func (m *Manager[Data]) Delete(ctx context.Context, id uuid.UUID) error {
	if err := m.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreFailed, err)
	}
	return nil
}

// CleanupExpired removes expired sessions. Intended to run periodically for
// stores without native expiry.
func (m *Manager[Data]) CleanupExpired(ctx context.Context) error {
	return m.store.DeleteExpired(ctx)
}

// TTL returns the configured session lifetime.
func (m *Manager[Data]) TTL() time.Duration {
	return m.ttl
}
