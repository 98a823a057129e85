package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory session store. Suitable for single-process
// deployments and tests.
type MemoryStore[Data any] struct {
	mu      sync.RWMutex
	byToken map[string]Session[Data]
	tokens  map[uuid.UUID]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore[Data any]() *MemoryStore[Data] {
	return &MemoryStore[Data]{
		byToken: make(map[string]Session[Data]),
		tokens:  make(map[uuid.UUID]string),
	}
}

func (s *MemoryStore[Data]) Save(ctx context.Context, sess Session[Data]) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Token rotation leaves the old token behind; drop it.
	if old, ok := s.tokens[sess.ID]; ok && old != sess.Token {
		delete(s.byToken, old)
	}

	s.byToken[sess.Token] = sess
	s.tokens[sess.ID] = sess.Token
	return nil
}

func (s *MemoryStore[Data]) GetByToken(ctx context.Context, token string) (Session[Data], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.byToken[token]
	if !ok {
		return Session[Data]{}, ErrNotFound
	}
	return sess, nil
}

func (s *MemoryStore[Data]) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, ok := s.tokens[id]
	if !ok {
		return nil
	}
	delete(s.byToken, token)
	delete(s.tokens, id)
	return nil
}

func (s *MemoryStore[Data]) DeleteExpired(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for token, sess := range s.byToken {
		if now.After(sess.ExpiresAt) {
			delete(s.byToken, token)
			delete(s.tokens, sess.ID)
		}
	}
	return nil
}
