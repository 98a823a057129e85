package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	tokenKeyPrefix = "session:token:"
	idKeyPrefix    = "session:id:"
)

// RedisStore persists sessions in Redis with TTL-bounded keys, for
// deployments where sessions must survive restarts or be shared across
// replicas. Expiry is delegated to Redis key TTLs.
type RedisStore[Data any] struct {
	client redis.UniversalClient
}

// NewRedisStore creates a Redis-backed session store and verifies
// connectivity.
func NewRedisStore[Data any](ctx context.Context, client redis.UniversalClient) (*RedisStore[Data], error) {
	if client == nil {
		return nil, errors.New("session: redis client is required")
	}
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("session: redis ping: %w", err)
	}
	return &RedisStore[Data]{client: client}, nil
}

func (s *RedisStore[Data]) Save(ctx context.Context, sess Session[Data]) error {
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return s.Delete(ctx, sess.ID)
	}

	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("session: marshal: %w", err)
	}

	// Drop the previous token key on rotation before writing the new pair.
	if old, err := s.client.Get(ctx, idKeyPrefix+sess.ID.String()).Result(); err == nil && old != sess.Token {
		_ = s.client.Del(ctx, tokenKeyPrefix+old).Err()
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, tokenKeyPrefix+sess.Token, payload, ttl)
	pipe.Set(ctx, idKeyPrefix+sess.ID.String(), sess.Token, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("session: redis save: %w", err)
	}
	return nil
}

func (s *RedisStore[Data]) GetByToken(ctx context.Context, token string) (Session[Data], error) {
	payload, err := s.client.Get(ctx, tokenKeyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Session[Data]{}, ErrNotFound
		}
		return Session[Data]{}, fmt.Errorf("session: redis get: %w", err)
	}

	var sess Session[Data]
	if err := json.Unmarshal(payload, &sess); err != nil {
		return Session[Data]{}, fmt.Errorf("session: unmarshal: %w", err)
	}
	return sess, nil
}

func (s *RedisStore[Data]) Delete(ctx context.Context, id uuid.UUID) error {
	token, err := s.client.Get(ctx, idKeyPrefix+id.String()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("session: redis get id: %w", err)
	}

	if err := s.client.Del(ctx, tokenKeyPrefix+token, idKeyPrefix+id.String()).Err(); err != nil {
		return fmt.Errorf("session: redis delete: %w", err)
	}
	return nil
}

// DeleteExpired is a no-op; Redis evicts expired keys on its own.
func (s *RedisStore[Data]) DeleteExpired(ctx context.Context) error {
	return nil
}
