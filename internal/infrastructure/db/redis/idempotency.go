package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const idempotencyTTL = 24 * time.Hour

// IdempotencyStore remembers which task an Idempotency-Key produced.
// Key format: idempotency:task:<owner_id>:<key>
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIdempotencyStore creates an IdempotencyStore wrapping the given Redis client.
func NewIdempotencyStore(client *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{client: client, ttl: idempotencyTTL}
}

func (s *IdempotencyStore) Lookup(ctx context.Context, ownerID, key string) (string, bool, error) {
	taskID, err := s.client.Get(ctx, s.key(ownerID, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("idempotency lookup: %w", err)
	}
	return taskID, true, nil
}

// Remember records taskID unless the key is already taken; the first writer wins.
func (s *IdempotencyStore) Remember(ctx context.Context, ownerID, key, taskID string) error {
	if err := s.client.SetNX(ctx, s.key(ownerID, key), taskID, s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency remember: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) key(ownerID, key string) string {
	return fmt.Sprintf("idempotency:task:%s:%s", ownerID, key)
}
