// Package redisstore keeps send request ids in Redis so retries are
// recognised across server instances.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "commsdesk:send:"

type IdempotencyStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewIdempotencyStore(client redis.Cmdable, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyStore{client: client, ttl: ttl}
}

// Reserve uses SET NX so exactly one caller wins a key.
func (s *IdempotencyStore) Reserve(ctx context.Context, key, messageID string) (string, bool, error) {
	ok, err := s.client.SetNX(ctx, keyPrefix+key, messageID, s.ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("reserve request id: %w", err)
	}
	if ok {
		return messageID, true, nil
	}

	existing, err := s.client.Get(ctx, keyPrefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// Expired between SETNX and GET; try once more.
			return s.Reserve(ctx, key, messageID)
		}
		return "", false, fmt.Errorf("read request id: %w", err)
	}
	return existing, false, nil
}

func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("release request id: %w", err)
	}
	return nil
}
