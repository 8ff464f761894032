package memory

import (
	"context"
	"sync"
	"time"
)

// IdempotencyStore is the single-process stand-in for the Redis store.
type IdempotencyStore struct {
	mu   sync.Mutex
	ttl  time.Duration
	now  func() time.Time
	keys map[string]idempotencyEntry
}

type idempotencyEntry struct {
	messageID string
	expires   time.Time
}

func NewIdempotencyStore(ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyStore{ttl: ttl, now: time.Now, keys: make(map[string]idempotencyEntry)}
}

func (s *IdempotencyStore) Reserve(ctx context.Context, key, messageID string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if e, ok := s.keys[key]; ok && now.Before(e.expires) {
		return e.messageID, false, nil
	}
	s.keys[key] = idempotencyEntry{messageID: messageID, expires: now.Add(s.ttl)}
	return messageID, true, nil
}

func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
	return nil
}
