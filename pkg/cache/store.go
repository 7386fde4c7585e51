package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// JSONStore keeps JSON encoded values in redis with a fixed TTL.
// A nil *JSONStore is a valid, always-missing cache.
type JSONStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewJSONStore(client *redis.Client, prefix string, ttl time.Duration) *JSONStore {
	if client == nil {
		return nil
	}
	return &JSONStore{client: client, prefix: prefix, ttl: ttl}
}

// Get decodes the value under key into dst. It reports false on a miss.
func (s *JSONStore) Get(ctx context.Context, key string, dst any) (bool, error) {
	if s == nil {
		return false, nil
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	raw, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}

	return true, nil
}

func (s *JSONStore) Set(ctx context.Context, key string, v any) error {
	if s == nil {
		return nil
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := s.client.Set(ctx, s.prefix+key, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}

	return nil
}

func (s *JSONStore) Delete(ctx context.Context, keys ...string) error {
	if s == nil || len(keys) == 0 {
		return nil
	}

	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.prefix + k
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := s.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("delete %v: %w", keys, err)
	}

	return nil
}
