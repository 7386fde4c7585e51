package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Deduper remembers keys for ttl with SETNX. A nil *Deduper treats every key as new.
type Deduper struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewDeduper(client *redis.Client, prefix string, ttl time.Duration) *Deduper {
	if client == nil {
		return nil
	}
	return &Deduper{client: client, prefix: prefix, ttl: ttl}
}

// FirstSeen records key and reports whether it had not been recorded before.
func (d *Deduper) FirstSeen(ctx context.Context, key string) (bool, error) {
	if d == nil {
		return true, nil
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	ok, err := d.client.SetNX(ctx, d.prefix+key, "1", d.ttl).Result()
	if err != nil {
		return true, fmt.Errorf("setnx %s: %w", key, err)
	}

	return ok, nil
}

// Forget removes key so a later delivery is processed again.
func (d *Deduper) Forget(ctx context.Context, key string) error {
	if d == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	return d.client.Del(ctx, d.prefix+key).Err()
}
