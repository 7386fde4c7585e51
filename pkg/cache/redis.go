package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const opTimeout = 300 * time.Millisecond

// NewRedis connects to addr (host[:port]) and verifies the connection.
func NewRedis(addr, user, password string) (*redis.Client, error) {
	if !strings.Contains(addr, ":") {
		addr = addr + ":6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Username: user,
		Password: password,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}

	return client, nil
}
