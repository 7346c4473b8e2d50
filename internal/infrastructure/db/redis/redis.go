// Package redis holds the Redis connector and the session store backed by
// it. Clients are only ever created through the lifecycle registry returned
// by NewRegistry.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/opskernel/admin-api/internal/infrastructure/lifecycle"
)

const defaultTimeout = 5 * time.Second

// Config captures the settings for establishing a Redis connection.
type Config struct {
	Addr     string
	DB       int
	Password string
}

// Connect initialises a Redis client and validates connectivity with a ping.
// The caller's context bounds the attempt.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	if cfg.DB < 0 || cfg.DB > 15 {
		return nil, fmt.Errorf("redis db must be between 0 and 15, got %d", cfg.DB)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		DB:       cfg.DB,
		Password: cfg.Password,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return client, nil
}

// NewRegistry returns the lifecycle registry for Redis clients. A
// non-positive timeout falls back to the package default.
func NewRegistry(timeout time.Duration) *lifecycle.Registry[Config, *redis.Client] {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return lifecycle.NewRegistry("redis", timeout, Connect,
		func(_ context.Context, client *redis.Client) error {
			return client.Close()
		})
}
