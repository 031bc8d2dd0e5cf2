package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	dialTimeout = 5 * time.Second
	opTimeout   = 2 * time.Second
)

// Options describes the Redis instance holding idempotency keys.
type Options struct {
	Addr     string
	Password string
	DB       int
	// DialTimeout bounds both dialing and the startup ping.
	DialTimeout time.Duration
}

// Connect dials Redis and pings it before returning the client.
func Connect(ctx context.Context, opts Options) (*redis.Client, error) {
	dial := opts.DialTimeout
	if dial <= 0 {
		dial = dialTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  dial,
		ReadTimeout:  opTimeout,
		WriteTimeout: opTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, dial)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis at %s: %w", opts.Addr, err)
	}
	return client, nil
}

// Ping returns a readiness check for client.
func Ping(client *redis.Client) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}
