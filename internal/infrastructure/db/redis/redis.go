package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultTimeout = 5 * time.Second

// Config selects the Redis instance backing the idempotency store. Timeout
// bounds the connection handshake and every store call.
type Config struct {
	Addr    string
	DB      int
	Timeout time.Duration
}

// Open connects to Redis, checks it with a ping and returns the idempotency
// store on top of the client. The caller owns the store and must Close it.
func Open(ctx context.Context, cfg Config) (*IdempotencyStore, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		DB:           cfg.DB,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	})

	s := NewIdempotencyStore(client, timeout)
	if err := s.Ping(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}
	return s, nil
}

// Ping reports whether Redis answers within the store timeout.
func (s *IdempotencyStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) Close() error {
	return s.client.Close()
}
