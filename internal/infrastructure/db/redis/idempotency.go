package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	idempotencyTTL = 24 * time.Hour
	// pendingTTL caps how long a crashed request can hold a key.
	pendingTTL = time.Minute
	// pendingMarker is stored while the claiming request is in flight.
	pendingMarker = "\x00pending"
)

// releaseScript deletes a key only while it still holds the pending marker,
// so a late release cannot drop a completed result.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// IdempotencyStore claims request keys with SETNX before the guarded work
// runs and records the resulting id once it is done.
// Key format: idem:<namespace>:<key>
type IdempotencyStore struct {
	client  *redis.Client
	ttl     time.Duration
	timeout time.Duration
}

// NewIdempotencyStore wraps client. timeout bounds each call; a non-positive
// value falls back to the default.
func NewIdempotencyStore(client *redis.Client, timeout time.Duration) *IdempotencyStore {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &IdempotencyStore{client: client, ttl: idempotencyTTL, timeout: timeout}
}

// Claim reserves (namespace, key). When another request holds the key the
// recorded id is returned, or "" while that request is still in flight.
func (s *IdempotencyStore) Claim(ctx context.Context, namespace, key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	k := idempotencyKey(namespace, key)
	// A second attempt covers a pending claim expiring between SETNX and GET.
	for attempt := 0; attempt < 2; attempt++ {
		ok, err := s.client.SetNX(ctx, k, pendingMarker, pendingTTL).Result()
		if err != nil {
			return "", false, fmt.Errorf("idempotency claim: %w", err)
		}
		if ok {
			return "", true, nil
		}

		v, err := s.client.Get(ctx, k).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return "", false, fmt.Errorf("idempotency claim: %w", err)
		}
		if v == pendingMarker {
			return "", false, nil
		}
		return v, false, nil
	}
	return "", false, nil
}

// Complete records value for a claimed key and extends it to the full TTL.
func (s *IdempotencyStore) Complete(ctx context.Context, namespace, key, value string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.client.Set(ctx, idempotencyKey(namespace, key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency complete: %w", err)
	}
	return nil
}

// Release drops a pending claim so the key can be retried.
func (s *IdempotencyStore) Release(ctx context.Context, namespace, key string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := releaseScript.Run(ctx, s.client, []string{idempotencyKey(namespace, key)}, pendingMarker).Err(); err != nil {
		return fmt.Errorf("idempotency release: %w", err)
	}
	return nil
}

func idempotencyKey(namespace, key string) string {
	return fmt.Sprintf("idem:%s:%s", namespace, key)
}
