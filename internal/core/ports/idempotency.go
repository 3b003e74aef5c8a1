package ports

import "context"

// IdempotencyStore reserves a request key before the work it guards runs, so
// concurrent requests sharing a key cannot both perform it.
type IdempotencyStore interface {
	// Claim reserves (namespace, key). claimed is true when the caller now
	// owns the key. Otherwise value is the id recorded by the owner, or empty
	// while the owner is still in flight.
	Claim(ctx context.Context, namespace, key string) (value string, claimed bool, err error)
	// Complete records the result id of a claimed key.
	Complete(ctx context.Context, namespace, key, value string) error
	// Release drops a claim whose work failed so the key can be retried.
	Release(ctx context.Context, namespace, key string) error
}
