package ports

import "context"

// IdempotencyStore remembers which task a client-supplied key produced.
type IdempotencyStore interface {
	// Lookup returns the task id remembered for (ownerID, key), if any.
	Lookup(ctx context.Context, ownerID, key string) (taskID string, found bool, err error)
	// Remember records taskID for (ownerID, key). An existing entry is kept.
	Remember(ctx context.Context, ownerID, key, taskID string) error
}
