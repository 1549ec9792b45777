package shared

import (
	"context"
	"time"
)

// ProcessedStore remembers which source items a run has already handled, so a
// resumed migration can skip the per-item existence checks it has already
// answered. Implementations must be safe for concurrent use.
type ProcessedStore interface {
	// MarkProcessed marks an item as handled with a TTL.
	// Returns true if the item was newly marked, false if already present.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed checks if an item has already been handled
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Close releases any resources held by the store
	Close() error
}
