package sessions

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Store.Get for keys that were never written,
// were deleted, or have outlived their TTL.
var ErrNotFound = errors.New("key not found")

// Store is a TTL-capable key-value store. CSRF states and sessions each get
// their own Store so that keys never collide.
type Store interface {
	// Put writes value under key; the entry disappears once ttl has elapsed.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get returns the value for key or ErrNotFound
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
