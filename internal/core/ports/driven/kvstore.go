package driven

import "context"

// KeyValueStore is a string key-value store with a byte quota.
// Implementations return domain.ErrQuotaExceeded when a write would push
// the total stored bytes past their quota.
type KeyValueStore interface {
	// Get returns the value for key. The boolean is false when no entry exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, replacing any existing entry.
	Set(ctx context.Context, key, value string) error

	// Delete removes the entry. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Name identifies the store in logs.
	Name() string
}
