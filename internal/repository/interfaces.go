package repository

import "context"

// KV is the durable key-value medium behind the persistence adapter. Every
// write fully overwrites the stored value.
type KV interface {
	// Get returns ErrNotFound when key has never been written.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	// SetMany writes all pairs atomically.
	SetMany(ctx context.Context, values map[string]string) error
	Delete(ctx context.Context, key string) error
	// Clear removes every key atomically.
	Clear(ctx context.Context) error
}
