package repository

import "context"

// KVStore abstracts the key-value persistence collaborator that holds serialized progress blobs.
//
// Implementations must be read-your-writes: a Get issued after a successful Set
// of the same key returns the value just written.
type KVStore interface {
	// Get returns the stored value and true, or nil and false when the key is absent.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}
