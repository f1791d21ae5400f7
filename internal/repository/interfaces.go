package repository

import "context"

// KVStore manages the single-key values the session store persists.
//
// Get returns ErrNotFound when the key is absent. Put replaces the whole
// value; there is no partial or append-only write and no removal, since
// an empty collection is stored as an empty list.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

// KVBackend is a KVStore that owns a connection or file handle.
type KVBackend interface {
	KVStore
	Close() error
}
