package offline

import (
	"context"
	"net/http"
)

// CacheStorage holds named caches, one per worker version.
type CacheStorage interface {
	// Open returns the named cache, creating it if absent.
	Open(ctx context.Context, name string) (Cache, error)
	Keys(ctx context.Context) ([]string, error)
	// Delete reports whether a cache was removed.
	Delete(ctx context.Context, name string) (bool, error)
}

// Cache maps request keys to stored responses.
type Cache interface {
	// Match returns repository.ErrNotFound on a miss.
	Match(ctx context.Context, key string) (*Response, error)
	Put(ctx context.Context, key string, resp *Response) error
	// PutAll stores every entry or none of them.
	PutAll(ctx context.Context, entries map[string]*Response) error
	Keys(ctx context.Context) ([]string, error)
}

// Fetcher reaches the network.
type Fetcher interface {
	Fetch(ctx context.Context, req *http.Request) (*Response, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, req *http.Request) (*Response, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, req *http.Request) (*Response, error) {
	return f(ctx, req)
}
