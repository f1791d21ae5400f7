package mocks

import (
	"context"
	"net/http"

	"github.com/rpggio/learnerhours/internal/offline"
	"github.com/stretchr/testify/mock"
)

// KVStore is a mock for repository.KVStore.
type KVStore struct {
	mock.Mock
}

func (m *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if data, ok := args.Get(0).([]byte); ok {
		return data, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *KVStore) Put(ctx context.Context, key string, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

// Fetcher is a mock for offline.Fetcher.
type Fetcher struct {
	mock.Mock
}

func (m *Fetcher) Fetch(ctx context.Context, req *http.Request) (*offline.Response, error) {
	args := m.Called(ctx, req)
	if resp, ok := args.Get(0).(*offline.Response); ok {
		return resp, args.Error(1)
	}
	return nil, args.Error(1)
}

// CacheStorage is a mock for offline.CacheStorage.
type CacheStorage struct {
	mock.Mock
}

func (m *CacheStorage) Open(ctx context.Context, name string) (offline.Cache, error) {
	args := m.Called(ctx, name)
	if cache, ok := args.Get(0).(offline.Cache); ok {
		return cache, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CacheStorage) Keys(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if names, ok := args.Get(0).([]string); ok {
		return names, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CacheStorage) Delete(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}
