package bbolt

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rpggio/learnerhours/internal/repository"
	"go.etcd.io/bbolt"
)

// DefaultBucket holds the session collections.
const DefaultBucket = "kv"

// Store provides a BoltDB-backed key-value store.
type Store struct {
	db     *bbolt.DB
	bucket []byte
}

// Open opens a BoltDB-backed store at the provided path. An empty bucket
// name selects DefaultBucket.
func Open(path, bucket string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if bucket == "" {
		bucket = DefaultBucket
	}

	cleanPath := filepath.Clean(path)
	db, err := bbolt.Open(cleanPath, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open storage db: %w", err)
	}

	store := &Store{db: db, bucket: []byte(bucket)}
	if err := store.ensureBucket(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying BoltDB database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Get fetches the value stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(key) == "" {
		return nil, repository.ErrInvalidInput
	}

	var value []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(s.bucket)
		if bucket == nil {
			return fmt.Errorf("bucket %s is missing", s.bucket)
		}
		payload := bucket.Get([]byte(key))
		if payload == nil {
			return repository.ErrNotFound
		}
		// Bolt memory is only valid inside the transaction.
		value = append([]byte{}, payload...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Put persists value under key.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(key) == "" {
		return repository.ErrInvalidInput
	}
	if value == nil {
		value = []byte{}
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(s.bucket)
		if bucket == nil {
			return fmt.Errorf("bucket %s is missing", s.bucket)
		}
		return bucket.Put([]byte(key), value)
	})
}

func (s *Store) ensureBucket() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(s.bucket); err != nil {
			return fmt.Errorf("create bucket %s: %w", s.bucket, err)
		}
		return nil
	})
}
