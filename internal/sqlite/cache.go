package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rpggio/learnerhours/internal/offline"
	"github.com/rpggio/learnerhours/internal/repository"
)

// CacheStorage implements offline.CacheStorage for SQLite so cached assets
// survive restarts.
type CacheStorage struct {
	db *DB
}

// NewCacheStorage creates a new CacheStorage
func NewCacheStorage(db *DB) *CacheStorage {
	return &CacheStorage{db: db}
}

// Open returns the named cache, creating it if absent.
func (s *CacheStorage) Open(ctx context.Context, name string) (offline.Cache, error) {
	if name == "" {
		return nil, repository.ErrInvalidInput
	}
	if _, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO caches (name) VALUES (?)`, name); err != nil {
		return nil, fmt.Errorf("failed to open cache %s: %w", name, err)
	}
	return &cache{db: s.db, name: name}, nil
}

// Keys lists cache names in creation order.
func (s *CacheStorage) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM caches ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to list caches: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan cache name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Delete removes the named cache and its entries.
func (s *CacheStorage) Delete(ctx context.Context, name string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM caches WHERE name = ?`, name)
	if err != nil {
		return false, fmt.Errorf("failed to delete cache %s: %w", name, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n > 0, nil
}

type cache struct {
	db   *DB
	name string
}

func (c *cache) Match(ctx context.Context, key string) (*offline.Response, error) {
	query := `
		SELECT url, status, header, body, type
		FROM cache_entries
		WHERE cache_name = ? AND key = ?
	`

	var resp offline.Response
	var header string
	err := c.db.QueryRowContext(ctx, query, c.name, key).Scan(
		&resp.URL,
		&resp.Status,
		&header,
		&resp.Body,
		&resp.Type,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to match %s: %w", key, err)
	}

	resp.Header = http.Header{}
	if err := json.Unmarshal([]byte(header), &resp.Header); err != nil {
		return nil, fmt.Errorf("failed to decode header for %s: %w", key, err)
	}
	return &resp, nil
}

func (c *cache) Put(ctx context.Context, key string, resp *offline.Response) error {
	return c.PutAll(ctx, map[string]*offline.Response{key: resp})
}

// PutAll writes every entry in one transaction.
func (c *cache) PutAll(ctx context.Context, entries map[string]*offline.Response) error {
	for key, resp := range entries {
		if key == "" || resp == nil {
			return repository.ErrInvalidInput
		}
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT OR REPLACE INTO cache_entries (cache_name, key, url, status, header, body, type)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	for key, resp := range entries {
		header, err := json.Marshal(resp.Header)
		if err != nil {
			return fmt.Errorf("failed to encode header for %s: %w", key, err)
		}
		body := resp.Body
		if body == nil {
			body = []byte{}
		}
		_, err = tx.ExecContext(ctx, query, c.name, key, resp.URL, resp.Status, string(header), body, string(resp.Type))
		if err != nil {
			if isForeignKeyViolation(err) {
				return repository.ErrNotFound
			}
			return fmt.Errorf("failed to put %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cache entries: %w", err)
	}
	return nil
}

func (c *cache) Keys(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT key FROM cache_entries WHERE cache_name = ? ORDER BY key`, c.name)
	if err != nil {
		return nil, fmt.Errorf("failed to list cache entries: %w", err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan cache key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}
