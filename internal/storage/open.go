// Package storage selects the persistence backends for a configuration.
package storage

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/rpggio/learnerhours/internal/bbolt"
	"github.com/rpggio/learnerhours/internal/config"
	"github.com/rpggio/learnerhours/internal/memory"
	"github.com/rpggio/learnerhours/internal/offline"
	"github.com/rpggio/learnerhours/internal/redis"
	"github.com/rpggio/learnerhours/internal/repository"
	"github.com/rpggio/learnerhours/internal/sqlite"
)

// Backends holds the opened stores. Close releases everything that was opened.
type Backends struct {
	KV     repository.KVStore
	Caches offline.CacheStorage

	closers []func() error
}

// Close closes every backend, returning the joined errors.
func (b *Backends) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	b.closers = nil
	return errors.Join(errs...)
}

// Open opens the session store selected by cfg.Store.Driver. Offline caches
// live in SQLite when that is the driver and in memory otherwise.
func Open(cfg config.Config, logger *slog.Logger) (*Backends, error) {
	b := &Backends{}

	switch cfg.Store.Driver {
	case "", "sqlite":
		db, err := sqlite.New(cfg.DB.Path)
		if err != nil {
			return nil, err
		}
		if err := db.RunMigrations(); err != nil {
			db.Close()
			return nil, err
		}
		b.closers = append(b.closers, db.Close)
		b.KV = sqlite.NewKVStore(db)
		b.Caches = sqlite.NewCacheStorage(db)

	case "bbolt":
		store, err := bbolt.Open(cfg.Store.BoltPath, "")
		if err != nil {
			return nil, err
		}
		b.useKV(store)

	case "redis":
		store, err := redis.Open(redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		b.useKV(store)

	case "memory":
		b.useKV(memory.NewKVStore())

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	if b.Caches == nil {
		b.Caches = offline.NewMemoryStorage()
	}

	if logger != nil {
		logger.Info("storage opened", "driver", cfg.Store.Driver)
	}
	return b, nil
}

func (b *Backends) useKV(store repository.KVBackend) {
	b.KV = store
	b.closers = append(b.closers, store.Close)
}
