package offline

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strconv"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Upgrader is the part of Worker the Watcher drives.
type Upgrader interface {
	Version() string
	Upgrade(ctx context.Context, version string) error
}

// Watcher upgrades the worker to a fresh cache version whenever the asset
// directory changes, so edited assets stop being served from a stale cache.
type Watcher struct {
	dir      string
	worker   Upgrader
	debounce time.Duration
	logger   *slog.Logger
	base     string
	gen      int
}

// NewWatcher creates a watcher for dir. Bursts of file events closer than
// debounce trigger a single upgrade.
func NewWatcher(dir string, worker Upgrader, debounce time.Duration, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if debounce <= 0 {
		debounce = 250 * time.Millisecond
	}
	return &Watcher{
		dir:      dir,
		worker:   worker,
		debounce: debounce,
		logger:   logger,
		base:     worker.Version(),
	}
}

// Run watches until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := w.addTree(fw, w.dir); err != nil {
		return err
	}
	w.logger.Info("watching assets", "dir", w.dir)

	// Timers never deliver stale values after Stop or Reset (Go 1.23+).
	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create == fsnotify.Create {
				// New subdirectories must be watched too.
				_ = w.addTree(fw, event.Name)
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(w.debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("asset watcher error", "error", err)
		case <-timer.C:
			w.upgrade(ctx)
		}
	}
}

func (w *Watcher) upgrade(ctx context.Context) {
	w.gen++
	version := w.base + "." + strconv.Itoa(w.gen)
	if err := w.worker.Upgrade(ctx, version); err != nil {
		w.logger.Error("offline cache upgrade failed", "version", version, "error", err)
		return
	}
	w.logger.Info("assets changed, cache upgraded", "version", version)
}

func (w *Watcher) addTree(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}
