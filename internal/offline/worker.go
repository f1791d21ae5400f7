package offline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"sync"

	"github.com/rpggio/learnerhours/internal/repository"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultPrefix  = "learner-hours"
	DefaultVersion = "v1"
)

// DefaultManifest is the app shell cached at install time.
var DefaultManifest = []string{
	"/",
	"/index.html",
	"/style.css",
	"/app.js",
	"/LearnerHours.json",
	"/icons/wheel.svg",
}

var (
	// ErrInstallFailed indicates a manifest entry could not be fetched.
	ErrInstallFailed = errors.New("install failed")
	// ErrNotInstalled indicates Activate was called before a successful Install.
	ErrNotInstalled = errors.New("worker not installed")
)

// Config configures a Worker.
type Config struct {
	Prefix   string
	Version  string
	Manifest []string
	Storage  CacheStorage
	Network  Fetcher
	// Claim is called once activation has removed stale caches, to take
	// control of already-open clients.
	Claim  func(ctx context.Context) error
	Logger *slog.Logger
}

// Worker is the offline cache layer in front of the asset origin.
type Worker struct {
	cfg Config

	mu      sync.RWMutex
	version string
	state   State
	claimed bool

	upgradeMu sync.Mutex
}

// NewWorker creates a worker in the new state.
func NewWorker(cfg Config) (*Worker, error) {
	if cfg.Storage == nil {
		return nil, errors.New("cache storage is required")
	}
	if cfg.Network == nil {
		return nil, errors.New("network fetcher is required")
	}
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultPrefix
	}
	if cfg.Version == "" {
		cfg.Version = DefaultVersion
	}
	if len(cfg.Manifest) == 0 {
		cfg.Manifest = DefaultManifest
	}
	cfg.Manifest = slices.Clone(cfg.Manifest)
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Worker{cfg: cfg, version: cfg.Version, state: StateNew}, nil
}

// CacheName builds the version-qualified cache name.
func CacheName(prefix, version string) string {
	return prefix + "-" + version
}

// CacheName returns the name of the cache the worker serves from.
func (w *Worker) CacheName() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return CacheName(w.cfg.Prefix, w.version)
}

// Version returns the current version.
func (w *Worker) Version() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.version
}

// State returns the lifecycle state.
func (w *Worker) State() State {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state
}

// Claimed reports whether the worker has taken control of clients.
func (w *Worker) Claimed() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.claimed
}

// Manifest returns the asset paths cached at install.
func (w *Worker) Manifest() []string {
	return slices.Clone(w.cfg.Manifest)
}

// Install populates the current cache with every manifest entry. Any
// failure aborts the install and leaves the cache without new entries.
func (w *Worker) Install(ctx context.Context) error {
	w.setState(StateInstalling)
	name := w.CacheName()

	if err := w.install(ctx, name); err != nil {
		w.setState(StateRedundant)
		w.cfg.Logger.Error("offline install failed", "cache", name, "error", err)
		return err
	}

	w.setState(StateInstalled)
	w.cfg.Logger.Info("offline cache installed", "cache", name, "entries", len(w.cfg.Manifest))
	return nil
}

// Activate deletes every cache other than the current one and then claims
// clients. All deletions finish before the worker becomes active.
func (w *Worker) Activate(ctx context.Context) error {
	w.mu.Lock()
	if w.state != StateInstalled {
		w.mu.Unlock()
		return ErrNotInstalled
	}
	w.state = StateActivating
	name := CacheName(w.cfg.Prefix, w.version)
	w.mu.Unlock()

	return w.activate(ctx, name)
}

// Upgrade installs version alongside the current cache and, once that
// succeeds, activates it. The old cache keeps serving until then; a failed
// install leaves the worker on its current version.
func (w *Worker) Upgrade(ctx context.Context, version string) error {
	w.upgradeMu.Lock()
	defer w.upgradeMu.Unlock()

	if version == "" || version == w.Version() {
		return nil
	}

	name := CacheName(w.cfg.Prefix, version)
	if err := w.install(ctx, name); err != nil {
		if _, derr := w.cfg.Storage.Delete(ctx, name); derr != nil {
			w.cfg.Logger.Warn("failed to discard partial cache", "cache", name, "error", derr)
		}
		return err
	}

	w.mu.Lock()
	w.version = version
	w.state = StateActivating
	w.mu.Unlock()

	w.cfg.Logger.Info("offline cache upgraded", "cache", name)
	return w.activate(ctx, name)
}

func (w *Worker) install(ctx context.Context, name string) error {
	cache, err := w.cfg.Storage.Open(ctx, name)
	if err != nil {
		return fmt.Errorf("opening cache %s: %w", name, err)
	}
	return addAll(ctx, cache, w.cfg.Network, w.cfg.Manifest)
}

func (w *Worker) activate(ctx context.Context, name string) error {
	if err := w.deleteStale(ctx, name); err != nil {
		w.setState(StateInstalled)
		return err
	}

	if w.cfg.Claim != nil {
		if err := w.cfg.Claim(ctx); err != nil {
			w.setState(StateInstalled)
			return fmt.Errorf("claiming clients: %w", err)
		}
	}

	w.mu.Lock()
	w.state = StateActive
	w.claimed = true
	w.mu.Unlock()
	return nil
}

func (w *Worker) deleteStale(ctx context.Context, keep string) error {
	names, err := w.cfg.Storage.Keys(ctx)
	if err != nil {
		return fmt.Errorf("listing caches: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, name := range names {
		if name == keep {
			continue
		}
		g.Go(func() error {
			if _, err := w.cfg.Storage.Delete(gctx, name); err != nil {
				return fmt.Errorf("deleting cache %s: %w", name, err)
			}
			w.cfg.Logger.Info("deleted stale cache", "cache", name)
			return nil
		})
	}
	return g.Wait()
}

// addAll fetches every path and stores the responses only if all of them
// succeeded.
func addAll(ctx context.Context, cache Cache, network Fetcher, paths []string) error {
	responses := make([]*Response, len(paths))
	keys := make([]string, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			req, err := http.NewRequestWithContext(gctx, http.MethodGet, path, nil)
			if err != nil {
				return fmt.Errorf("%w: %s: %v", ErrInstallFailed, path, err)
			}
			resp, err := network.Fetch(gctx, req)
			if err != nil {
				return fmt.Errorf("%w: %s: %v", ErrInstallFailed, path, err)
			}
			if !resp.OK() {
				return fmt.Errorf("%w: %s returned %d", ErrInstallFailed, path, resp.Status)
			}
			responses[i] = resp
			keys[i] = CacheKey(req.URL)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	entries := make(map[string]*Response, len(paths))
	for i := range paths {
		entries[keys[i]] = responses[i]
	}
	if err := cache.PutAll(ctx, entries); err != nil {
		return fmt.Errorf("storing manifest: %w", err)
	}
	return nil
}

// Fetch answers a request the way the page would see it. It never fails:
// a network failure becomes a synthetic error response.
func (w *Worker) Fetch(ctx context.Context, req *http.Request) *Response {
	w.mu.RLock()
	serving := w.state == StateActive || (w.claimed && w.state == StateActivating)
	name := CacheName(w.cfg.Prefix, w.version)
	w.mu.RUnlock()

	if !serving || req.Method != http.MethodGet {
		return w.network(ctx, req)
	}

	cache, err := w.cfg.Storage.Open(ctx, name)
	if err != nil {
		w.cfg.Logger.Warn("cache unavailable", "cache", name, "error", err)
		return w.network(ctx, req)
	}

	if IsNavigation(req) {
		return w.navigate(ctx, cache)
	}

	key := CacheKey(req.URL)
	if resp, ok := w.match(ctx, cache, key); ok {
		return resp
	}

	resp := w.network(ctx, req)
	w.store(ctx, cache, key, resp)
	return resp
}

// navigate serves the cached root document for every page load. If the
// root was never cached the network is tried for it before giving up.
func (w *Worker) navigate(ctx context.Context, cache Cache) *Response {
	if resp, ok := w.match(ctx, cache, "/"); ok {
		return resp
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "/", nil)
	if err != nil {
		return fallbackResponse("/", http.StatusServiceUnavailable, "App shell unavailable")
	}
	resp := w.network(ctx, req)
	if !resp.OK() {
		return fallbackResponse("/", http.StatusServiceUnavailable, "App shell unavailable")
	}
	w.store(ctx, cache, "/", resp)
	return resp
}

func (w *Worker) match(ctx context.Context, cache Cache, key string) (*Response, bool) {
	resp, err := cache.Match(ctx, key)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			w.cfg.Logger.Warn("cache lookup failed", "key", key, "error", err)
		}
		return nil, false
	}
	resp.Source = SourceCache
	return resp, true
}

func (w *Worker) store(ctx context.Context, cache Cache, key string, resp *Response) {
	if resp.Source != SourceNetwork || !resp.Cacheable() {
		return
	}
	if err := cache.Put(ctx, key, resp.Clone()); err != nil {
		w.cfg.Logger.Warn("cache store failed", "key", key, "error", err)
	}
}

func (w *Worker) network(ctx context.Context, req *http.Request) *Response {
	resp, err := w.cfg.Network.Fetch(ctx, req)
	if err != nil || resp == nil {
		w.cfg.Logger.Debug("network fetch failed", "url", req.URL.String(), "error", err)
		return networkErrorResponse(req.URL.String())
	}
	resp.Source = SourceNetwork
	return resp
}

func (w *Worker) setState(state State) {
	w.mu.Lock()
	w.state = state
	w.mu.Unlock()
}
