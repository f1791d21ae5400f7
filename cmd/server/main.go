package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/learnerhours/internal/config"
	"github.com/rpggio/learnerhours/internal/domain/hours"
	"github.com/rpggio/learnerhours/internal/mcp"
	"github.com/rpggio/learnerhours/internal/offline"
	"github.com/rpggio/learnerhours/internal/storage"
	"github.com/rpggio/learnerhours/internal/transport"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// Use stderr for logs in stdio mode to keep stdout clean for JSON-RPC.
	logWriter := io.Writer(os.Stdout)
	if cfg.Transport.Mode == "stdio" {
		logWriter = os.Stderr
	}
	if cfg.Log.Path != "" {
		fileWriter, file, err := newLogFileWriter(cfg.Log.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			defer file.Close()
			logWriter = fileWriter
		}
	}
	logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	if err := ensureStoreDir(cfg); err != nil {
		logger.Error("failed to prepare database path", "driver", cfg.Store.Driver, "error", err)
		os.Exit(1)
	}

	backends, err := storage.Open(cfg, logger)
	if err != nil {
		logger.Error("failed to open storage", "driver", cfg.Store.Driver, "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := backends.Close(); err != nil {
			logger.Error("failed to close storage", "error", err)
		}
	}()

	broker := transport.NewBroker(logger)
	sessionSvc := hours.NewService(backends.KV, logger,
		hours.WithKey(cfg.Store.Key),
		hours.WithObserver(broker),
	)
	logger.Info("session store ready", "key", sessionSvc.Key())

	mcpServer := mcp.NewServer(mcp.Config{
		Sessions:      sessionSvc,
		Validator:     transport.StaticToken(cfg.Auth.Token),
		AuthEnabled:   cfg.Auth.Enabled,
		TransportMode: cfg.Transport.Mode,
		Version:       version,
		Logger:        logger,
	})

	// Branch based on transport mode
	if cfg.Transport.Mode == "stdio" {
		runStdioMode(logger, mcpServer)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	worker, err := startOffline(ctx, cfg, backends.Caches, logger)
	if err != nil {
		logger.Error("failed to start offline cache", "error", err)
		os.Exit(1)
	}

	opts := transport.Options{
		Sessions: sessionSvc,
		Events:   broker,
		Logger:   logger,
	}
	if worker != nil {
		opts.Offline = offline.NewHandler(worker)
	}
	if cfg.Auth.Enabled {
		opts.Auth = transport.AuthMiddleware(transport.StaticToken(cfg.Auth.Token))
	}
	runHTTPMode(logger, mcpServer, opts, cfg.Server.Host, cfg.Server.Port)
}

// startOffline installs and activates the offline cache in front of the
// configured asset source. It returns a nil worker when no source is set.
// Install failures are logged; the worker keeps passing requests through.
func startOffline(ctx context.Context, cfg config.Config, caches offline.CacheStorage, logger *slog.Logger) (*offline.Worker, error) {
	var network offline.Fetcher
	switch {
	case cfg.Offline.AssetsDir != "":
		if _, err := os.Stat(cfg.Offline.AssetsDir); err != nil {
			logger.Warn("offline assets unavailable", "dir", cfg.Offline.AssetsDir, "error", err)
			return nil, nil
		}
		network = offline.NewHandlerFetcher(http.FileServer(http.Dir(cfg.Offline.AssetsDir)))
	case cfg.Offline.Origin != "":
		fetcher, err := offline.NewHTTPFetcher(cfg.Offline.Origin, nil)
		if err != nil {
			return nil, err
		}
		network = fetcher
	default:
		return nil, nil
	}

	worker, err := offline.NewWorker(offline.Config{
		Prefix:   cfg.Offline.Prefix,
		Version:  cfg.Offline.Version,
		Manifest: cfg.Offline.Manifest,
		Storage:  caches,
		Network:  network,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}

	// Install logs its own failure.
	if err := worker.Install(ctx); err != nil {
		return worker, nil
	}
	if err := worker.Activate(ctx); err != nil {
		logger.Error("offline activation failed", "cache", worker.CacheName(), "error", err)
		return worker, nil
	}
	logger.Info("offline cache active", "cache", worker.CacheName(), "assets", len(worker.Manifest()))

	if cfg.Offline.Watch && cfg.Offline.AssetsDir != "" {
		watcher := offline.NewWatcher(cfg.Offline.AssetsDir, worker, 0, logger)
		go func() {
			if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("asset watcher stopped", "error", err)
			}
		}()
	}
	return worker, nil
}

func runStdioMode(logger *slog.Logger, mcpServer *sdkmcp.Server) {
	logger.Info("starting stdio transport", "auth", "disabled")

	transport := &sdkmcp.StdioTransport{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-stop
		logger.Info("shutting down")
		cancel()
	}()

	// Run blocks until stdin closes or context is canceled
	if err := mcpServer.Run(ctx, transport); err != nil {
		logger.Error("stdio server error", "error", err)
	}
}

func runHTTPMode(logger *slog.Logger, mcpServer *sdkmcp.Server, opts transport.Options, host string, port int) {
	opts.MCP = sdkmcp.NewStreamableHTTPHandler(
		func(r *http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{
			Stateless:      false,
			SessionTimeout: 30 * time.Minute,
		},
	)

	addr := fmt.Sprintf("%s:%d", host, port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           transport.NewServer(opts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
		}
	}()

	waitForShutdown(logger, httpServer)
}

// ensureStoreDir creates the parent directory of the file-backed store the
// driver will open.
func ensureStoreDir(cfg config.Config) error {
	switch cfg.Store.Driver {
	case "", "sqlite":
		return ensureDBDir(cfg.DB.Path)
	case "bbolt":
		return ensureDBDir(cfg.Store.BoltPath)
	}
	return nil
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func waitForShutdown(logger *slog.Logger, server *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

const (
	maxLogSizeBytes  = 6 * 1024 * 1024
	keepLogSizeBytes = 5 * 1024 * 1024
)

type logFileWriter struct {
	path string
	file *os.File
	mu   sync.Mutex
}

func newLogFileWriter(path string) (*logFileWriter, *os.File, error) {
	if err := ensureLogDir(path); err != nil {
		return nil, nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	writer := &logFileWriter{path: path, file: file}
	if err := writer.truncateIfNeeded(); err != nil {
		return nil, nil, err
	}
	return writer, file, nil
}

func ensureLogDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func (w *logFileWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n, err := w.file.Write(p)
	if err != nil {
		return n, err
	}
	if err := w.truncateIfNeeded(); err != nil {
		return n, err
	}
	return n, nil
}

func (w *logFileWriter) truncateIfNeeded() error {
	info, err := w.file.Stat()
	if err != nil {
		return err
	}
	size := info.Size()
	if size <= maxLogSizeBytes {
		return nil
	}
	if size <= keepLogSizeBytes {
		return nil
	}

	buf := make([]byte, keepLogSizeBytes)
	if _, err := w.file.Seek(size-keepLogSizeBytes, io.SeekStart); err != nil {
		return err
	}
	n, err := w.file.Read(buf)
	if err != nil && err != io.EOF {
		return err
	}
	buf = buf[:n]

	if err := w.file.Truncate(0); err != nil {
		return err
	}
	if _, err := w.file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if _, err := w.file.Write(buf); err != nil {
		return err
	}
	_, err = w.file.Seek(0, io.SeekEnd)
	return err
}
