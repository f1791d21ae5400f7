package testserver

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/learnerhours/internal/domain/hours"
	"github.com/rpggio/learnerhours/internal/mcp"
	"github.com/rpggio/learnerhours/internal/offline"
	"github.com/rpggio/learnerhours/internal/sqlite"
	"github.com/rpggio/learnerhours/internal/transport"
	"github.com/stretchr/testify/require"
)

type TestServer struct {
	Server   *httptest.Server
	DB       *sqlite.DB
	Sessions *hours.Service
	Worker   *offline.Worker
	Assets   fstest.MapFS
	Token    string
}

// DefaultAssets is a minimal app shell covering the default manifest.
func DefaultAssets() fstest.MapFS {
	return fstest.MapFS{
		"index.html":        {Data: []byte("<!doctype html><title>Learner Hours</title>")},
		"style.css":         {Data: []byte("body { font-family: sans-serif; }")},
		"app.js":            {Data: []byte("console.log('learner hours');")},
		"LearnerHours.json": {Data: []byte(`{"name":"Learner Hours","start_url":"/"}`)},
		"icons/wheel.svg":   {Data: []byte(`<svg xmlns="http://www.w3.org/2000/svg"/>`)},
	}
}

// New builds the full HTTP stack on an in-memory database. A non-empty
// token enables bearer authentication.
func New(t *testing.T, token string) *TestServer {
	t.Helper()
	ctx := context.Background()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	broker := transport.NewBroker(nil)
	sessions := hours.NewService(sqlite.NewKVStore(db), nil, hours.WithObserver(broker))

	assets := DefaultAssets()
	worker, err := offline.NewWorker(offline.Config{
		Storage: sqlite.NewCacheStorage(db),
		Network: offline.NewHandlerFetcher(http.FileServerFS(assets)),
	})
	require.NoError(t, err)
	require.NoError(t, worker.Install(ctx))
	require.NoError(t, worker.Activate(ctx))

	mcpServer := mcp.NewServer(mcp.Config{
		Sessions:      sessions,
		Validator:     transport.StaticToken(token),
		AuthEnabled:   token != "",
		TransportMode: "http",
	})
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(func(*http.Request) *sdkmcp.Server { return mcpServer }, nil)

	opts := transport.Options{
		Sessions: sessions,
		Events:   broker,
		MCP:      mcpHandler,
		Offline:  offline.NewHandler(worker),
	}
	if token != "" {
		opts.Auth = transport.AuthMiddleware(transport.StaticToken(token))
	}
	server := httptest.NewServer(transport.NewServer(opts))

	ts := &TestServer{
		Server:   server,
		DB:       db,
		Sessions: sessions,
		Worker:   worker,
		Assets:   assets,
		Token:    token,
	}

	t.Cleanup(func() {
		server.Close()
		_ = db.Close()
	})

	return ts
}

// Do sends a request with the server's bearer token.
func (ts *TestServer) Do(t *testing.T, req *http.Request) *http.Response {
	t.Helper()
	if ts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+ts.Token)
	}
	resp, err := ts.Server.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}
