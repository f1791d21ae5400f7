package offline_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/rpggio/learnerhours/internal/offline"
	"github.com/stretchr/testify/require"
)

func TestCacheKey(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"http://example.com", "/"},
		{"http://example.com/", "/"},
		{"http://example.com/app.js", "/app.js"},
		{"http://example.com/app.js?v=2", "/app.js?v=2"},
		{"/icons/wheel.svg", "/icons/wheel.svg"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			u, err := url.Parse(tt.raw)
			require.NoError(t, err)
			require.Equal(t, tt.want, offline.CacheKey(u))
		})
	}
}

func TestIsNavigation(t *testing.T) {
	nav := get("/")
	nav.Header.Set("Sec-Fetch-Mode", "navigate")
	require.True(t, offline.IsNavigation(nav))

	sub := get("/app.js")
	sub.Header.Set("Sec-Fetch-Mode", "no-cors")
	sub.Header.Set("Accept", "text/html")
	require.False(t, offline.IsNavigation(sub))

	html := get("/")
	html.Header.Set("Accept", "text/html")
	require.True(t, offline.IsNavigation(html))

	require.False(t, offline.IsNavigation(get("/style.css")))

	post := httptest.NewRequest(http.MethodPost, "/", nil)
	post.Header.Set("Sec-Fetch-Mode", "navigate")
	require.False(t, offline.IsNavigation(post))
}

func TestHandler_ReportsSource(t *testing.T) {
	network := newNetwork(assetFS())
	w := newActiveWorker(t, offline.NewMemoryStorage(), network)
	h := offline.NewHandler(w)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, get("/app.js"))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "cache", rec.Header().Get(offline.SourceHeader))
	require.Equal(t, "console.log('hi')", rec.Body.String())

	network.offline.Store(true)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, get("/unknown"))
	require.Equal(t, http.StatusRequestTimeout, rec.Code)
	require.Equal(t, "fallback", rec.Header().Get(offline.SourceHeader))
	require.Equal(t, "Network error happened", rec.Body.String())
}

func TestMemoryStorage(t *testing.T) {
	ctx := context.Background()
	s := offline.NewMemoryStorage()

	a, err := s.Open(ctx, "a")
	require.NoError(t, err)
	_, err = s.Open(ctx, "b")
	require.NoError(t, err)

	names, err := s.Keys(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, names)

	resp := &offline.Response{URL: "/x", Status: http.StatusOK, Body: []byte("x"), Type: offline.TypeBasic}
	require.NoError(t, a.Put(ctx, "/x", resp))
	resp.Body[0] = 'y'

	got, err := a.Match(ctx, "/x")
	require.NoError(t, err)
	require.Equal(t, "x", string(got.Body))

	deleted, err := s.Delete(ctx, "a")
	require.NoError(t, err)
	require.True(t, deleted)
	deleted, err = s.Delete(ctx, "a")
	require.NoError(t, err)
	require.False(t, deleted)

	again, err := s.Open(ctx, "a")
	require.NoError(t, err)
	keys, err := again.Keys(ctx)
	require.NoError(t, err)
	require.Empty(t, keys)
}
