package offline

import (
	"net/http"
	"net/url"
	"strings"
)

// CacheKey identifies a request in a cache: its path plus query.
func CacheKey(u *url.URL) string {
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		return path + "?" + u.RawQuery
	}
	return path
}

// IsNavigation reports whether req is a full page load.
// Browsers send Sec-Fetch-Mode; older clients are recognized by asking for HTML.
func IsNavigation(req *http.Request) bool {
	if req.Method != http.MethodGet {
		return false
	}
	if mode := req.Header.Get("Sec-Fetch-Mode"); mode != "" {
		return mode == "navigate"
	}
	return strings.Contains(req.Header.Get("Accept"), "text/html")
}

// NewHandler serves every request through the worker.
func NewHandler(w *Worker) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		w.Fetch(r.Context(), r).Render(rw)
	})
}
