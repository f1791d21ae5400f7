package offline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	maxBodyBytes = 32 << 20
	maxRedirects = 10
)

// HTTPFetcher fetches from a remote origin over HTTP.
type HTTPFetcher struct {
	client *http.Client
	origin *url.URL
}

// NewHTTPFetcher creates a fetcher for origin. A nil client gets a default
// one with a timeout.
func NewHTTPFetcher(origin string, client *http.Client) (*HTTPFetcher, error) {
	u, err := url.Parse(strings.TrimSpace(origin))
	if err != nil {
		return nil, fmt.Errorf("parse origin: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("origin %q must be an absolute URL", origin)
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPFetcher{client: client, origin: u}, nil
}

// Fetch sends req to the origin and buffers the response.
func (f *HTTPFetcher) Fetch(ctx context.Context, req *http.Request) (*Response, error) {
	target := f.origin.ResolveReference(&url.URL{Path: req.URL.Path, RawQuery: req.URL.RawQuery})

	var body io.Reader
	if req.Body != nil && req.Method != http.MethodGet && req.Method != http.MethodHead {
		body = req.Body
	}
	out, err := http.NewRequestWithContext(ctx, req.Method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	out.Header = req.Header.Clone()

	resp, err := f.client.Do(out)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", target, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", target, err)
	}
	if len(data) > maxBodyBytes {
		return nil, fmt.Errorf("fetch %s: body exceeds %d bytes", target, maxBodyBytes)
	}

	typ := TypeBasic
	if resp.Request.URL.Host != f.origin.Host {
		typ = TypeCORS
	}
	return &Response{
		URL:    resp.Request.URL.String(),
		Status: resp.StatusCode,
		Header: resp.Header.Clone(),
		Body:   data,
		Type:   typ,
		Source: SourceNetwork,
	}, nil
}

// HandlerFetcher serves requests from an in-process handler, typically a
// static file server for the asset directory.
type HandlerFetcher struct {
	handler http.Handler
}

// NewHandlerFetcher wraps h.
func NewHandlerFetcher(h http.Handler) *HandlerFetcher {
	return &HandlerFetcher{handler: h}
}

// Fetch runs the handler and follows redirects the way a client would.
func (f *HandlerFetcher) Fetch(ctx context.Context, req *http.Request) (*Response, error) {
	out := req.Clone(ctx)
	// Cached copies must be full bodies.
	out.Header.Del("If-Modified-Since")
	out.Header.Del("If-None-Match")
	out.Header.Del("Range")

	for range maxRedirects {
		rec := newBufferedWriter()
		f.handler.ServeHTTP(rec, out)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}

		location := rec.header.Get("Location")
		if !isRedirect(rec.status) || location == "" {
			return &Response{
				URL:    out.URL.String(),
				Status: rec.status,
				Header: rec.header,
				Body:   rec.body.Bytes(),
				Type:   TypeBasic,
				Source: SourceNetwork,
			}, nil
		}

		next, err := out.URL.Parse(location)
		if err != nil {
			return nil, fmt.Errorf("redirect %q: %w", location, err)
		}
		out = out.Clone(ctx)
		out.URL = next
		out.RequestURI = next.RequestURI()
	}
	return nil, fmt.Errorf("fetch %s: too many redirects", req.URL.Path)
}

func isRedirect(status int) bool {
	switch status {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}

type bufferedWriter struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func newBufferedWriter() *bufferedWriter {
	return &bufferedWriter{header: http.Header{}}
}

func (w *bufferedWriter) Header() http.Header {
	return w.header
}

func (w *bufferedWriter) WriteHeader(status int) {
	if w.status == 0 {
		w.status = status
	}
}

func (w *bufferedWriter) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.body.Write(p)
}
