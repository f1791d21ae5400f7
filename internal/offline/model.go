package offline

import (
	"net/http"
	"strconv"
)

// State is a worker lifecycle state.
type State string

const (
	StateNew        State = "new"
	StateInstalling State = "installing"
	StateInstalled  State = "installed"
	StateActivating State = "activating"
	StateActive     State = "activated"
	StateRedundant  State = "redundant"
)

// ResponseType says where a response came from, relative to the page.
type ResponseType string

const (
	TypeBasic  ResponseType = "basic"
	TypeCORS   ResponseType = "cors"
	TypeOpaque ResponseType = "opaque"
	TypeError  ResponseType = "error"
)

// Source records how the worker produced a response.
type Source string

const (
	SourceCache    Source = "cache"
	SourceNetwork  Source = "network"
	SourceFallback Source = "fallback"
)

// SourceHeader carries the response Source to the client.
const SourceHeader = "X-Offline-Source"

// Response is a fully buffered HTTP response that can be cached.
type Response struct {
	URL    string       `json:"url"`
	Status int          `json:"status"`
	Header http.Header  `json:"header"`
	Body   []byte       `json:"body"`
	Type   ResponseType `json:"type"`
	Source Source       `json:"-"`
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r != nil && r.Status >= 200 && r.Status < 300
}

// Cacheable reports whether a network response may be stored: a 200 from
// the page's own origin.
func (r *Response) Cacheable() bool {
	return r != nil && r.Status == http.StatusOK && r.Type == TypeBasic
}

// Clone returns a deep copy.
func (r *Response) Clone() *Response {
	if r == nil {
		return nil
	}
	c := *r
	c.Header = r.Header.Clone()
	c.Body = append([]byte(nil), r.Body...)
	return &c
}

// Render writes the response to w.
func (r *Response) Render(w http.ResponseWriter) {
	h := w.Header()
	for k, values := range r.Header {
		for _, v := range values {
			h.Add(k, v)
		}
	}
	if r.Source != "" {
		h.Set(SourceHeader, string(r.Source))
	}
	h.Set("Content-Length", strconv.Itoa(len(r.Body)))
	w.WriteHeader(r.Status)
	_, _ = w.Write(r.Body)
}

func fallbackResponse(url string, status int, body string) *Response {
	header := http.Header{}
	header.Set("Content-Type", "text/plain; charset=utf-8")
	return &Response{
		URL:    url,
		Status: status,
		Header: header,
		Body:   []byte(body),
		Type:   TypeError,
		Source: SourceFallback,
	}
}

func networkErrorResponse(url string) *Response {
	return fallbackResponse(url, http.StatusRequestTimeout, "Network error happened")
}
