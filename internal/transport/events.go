package transport

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/rpggio/learnerhours/internal/domain/hours"
)

// subscriberBuffer bounds how far a slow client may fall behind before
// updates to it are dropped.
const subscriberBuffer = 16

// Event is one list snapshot pushed to subscribers.
type Event struct {
	Sessions []hours.Session `json:"sessions"`
}

// Broker fans session list changes out to SSE subscribers. It implements
// hours.Observer.
type Broker struct {
	mu     sync.Mutex
	subs   map[chan Event]struct{}
	logger *slog.Logger
}

// NewBroker creates a Broker with no subscribers.
func NewBroker(logger *slog.Logger) *Broker {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Broker{subs: make(map[chan Event]struct{}), logger: logger}
}

// SessionsChanged publishes the new list. It never blocks the caller.
func (b *Broker) SessionsChanged(_ context.Context, sessions []hours.Session) {
	if sessions == nil {
		sessions = []hours.Session{}
	}
	ev := Event{Sessions: sessions}

	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
			b.logger.Warn("dropping session event for slow subscriber")
		}
	}
}

// Subscribe registers a subscriber. The returned func unsubscribes.
func (b *Broker) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	return ch, func() {
		b.mu.Lock()
		delete(b.subs, ch)
		b.mu.Unlock()
	}
}

// Subscribers returns the current subscriber count.
func (b *Broker) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// handleEvents streams the current list, then every change, until the
// client goes away.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, CodeInternal, "streaming unsupported")
		return
	}

	// Subscribe before reading the snapshot so no change falls in between.
	events, unsubscribe := s.events.Subscribe()
	defer unsubscribe()

	sessions, err := s.sessions.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if err := writeEvent(w, Event{Sessions: sessions}); err != nil {
		return
	}
	flusher.Flush()

	for {
		select {
		case ev := <-events:
			if err := writeEvent(w, ev); err != nil {
				return
			}
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}

func writeEvent(w io.Writer, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte("data: ")); err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err = w.Write([]byte("\n\n"))
	return err
}
