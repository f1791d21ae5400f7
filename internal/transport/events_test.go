package transport

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/rpggio/learnerhours/internal/domain/hours"
	"github.com/stretchr/testify/require"
)

func readEvent(t *testing.T, r *bufio.Reader) Event {
	t.Helper()
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var ev Event
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev))
		return ev
	}
}

func TestEvents_StreamsSnapshotThenChanges(t *testing.T) {
	server, svc := newTestServer(t, Options{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/api/sessions/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	snapshot := readEvent(t, reader)
	require.Empty(t, snapshot.Sessions)

	created, err := svc.Create(ctx, hours.Input{Date: "2024-01-05", StartTime: "09:00", EndTime: "10:00"})
	require.NoError(t, err)

	ev := readEvent(t, reader)
	require.Len(t, ev.Sessions, 1)
	require.Equal(t, created.ID, ev.Sessions[0].ID)

	require.NoError(t, svc.Delete(ctx, created.ID))
	ev = readEvent(t, reader)
	require.Empty(t, ev.Sessions)
}

func TestBroker_SubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(nil)
	events, unsubscribe := b.Subscribe()
	require.Equal(t, 1, b.Subscribers())

	b.SessionsChanged(context.Background(), nil)
	ev := <-events
	require.NotNil(t, ev.Sessions)
	require.Empty(t, ev.Sessions)

	unsubscribe()
	require.Equal(t, 0, b.Subscribers())
}

func TestBroker_SlowSubscriberDoesNotBlock(t *testing.T) {
	b := NewBroker(nil)
	_, unsubscribe := b.Subscribe()
	defer unsubscribe()

	done := make(chan struct{})
	go func() {
		for range subscriberBuffer * 2 {
			b.SessionsChanged(context.Background(), []hours.Session{{ID: "a"}})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publisher blocked on a full subscriber")
	}
}
