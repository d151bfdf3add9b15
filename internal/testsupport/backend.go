package testsupport

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// TestBackend is a Server listening on a local httptest server, with its hub
// and reminder sweeper running.
type TestBackend struct {
	*Server
	Store *ReminderStore
	Hub   *Hub
	HTTP  *httptest.Server
}

// NewTestBackend starts a backend over an in-memory store. Everything is
// torn down when the test ends.
func NewTestBackend(t *testing.T, opts ServerOptions) *TestBackend {
	t.Helper()

	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	store, err := NewReminderStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create reminder store: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(opts.Logger)
	go hub.Run(ctx)

	server := NewServer(store, hub, opts)
	go server.RunReminderSweeper(ctx, 50*time.Millisecond)

	ts := httptest.NewServer(server.Handler())

	t.Cleanup(func() {
		cancel()
		ts.Close()
		_ = store.Close()
	})

	return &TestBackend{Server: server, Store: store, Hub: hub, HTTP: ts}
}

// URL returns the backend base URL.
func (b *TestBackend) URL() string {
	return b.HTTP.URL
}

// WebSocketURL returns the websocket push endpoint.
func (b *TestBackend) WebSocketURL() string {
	return "ws" + strings.TrimPrefix(b.HTTP.URL, "http") + "/push"
}

// PollURL returns the polling push endpoint.
func (b *TestBackend) PollURL() string {
	return b.HTTP.URL + "/push/poll"
}

// WaitForConnections blocks until n websocket subscribers are registered.
func (b *TestBackend) WaitForConnections(t *testing.T, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for b.Hub.ConnectionCount() < n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d connections, have %d", n, b.Hub.ConnectionCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}
