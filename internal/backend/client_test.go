package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/xiaot623/gogo/remindchat/internal/protocol"
)

func TestClientSendPostsJSON(t *testing.T) {
	var gotHeaders http.Header
	var gotBody protocol.Payload

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		gotHeaders = r.Header.Clone()
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("failed to read body: %v", err)
		}
		if err := json.Unmarshal(body, &gotBody); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"response":"hi there"}`)
	}))
	defer server.Close()

	client := NewClient(server.URL+"/", time.Second)
	reply, err := client.Send(context.Background(), protocol.OutboundRequest{
		Destination: protocol.DestinationChat,
		Payload:     protocol.Payload{Message: "hello"},
	})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if reply.Text() != "hi there" {
		t.Fatalf("unexpected reply: %q", reply.Text())
	}
	if gotBody.Message != "hello" {
		t.Fatalf("unexpected payload: %+v", gotBody)
	}
	if gotHeaders.Get("Content-Type") != "application/json" {
		t.Fatalf("missing Content-Type header")
	}
	if !strings.HasPrefix(gotHeaders.Get("X-Request-ID"), "req_") {
		t.Fatalf("missing X-Request-ID header")
	}
}

func TestClientSendEachDestination(t *testing.T) {
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		fmt.Fprint(w, `{"response":"ok"}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	for _, d := range protocol.Destinations {
		if _, err := client.Send(context.Background(), protocol.OutboundRequest{Destination: d}); err != nil {
			t.Fatalf("Send to %s failed: %v", d, err)
		}
	}

	if len(paths) != len(protocol.Destinations) {
		t.Fatalf("expected %d requests, got %d", len(protocol.Destinations), len(paths))
	}
	for i, d := range protocol.Destinations {
		if paths[i] != string(d) {
			t.Fatalf("request %d went to %s, expected %s", i, paths[i], d)
		}
	}
}

func TestClientSendStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusMethodNotAllowed)
		fmt.Fprint(w, "method not allowed")
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	_, err := client.Send(context.Background(), protocol.OutboundRequest{Destination: protocol.DestinationListReminders})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !errors.Is(err, ErrUnexpectedStatus) {
		t.Fatalf("expected ErrUnexpectedStatus, got %v", err)
	}
	if !strings.Contains(err.Error(), "405") {
		t.Fatalf("expected status in error, got %v", err)
	}
}

func TestClientSendInvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>oops</html>")
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	if _, err := client.Send(context.Background(), protocol.OutboundRequest{Destination: protocol.DestinationChat}); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestClientSendUnknownDestination(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", time.Second)
	_, err := client.Send(context.Background(), protocol.OutboundRequest{Destination: "/admin"})
	if !errors.Is(err, ErrUnknownDestination) {
		t.Fatalf("expected ErrUnknownDestination, got %v", err)
	}
}

func TestClientSendTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(server.URL, 50*time.Millisecond)
	if _, err := client.Send(context.Background(), protocol.OutboundRequest{Destination: protocol.DestinationChat}); err == nil {
		t.Fatalf("expected timeout error")
	}
}
