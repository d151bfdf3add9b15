package push

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/xiaot623/gogo/remindchat/internal/protocol"
)

// pollTransport long-polls an HTTP endpoint for frames.
//
// The first request carries no cursor and only learns the server's current
// cursor, so events published before the client connected are not replayed.
type pollTransport struct {
	url        string
	interval   time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

func newPollTransport(url string, interval time.Duration, httpClient *http.Client, logger *slog.Logger) *pollTransport {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &pollTransport{
		url:        url,
		interval:   interval,
		httpClient: httpClient,
		logger:     logger,
	}
}

func (t *pollTransport) Name() string { return protocol.TransportPolling }

func (t *pollTransport) Stream(ctx context.Context, onOpen func(), deliver func(protocol.Frame)) error {
	var cursor *int64
	for {
		resp, err := t.poll(ctx, cursor)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		handshake := cursor == nil
		if handshake {
			onOpen()
			t.logger.Debug("polling connected", "url", t.url, "cursor", resp.Cursor)
		} else {
			for _, frame := range resp.Events {
				deliver(frame)
			}
		}
		next := resp.Cursor
		cursor = &next

		if !handshake && len(resp.Events) == 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(t.interval):
			}
		}
	}
}

func (t *pollTransport) poll(ctx context.Context, cursor *int64) (*protocol.PollResponse, error) {
	u, err := url.Parse(t.url)
	if err != nil {
		return nil, fmt.Errorf("parse poll url: %w", err)
	}
	if cursor != nil {
		q := u.Query()
		q.Set("cursor", strconv.FormatInt(*cursor, 10))
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create poll request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("poll %s: %w", t.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("poll returned status %d: %s", resp.StatusCode, string(body))
	}

	var out protocol.PollResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode poll response: %w", err)
	}
	return &out, nil
}
