// Package backend provides the HTTP client for the reminder bot's message endpoints.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/xiaot623/gogo/remindchat/internal/protocol"
)

// ErrUnexpectedStatus is returned when the backend answers with a non-2xx status.
var ErrUnexpectedStatus = errors.New("unexpected status")

// ErrUnknownDestination is returned for a destination outside the fixed set.
var ErrUnknownDestination = errors.New("unknown destination")

// maxErrorBody caps how much of an error body is quoted in returned errors.
const maxErrorBody = 512

// Client posts user messages to the backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new backend client. A zero timeout disables the request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Send posts req to its destination and decodes the reply.
func (c *Client) Send(ctx context.Context, req protocol.OutboundRequest) (*protocol.Reply, error) {
	if !req.Destination.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDestination, req.Destination)
	}

	body, err := json.Marshal(req.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.baseURL + string(req.Destination)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", "req_"+uuid.New().String())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to post %s: %w", req.Destination, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("%w %d from %s: %s", ErrUnexpectedStatus, resp.StatusCode, req.Destination, strings.TrimSpace(string(bodyBytes)))
	}

	var reply protocol.Reply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return nil, fmt.Errorf("failed to decode reply from %s: %w", req.Destination, err)
	}
	return &reply, nil
}
