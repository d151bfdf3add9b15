package push

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/xiaot623/gogo/remindchat/internal/protocol"
)

// Options configures a push client.
type Options struct {
	// Transports in preference order.
	Transports []string

	WebSocketURL string
	Header       http.Header
	// ReadTimeout bounds the silence tolerated on a websocket; server pings
	// extend it.
	ReadTimeout time.Duration

	PollURL      string
	PollInterval time.Duration
	HTTPClient   *http.Client

	ReconnectBaseDelay time.Duration
	ReconnectMaxDelay  time.Duration
}

// Client connects to the server over the first working transport and
// dispatches received events to registered handlers.
type Client struct {
	opts       Options
	logger     *slog.Logger
	transports []Transport

	mu       sync.RWMutex
	handlers map[string][]Handler
	active   string
}

// NewClient builds a client for the configured transport preference list.
// Transports this client cannot speak are skipped with a warning.
func NewClient(opts Options, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = DefaultReadTimeout
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}
	if opts.ReconnectBaseDelay <= 0 {
		opts.ReconnectBaseDelay = time.Second
	}
	if opts.ReconnectMaxDelay < opts.ReconnectBaseDelay {
		opts.ReconnectMaxDelay = opts.ReconnectBaseDelay
	}

	c := &Client{
		opts:     opts,
		logger:   logger,
		handlers: make(map[string][]Handler),
	}

	for _, name := range opts.Transports {
		switch name {
		case protocol.TransportWebSocket:
			c.transports = append(c.transports, newWebSocketTransport(opts.WebSocketURL, opts.Header, opts.ReadTimeout, logger))
		case protocol.TransportPolling:
			c.transports = append(c.transports, newPollTransport(opts.PollURL, opts.PollInterval, opts.HTTPClient, logger))
		case protocol.TransportFlashSocket:
			logger.Warn("skipping push transport", "transport", name, "error", ErrUnsupportedTransport)
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownTransport, name)
		}
	}

	if len(c.transports) == 0 {
		return nil, ErrNoTransport
	}
	return c, nil
}

// newClientWithTransports is used by tests to inject transports.
func newClientWithTransports(opts Options, logger *slog.Logger, transports ...Transport) *Client {
	c := &Client{
		opts:       opts,
		logger:     logger,
		transports: transports,
		handlers:   make(map[string][]Handler),
	}
	return c
}

// On registers a handler for event. Handlers run on the client's read
// goroutine in registration order.
func (c *Client) On(event string, h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[event] = append(c.handlers[event], h)
}

// Transport returns the name of the currently connected transport, or "".
func (c *Client) Transport() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active
}

// Run keeps a push connection open until ctx is cancelled. Each round tries
// the transports in preference order; when all fail it waits with
// exponential backoff before the next round.
func (c *Client) Run(ctx context.Context) error {
	wait := c.opts.ReconnectBaseDelay

	for {
		connected := false
		for _, t := range c.transports {
			err := t.Stream(ctx, func() {
				connected = true
				c.setActive(t.Name())
				c.logger.Info("push connected", "transport", t.Name())
			}, c.dispatch)
			c.setActive("")

			if ctx.Err() != nil {
				return nil
			}
			c.logger.Warn("push transport failed", "transport", t.Name(), "error", err)
			if connected {
				// A live connection dropped; restart from the preferred transport.
				break
			}
		}

		if connected {
			wait = c.opts.ReconnectBaseDelay
		}

		c.logger.Info("push reconnecting", "wait", wait)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(wait):
		}

		if !connected {
			wait = nextBackoff(wait, c.opts.ReconnectMaxDelay)
		}
	}
}

func (c *Client) setActive(name string) {
	c.mu.Lock()
	c.active = name
	c.mu.Unlock()
}

func (c *Client) dispatch(frame protocol.Frame) {
	c.mu.RLock()
	handlers := c.handlers[frame.Event]
	c.mu.RUnlock()

	if len(handlers) == 0 {
		c.logger.Debug("ignoring push event", "event", frame.Event)
		return
	}
	for _, h := range handlers {
		h(json.RawMessage(frame.Data))
	}
}

func nextBackoff(wait, max time.Duration) time.Duration {
	wait *= 2
	if wait > max {
		wait = max
	}
	return wait
}
