package chat

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/xiaot623/gogo/remindchat/internal/protocol"
)

// Sender delivers an outbound request and returns the backend's reply.
type Sender interface {
	Send(ctx context.Context, req protocol.OutboundRequest) (*protocol.Reply, error)
}

// Options configures a Client.
type Options struct {
	Backend        Sender
	View           View
	Router         *Router
	BannerDuration time.Duration
	BannerPolicy   HidePolicy
	Logger         *slog.Logger
}

// Client is the context shared by the dispatcher and the listener: the
// backend transport, the transcript, the banner and the view they render to.
type Client struct {
	backend    Sender
	router     *Router
	view       View
	banner     *Banner
	transcript *Transcript
	logger     *slog.Logger

	// mu orders transcript appends with their view updates.
	mu sync.Mutex
}

// NewClient creates a client. Router defaults to DefaultRouter.
func NewClient(opts Options) *Client {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Router == nil {
		opts.Router = DefaultRouter()
	}
	return &Client{
		backend:    opts.Backend,
		router:     opts.Router,
		view:       opts.View,
		banner:     NewBanner(opts.View, opts.BannerDuration, opts.BannerPolicy),
		transcript: NewTranscript(),
		logger:     opts.Logger,
	}
}

// Dispatcher returns the dispatcher for outgoing messages.
func (c *Client) Dispatcher() *Dispatcher {
	return &Dispatcher{client: c}
}

// Listener returns the listener for pushed notifications.
func (c *Client) Listener() *Listener {
	return &Listener{client: c}
}

// Transcript returns the client's transcript.
func (c *Client) Transcript() *Transcript {
	return c.transcript
}

// Banner returns the client's notification banner.
func (c *Client) Banner() *Banner {
	return c.banner
}

// Router returns the client's router.
func (c *Client) Router() *Router {
	return c.router
}

// Close cancels pending banner hides.
func (c *Client) Close() {
	c.banner.Close()
}

// record appends an entry, renders it and scrolls to it.
func (c *Client) record(speaker Speaker, source Source, text string) Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.transcript.Append(speaker, source, text)
	c.view.AppendEntry(e)
	c.view.ScrollToLatest()
	return e
}
