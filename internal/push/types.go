// Package push receives server-pushed events over a prioritised list of transports.
package push

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/xiaot623/gogo/remindchat/internal/protocol"
)

// Errors
var (
	ErrNoTransport          = errors.New("no usable push transport configured")
	ErrUnsupportedTransport = errors.New("transport not supported by this client")
	ErrUnknownTransport     = errors.New("unknown transport")
)

// Handler receives the data of one event.
type Handler func(data json.RawMessage)

// Transport streams frames from the server until the context ends or the
// connection fails.
type Transport interface {
	// Name returns the transport's preference-list name.
	Name() string

	// Stream connects, calls onOpen once connected, then calls deliver for
	// every frame in arrival order. It always returns a non-nil error.
	Stream(ctx context.Context, onOpen func(), deliver func(protocol.Frame)) error
}
