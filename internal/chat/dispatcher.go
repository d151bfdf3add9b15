package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/xiaot623/gogo/remindchat/internal/protocol"
)

// Dispatcher sends user messages to the destination chosen by the router.
type Dispatcher struct {
	client *Client
}

// Route returns the request that would be sent for input.
func (d *Dispatcher) Route(input string) protocol.OutboundRequest {
	return protocol.OutboundRequest{
		Destination: d.client.router.Route(input),
		Payload:     protocol.Payload{Message: input},
	}
}

// Submit sends input and renders the exchange.
//
// Blank input is ignored. Otherwise the input is echoed to the transcript
// and the input field cleared before the request is issued; the reply is
// appended once it arrives. On failure the echo stays without a reply and
// the error is returned.
func (d *Dispatcher) Submit(ctx context.Context, input string) error {
	if strings.TrimSpace(input) == "" {
		return nil
	}
	c := d.client

	c.mu.Lock()
	e := c.transcript.Append(SpeakerUser, SourceInput, input)
	c.view.AppendEntry(e)
	c.view.ClearInput()
	c.mu.Unlock()

	req := d.Route(input)
	c.logger.Debug("dispatching message", "destination", req.Destination, "entry_id", e.ID)

	reply, err := c.backend.Send(ctx, req)
	if err != nil {
		c.logger.Warn("message dispatch failed", "destination", req.Destination, "error", err)
		return fmt.Errorf("send to %s: %w", req.Destination, err)
	}

	c.record(SpeakerBot, SourceReply, reply.Text())
	return nil
}
