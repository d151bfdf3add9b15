// Package protocol defines the wire format between the chat client and the reminder backend.
package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Destination is one of the fixed backend routes a message can be sent to.
type Destination string

// Backend destinations
const (
	DestinationChat           Destination = "/chat"
	DestinationAddReminder    Destination = "/add_reminder"
	DestinationListReminders  Destination = "/list_reminders"
	DestinationDeleteReminder Destination = "/delete_reminder"
)

// Destinations lists every valid destination.
var Destinations = []Destination{
	DestinationChat,
	DestinationAddReminder,
	DestinationListReminders,
	DestinationDeleteReminder,
}

// Valid reports whether d is one of the fixed destinations.
func (d Destination) Valid() bool {
	for _, known := range Destinations {
		if d == known {
			return true
		}
	}
	return false
}

// Push event names
const (
	EventReminderNotification = "reminder_notification"
)

// Push transport names, in the default preference order.
const (
	TransportWebSocket   = "websocket"
	TransportPolling     = "polling"
	TransportFlashSocket = "flashsocket"
)

// DefaultTransports is the transport preference order used when none is configured.
var DefaultTransports = []string{TransportWebSocket, TransportPolling, TransportFlashSocket}

// Payload is the JSON body of every outbound request.
type Payload struct {
	Message string `json:"message"`
}

// OutboundRequest is a single user submission bound for one destination.
type OutboundRequest struct {
	Destination Destination
	Payload     Payload
}

// Reminder is one entry of a reminder listing.
type Reminder struct {
	Task string `json:"task"`
	Time string `json:"time"`
}

// Reply is the JSON body returned by the backend.
// Response holds the raw field value and is empty when the field is absent.
type Reply struct {
	Response  json.RawMessage `json:"response,omitempty"`
	Reminders []Reminder      `json:"reminders,omitempty"`
}

// NewTextReply builds a reply carrying text.
func NewTextReply(text string) *Reply {
	raw, _ := json.Marshal(text)
	return &Reply{Response: raw}
}

// MissingFieldPlaceholder is rendered when a reply or event lacks its text field.
const MissingFieldPlaceholder = "undefined"

// Text returns the text to render for the reply.
// A bare reminder listing is formatted one reminder per line.
func (r *Reply) Text() string {
	if len(r.Response) > 0 {
		return FieldText(r.Response)
	}
	if r.Reminders != nil {
		return FormatReminders(r.Reminders)
	}
	return MissingFieldPlaceholder
}

// FieldText renders a raw JSON field as display text. Strings are unquoted,
// other values (numbers, booleans, null, objects) appear as their JSON text,
// and an absent field is the placeholder.
func FieldText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return MissingFieldPlaceholder
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

// FormatReminders renders a reminder listing as text.
func FormatReminders(reminders []Reminder) string {
	if len(reminders) == 0 {
		return "No reminders."
	}
	var b strings.Builder
	b.WriteString("Your reminders:")
	for i, r := range reminders {
		fmt.Fprintf(&b, "\n%d. %s at %s", i+1, r.Task, r.Time)
	}
	return b.String()
}

// UnmarshalJSON keeps the distinction between an absent and a null reminders field.
func (r *Reply) UnmarshalJSON(data []byte) error {
	var raw struct {
		Response  json.RawMessage `json:"response"`
		Reminders json.RawMessage `json:"reminders"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Response = raw.Response
	r.Reminders = nil
	if len(raw.Reminders) > 0 && string(raw.Reminders) != "null" {
		list := []Reminder{}
		if err := json.Unmarshal(raw.Reminders, &list); err != nil {
			return fmt.Errorf("invalid reminders field: %w", err)
		}
		r.Reminders = list
	}
	return nil
}

// Frame is a single push event as carried by every transport.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// PollResponse is the body returned by the polling endpoint.
type PollResponse struct {
	Events []Frame `json:"events"`
	Cursor int64   `json:"cursor"`
}

// Notification is the payload of a reminder_notification event.
// Message holds the raw field value and is empty when the field is absent.
type Notification struct {
	Message json.RawMessage `json:"message,omitempty"`
}

// Text returns the notification text, or the placeholder when absent.
func (n Notification) Text() string {
	return FieldText(n.Message)
}

// NewNotification builds a notification carrying message.
func NewNotification(message string) Notification {
	raw, _ := json.Marshal(message)
	return Notification{Message: raw}
}

// ParseNotification parses the data of a reminder_notification frame.
func ParseNotification(data json.RawMessage) (Notification, error) {
	var n Notification
	if len(data) == 0 {
		return n, nil
	}
	if err := json.Unmarshal(data, &n); err != nil {
		return n, fmt.Errorf("failed to parse notification: %w", err)
	}
	return n, nil
}

// NewFrame marshals data into a frame for event.
func NewFrame(event string, data interface{}) (Frame, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Frame{}, fmt.Errorf("failed to marshal %s data: %w", event, err)
	}
	return Frame{Event: event, Data: raw}, nil
}
