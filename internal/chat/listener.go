package chat

import (
	"encoding/json"

	"github.com/xiaot623/gogo/remindchat/internal/protocol"
	"github.com/xiaot623/gogo/remindchat/internal/push"
)

// Subscriber registers handlers for named push events.
type Subscriber interface {
	On(event string, h push.Handler)
}

// Listener surfaces pushed reminders in the banner and the transcript.
type Listener struct {
	client *Client
}

// Attach subscribes the listener to reminder notifications.
func (l *Listener) Attach(sub Subscriber) {
	sub.On(protocol.EventReminderNotification, func(data json.RawMessage) {
		n, err := protocol.ParseNotification(data)
		if err != nil {
			l.client.logger.Warn("invalid reminder notification", "error", err)
			return
		}
		l.Handle(n)
	})
}

// Handle shows n in the banner and appends it to the transcript.
func (l *Listener) Handle(n protocol.Notification) {
	c := l.client
	text := n.Text()

	c.logger.Debug("received notification from server", "message", text)
	c.banner.Show(text)
	c.record(SpeakerBot, SourceNotification, text)
}
