// Package chat implements the reminder chat client: an append-only
// transcript, the keyword router and dispatcher for outgoing messages, and
// the listener that surfaces pushed reminders in a banner and the transcript.
//
// All rendering goes through a View so the logic runs without a terminal.
package chat

import (
	"regexp"
	"strings"
	"time"
	"unicode"
)

// Speaker identifies who authored an entry.
type Speaker int

const (
	SpeakerUser Speaker = iota
	SpeakerBot
)

func (s Speaker) String() string {
	switch s {
	case SpeakerUser:
		return "user"
	case SpeakerBot:
		return "bot"
	default:
		return "unknown"
	}
}

// Source records how an entry entered the transcript.
type Source int

const (
	SourceInput        Source = iota // typed by the user
	SourceReply                      // backend reply to a submission
	SourceNotification               // pushed reminder
)

// Entry is one conversational turn.
type Entry struct {
	ID      string
	Speaker Speaker
	Source  Source
	Text    string
	At      time.Time
}

// Label returns the display label for the entry.
func (e Entry) Label() string {
	switch e.Source {
	case SourceInput:
		return "You"
	case SourceNotification:
		return "Reminder"
	default:
		return "Bot"
	}
}

var escapeSequence = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]|\x1b\][^\x07\x1b]*(?:\x07|\x1b\\)|\x1b[@-_]`)

// Sanitize makes user or server text safe to write to a terminal: escape
// sequences are removed and other control characters except newline and tab
// are dropped.
func Sanitize(text string) string {
	text = escapeSequence.ReplaceAllString(text, "")
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, text)
}
