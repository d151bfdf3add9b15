package chat

import (
	"strings"

	"github.com/xiaot623/gogo/remindchat/internal/protocol"
)

// Rule maps messages matching a predicate to a destination.
// Match receives the lower-cased message.
type Rule struct {
	Name        string
	Match       func(lower string) bool
	Destination protocol.Destination
}

// Contains returns a rule matching messages that contain phrase, ignoring case.
func Contains(phrase string, dest protocol.Destination) Rule {
	lower := strings.ToLower(phrase)
	return Rule{
		Name:        phrase,
		Match:       func(s string) bool { return strings.Contains(s, lower) },
		Destination: dest,
	}
}

// DefaultRules are evaluated top to bottom; the first match wins.
func DefaultRules() []Rule {
	return []Rule{
		Contains("remind me", protocol.DestinationAddReminder),
		Contains("list reminders", protocol.DestinationListReminders),
		Contains("delete reminder", protocol.DestinationDeleteReminder),
	}
}

// Router selects the destination for a message.
type Router struct {
	rules    []Rule
	fallback protocol.Destination
}

// NewRouter creates a router over rules, falling back to fallback when none match.
func NewRouter(rules []Rule, fallback protocol.Destination) *Router {
	return &Router{
		rules:    append([]Rule(nil), rules...),
		fallback: fallback,
	}
}

// DefaultRouter routes reminder phrases to their endpoints and everything else to /chat.
func DefaultRouter() *Router {
	return NewRouter(DefaultRules(), protocol.DestinationChat)
}

// Route returns the destination of the first matching rule, or the fallback.
func (r *Router) Route(message string) protocol.Destination {
	lower := strings.ToLower(message)
	for _, rule := range r.rules {
		if rule.Match(lower) {
			return rule.Destination
		}
	}
	return r.fallback
}

// Rules returns the rules in evaluation order.
func (r *Router) Rules() []Rule {
	return append([]Rule(nil), r.rules...)
}

// Fallback returns the destination used when no rule matches.
func (r *Router) Fallback() protocol.Destination {
	return r.fallback
}
