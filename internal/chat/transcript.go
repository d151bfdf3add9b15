package chat

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Transcript is the ordered, append-only log of entries.
type Transcript struct {
	mu      sync.RWMutex
	entries []Entry
	now     func() time.Time
}

// NewTranscript creates an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{now: time.Now}
}

// Append adds an entry and returns it.
func (t *Transcript) Append(speaker Speaker, source Source, text string) Entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	e := Entry{
		ID:      uuid.New().String(),
		Speaker: speaker,
		Source:  source,
		Text:    text,
		At:      t.now(),
	}
	t.entries = append(t.entries, e)
	return e
}

// Entries returns a copy of all entries in order.
func (t *Transcript) Entries() []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of entries.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}
