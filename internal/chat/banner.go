package chat

import (
	"sync"
	"time"
)

// BannerState is the visibility of the notification banner.
type BannerState int

const (
	BannerHidden BannerState = iota
	BannerVisible
)

func (s BannerState) String() string {
	if s == BannerVisible {
		return "visible"
	}
	return "hidden"
}

// HidePolicy decides what a new notification does to hides already scheduled.
type HidePolicy string

const (
	// HideKeep leaves earlier hides scheduled: the banner hides when the
	// oldest pending timer fires, even if a newer message is showing.
	HideKeep HidePolicy = "keep"
	// HideReset cancels earlier hides so every message gets the full duration.
	HideReset HidePolicy = "reset"
)

// DefaultBannerDuration is how long a notification stays visible.
const DefaultBannerDuration = 5000 * time.Millisecond

type timer interface {
	Stop() bool
}

type afterFunc func(d time.Duration, f func()) timer

func realAfterFunc(d time.Duration, f func()) timer {
	return time.AfterFunc(d, f)
}

// Banner is the Hidden/Visible state machine behind the notification banner.
// Every scheduled hide is kept as a cancellable handle.
type Banner struct {
	view     BannerView
	duration time.Duration
	policy   HidePolicy
	after    afterFunc

	mu      sync.Mutex
	state   BannerState
	text    string
	pending map[uint64]timer
	nextID  uint64
	closed  bool
}

// NewBanner creates a hidden banner rendering to view.
func NewBanner(view BannerView, duration time.Duration, policy HidePolicy) *Banner {
	if duration <= 0 {
		duration = DefaultBannerDuration
	}
	if policy == "" {
		policy = HideKeep
	}
	return &Banner{
		view:     view,
		duration: duration,
		policy:   policy,
		after:    realAfterFunc,
		pending:  make(map[uint64]timer),
	}
}

// Show makes the banner visible with text and schedules it to hide after the
// banner duration.
func (b *Banner) Show(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}

	if b.policy == HideReset {
		b.cancelPendingLocked()
	}

	b.state = BannerVisible
	b.text = text
	b.view.ShowBanner(text)

	id := b.nextID
	b.nextID++
	b.pending[id] = b.after(b.duration, func() { b.expire(id) })
}

func (b *Banner) expire(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.pending[id]; !ok {
		// cancelled after the timer already fired
		return
	}
	delete(b.pending, id)
	if b.closed {
		return
	}

	b.state = BannerHidden
	b.text = ""
	b.view.HideBanner()
}

// State returns the current visibility.
func (b *Banner) State() BannerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Text returns the text currently shown, or "" when hidden.
func (b *Banner) Text() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.text
}

// Pending returns the number of hides still scheduled.
func (b *Banner) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// Close cancels every pending hide. The banner ignores later calls to Show.
func (b *Banner) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.cancelPendingLocked()
}

func (b *Banner) cancelPendingLocked() {
	for id, t := range b.pending {
		t.Stop()
		delete(b.pending, id)
	}
}
