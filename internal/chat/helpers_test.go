package chat

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/xiaot623/gogo/remindchat/internal/protocol"
)

// recordingView records every view call in order.
type recordingView struct {
	mu  sync.Mutex
	ops []string
}

func (v *recordingView) add(op string) {
	v.mu.Lock()
	v.ops = append(v.ops, op)
	v.mu.Unlock()
}

func (v *recordingView) ClearInput()            { v.add("clear") }
func (v *recordingView) ScrollToLatest()        { v.add("scroll") }
func (v *recordingView) ShowBanner(text string) { v.add("show:" + text) }
func (v *recordingView) HideBanner()            { v.add("hide") }
func (v *recordingView) AppendEntry(e Entry) {
	v.add(fmt.Sprintf("append:%s:%s", e.Label(), e.Text))
}

func (v *recordingView) Ops() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.ops...)
}

// fakeSender answers requests with a function and records them.
type fakeSender struct {
	mu       sync.Mutex
	requests []protocol.OutboundRequest
	respond  func(req protocol.OutboundRequest) (*protocol.Reply, error)
}

func (s *fakeSender) Send(ctx context.Context, req protocol.OutboundRequest) (*protocol.Reply, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()
	return s.respond(req)
}

func (s *fakeSender) Requests() []protocol.OutboundRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]protocol.OutboundRequest(nil), s.requests...)
}

func replyWith(text string) func(protocol.OutboundRequest) (*protocol.Reply, error) {
	return func(protocol.OutboundRequest) (*protocol.Reply, error) {
		return protocol.NewTextReply(text), nil
	}
}

// fakeTimer is fired manually by fakeScheduler.
type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

type fakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{d: d, f: f}
	s.timers = append(s.timers, t)
	return t
}

// fire runs timer i unless it was stopped.
func (s *fakeScheduler) fire(i int) {
	s.mu.Lock()
	t := s.timers[i]
	s.mu.Unlock()
	if t.stopped {
		return
	}
	t.fired = true
	t.f()
}

// fireAnyway runs timer i even if stopped, like a timer racing its Stop.
func (s *fakeScheduler) fireAnyway(i int) {
	s.mu.Lock()
	t := s.timers[i]
	s.mu.Unlock()
	t.fired = true
	t.f()
}

func (s *fakeScheduler) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(sender Sender, policy HidePolicy) (*Client, *recordingView, *fakeScheduler) {
	view := &recordingView{}
	sched := &fakeScheduler{}
	c := NewClient(Options{
		Backend:      sender,
		View:         view,
		BannerPolicy: policy,
		Logger:       discardLogger(),
	})
	c.banner.after = sched.AfterFunc
	return c, view, sched
}
