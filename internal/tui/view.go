// Package tui renders the chat client in a terminal, either as a full-screen
// bubbletea program or as plain lines for non-interactive use.
package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/xiaot623/gogo/remindchat/internal/chat"
)

// Messages delivered to the model by ProgramView.
type (
	entryMsg      struct{ entry chat.Entry }
	clearInputMsg struct{}
	scrollMsg     struct{}
	bannerMsg     struct {
		text    string
		visible bool
	}
	statusMsg     struct{ text string }
	submitDoneMsg struct{ err error }
)

// ProgramView implements chat.View by sending messages to a bubbletea
// program, so every view change is applied on the program's event loop.
// Messages sent before Attach are queued and flushed on Attach.
type ProgramView struct {
	mu      sync.Mutex
	send    func(tea.Msg)
	pending []tea.Msg
}

// NewProgramView creates a view that is not yet attached to a program.
func NewProgramView() *ProgramView {
	return &ProgramView{}
}

// Attach starts forwarding messages to p.
func (v *ProgramView) Attach(p *tea.Program) {
	v.attach(p.Send)
}

func (v *ProgramView) attach(send func(tea.Msg)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.send = send
	for _, msg := range v.pending {
		send(msg)
	}
	v.pending = nil
}

func (v *ProgramView) dispatch(msg tea.Msg) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.send == nil {
		v.pending = append(v.pending, msg)
		return
	}
	v.send(msg)
}

func (v *ProgramView) ClearInput()              { v.dispatch(clearInputMsg{}) }
func (v *ProgramView) AppendEntry(e chat.Entry) { v.dispatch(entryMsg{entry: e}) }
func (v *ProgramView) ScrollToLatest()          { v.dispatch(scrollMsg{}) }
func (v *ProgramView) ShowBanner(text string)   { v.dispatch(bannerMsg{text: text, visible: true}) }
func (v *ProgramView) HideBanner()              { v.dispatch(bannerMsg{}) }

// SetStatus shows text on the status line.
func (v *ProgramView) SetStatus(text string) { v.dispatch(statusMsg{text: text}) }

var _ chat.View = (*ProgramView)(nil)
