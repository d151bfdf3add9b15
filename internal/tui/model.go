package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/xiaot623/gogo/remindchat/internal/chat"
)

// QuitCommand exits the client.
const QuitCommand = "/quit"

const (
	bannerHeight = 1
	statusHeight = 1
	inputHeight  = 1
)

// Submitter sends one line of user input.
type Submitter interface {
	Submit(ctx context.Context, input string) error
}

// Model is the bubbletea model of the chat screen: the notification banner,
// the transcript viewport, a status line and the input field.
type Model struct {
	ctx       context.Context
	submitter Submitter
	transport func() string

	input    textinput.Model
	viewport viewport.Model

	entries       []chat.Entry
	bannerText    string
	bannerVisible bool
	status        string
	statusIsError bool
	width         int
}

// NewModel creates the chat screen. transport reports the active push
// transport for the status line and may be nil.
func NewModel(ctx context.Context, submitter Submitter, transport func() string) Model {
	ti := textinput.New()
	ti.Placeholder = "Type a message... (Enter to send, /quit or Ctrl+C to exit)"
	ti.Prompt = "> "
	ti.Focus()

	return Model{
		ctx:       ctx,
		submitter: submitter,
		transport: transport,
		input:     ti,
		viewport:  viewport.New(80, 20),
		width:     80,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m.handleSubmit()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.viewport.Width = msg.Width
		m.viewport.Height = max(1, msg.Height-bannerHeight-statusHeight-inputHeight)
		m.input.Width = max(1, msg.Width-len(m.input.Prompt)-1)
		m.viewport.SetContent(m.renderTranscript())
		return m, nil

	case entryMsg:
		m.entries = append(m.entries, msg.entry)
		m.viewport.SetContent(m.renderTranscript())
		return m, nil

	case clearInputMsg:
		// Already cleared on Enter; resetting again would drop text typed
		// while the request is in flight.
		return m, nil

	case scrollMsg:
		m.viewport.GotoBottom()
		return m, nil

	case bannerMsg:
		m.bannerText = msg.text
		m.bannerVisible = msg.visible
		return m, nil

	case statusMsg:
		m.status = msg.text
		m.statusIsError = false
		return m, nil

	case submitDoneMsg:
		if msg.err != nil {
			m.status = "send failed: " + msg.err.Error()
			m.statusIsError = true
		} else if m.statusIsError {
			m.status = ""
			m.statusIsError = false
		}
		return m, nil
	}

	var tiCmd, vpCmd tea.Cmd
	m.input, tiCmd = m.input.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, tea.Batch(tiCmd, vpCmd)
}

func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	text := m.input.Value()
	trimmed := strings.TrimSpace(text)
	if trimmed == QuitCommand {
		return m, tea.Quit
	}
	if trimmed == "" {
		return m, nil
	}

	// Clear now so a second Enter cannot resend the same text before the
	// dispatcher's ClearInput arrives.
	m.input.Reset()

	ctx, submitter := m.ctx, m.submitter
	return m, func() tea.Msg {
		return submitDoneMsg{err: submitter.Submit(ctx, text)}
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	if m.bannerVisible {
		b.WriteString(bannerStyle.Render("🔔 " + chat.Sanitize(m.bannerText)))
	}
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.input.View())
	return b.String()
}

func (m Model) statusLine() string {
	if m.status != "" {
		if m.statusIsError {
			return errorStyle.Render(chat.Sanitize(m.status))
		}
		return statusStyle.Render(chat.Sanitize(m.status))
	}
	if m.transport != nil {
		if name := m.transport(); name != "" {
			return statusStyle.Render("push: " + name)
		}
		return statusStyle.Render("push: connecting...")
	}
	return ""
}

func (m Model) renderTranscript() string {
	lines := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		lines = append(lines, renderEntry(e, m.width))
	}
	return strings.Join(lines, "\n")
}

func renderEntry(e chat.Entry, width int) string {
	label := botLabelStyle
	switch e.Source {
	case chat.SourceInput:
		label = userLabelStyle
	case chat.SourceNotification:
		label = reminderLabelStyle
	}

	line := label.Render(e.Label()+":") + " " + chat.Sanitize(e.Text)
	if width > 0 {
		line = lipgloss.NewStyle().Width(width).Render(line)
	}
	return line
}
