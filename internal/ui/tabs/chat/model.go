// Package chat provides the assistant tab: a transcript and an input line
// whose messages go to the server's chatbot.
package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/tokenflex-dashboard/internal/app"
)

const maxMessageLength = 500

// keyMap defines the key bindings specific to the chat tab.
type keyMap struct {
	Send     key.Binding
	Focus    key.Binding
	Blur     key.Binding
	ScrollUp key.Binding
	ScrollDn key.Binding
}

// defaultKeyMap returns the default key bindings for the chat tab.
func defaultKeyMap() keyMap {
	return keyMap{
		Send: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		Focus: key.NewBinding(
			key.WithKeys("i", "/"),
			key.WithHelp("i", "type a message"),
		),
		Blur: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "stop typing"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("pgup", "k", "up"),
			key.WithHelp("pgup/k", "scroll up"),
		),
		ScrollDn: key.NewBinding(
			key.WithKeys("pgdown", "j", "down"),
			key.WithHelp("pgdn/j", "scroll down"),
		),
	}
}

// Model represents the chat tab state.
type Model struct {
	state    *app.State
	commands *app.Commands
	input    textinput.Model
	viewport viewport.Model
	keys     keyMap

	width  int
	height int

	// seen is the transcript length last rendered, to follow new lines.
	seen int
}

// New creates a new chat model. commands may be nil in tests.
func New(state *app.State, commands *app.Commands) *Model {
	input := textinput.New()
	input.Placeholder = "Ask about current usage, trends, optimization..."
	input.CharLimit = maxMessageLength
	input.Prompt = "› "

	return &Model{
		state:    state,
		commands: commands,
		input:    input,
		viewport: viewport.New(0, 0),
		keys:     defaultKeyMap(),
	}
}

// Init initializes the chat tab.
func (m *Model) Init() tea.Cmd {
	return nil
}

// CapturingInput reports whether keystrokes go to the input line.
func (m *Model) CapturingInput() bool {
	return m.input.Focused()
}

// Update handles messages for the chat tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case app.TabSwitchMsg:
		if msg.Tab == app.TabChat {
			return m, m.input.Focus()
		}
		m.input.Blur()

	case app.ChatReplyMsg, app.SendChatMsg:
		m.refreshTranscript()

	case tea.KeyMsg:
		return m, m.handleKeyMsg(msg)
	}

	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	if !m.input.Focused() {
		switch {
		case key.Matches(msg, m.keys.Focus):
			return m.input.Focus()
		case key.Matches(msg, m.keys.ScrollUp), key.Matches(msg, m.keys.ScrollDn):
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return cmd
		}
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.Blur):
		m.input.Blur()
		return nil

	case key.Matches(msg, m.keys.Send):
		text := strings.TrimSpace(m.input.Value())
		if text == "" || m.commands == nil || m.state.IsLoading("chat") {
			return nil
		}
		m.input.Reset()
		return m.commands.SendChat(text)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

// refreshTranscript re-renders the transcript and follows new messages.
func (m *Model) refreshTranscript() {
	chat := m.state.GetChat()
	m.viewport.SetContent(m.renderTranscript(chat))
	if len(chat) != m.seen {
		m.seen = len(chat)
		m.viewport.GotoBottom()
	}
}

// SetSize sets the available size for the chat tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = max(width-12, 10)
	m.viewport.Width = max(width-6, 10)
	m.viewport.Height = max(height-8, 3)
	m.refreshTranscript()
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.Focus, m.keys.Send, m.keys.Blur}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Focus, m.keys.Send, m.keys.Blur},
		{m.keys.ScrollUp, m.keys.ScrollDn},
	}
}
