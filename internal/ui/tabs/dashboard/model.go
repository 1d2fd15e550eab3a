// Package dashboard provides the contract and usage overview tab.
package dashboard

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/tokenflex-dashboard/internal/app"
	"github.com/j-veylop/tokenflex-dashboard/internal/ui/components"
)

type animationTickMsg time.Time

func animationTickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*40, func(t time.Time) tea.Msg {
		return animationTickMsg(t)
	})
}

// keyMap defines the key bindings specific to the dashboard tab.
type keyMap struct {
	NextContract  key.Binding
	PrevContract  key.Binding
	FirstContract key.Binding
	LastContract  key.Binding
	Submit        key.Binding
	NextPanel     key.Binding
	PrevPanel     key.Binding
}

// defaultKeyMap returns the default key bindings for the dashboard tab.
func defaultKeyMap() keyMap {
	return keyMap{
		NextContract: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "next contract"),
		),
		PrevContract: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "prev contract"),
		),
		FirstContract: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "first contract"),
		),
		LastContract: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "last contract"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "run usage queries"),
		),
		NextPanel: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "next chart"),
		),
		PrevPanel: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "prev chart"),
		),
	}
}

// Model represents the dashboard tab state.
type Model struct {
	state    *app.State
	commands *app.Commands
	spinner  components.LoadingSpinner
	keys     keyMap
	viewport viewport.Model

	width  int
	height int

	// focusedPanel is the usecase whose rows feed the line chart.
	focusedPanel   int
	animationFrame int
}

// New creates a new dashboard model. commands may be nil in tests.
func New(state *app.State, commands *app.Commands) *Model {
	return &Model{
		state:    state,
		commands: commands,
		spinner:  components.NewSpinner("Loading contracts..."),
		keys:     defaultKeyMap(),
		viewport: viewport.New(0, 0),
	}
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Init(), animationTickCmd())
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case animationTickMsg:
		m.animationFrame++
		if m.state.IsLoading("batch") || m.state.IsInitialLoading() {
			cmds = append(cmds, animationTickCmd())
		}

	case app.SubmitContractMsg:
		// The root model flags the batch as loading; keep the shimmer going.
		cmds = append(cmds, animationTickCmd())

	case app.BatchLoadedMsg:
		if !msg.Latest {
			m.focusedPanel = 0
		}

	case tea.KeyMsg:
		cmds = append(cmds, m.handleKeyMsg(msg))

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	count := len(m.state.GetContracts())
	idx := m.state.GetSelectedIndex()

	switch {
	case key.Matches(msg, m.keys.NextContract):
		if count > 0 {
			return m.selectContract((idx + 1) % count)
		}
	case key.Matches(msg, m.keys.PrevContract):
		if count > 0 {
			return m.selectContract((idx - 1 + count) % count)
		}
	case key.Matches(msg, m.keys.FirstContract):
		if count > 0 {
			return m.selectContract(0)
		}
	case key.Matches(msg, m.keys.LastContract):
		if count > 0 {
			return m.selectContract(count - 1)
		}
	case key.Matches(msg, m.keys.Submit):
		account, ok := m.state.SelectedAccount()
		if !ok || m.commands == nil {
			return nil
		}
		return m.commands.Submit(account)
	case key.Matches(msg, m.keys.NextPanel):
		if n := m.state.GetBatch().Len(); n > 0 {
			m.focusedPanel = (m.focusedPanel + 1) % n
		}
	case key.Matches(msg, m.keys.PrevPanel):
		if n := m.state.GetBatch().Len(); n > 0 {
			m.focusedPanel = (m.focusedPanel - 1 + n) % n
		}
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) selectContract(idx int) tea.Cmd {
	if idx == m.state.GetSelectedIndex() {
		return nil
	}
	m.state.SetSelectedIndex(idx)
	account, _ := m.state.SelectedAccount()
	if m.commands == nil {
		return nil
	}
	return m.commands.SelectionChanged(idx, account)
}

// SetSize sets the available size for the dashboard.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.NextContract,
		m.keys.PrevContract,
		m.keys.Submit,
		m.keys.NextPanel,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.NextContract, m.keys.PrevContract},
		{m.keys.FirstContract, m.keys.LastContract},
		{m.keys.Submit, m.keys.NextPanel, m.keys.PrevPanel},
	}
}
