// Package history provides the tab listing persisted usage batches of the
// selected contract.
package history

import (
	"fmt"
	"slices"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/tokenflex-dashboard/internal/app"
	"github.com/j-veylop/tokenflex-dashboard/internal/models"
	"github.com/j-veylop/tokenflex-dashboard/internal/ui/components"
	"github.com/j-veylop/tokenflex-dashboard/internal/ui/styles"
)

// keyMap defines the key bindings specific to the history tab.
type keyMap struct {
	Reload key.Binding
	Up     key.Binding
	Down   key.Binding
}

// defaultKeyMap returns the default key bindings for the history tab.
func defaultKeyMap() keyMap {
	return keyMap{
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload history"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "previous batch"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next batch"),
		),
	}
}

// Model represents the history tab state.
type Model struct {
	state    *app.State
	commands *app.Commands
	table    table.Model
	keys     keyMap

	width  int
	height int

	// requested is the contract the last load was issued for.
	requested string
}

// New creates a new history model. commands may be nil in tests.
func New(state *app.State, commands *app.Commands) *Model {
	t := table.New(
		table.WithColumns(columns(80)),
		table.WithFocused(true),
		table.WithHeight(8),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Subtle).
		BorderBottom(true).
		Bold(true).
		Foreground(styles.Primary)
	s.Selected = s.Selected.
		Foreground(styles.TextPrimary).
		Background(styles.BgAccent).
		Bold(true)
	t.SetStyles(s)

	return &Model{
		state:    state,
		commands: commands,
		table:    t,
		keys:     defaultKeyMap(),
	}
}

// Init initializes the history tab.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the history tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case app.TabSwitchMsg:
		if msg.Tab == app.TabHistory {
			return m, m.loadIfStale()
		}

	case app.SelectedContractChangedMsg:
		return m, m.load(msg.AccountID)

	case app.HistoryLoadedMsg:
		m.syncRows()

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Reload) {
			account, _ := m.state.SelectedAccount()
			return m, m.load(account)
		}
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}

	return m, nil
}

// loadIfStale requests history when the selected contract changed since
// the last load.
func (m *Model) loadIfStale() tea.Cmd {
	account, ok := m.state.SelectedAccount()
	if !ok || account == m.requested {
		return nil
	}
	return m.load(account)
}

func (m *Model) load(account string) tea.Cmd {
	if account == "" || m.commands == nil {
		return nil
	}
	m.requested = account
	return m.commands.LoadHistory(account)
}

// batches returns the persisted batches oldest first.
func (m *Model) batches() (string, []models.UsageBatch) {
	account, batches := m.state.GetHistory()
	slices.Reverse(batches)
	return account, batches
}

// syncRows rebuilds the table from state, newest batch on top.
func (m *Model) syncRows() {
	_, batches := m.state.GetHistory()
	rows := make([]table.Row, 0, len(batches))
	for _, b := range batches {
		status := "complete"
		if b.Truncated(len(models.DefaultQuerySpecs())) {
			status = "truncated"
		}
		rows = append(rows, table.Row{
			b.FetchedAt.Local().Format("2006-01-02 15:04"),
			fmt.Sprintf("%d/%d", b.Len(), b.Submitted),
			components.FormatTokens(b.TotalTokens()),
			status,
		})
	}
	m.table.SetRows(rows)
}

func columns(width int) []table.Column {
	tokensWidth := min(max(width-50, 12), 24)
	return []table.Column{
		{Title: "Fetched", Width: 18},
		{Title: "Results", Width: 8},
		{Title: "Tokens", Width: tokensWidth},
		{Title: "Status", Width: 10},
	}
}

// SetSize sets the available size for the history tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetColumns(columns(width))
	m.table.SetHeight(max(height/2-6, 3))
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.Reload, m.keys.Up, m.keys.Down}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Reload},
		{m.keys.Up, m.keys.Down},
	}
}
