// Package app implements the main Bubble Tea application with tab-based navigation.
package app

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/j-veylop/tokenflex-dashboard/internal/client"
	"github.com/j-veylop/tokenflex-dashboard/internal/models"
	"github.com/j-veylop/tokenflex-dashboard/internal/ui/styles"
)

// TabID represents the identifier for a tab in the application.
type TabID int

const (
	// TabDashboard is the ID for the dashboard tab.
	TabDashboard TabID = iota
	// TabHistory is the ID for the history tab.
	TabHistory
	// TabChat is the ID for the chat tab.
	TabChat
)

// String returns the string representation of the TabID.
func (t TabID) String() string {
	switch t {
	case TabDashboard:
		return "Dashboard"
	case TabHistory:
		return "History"
	case TabChat:
		return "Chat"
	default:
		return "Unknown"
	}
}

// Tab defines the interface that all tabs must implement.
type Tab interface {
	// Init initializes the tab and returns any initial commands.
	Init() tea.Cmd

	// Update handles messages and returns the updated tab and any commands.
	Update(msg tea.Msg) (Tab, tea.Cmd)

	// View renders the tab content.
	View() string

	// SetSize sets the available size for the tab.
	SetSize(width, height int)

	// ShortHelp returns key bindings for the short help view.
	ShortHelp() []key.Binding

	// FullHelp returns key bindings for the full help view.
	FullHelp() [][]key.Binding
}

// InputTab is implemented by tabs that take free text. While input is
// captured only ctrl+c and tab switching are handled globally.
type InputTab interface {
	CapturingInput() bool
}

// KeyMap defines the keybindings for the application.
type KeyMap struct {
	Tab1    key.Binding
	Tab2    key.Binding
	Tab3    key.Binding
	NextTab key.Binding
	PrevTab key.Binding
	Refresh key.Binding
	Help    key.Binding
	Quit    key.Binding
	Escape  key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Tab1:    key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "dashboard")),
		Tab2:    key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "history")),
		Tab3:    key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "chat")),
		NextTab: key.NewBinding(key.WithKeys("tab", "l", "right"), key.WithHelp("tab/→", "next tab")),
		PrevTab: key.NewBinding(key.WithKeys("shift+tab", "h", "left"), key.WithHelp("shift+tab/←", "prev tab")),
		Refresh: key.NewBinding(key.WithKeys("r", "ctrl+r"), key.WithHelp("r", "refresh")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Escape:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Refresh, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab1, k.Tab2, k.Tab3},
		{k.NextTab, k.PrevTab},
		{k.Refresh, k.Help, k.Quit},
	}
}

// Styles defines the application styles.
type Styles struct {
	// Tab bar styles
	TabBar      lipgloss.Style
	ActiveTab   lipgloss.Style
	InactiveTab lipgloss.Style

	// Notification styles
	NotificationSuccess lipgloss.Style
	NotificationError   lipgloss.Style
	NotificationWarning lipgloss.Style
	NotificationInfo    lipgloss.Style

	Content lipgloss.Style
	Toast   lipgloss.Style

	Title     lipgloss.Style
	Subtle    lipgloss.Style
	Highlight lipgloss.Style
}

// DefaultStyles returns the default application styles.
func DefaultStyles() Styles {
	subtle := lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"}
	highlight := lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	success := lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#04B575"}
	warning := lipgloss.AdaptiveColor{Light: "#FF8C00", Dark: "#FF8C00"}
	errorColor := lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"}
	info := lipgloss.AdaptiveColor{Light: "#0087D7", Dark: "#5FAFFF"}

	s := Styles{}
	s.TabBar = lipgloss.NewStyle().Padding(0, 1).BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).BorderForeground(subtle)
	s.ActiveTab = lipgloss.NewStyle().Bold(true).Foreground(highlight).Padding(0, 2)
	s.InactiveTab = lipgloss.NewStyle().Foreground(subtle).Padding(0, 2)

	s.NotificationSuccess = lipgloss.NewStyle().Foreground(success).Padding(0, 1)
	s.NotificationError = lipgloss.NewStyle().Foreground(errorColor).Bold(true).Padding(0, 1)
	s.NotificationWarning = lipgloss.NewStyle().Foreground(warning).Padding(0, 1)
	s.NotificationInfo = lipgloss.NewStyle().Foreground(info).Padding(0, 1)

	s.Content = lipgloss.NewStyle().Padding(1, 2)
	s.Toast = styles.ToastStyle

	s.Title = lipgloss.NewStyle().Bold(true).Foreground(highlight)
	s.Subtle = lipgloss.NewStyle().Foreground(subtle)
	s.Highlight = lipgloss.NewStyle().Foreground(highlight)

	return s
}

// Model is the main application model.
type Model struct {
	activeTab TabID
	tabs      []Tab
	tabNames  []string

	state    *State
	api      API
	commands *Commands
	notifier Notifier
	keymap   KeyMap
	styles   Styles

	spinner spinner.Model

	width  int
	height int

	showHelp bool
	ready    bool
}

// NewModel initializes a new application model. notifier may be nil to
// disable desktop notifications.
func NewModel(api API, notifier Notifier) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	return &Model{
		activeTab: TabDashboard,
		tabNames:  []string{"Dashboard", "History", "Chat"},
		tabs:      make([]Tab, 3), // Placeholder - tabs will be set externally
		state:     NewState(),
		api:       api,
		commands:  NewCommands(api),
		notifier:  notifier,
		keymap:    DefaultKeyMap(),
		styles:    DefaultStyles(),
		spinner:   s,
	}
}

// SetTabs sets the tabs for the model.
func (m *Model) SetTabs(tabs []Tab) {
	m.tabs = tabs
	if m.width > 0 && m.height > 0 {
		m.updateTabSizes()
	}
}

// GetState returns the application state.
func (m *Model) GetState() *State {
	return m.state
}

// GetCommands returns the commands helper.
func (m *Model) GetCommands() *Commands {
	return m.commands
}

// GetActiveTab returns the currently active tab ID.
func (m *Model) GetActiveTab() TabID {
	return m.activeTab
}

// IsReady returns true if the model is ready (window size received).
func (m *Model) IsReady() bool {
	return m.ready
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	m.state.SetLoadingNotification("Loading contracts...")

	cmds := []tea.Cmd{
		m.spinner.Tick,
		defaultTickCmd(),
	}

	if m.api != nil {
		m.state.SetLoading("contracts", true)
		cmds = append(cmds, loadInitialData(m.api))
	}

	for _, tab := range m.tabs {
		if tab != nil {
			cmds = append(cmds, tab.Init())
		}
	}

	return tea.Batch(cmds...)
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.updateTabSizes()

	case tea.KeyMsg:
		cmd, handled := m.handleKeyMsg(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		if handled {
			return m, tea.Batch(cmds...)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	default:
		cmds = append(cmds, m.handleAppMsg(msg)...)
	}

	if cmd := m.updateActiveTab(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleAppMsg(msg tea.Msg) []tea.Cmd {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case TickMsg:
		m.state.ClearExpiredNotifications()
		cmds = append(cmds, defaultTickCmd())
	case ContractsLoadedMsg:
		cmds = append(cmds, m.handleContractsLoaded(msg)...)
	case BatchLoadedMsg:
		cmds = append(cmds, m.handleBatchLoaded(msg)...)
	case HistoryLoadedMsg:
		cmds = append(cmds, m.handleHistoryLoaded(msg)...)
	case ChatReplyMsg:
		cmds = append(cmds, m.handleChatReply(msg)...)
	case SubmitContractMsg:
		cmds = append(cmds, m.handleSubmit(msg)...)
	case SendChatMsg:
		cmds = append(cmds, m.handleSendChat(msg)...)
	case LoadHistoryMsg:
		if m.api != nil && msg.AccountID != "" {
			m.state.SetLoading("history", true)
			cmds = append(cmds, loadHistoryCmd(m.api, msg.AccountID))
		}
	case RefreshMsg:
		cmds = append(cmds, m.handleRefresh(msg)...)
	case AddNotificationMsg:
		id := m.state.AddNotification(msg.Type, msg.Message, msg.Duration)
		if msg.Duration > 0 {
			cmds = append(cmds, clearNotificationCmd(id, msg.Duration))
		}
	case RemoveNotificationMsg:
		m.state.RemoveNotification(msg.ID)
	case ClearExpiredNotificationsMsg:
		m.state.ClearExpiredNotifications()
	case StartLoadingMsg:
		m.state.SetLoading(msg.Resource, true)
		m.state.SetLoadingNotification("Refreshing...")
	case StopLoadingMsg:
		m.state.SetLoading(msg.Resource, false)
		m.settleLoading()
	case ErrorMsg:
		cmds = append(cmds, notifyErrorCmd(msg.Error.Error()))
	case TabSwitchMsg:
		m.activeTab = msg.Tab
		m.updateTabSizes()
	case ToggleHelpMsg:
		m.showHelp = !m.showHelp
	}
	return cmds
}

func (m *Model) settleLoading() {
	if !m.state.AnyLoading() {
		m.state.ClearLoadingNotification()
	}
}

func (m *Model) handleContractsLoaded(msg ContractsLoadedMsg) []tea.Cmd {
	m.state.SetLoading("initial", false)
	m.state.SetLoading("contracts", false)
	defer m.settleLoading()

	if msg.Err != nil {
		if client.IsStatus(msg.Err, http.StatusUnauthorized) {
			return []tea.Cmd{notifyErrorCmd("Server is not logged in to APS. Check its credentials file.")}
		}
		return []tea.Cmd{notifyErrorCmd(fmt.Sprintf("Failed to load contracts: %v", msg.Err))}
	}

	m.state.SetContracts(msg.Contracts)
	if len(msg.Contracts) == 0 {
		return []tea.Cmd{notifyWarningCmd("No Token Flex contracts available")}
	}
	return nil
}

func (m *Model) handleBatchLoaded(msg BatchLoadedMsg) []tea.Cmd {
	if !msg.Latest {
		m.state.SetLoading("batch", false)
	}
	defer m.settleLoading()

	if msg.Err != nil {
		return []tea.Cmd{batchErrorCmd(msg)}
	}
	if msg.Latest && len(msg.Results) == 0 {
		return nil
	}

	m.state.SetBatch(&models.UsageBatch{
		FetchedAt: time.Now(),
		AccountID: msg.AccountID,
		Results:   msg.Results,
		Submitted: len(msg.Results),
	})
	if msg.Latest {
		return nil
	}

	text := fmt.Sprintf("Loaded %d usage results for %s", len(msg.Results), msg.AccountID)
	cmds := []tea.Cmd{notifySuccessCmd(text)}
	if m.notifier != nil {
		cmds = append(cmds, desktopNotifyCmd(m.notifier, "Token Flex usage ready", text))
	}
	if account, _ := m.state.GetHistory(); account == msg.AccountID && m.api != nil {
		m.state.SetLoading("history", true)
		cmds = append(cmds, loadHistoryCmd(m.api, msg.AccountID))
	}
	return cmds
}

func batchErrorCmd(msg BatchLoadedMsg) tea.Cmd {
	switch {
	case msg.Latest:
		return notifyWarningCmd(fmt.Sprintf("Could not load the last batch: %v", msg.Err))
	case client.IsStatus(msg.Err, http.StatusNotFound):
		return notifyWarningCmd(fmt.Sprintf("No usage data available for %s", msg.AccountID))
	case client.IsStatus(msg.Err, http.StatusGatewayTimeout):
		return notifyWarningCmd(fmt.Sprintf("Timed out waiting for usage data for %s", msg.AccountID))
	default:
		return notifyErrorCmd(fmt.Sprintf("Failed to load usage for %s: %v", msg.AccountID, msg.Err))
	}
}

func (m *Model) handleHistoryLoaded(msg HistoryLoadedMsg) []tea.Cmd {
	m.state.SetLoading("history", false)
	defer m.settleLoading()

	switch {
	case client.IsStatus(msg.Err, http.StatusNotFound):
		m.state.SetHistory(msg.AccountID, nil)
		return []tea.Cmd{notifyWarningCmd("History is disabled on the server")}
	case msg.Err != nil:
		return []tea.Cmd{notifyErrorCmd(fmt.Sprintf("Failed to load history: %v", msg.Err))}
	}

	m.state.SetHistory(msg.AccountID, msg.Batches)
	return nil
}

func (m *Model) handleChatReply(msg ChatReplyMsg) []tea.Cmd {
	m.state.SetLoading("chat", false)
	defer m.settleLoading()

	if msg.Err != nil {
		m.state.AppendChat(ChatEntry{Text: "Sorry, I could not reach the assistant."})
		return []tea.Cmd{notifyErrorCmd(fmt.Sprintf("Chat failed: %v", msg.Err))}
	}

	at := msg.Reply.Timestamp
	if !at.IsZero() {
		at = at.Local()
	}
	m.state.AppendChat(ChatEntry{Text: msg.Reply.Response, At: at})
	return nil
}

func (m *Model) handleSubmit(msg SubmitContractMsg) []tea.Cmd {
	if m.api == nil || msg.AccountID == "" {
		return nil
	}
	if m.state.IsLoading("batch") {
		return []tea.Cmd{notifyInfoCmd("A batch is already running")}
	}

	m.state.SetLoading("batch", true)
	m.state.SetLoadingNotification(fmt.Sprintf("Running usage queries for %s...", msg.AccountID))
	return []tea.Cmd{submitCmd(m.api, msg.AccountID)}
}

func (m *Model) handleSendChat(msg SendChatMsg) []tea.Cmd {
	text := strings.TrimSpace(msg.Message)
	if m.api == nil || text == "" {
		return nil
	}

	m.state.AppendChat(ChatEntry{FromUser: true, Text: text})
	m.state.SetLoading("chat", true)

	account := ""
	if b := m.state.GetBatch(); b != nil && b.AccountID != "" {
		account = b.AccountID
	} else if selected, ok := m.state.SelectedAccount(); ok {
		account = selected
	}
	return []tea.Cmd{chatCmd(m.api, text, account)}
}

func (m *Model) handleRefresh(msg RefreshMsg) []tea.Cmd {
	if m.api == nil {
		return nil
	}

	var cmds []tea.Cmd
	switch msg.Resource {
	case "all", "contracts":
		m.state.SetLoading("contracts", true)
		m.state.SetLoadingNotification("Refreshing...")
		cmds = append(cmds, loadContractsCmd(m.api))
		if msg.Resource == "all" {
			cmds = append(cmds, loadLatestCmd(m.api))
		}
	case "latest":
		cmds = append(cmds, loadLatestCmd(m.api))
	}
	return cmds
}

func (m *Model) updateActiveTab(msg tea.Msg) tea.Cmd {
	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		var cmd tea.Cmd
		m.tabs[m.activeTab], cmd = m.tabs[m.activeTab].Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) updateTabSizes() {
	contentHeight := max(m.height-5, 0)

	for _, tab := range m.tabs {
		if tab != nil {
			tab.SetSize(m.width, contentHeight)
		}
	}
}

func (m *Model) capturingInput() bool {
	if int(m.activeTab) >= len(m.tabs) || m.tabs[m.activeTab] == nil {
		return false
	}
	in, ok := m.tabs[m.activeTab].(InputTab)
	return ok && in.CapturingInput()
}

func (m *Model) switchTab(id TabID) tea.Cmd {
	m.activeTab = id
	m.updateTabSizes()
	return func() tea.Msg { return TabSwitchMsg{Tab: id} }
}

// handleKeyMsg handles global keys. handled is true when the key must not
// reach the active tab.
func (m *Model) handleKeyMsg(msg tea.KeyMsg) (cmd tea.Cmd, handled bool) {
	if len(m.tabs) == 0 {
		return nil, false
	}
	next := TabID((int(m.activeTab) + 1) % len(m.tabs))
	prev := TabID((int(m.activeTab) - 1 + len(m.tabs)) % len(m.tabs))

	if m.capturingInput() {
		switch msg.Type {
		case tea.KeyCtrlC:
			return tea.Quit, true
		case tea.KeyTab:
			return m.switchTab(next), true
		case tea.KeyShiftTab:
			return m.switchTab(prev), true
		}
		return nil, false
	}

	switch {
	case key.Matches(msg, m.keymap.Quit):
		return tea.Quit, true

	case key.Matches(msg, m.keymap.Help):
		m.showHelp = !m.showHelp
		return nil, true

	case key.Matches(msg, m.keymap.Tab1):
		return m.switchTab(TabDashboard), true

	case key.Matches(msg, m.keymap.Tab2):
		return m.switchTab(TabHistory), true

	case key.Matches(msg, m.keymap.Tab3):
		return m.switchTab(TabChat), true

	case key.Matches(msg, m.keymap.NextTab):
		if m.showHelp {
			return nil, true
		}
		return m.switchTab(next), true

	case key.Matches(msg, m.keymap.PrevTab):
		if m.showHelp {
			return nil, true
		}
		return m.switchTab(prev), true

	case key.Matches(msg, m.keymap.Refresh):
		if m.activeTab == TabDashboard {
			return func() tea.Msg { return RefreshMsg{Resource: "all"} }, true
		}

	case key.Matches(msg, m.keymap.Escape):
		if m.showHelp {
			m.showHelp = false
			return nil, true
		}
	}

	return nil, false
}

// View renders the application UI.
func (m *Model) View() string {
	var b strings.Builder

	if m.width > 0 {
		b.WriteString(m.renderNavbar())
		b.WriteString("\n")
	}

	if !m.ready {
		b.WriteString(m.styles.Content.Render(fmt.Sprintf("%s Loading...", m.spinner.View())))
		return b.String()
	}

	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		b.WriteString(m.tabs[m.activeTab].View())
	}

	mainView := padLines(b.String(), m.height)

	if m.showHelp {
		mainView = m.overlayCentered(mainView, m.renderHelp())
	}

	if notifications := m.renderNotifications(); len(notifications) > 0 {
		return m.overlayToasts(mainView, notifications)
	}

	return mainView
}

// padLines extends view to at least height lines so overlays have rows to
// draw on.
func padLines(view string, height int) string {
	if n := strings.Count(view, "\n") + 1; n < height {
		view += strings.Repeat("\n", height-n)
	}
	return view
}

func (m *Model) overlayCentered(mainView string, overlay string) string {
	mainLines := strings.Split(mainView, "\n")
	overlayLines := strings.Split(overlay, "\n")

	overlayWidth := lipgloss.Width(overlay)
	y := max((m.height-len(overlayLines))/2, 0)
	x := max((m.width-overlayWidth)/2, 0)

	for i, overlayLine := range overlayLines {
		mainY := y + i
		if mainY >= len(mainLines) {
			break
		}

		mainLine := mainLines[mainY]
		left := ansi.Truncate(mainLine, x, "")
		right := ansi.TruncateLeft(mainLine, x+overlayWidth, "")

		if lipgloss.Width(left) < x {
			left += strings.Repeat(" ", x-lipgloss.Width(left))
		}

		mainLines[mainY] = left + overlayLine + right
	}

	return strings.Join(mainLines, "\n")
}

func (m *Model) renderNavbar() string {
	var tabs []string

	for i, name := range m.tabNames {
		if TabID(i) == m.activeTab {
			tabs = append(tabs, m.styles.ActiveTab.Render(fmt.Sprintf("[%d] %s", i+1, name)))
		} else {
			tabs = append(tabs, m.styles.InactiveTab.Render(fmt.Sprintf(" %d  %s", i+1, name)))
		}
	}

	tabBar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	return m.styles.TabBar.Width(m.width).Render(tabBar)
}

func (m *Model) renderNotifications() []string {
	notifications := m.state.GetNotifications()
	if len(notifications) == 0 {
		return nil
	}

	toasts := make([]string, 0, len(notifications))
	for _, n := range notifications {
		var style lipgloss.Style
		var prefix string

		switch n.Type {
		case NotificationSuccess:
			style, prefix = m.styles.NotificationSuccess, "[OK]"
		case NotificationError:
			style, prefix = m.styles.NotificationError, "[ERR]"
		case NotificationWarning:
			style, prefix = m.styles.NotificationWarning, "[WARN]"
		case NotificationInfo:
			style, prefix = m.styles.NotificationInfo, "[INFO]"
		case NotificationLoading:
			style, prefix = m.styles.NotificationInfo, m.spinner.View()
		}

		content := style.Render(fmt.Sprintf("%s %s", prefix, n.Message))
		toasts = append(toasts, m.styles.Toast.Render(content))
	}

	return toasts
}

func (m *Model) overlayToasts(mainView string, toasts []string) string {
	toastStack := lipgloss.JoinVertical(lipgloss.Right, toasts...)
	toastLines := strings.Split(toastStack, "\n")
	mainLines := strings.Split(mainView, "\n")

	startX := max(m.width-lipgloss.Width(toastStack)-2, 0)
	startY := 2

	for i, toastLine := range toastLines {
		lineIdx := startY + i
		if lineIdx >= len(mainLines) {
			break
		}

		mainLine := mainLines[lineIdx]
		if w := lipgloss.Width(mainLine); w < startX {
			mainLines[lineIdx] = mainLine + strings.Repeat(" ", startX-w) + toastLine
		} else {
			mainLines[lineIdx] = ansi.Truncate(mainLine, startX, "") + toastLine
		}
	}

	return strings.Join(mainLines, "\n")
}

func (m *Model) renderHelp() string {
	lines := []string{
		m.styles.Title.Render("Keyboard Shortcuts"),
		"",
		m.styles.Highlight.Render("Navigation"),
		"  1-3        Switch tabs",
		"  Tab        Next tab",
		"  Shift+Tab  Previous tab",
		"",
		m.styles.Highlight.Render("Actions"),
		"  r          Refresh contracts",
		"  ?          Toggle help",
		"  q/Ctrl+C   Quit",
		"",
	}

	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		if tabHelp := m.tabs[m.activeTab].ShortHelp(); len(tabHelp) > 0 {
			lines = append(lines, m.styles.Highlight.Render(fmt.Sprintf("%s Tab", m.tabNames[m.activeTab])))
			for _, binding := range tabHelp {
				lines = append(lines, fmt.Sprintf("  %-10s %s", binding.Help().Key, binding.Help().Desc))
			}
			lines = append(lines, "")
		}
	}

	lines = append(lines, m.styles.Subtle.Render("Press ? or Esc to close"))

	return styles.HelpPanelStyle.Render(strings.Join(lines, "\n"))
}
