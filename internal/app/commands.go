package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/tokenflex-dashboard/internal/models"
)

const (
	// DefaultTickInterval is the default interval between ticks.
	DefaultTickInterval = 2 * time.Second

	// DefaultNotificationDuration is the default duration for notifications.
	DefaultNotificationDuration = 5 * time.Second

	// QuickNotificationDuration is for brief notifications.
	QuickNotificationDuration = 3 * time.Second

	// LongNotificationDuration is for important notifications.
	LongNotificationDuration = 10 * time.Second

	// HistoryLimit is how many persisted batches the history tab requests.
	HistoryLimit = 20
)

// API is the dashboard server as seen by the TUI.
type API interface {
	Contracts(ctx context.Context) ([]models.Contract, error)
	Submit(ctx context.Context, accountID string) ([]models.QueryResult, error)
	Latest(ctx context.Context) ([]models.QueryResult, error)
	History(ctx context.Context, accountID string, limit int) ([]models.UsageBatch, error)
	Chat(ctx context.Context, message, accountID string) (models.ChatReply, error)
}

// tickCmd returns a command that sends a TickMsg after the specified interval.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// defaultTickCmd returns a command that sends a TickMsg after the default interval.
func defaultTickCmd() tea.Cmd {
	return tickCmd(DefaultTickInterval)
}

// loadInitialData returns a command that loads contracts and the last batch.
func loadInitialData(api API) tea.Cmd {
	return tea.Batch(
		loadContractsCmd(api),
		loadLatestCmd(api),
	)
}

func loadContractsCmd(api API) tea.Cmd {
	return func() tea.Msg {
		contracts, err := api.Contracts(context.Background())
		return ContractsLoadedMsg{Contracts: contracts, Err: err}
	}
}

func loadLatestCmd(api API) tea.Cmd {
	return func() tea.Msg {
		results, err := api.Latest(context.Background())
		return BatchLoadedMsg{Results: results, Latest: true, Err: err}
	}
}

func submitCmd(api API, accountID string) tea.Cmd {
	return func() tea.Msg {
		results, err := api.Submit(context.Background(), accountID)
		return BatchLoadedMsg{AccountID: accountID, Results: results, Err: err}
	}
}

func loadHistoryCmd(api API, accountID string) tea.Cmd {
	return func() tea.Msg {
		batches, err := api.History(context.Background(), accountID, HistoryLimit)
		return HistoryLoadedMsg{AccountID: accountID, Batches: batches, Err: err}
	}
}

func chatCmd(api API, message, accountID string) tea.Cmd {
	return func() tea.Msg {
		reply, err := api.Chat(context.Background(), message, accountID)
		return ChatReplyMsg{Reply: reply, Err: err}
	}
}

// desktopNotifyCmd raises an OS notification without blocking the UI.
func desktopNotifyCmd(notifier Notifier, title, body string) tea.Cmd {
	return func() tea.Msg {
		_ = notifier(title, body)
		return nil
	}
}

// clearNotificationCmd returns a command that removes a notification after a delay.
func clearNotificationCmd(id string, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return RemoveNotificationMsg{ID: id}
	})
}

func notifyCmd(t NotificationType, message string, d time.Duration) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{Type: t, Message: message, Duration: d}
	}
}

func notifySuccessCmd(message string) tea.Cmd {
	return notifyCmd(NotificationSuccess, message, DefaultNotificationDuration)
}

func notifyErrorCmd(message string) tea.Cmd {
	return notifyCmd(NotificationError, message, LongNotificationDuration)
}

func notifyWarningCmd(message string) tea.Cmd {
	return notifyCmd(NotificationWarning, message, DefaultNotificationDuration)
}

func notifyInfoCmd(message string) tea.Cmd {
	return notifyCmd(NotificationInfo, message, QuickNotificationDuration)
}

// Commands provides tabs with the commands they may issue.
type Commands struct {
	api API
}

// NewCommands creates a new Commands instance.
func NewCommands(api API) *Commands {
	return &Commands{api: api}
}

// Submit returns a command that asks the root model to run a batch.
func (c *Commands) Submit(accountID string) tea.Cmd {
	return func() tea.Msg {
		return SubmitContractMsg{AccountID: accountID}
	}
}

// SendChat returns a command that asks the root model to send a message.
func (c *Commands) SendChat(message string) tea.Cmd {
	return func() tea.Msg {
		return SendChatMsg{Message: message}
	}
}

// LoadHistory returns a command that asks the root model to load history.
func (c *Commands) LoadHistory(accountID string) tea.Cmd {
	return func() tea.Msg {
		return LoadHistoryMsg{AccountID: accountID}
	}
}

// SelectionChanged announces a new highlighted contract.
func (c *Commands) SelectionChanged(index int, accountID string) tea.Cmd {
	return func() tea.Msg {
		return SelectedContractChangedMsg{Index: index, AccountID: accountID}
	}
}

// NotifySuccess returns a command that adds a success notification.
func (c *Commands) NotifySuccess(message string) tea.Cmd {
	return notifySuccessCmd(message)
}

// NotifyError returns a command that adds an error notification.
func (c *Commands) NotifyError(message string) tea.Cmd {
	return notifyErrorCmd(message)
}

// NotifyWarning returns a command that adds a warning notification.
func (c *Commands) NotifyWarning(message string) tea.Cmd {
	return notifyWarningCmd(message)
}

// NotifyInfo returns a command that adds an info notification.
func (c *Commands) NotifyInfo(message string) tea.Cmd {
	return notifyInfoCmd(message)
}

// ClearNotification returns a command that removes a notification after a delay.
func (c *Commands) ClearNotification(id string, delay time.Duration) tea.Cmd {
	return clearNotificationCmd(id, delay)
}
