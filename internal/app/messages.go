package app

import (
	"time"

	"github.com/j-veylop/tokenflex-dashboard/internal/models"
)

// TickMsg is sent periodically to trigger state refresh.
type TickMsg struct {
	Time time.Time
}

// StartLoadingMsg signals that a resource is starting to load.
type StartLoadingMsg struct {
	Resource string
}

// StopLoadingMsg signals that a resource has finished loading.
type StopLoadingMsg struct {
	Resource string
}

// ContractsLoadedMsg carries the contract list.
type ContractsLoadedMsg struct {
	Contracts []models.Contract
	Err       error
}

// BatchLoadedMsg carries usage results. Latest is set when they come from
// the server's last batch rather than a fresh submission.
type BatchLoadedMsg struct {
	AccountID string
	Results   []models.QueryResult
	Latest    bool
	Err       error
}

// HistoryLoadedMsg carries the persisted batches of a contract.
type HistoryLoadedMsg struct {
	AccountID string
	Batches   []models.UsageBatch
	Err       error
}

// ChatReplyMsg carries the assistant's answer.
type ChatReplyMsg struct {
	Reply models.ChatReply
	Err   error
}

// SubmitContractMsg requests a fresh batch for a contract.
type SubmitContractMsg struct {
	AccountID string
}

// SendChatMsg sends a message to the assistant.
type SendChatMsg struct {
	Message string
}

// LoadHistoryMsg requests the persisted batches of a contract.
type LoadHistoryMsg struct {
	AccountID string
}

// RefreshMsg requests a refresh of data.
type RefreshMsg struct {
	Resource string // "all", "contracts", "latest"
}

// SelectedContractChangedMsg signals that the highlighted contract changed.
type SelectedContractChangedMsg struct {
	Index     int
	AccountID string
}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Type     NotificationType
	Message  string
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ClearExpiredNotificationsMsg triggers clearing of expired notifications.
type ClearExpiredNotificationsMsg struct{}

// ErrorMsg represents a general error.
type ErrorMsg struct {
	Error   error
	Context string
}

// TabSwitchMsg requests switching to a specific tab.
type TabSwitchMsg struct {
	Tab TabID
}

// ToggleHelpMsg toggles the help display.
type ToggleHelpMsg struct{}
