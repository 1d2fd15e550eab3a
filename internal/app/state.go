// Package app provides the main Bubble Tea application model and state management.
package app

import (
	"sync"
	"time"

	"github.com/j-veylop/tokenflex-dashboard/internal/models"
)

// NotificationType defines the type of notification.
type NotificationType int

const (
	// NotificationSuccess represents a success notification.
	NotificationSuccess NotificationType = iota
	// NotificationError represents an error notification.
	NotificationError
	// NotificationWarning represents a warning notification.
	NotificationWarning
	// NotificationInfo represents an informational notification.
	NotificationInfo
	// NotificationLoading represents a loading notification with spinner.
	NotificationLoading
)

const (
	// LoadingNotificationID is the fixed ID for loading notifications.
	LoadingNotificationID = "__loading__"

	maxNotifications = 10
	maxChatEntries   = 200
)

// String returns the string representation of a NotificationType.
func (n NotificationType) String() string {
	switch n {
	case NotificationSuccess:
		return "success"
	case NotificationError:
		return "error"
	case NotificationWarning:
		return "warning"
	case NotificationInfo:
		return "info"
	case NotificationLoading:
		return "loading"
	default:
		return "unknown"
	}
}

// Notification represents a user-facing notification message.
type Notification struct {
	ID        string
	Type      NotificationType
	Message   string
	CreatedAt time.Time
	Duration  time.Duration
}

// IsExpired returns true if the notification has expired.
func (n *Notification) IsExpired() bool {
	if n.Duration <= 0 {
		return false
	}
	return time.Since(n.CreatedAt) > n.Duration
}

// LoadingState tracks loading states for different resources.
type LoadingState struct {
	Initial   bool
	Contracts bool
	Batch     bool
	History   bool
	Chat      bool
}

// ChatEntry is one line of the chat transcript.
type ChatEntry struct {
	FromUser bool
	Text     string
	At       time.Time
}

// State is the data shared by all tabs.
type State struct {
	mu sync.RWMutex

	contracts     []models.Contract
	selectedIndex int

	batch   *models.UsageBatch
	history []models.UsageBatch
	// historyAccount is the contract the history slice belongs to.
	historyAccount string
	chat           []ChatEntry

	loading     LoadingState
	lastUpdated time.Time

	notifications   []Notification
	notificationSeq int
}

// NewState creates an empty state that is waiting for its first load.
func NewState() *State {
	return &State{
		notifications: make([]Notification, 0),
		loading:       LoadingState{Initial: true},
	}
}

// SetLoading sets the loading state for a specific resource.
func (s *State) SetLoading(resource string, loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch resource {
	case "initial":
		s.loading.Initial = loading
	case "contracts":
		s.loading.Contracts = loading
	case "batch":
		s.loading.Batch = loading
	case "history":
		s.loading.History = loading
	case "chat":
		s.loading.Chat = loading
	}
}

// IsLoading reports whether a specific resource is loading.
func (s *State) IsLoading(resource string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch resource {
	case "initial":
		return s.loading.Initial
	case "contracts":
		return s.loading.Contracts
	case "batch":
		return s.loading.Batch
	case "history":
		return s.loading.History
	case "chat":
		return s.loading.Chat
	}
	return false
}

// AnyLoading returns true if any resource is currently loading.
func (s *State) AnyLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l := s.loading
	return l.Initial || l.Contracts || l.Batch || l.History || l.Chat
}

// IsInitialLoading returns true if initial data is still loading.
func (s *State) IsInitialLoading() bool {
	return s.IsLoading("initial")
}

// SetContracts replaces the contract list, keeping the selection in range.
func (s *State) SetContracts(contracts []models.Contract) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.contracts = contracts
	if s.selectedIndex >= len(contracts) {
		s.selectedIndex = max(len(contracts)-1, 0)
	}
	s.lastUpdated = time.Now()
}

// GetContracts returns a copy of the contract list.
func (s *State) GetContracts() []models.Contract {
	s.mu.RLock()
	defer s.mu.RUnlock()

	contracts := make([]models.Contract, len(s.contracts))
	copy(contracts, s.contracts)
	return contracts
}

// GetSelectedIndex returns the highlighted contract index.
func (s *State) GetSelectedIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedIndex
}

// SetSelectedIndex moves the highlight, ignoring out of range values.
func (s *State) SetSelectedIndex(idx int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx >= 0 && idx < len(s.contracts) {
		s.selectedIndex = idx
	}
}

// SelectedAccount returns the highlighted contract number.
func (s *State) SelectedAccount() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selectedIndex < 0 || s.selectedIndex >= len(s.contracts) {
		return "", false
	}
	return s.contracts[s.selectedIndex].ContractNumber, true
}

// SetBatch stores the batch shown on the dashboard.
func (s *State) SetBatch(batch *models.UsageBatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batch = batch
	s.lastUpdated = time.Now()
}

// GetBatch returns the batch shown on the dashboard, or nil.
func (s *State) GetBatch() *models.UsageBatch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.batch
}

// SetHistory stores the persisted batches of a contract.
func (s *State) SetHistory(accountID string, batches []models.UsageBatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.historyAccount = accountID
	s.history = batches
}

// GetHistory returns the persisted batches and the contract they belong to.
func (s *State) GetHistory() (string, []models.UsageBatch) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	batches := make([]models.UsageBatch, len(s.history))
	copy(batches, s.history)
	return s.historyAccount, batches
}

// AppendChat adds a line to the transcript.
func (s *State) AppendChat(entry ChatEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.At.IsZero() {
		entry.At = time.Now()
	}
	s.chat = append(s.chat, entry)
	if len(s.chat) > maxChatEntries {
		s.chat = s.chat[len(s.chat)-maxChatEntries:]
	}
}

// GetChat returns a copy of the transcript.
func (s *State) GetChat() []ChatEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chat := make([]ChatEntry, len(s.chat))
	copy(chat, s.chat)
	return chat
}

// AddNotification adds a new notification and returns its ID.
func (s *State) AddNotification(notifType NotificationType, message string, duration time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notificationSeq++
	id := time.Now().Format("20060102150405") + "-" + string(rune('A'+s.notificationSeq%26))

	s.notifications = append(s.notifications, Notification{
		ID:        id,
		Type:      notifType,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  duration,
	})

	if len(s.notifications) > maxNotifications {
		s.notifications = s.notifications[len(s.notifications)-maxNotifications:]
	}

	return id
}

// RemoveNotification removes a notification by ID.
func (s *State) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// ClearExpiredNotifications removes all expired notifications.
func (s *State) ClearExpiredNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = activeNotifications(s.notifications)
}

// GetNotifications returns a copy of all active notifications.
func (s *State) GetNotifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return activeNotifications(s.notifications)
}

func activeNotifications(all []Notification) []Notification {
	active := make([]Notification, 0, len(all))
	for _, n := range all {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	return active
}

// SetLoadingNotification sets a loading notification message.
func (s *State) SetLoadingNotification(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications[i].Message = message
			return
		}
	}

	s.notifications = append(s.notifications, Notification{
		ID:        LoadingNotificationID,
		Type:      NotificationLoading,
		Message:   message,
		CreatedAt: time.Now(),
	})
}

// ClearLoadingNotification removes the loading notification.
func (s *State) ClearLoadingNotification() {
	s.RemoveNotification(LoadingNotificationID)
}

// GetLastUpdated returns the last time contracts or the batch changed.
func (s *State) GetLastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdated
}
