package app

import (
	"fmt"
	"testing"
	"time"

	"github.com/j-veylop/tokenflex-dashboard/internal/models"
)

func contracts(numbers ...string) []models.Contract {
	out := make([]models.Contract, len(numbers))
	for i, n := range numbers {
		out[i] = models.Contract{ContractNumber: n}
	}
	return out
}

func TestNewState(t *testing.T) {
	s := NewState()
	if s == nil {
		t.Fatal("NewState returned nil")
	}
	if !s.IsInitialLoading() {
		t.Error("New state should be initially loading")
	}
	if len(s.GetContracts()) != 0 {
		t.Error("New state should have no contracts")
	}
	if _, ok := s.SelectedAccount(); ok {
		t.Error("SelectedAccount should be empty without contracts")
	}
}

func TestState_Loading(t *testing.T) {
	s := NewState()
	s.SetLoading("initial", false)
	if s.AnyLoading() {
		t.Error("AnyLoading should be false after initial load")
	}

	for _, resource := range []string{"contracts", "batch", "history", "chat"} {
		s.SetLoading(resource, true)
		if !s.IsLoading(resource) || !s.AnyLoading() {
			t.Errorf("%s should be loading", resource)
		}
		s.SetLoading(resource, false)
		if s.IsLoading(resource) {
			t.Errorf("%s should not be loading", resource)
		}
	}

	s.SetLoading("unknown", true)
	if s.AnyLoading() || s.IsLoading("unknown") {
		t.Error("unknown resources should be ignored")
	}
}

func TestState_Selection(t *testing.T) {
	s := NewState()
	s.SetContracts(contracts("111", "222", "333"))

	s.SetSelectedIndex(2)
	if got, _ := s.SelectedAccount(); got != "333" {
		t.Errorf("SelectedAccount = %q, want 333", got)
	}

	s.SetSelectedIndex(7)
	if s.GetSelectedIndex() != 2 {
		t.Error("out of range index should be ignored")
	}

	// Shrinking the list clamps the selection.
	s.SetContracts(contracts("111"))
	if got, ok := s.SelectedAccount(); !ok || got != "111" {
		t.Errorf("SelectedAccount = %q, %v; want 111", got, ok)
	}
}

func TestState_GetContractsReturnsCopy(t *testing.T) {
	s := NewState()
	s.SetContracts(contracts("111"))

	got := s.GetContracts()
	got[0].ContractNumber = "changed"
	if s.GetContracts()[0].ContractNumber != "111" {
		t.Error("GetContracts should return a copy")
	}
}

func TestState_BatchAndHistory(t *testing.T) {
	s := NewState()
	if s.GetBatch() != nil {
		t.Error("GetBatch should be nil initially")
	}

	b := &models.UsageBatch{AccountID: "111"}
	s.SetBatch(b)
	if s.GetBatch() != b {
		t.Error("GetBatch should return the stored batch")
	}
	if s.GetLastUpdated().IsZero() {
		t.Error("SetBatch should update LastUpdated")
	}

	s.SetHistory("111", []models.UsageBatch{{AccountID: "111"}, {AccountID: "111"}})
	account, batches := s.GetHistory()
	if account != "111" || len(batches) != 2 {
		t.Errorf("GetHistory = %q, %d batches", account, len(batches))
	}
}

func TestState_Chat(t *testing.T) {
	s := NewState()
	s.AppendChat(ChatEntry{FromUser: true, Text: "hello"})

	chat := s.GetChat()
	if len(chat) != 1 || chat[0].At.IsZero() {
		t.Fatalf("chat = %+v, want one stamped entry", chat)
	}

	for i := range maxChatEntries + 5 {
		s.AppendChat(ChatEntry{Text: fmt.Sprintf("line %d", i)})
	}
	chat = s.GetChat()
	if len(chat) != maxChatEntries {
		t.Errorf("len(chat) = %d, want %d", len(chat), maxChatEntries)
	}
	if chat[len(chat)-1].Text != fmt.Sprintf("line %d", maxChatEntries+4) {
		t.Errorf("last entry = %q", chat[len(chat)-1].Text)
	}
}

func TestState_Notifications(t *testing.T) {
	s := NewState()

	id := s.AddNotification(NotificationInfo, "test", time.Hour)
	if len(s.GetNotifications()) != 1 {
		t.Fatal("Expected 1 notification")
	}

	s.RemoveNotification(id)
	if len(s.GetNotifications()) != 0 {
		t.Error("Expected notification to be removed")
	}

	s.AddNotification(NotificationInfo, "expired", time.Nanosecond)
	time.Sleep(time.Millisecond)
	s.ClearExpiredNotifications()
	if len(s.GetNotifications()) != 0 {
		t.Error("Expected expired notification to be cleared")
	}

	for range maxNotifications + 3 {
		s.AddNotification(NotificationInfo, "spam", time.Hour)
	}
	if len(s.GetNotifications()) != maxNotifications {
		t.Errorf("Expected %d notifications, got %d", maxNotifications, len(s.GetNotifications()))
	}
}

func TestState_LoadingNotification(t *testing.T) {
	s := NewState()
	s.SetLoadingNotification("Loading...")
	s.SetLoadingNotification("Still loading...")

	notes := s.GetNotifications()
	if len(notes) != 1 || notes[0].Message != "Still loading..." {
		t.Fatalf("notifications = %+v, want a single updated loading toast", notes)
	}

	s.ClearLoadingNotification()
	if len(s.GetNotifications()) != 0 {
		t.Error("loading notification should be cleared")
	}
}

func TestNotificationType_String(t *testing.T) {
	tests := []struct {
		n    NotificationType
		want string
	}{
		{NotificationSuccess, "success"},
		{NotificationError, "error"},
		{NotificationWarning, "warning"},
		{NotificationInfo, "info"},
		{NotificationLoading, "loading"},
		{NotificationType(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.n.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.n, got, tt.want)
		}
	}
}
