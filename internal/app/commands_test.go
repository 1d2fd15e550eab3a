package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/tokenflex-dashboard/internal/models"
)

// fakeAPI records calls and returns canned replies.
type fakeAPI struct {
	mu sync.Mutex

	contracts    []models.Contract
	contractsErr error
	results      []models.QueryResult
	submitErr    error
	latest       []models.QueryResult
	history      []models.UsageBatch
	historyErr   error
	reply        models.ChatReply
	chatErr      error

	submitted   []string
	chatAccount string
	chatMessage string
}

func (f *fakeAPI) Contracts(context.Context) ([]models.Contract, error) {
	return f.contracts, f.contractsErr
}

func (f *fakeAPI) Submit(_ context.Context, accountID string) ([]models.QueryResult, error) {
	f.mu.Lock()
	f.submitted = append(f.submitted, accountID)
	f.mu.Unlock()
	return f.results, f.submitErr
}

func (f *fakeAPI) Latest(context.Context) ([]models.QueryResult, error) {
	return f.latest, nil
}

func (f *fakeAPI) History(context.Context, string, int) ([]models.UsageBatch, error) {
	return f.history, f.historyErr
}

func (f *fakeAPI) Chat(_ context.Context, message, accountID string) (models.ChatReply, error) {
	f.mu.Lock()
	f.chatMessage, f.chatAccount = message, accountID
	f.mu.Unlock()
	return f.reply, f.chatErr
}

func TestCommands_Notifications(t *testing.T) {
	cmds := NewCommands(nil)

	tests := []struct {
		name string
		fn   func(string) tea.Cmd
		want NotificationType
	}{
		{"Success", cmds.NotifySuccess, NotificationSuccess},
		{"Error", cmds.NotifyError, NotificationError},
		{"Warning", cmds.NotifyWarning, NotificationWarning},
		{"Info", cmds.NotifyInfo, NotificationInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.fn("msg")()

			addMsg, ok := msg.(AddNotificationMsg)
			if !ok {
				t.Fatalf("Expected AddNotificationMsg, got %T", msg)
			}
			if addMsg.Type != tt.want {
				t.Errorf("Type = %v, want %v", addMsg.Type, tt.want)
			}
			if addMsg.Message != "msg" {
				t.Errorf("Message = %q, want msg", addMsg.Message)
			}
			if addMsg.Duration <= 0 {
				t.Error("Notifications should expire")
			}
		})
	}
}

func TestCommands_Requests(t *testing.T) {
	cmds := NewCommands(nil)

	if msg, ok := cmds.Submit("111")().(SubmitContractMsg); !ok || msg.AccountID != "111" {
		t.Errorf("Submit() = %#v", msg)
	}
	if msg, ok := cmds.SendChat("hi")().(SendChatMsg); !ok || msg.Message != "hi" {
		t.Errorf("SendChat() = %#v", msg)
	}
	if msg, ok := cmds.LoadHistory("111")().(LoadHistoryMsg); !ok || msg.AccountID != "111" {
		t.Errorf("LoadHistory() = %#v", msg)
	}
	if msg, ok := cmds.SelectionChanged(1, "222")().(SelectedContractChangedMsg); !ok || msg.Index != 1 || msg.AccountID != "222" {
		t.Errorf("SelectionChanged() = %#v", msg)
	}
}

func TestAPICommands(t *testing.T) {
	boom := errors.New("boom")
	api := &fakeAPI{
		contracts:  contracts("111"),
		results:    []models.QueryResult{{ID: "q1"}},
		latest:     []models.QueryResult{{ID: "old"}},
		historyErr: boom,
		reply:      models.ChatReply{Response: "Hello!"},
	}

	if msg := loadContractsCmd(api)().(ContractsLoadedMsg); len(msg.Contracts) != 1 || msg.Err != nil {
		t.Errorf("loadContractsCmd = %+v", msg)
	}
	if msg := loadLatestCmd(api)().(BatchLoadedMsg); !msg.Latest || msg.Results[0].ID != "old" {
		t.Errorf("loadLatestCmd = %+v", msg)
	}
	if msg := submitCmd(api, "111")().(BatchLoadedMsg); msg.Latest || msg.AccountID != "111" || len(msg.Results) != 1 {
		t.Errorf("submitCmd = %+v", msg)
	}
	if msg := loadHistoryCmd(api, "111")().(HistoryLoadedMsg); !errors.Is(msg.Err, boom) {
		t.Errorf("loadHistoryCmd err = %v, want boom", msg.Err)
	}
	if msg := chatCmd(api, "hi", "111")().(ChatReplyMsg); msg.Reply.Response != "Hello!" {
		t.Errorf("chatCmd = %+v", msg)
	}
	if api.chatAccount != "111" || api.chatMessage != "hi" {
		t.Errorf("chat called with %q, %q", api.chatMessage, api.chatAccount)
	}
}

func TestDesktopNotifyCmd(t *testing.T) {
	var gotTitle, gotBody string
	notifier := func(title, body string) error {
		gotTitle, gotBody = title, body
		return errors.New("no notification daemon")
	}

	if msg := desktopNotifyCmd(notifier, "t", "b")(); msg != nil {
		t.Errorf("desktopNotifyCmd returned %T, want nil", msg)
	}
	if gotTitle != "t" || gotBody != "b" {
		t.Errorf("notifier got %q, %q", gotTitle, gotBody)
	}
}

func TestClearNotificationCmd(t *testing.T) {
	msg := clearNotificationCmd("id", time.Millisecond)()
	if rm, ok := msg.(RemoveNotificationMsg); !ok || rm.ID != "id" {
		t.Errorf("clearNotificationCmd = %#v", msg)
	}
}
