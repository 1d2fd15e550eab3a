package dashboard

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/tokenflex-dashboard/internal/app"
	"github.com/j-veylop/tokenflex-dashboard/internal/models"
)

func newState(contracts ...string) *app.State {
	state := app.NewState()
	state.SetLoading("initial", false)
	cs := make([]models.Contract, 0, len(contracts))
	for _, c := range contracts {
		cs = append(cs, models.Contract{ContractNumber: c})
	}
	state.SetContracts(cs)
	return state
}

func testBatch() *models.UsageBatch {
	return &models.UsageBatch{
		AccountID: "12345",
		FetchedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Results: []models.QueryResult{
			{ID: "q1", Status: models.StatusDone, Result: []models.Row{
				{"usageCategory": "Cloud", "value": 300.0},
				{"usageCategory": "Desktop", "value": 100.0},
			}},
			{ID: "q2", Status: models.StatusDone, Result: []models.Row{
				{"productName": "Revit", "tokensConsumed": 600.0},
			}},
		},
		Submitted: 2,
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_Init(t *testing.T) {
	m := New(app.NewState(), nil)
	if m.Init() == nil {
		t.Error("Init returned nil")
	}
}

func TestModel_ViewInitialLoading(t *testing.T) {
	m := New(app.NewState(), nil)
	m.SetSize(80, 24)
	if view := m.View(); !strings.Contains(view, "Loading contracts...") {
		t.Errorf("initial view should show the spinner label, got %q", view)
	}
}

func TestModel_ViewNoContracts(t *testing.T) {
	m := New(newState(), nil)
	m.SetSize(80, 40)

	view := m.View()
	if !strings.Contains(view, "No contracts available") {
		t.Errorf("view should explain missing contracts, got %q", view)
	}
}

func TestModel_ViewContractsAndBatch(t *testing.T) {
	state := newState("12345", "67890")
	state.SetBatch(testBatch())

	m := New(state, nil)
	m.SetSize(100, 200)

	view := m.View()
	for _, want := range []string{"12345", "67890", "loaded", "Usecase 1", "Usecase 2", "Cloud", "Revit", "1,000"} {
		if !strings.Contains(view, want) {
			t.Errorf("view should contain %q", want)
		}
	}
}

func TestModel_ViewBatchLoading(t *testing.T) {
	state := newState("12345")
	state.SetLoading("batch", true)

	m := New(state, nil)
	m.SetSize(100, 60)

	view := m.View()
	if !strings.Contains(view, "Running usage queries for 12345") {
		t.Errorf("loading view missing header: %q", view)
	}
	if !strings.Contains(view, "Usecase 6") {
		t.Error("loading view should show a bar per usecase")
	}
}

func TestModel_SelectionKeys(t *testing.T) {
	state := newState("a", "b", "c")
	commands := app.NewCommands(nil)
	m := New(state, commands)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if state.GetSelectedIndex() != 1 {
		t.Fatalf("selected = %d, want 1", state.GetSelectedIndex())
	}
	if cmd == nil {
		t.Fatal("moving the selection should announce it")
	}
	msg, ok := cmd().(app.SelectedContractChangedMsg)
	if !ok || msg.AccountID != "b" || msg.Index != 1 {
		t.Errorf("got %#v, want selection of b", msg)
	}

	m.Update(runes("G"))
	if state.GetSelectedIndex() != 2 {
		t.Errorf("G should select the last contract, got %d", state.GetSelectedIndex())
	}

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if state.GetSelectedIndex() != 0 {
		t.Errorf("selection should wrap, got %d", state.GetSelectedIndex())
	}

	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if state.GetSelectedIndex() != 2 {
		t.Errorf("up should wrap backwards, got %d", state.GetSelectedIndex())
	}

	m.Update(runes("g"))
	if state.GetSelectedIndex() != 0 {
		t.Errorf("g should select the first contract, got %d", state.GetSelectedIndex())
	}
}

func TestModel_SubmitKey(t *testing.T) {
	state := newState("12345")
	m := New(state, app.NewCommands(nil))

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter should submit the selected contract")
	}
	msg, ok := cmd().(app.SubmitContractMsg)
	if !ok || msg.AccountID != "12345" {
		t.Errorf("got %#v, want SubmitContractMsg for 12345", msg)
	}
}

func TestModel_SubmitKeyWithoutContracts(t *testing.T) {
	m := New(newState(), app.NewCommands(nil))
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		if msg := cmd(); msg != nil {
			t.Errorf("enter without contracts produced %#v", msg)
		}
	}
}

func TestModel_PanelFocus(t *testing.T) {
	state := newState("12345")
	state.SetBatch(testBatch())
	m := New(state, nil)
	m.SetSize(100, 200)

	m.Update(runes("]"))
	if m.focusedPanel != 1 {
		t.Fatalf("focusedPanel = %d, want 1", m.focusedPanel)
	}
	if !strings.Contains(m.View(), "Usecase 2: tokens per row") {
		t.Error("line chart should follow the focused panel")
	}

	m.Update(runes("]"))
	if m.focusedPanel != 0 {
		t.Errorf("focus should wrap, got %d", m.focusedPanel)
	}
	m.Update(runes("["))
	if m.focusedPanel != 1 {
		t.Errorf("[ should move back, got %d", m.focusedPanel)
	}

	m.Update(app.BatchLoadedMsg{AccountID: "12345"})
	if m.focusedPanel != 0 {
		t.Error("a fresh batch should reset the focused panel")
	}
}

func TestModel_AnimationTicksWhileLoading(t *testing.T) {
	state := newState("12345")
	m := New(state, nil)

	if _, cmd := m.Update(animationTickMsg(time.Now())); cmd != nil {
		t.Error("idle dashboard should stop ticking")
	}

	state.SetLoading("batch", true)
	if _, cmd := m.Update(animationTickMsg(time.Now())); cmd == nil {
		t.Error("dashboard should keep ticking while a batch runs")
	}
}

func TestPanelBars(t *testing.T) {
	r := models.QueryResult{Result: []models.Row{
		{"usageCategory": "Cloud", "value": 10.0},
		{"usageCategory": "Desktop", "value": 50.0},
		{"usageCategory": "Cloud", "value": 45.0},
		{"usageCategory": "", "productName": "", "value": 1.0},
		{"usageCategory": "NoValue"},
	}}

	bars := panelBars(r, 0)
	if len(bars) != 3 {
		t.Fatalf("got %d bars, want 3: %+v", len(bars), bars)
	}
	if bars[0].Label != "Cloud" || bars[0].Value != 55 {
		t.Errorf("first bar = %+v, want Cloud 55", bars[0])
	}
	if bars[1].Label != "Desktop" {
		t.Errorf("second bar = %+v, want Desktop", bars[1])
	}
	if bars[2].Label != "(unlabelled)" {
		t.Errorf("third bar = %+v, want unlabelled", bars[2])
	}

	if limited := panelBars(r, 2); len(limited) != 2 {
		t.Errorf("limit ignored: %d bars", len(limited))
	}
}

func TestLayoutPanels(t *testing.T) {
	panels := []string{"a", "b", "c"}
	if got := layoutPanels(panels, false); len(got) != 3 {
		t.Errorf("single column gave %d rows", len(got))
	}
	if got := layoutPanels(panels, true); len(got) != 2 {
		t.Errorf("two columns gave %d rows, want 2", len(got))
	}
}

func TestModel_Help(t *testing.T) {
	m := New(app.NewState(), nil)
	if len(m.ShortHelp()) == 0 {
		t.Error("ShortHelp empty")
	}
	if len(m.FullHelp()) == 0 {
		t.Error("FullHelp empty")
	}
}
