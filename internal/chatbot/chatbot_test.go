package chatbot

import (
	"strings"
	"testing"

	"github.com/j-veylop/tokenflex-dashboard/internal/models"
)

func sampleBatch() *models.UsageBatch {
	return &models.UsageBatch{
		AccountID: "12345",
		Results: []models.QueryResult{
			{
				ID:     "q1",
				Status: models.StatusDone,
				Result: []models.Row{
					{"usageCategory": "Desktop", "productName": "Revit", "tokensConsumed": 1500.0},
					{"usageCategory": "Cloud", "value": 250.5},
					{"usageCategory": "Desktop", "tokensConsumed": 10.0},
				},
			},
			{
				ID:     "q2",
				Status: models.StatusDone,
				Result: []models.Row{
					{"usageCategory": "Mobile", "value": 5.0},
					{"usageCategory": "API", "value": 1.0},
				},
			},
		},
	}
}

func TestRespond_StaticRules(t *testing.T) {
	bot := New()

	tests := []struct {
		name    string
		message string
		want    string
	}{
		{"optimization", "Any tips for optimization?", optimizationTips},
		{"reduce costs", "how do I REDUCE COSTS", optimizationTips},
		{"trends", "Show me trends", trendsText},
		{"export", "Can I export?", "Currently, you can view the charts and take screenshots. Data export functionality could be added in future updates."},
		{"token flex", "Tell me about Token Flex", dashboardResponses[0].response},
		{"chart number", "chart 3", chartTexts["3"]},
		{"unknown chart", "chart 9", "Chart 9 displays specific usage analytics. You can interact with it to get more detailed information about your Token Flex consumption."},
		{"hello", "Hello", "Hello! I'm here to help you understand your Token Flex usage data. What would you like to know?"},
		{"thank you", "thank you", "You're welcome! Feel free to ask if you have any other questions about Token Flex."},
		{"default", "xyz", DefaultResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := bot.Respond(tt.message, nil); got != tt.want {
				t.Errorf("Respond(%q) = %q, want %q", tt.message, got, tt.want)
			}
		})
	}
}

func TestRespond_CurrentUsage(t *testing.T) {
	bot := New()

	got := bot.Respond("How much did we use?", sampleBatch())
	want := "Based on your current contract data, you have 4 usage categories with a total of 1,766.5 tokens consumed. The main categories are: Desktop, Cloud, Mobile."
	if got != want {
		t.Errorf("Respond = %q, want %q", got, want)
	}
}

func TestRespond_CurrentUsageWithoutData(t *testing.T) {
	bot := New()

	for _, batch := range []*models.UsageBatch{nil, {AccountID: "12345"}} {
		got := bot.Respond("what is my CURRENT USAGE", batch)
		if !strings.HasPrefix(got, "Please select a contract") {
			t.Errorf("Respond = %q, want a request to select a contract", got)
		}
	}
}

func TestRespond_HighestUsage(t *testing.T) {
	bot := New()

	got := bot.Respond("which is most used", sampleBatch())
	want := `Your highest usage category is "Desktop" with 1,500 tokens consumed.`
	if got != want {
		t.Errorf("Respond = %q, want %q", got, want)
	}
}

func TestRespond_HighestUsageWithoutDataFallsThrough(t *testing.T) {
	bot := New()

	got := bot.Respond("most used product", nil)
	if strings.Contains(got, "highest usage category") {
		t.Errorf("Respond = %q, rule should not match without data", got)
	}
	if got != DefaultResponse {
		t.Errorf("Respond = %q, want default", got)
	}
}

func TestRespond_HighestUsesProductNameFallback(t *testing.T) {
	bot := New()
	batch := &models.UsageBatch{Results: []models.QueryResult{{
		Status: models.StatusDone,
		Result: []models.Row{{"productName": "AutoCAD", "value": 7.0}},
	}}}

	got := bot.Respond("highest", batch)
	want := `Your highest usage category is "AutoCAD" with 7 tokens consumed.`
	if got != want {
		t.Errorf("Respond = %q, want %q", got, want)
	}
}

func TestRespond_FirstMatchWins(t *testing.T) {
	bot := NewWithRules([]Rule{
		keywordRule("first", "one", "alpha"),
		keywordRule("second", "two", "alpha", "beta"),
	})

	if got := bot.Respond("alpha beta", nil); got != "one" {
		t.Errorf("Respond = %q, want one", got)
	}
	if got := bot.Respond("beta", nil); got != "two" {
		t.Errorf("Respond = %q, want two", got)
	}
	if got := bot.Respond("gamma", nil); got != DefaultResponse {
		t.Errorf("Respond = %q, want default", got)
	}
}

func TestFormatTokens(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1234567, "1,234,567"},
		{1234.56789, "1,234.568"},
	}
	for _, tt := range tests {
		if got := formatTokens(tt.in); got != tt.want {
			t.Errorf("formatTokens(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
