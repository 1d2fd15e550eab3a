package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/tokenflex-dashboard/internal/app"
	"github.com/j-veylop/tokenflex-dashboard/internal/ui/styles"
)

// View renders the chat tab.
func (m *Model) View() string {
	m.refreshTranscript()

	title := styles.TitleStyle.Render("Assistant")
	if b := m.state.GetBatch(); b != nil && b.AccountID != "" {
		title += styles.HelpStyle.Render("  answering about contract " + b.AccountID)
	}

	inputStyle := styles.BlurredBorderStyle
	if m.input.Focused() {
		inputStyle = styles.FocusedBorderStyle
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		title,
		m.viewport.View(),
		inputStyle.Width(max(m.width-8, 12)).Render(m.input.View()),
	)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderTranscript(chat []app.ChatEntry) string {
	if len(chat) == 0 {
		return styles.HelpStyle.Render("No messages yet. Press i and ask something like \"what is my current usage?\"")
	}

	width := max(m.viewport.Width, 10)
	wrap := lipgloss.NewStyle().Width(width - 2)

	lines := make([]string, 0, len(chat)*2+1)
	for _, e := range chat {
		who := styles.BotMessageStyle.Bold(true).Render("Assistant")
		text := styles.BotMessageStyle.Render(e.Text)
		if e.FromUser {
			who = styles.UserMessageStyle.Render("You")
			text = e.Text
		}
		stamp := ""
		if !e.At.IsZero() {
			stamp = " " + styles.TimestampStyle.Render(e.At.Format("15:04"))
		}
		lines = append(lines, who+stamp, wrap.Render(text), "")
	}

	if m.state.IsLoading("chat") {
		lines = append(lines, styles.HelpStyle.Render("Assistant is typing..."))
	}

	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}
